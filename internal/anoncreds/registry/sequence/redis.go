package sequence

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"
)

const keyPrefix = "didweb:revstatus:latest:"

// claimScript stores max(ARGV[1], current+1) and returns {hadPrevious, previous, claimed}.
var claimScript = redis.NewScript(`
local ts = tonumber(ARGV[1])
local prev = redis.call('GET', KEYS[1])
if prev then
  prev = tonumber(prev)
  if prev >= ts then ts = prev + 1 end
  redis.call('SET', KEYS[1], ts)
  return {1, prev, ts}
end
redis.call('SET', KEYS[1], ts)
return {0, 0, ts}
`)

// Redis sequences versions across instances sharing one Redis.
type Redis struct {
	client redis.UniversalClient
}

func NewRedis(client redis.UniversalClient) *Redis {
	return &Redis{client: client}
}

func (r *Redis) Claim(ctx context.Context, key string, timestamp int64) (Claim, error) {
	res, err := claimScript.Run(ctx, r.client, []string{keyPrefix + key}, timestamp).Int64Slice()
	if err != nil {
		return Claim{}, fmt.Errorf("claim status list version: %w", err)
	}
	if len(res) != 3 {
		return Claim{}, fmt.Errorf("claim status list version: unexpected reply %v", res)
	}
	return Claim{
		HasPrevious: res[0] == 1,
		Previous:    res[1],
		Timestamp:   res[2],
	}, nil
}
