package identifier

import (
	"crypto/sha256"
	"encoding/json"

	"github.com/gowebpki/jcs"
	"github.com/mr-tron/base58"

	"didweb-anoncreds/internal/anoncreds/failure"
)

// Canonicalize serializes object as RFC 8785 canonical JSON. Values JSON
// cannot represent (NaN, infinities, cycles, channels) fail with a
// Canonicalization error. json.RawMessage input is canonicalized as-is.
func Canonicalize(object any) ([]byte, error) {
	raw, err := json.Marshal(object)
	if err != nil {
		return nil, failure.New(failure.Canonicalization, "cannot canonicalize object", err)
	}
	canonical, err := jcs.Transform(raw)
	if err != nil {
		return nil, failure.New(failure.Canonicalization, "cannot canonicalize object", err)
	}
	return canonical, nil
}

// ComputeResourceID returns base58(sha256(canonical JSON of object)).
func ComputeResourceID(object any) (string, error) {
	canonical, err := Canonicalize(object)
	if err != nil {
		return "", err
	}
	sum := sha256.Sum256(canonical)
	return base58.Encode(sum[:]), nil
}

// VerifyResourceID recomputes the id of object and compares it with claimedID.
func VerifyResourceID(object any, claimedID string) bool {
	id, err := ComputeResourceID(object)
	if err != nil {
		return false
	}
	return id == claimedID
}
