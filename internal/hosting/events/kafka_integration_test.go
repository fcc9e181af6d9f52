//go:build integration

package events_test

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"
	"github.com/twmb/franz-go/pkg/kgo"

	"didweb-anoncreds/internal/hosting/events"
	"didweb-anoncreds/internal/hosting/models"
	"didweb-anoncreds/pkg/testutil/containers"
)

type KafkaSinkSuite struct {
	suite.Suite
	kafka *containers.KafkaContainer
	sink  *events.KafkaSink
}

func TestKafkaSinkSuite(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	suite.Run(t, new(KafkaSinkSuite))
}

func (s *KafkaSinkSuite) SetupSuite() {
	s.kafka = containers.GetManager().GetKafka(s.T())
	sink, err := events.NewKafkaSink(context.Background(), s.kafka.Brokers, "anoncreds.resources")
	s.Require().NoError(err)
	s.sink = sink
}

func (s *KafkaSinkSuite) TearDownSuite() {
	if s.sink != nil {
		s.sink.Close()
	}
}

func (s *KafkaSinkSuite) TestEnsureTopicIsIdempotent() {
	sink, err := events.NewKafkaSink(context.Background(), s.kafka.Brokers, "anoncreds.resources")
	s.Require().NoError(err)
	sink.Close()
}

func (s *KafkaSinkSuite) TestPublishedEventIsConsumable() {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	s.Require().NoError(s.sink.Health(ctx))
	publisher := events.NewPublisher(s.sink)
	s.Require().NoError(publisher.Emit(ctx, models.ResourcePublished{
		Type:       models.EventResourcePublished,
		Kind:       "schema",
		ResourceID: "5pN1dQ4x",
		IssuerID:   "did:web:issuer.example",
	}))

	consumer, err := kgo.NewClient(
		kgo.SeedBrokers(s.kafka.Brokers...),
		kgo.ConsumeTopics("anoncreds.resources"),
		kgo.ConsumeResetOffset(kgo.NewOffset().AtStart()),
	)
	s.Require().NoError(err)
	defer consumer.Close()

	var record *kgo.Record
	for record == nil {
		fetches := consumer.PollFetches(ctx)
		s.Require().NoError(ctx.Err())
		fetches.EachRecord(func(r *kgo.Record) {
			if record == nil && string(r.Key) == "5pN1dQ4x" {
				record = r
			}
		})
	}

	var got models.ResourcePublished
	s.Require().NoError(json.Unmarshal(record.Value, &got))
	s.Equal("did:web:issuer.example", got.IssuerID)
	s.Equal(models.EventResourcePublished, got.Type)
	s.False(got.OccurredAt.IsZero())
}
