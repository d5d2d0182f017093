package handoff

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/twmb/franz-go/pkg/kadm"
	"github.com/twmb/franz-go/pkg/kerr"
	"github.com/twmb/franz-go/pkg/kgo"

	"idproof/internal/kyc/ports"
	"idproof/internal/platform/config"
	"idproof/pkg/requestcontext"
)

const (
	headerVerdict = "verdict"
	headerVersion = "payload-version"
	payloadV1     = "1"
)

// Kafka publishes each terminal result as one record keyed by session id, so all
// records of a session land on the same partition.
type Kafka struct {
	client *kgo.Client
	topic  string
	logger *slog.Logger
}

type KafkaOption func(*Kafka)

func WithKafkaLogger(logger *slog.Logger) KafkaOption {
	return func(k *Kafka) {
		k.logger = logger
	}
}

// NewKafka connects to the brokers and makes sure the results topic exists.
func NewKafka(ctx context.Context, cfg config.Kafka, opts ...KafkaOption) (*Kafka, error) {
	if len(cfg.Brokers) == 0 {
		return nil, errors.New("kafka hand-off requires at least one broker")
	}
	client, err := kgo.NewClient(
		kgo.SeedBrokers(cfg.Brokers...),
		kgo.ClientID(cfg.ClientID),
		kgo.DefaultProduceTopic(cfg.Topic),
		kgo.RequiredAcks(kgo.AllISRAcks()),
	)
	if err != nil {
		return nil, fmt.Errorf("create kafka client: %w", err)
	}
	k := &Kafka{client: client, topic: cfg.Topic, logger: slog.Default()}
	for _, opt := range opts {
		opt(k)
	}
	if err := k.ensureTopic(ctx); err != nil {
		client.Close()
		return nil, err
	}
	return k, nil
}

func (k *Kafka) ensureTopic(ctx context.Context) error {
	adm := kadm.NewClient(k.client)
	resp, err := adm.CreateTopics(ctx, 1, -1, nil, k.topic)
	if err != nil {
		return fmt.Errorf("create topic %s: %w", k.topic, err)
	}
	for _, r := range resp {
		if r.Err != nil && !errors.Is(r.Err, kerr.TopicAlreadyExists) {
			return fmt.Errorf("create topic %s: %w", r.Topic, r.Err)
		}
	}
	return nil
}

// Deliver produces the result synchronously and waits for the broker ack.
func (k *Kafka) Deliver(ctx context.Context, result ports.Result) error {
	payload := NewPayload(result, requestcontext.Now(ctx))
	value, err := Encode(result, payload.DeliveredAt)
	if err != nil {
		return fmt.Errorf("encode hand-off payload: %w", err)
	}
	record := &kgo.Record{
		Topic: k.topic,
		Key:   []byte(payload.SessionID),
		Value: value,
		Headers: []kgo.RecordHeader{
			{Key: headerVerdict, Value: []byte(payload.Verdict.Kind)},
			{Key: headerVersion, Value: []byte(payloadV1)},
		},
	}
	if err := k.client.ProduceSync(ctx, record).FirstErr(); err != nil {
		return fmt.Errorf("publish hand-off for session %s: %w", payload.SessionID, err)
	}
	k.logger.DebugContext(ctx, "hand-off published", "session_id", payload.SessionID, "topic", k.topic)
	return nil
}

// Ping checks broker connectivity for readiness probes.
func (k *Kafka) Ping(ctx context.Context) error {
	return k.client.Ping(ctx)
}

func (k *Kafka) Close() {
	k.client.Close()
}
