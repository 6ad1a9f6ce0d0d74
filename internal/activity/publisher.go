package activity

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"github.com/twmb/franz-go/pkg/kadm"
	"github.com/twmb/franz-go/pkg/kerr"
	"github.com/twmb/franz-go/pkg/kgo"
)

// Publisher fans activity records out to downstream consumers (analytics,
// compliance archival). Publishing is strictly best effort: the store write
// has already committed and a broker outage must never surface to the
// caller.
type Publisher interface {
	Publish(ctx context.Context, rec Record)
	Close()
}

// KafkaPublisher produces records onto a Kafka topic through a buffered
// channel and a single producer goroutine, so Record never blocks on the
// broker. A full buffer drops the event with a log line.
type KafkaPublisher struct {
	client *kgo.Client
	topic  string
	logger *slog.Logger
	inbox  chan Record
	done   chan struct{}
}

type wireRecord struct {
	ID          string    `json:"id"`
	ActorUserID string    `json:"actor_user_id"`
	ActorName   string    `json:"actor_name"`
	Kind        string    `json:"kind"`
	Description string    `json:"description"`
	Timestamp   time.Time `json:"timestamp"`

	DocumentID    string `json:"document_id,omitempty"`
	DocumentName  string `json:"document_name,omitempty"`
	PropertyID    string `json:"property_id,omitempty"`
	PropertyTitle string `json:"property_title,omitempty"`
}

// NewKafkaPublisher connects to the brokers, ensures the topic exists, and
// starts the producer loop.
func NewKafkaPublisher(ctx context.Context, brokers []string, topic string, logger *slog.Logger) (*KafkaPublisher, error) {
	client, err := kgo.NewClient(
		kgo.SeedBrokers(brokers...),
		kgo.ProducerBatchCompression(kgo.SnappyCompression()),
	)
	if err != nil {
		return nil, err
	}

	if err := ensureTopic(ctx, client, topic); err != nil {
		client.Close()
		return nil, err
	}

	p := &KafkaPublisher{
		client: client,
		topic:  topic,
		logger: logger,
		inbox:  make(chan Record, 256),
		done:   make(chan struct{}),
	}
	go p.run()
	return p, nil
}

func ensureTopic(ctx context.Context, client *kgo.Client, topic string) error {
	adm := kadm.NewClient(client)
	resp, err := adm.CreateTopic(ctx, 1, 1, nil, topic)
	if err != nil {
		return err
	}
	if resp.Err != nil && !errors.Is(resp.Err, kerr.TopicAlreadyExists) {
		return resp.Err
	}
	return nil
}

// Publish enqueues the record for the producer loop. Drops when the buffer
// is full rather than blocking the request path.
func (p *KafkaPublisher) Publish(ctx context.Context, rec Record) {
	select {
	case p.inbox <- rec:
	default:
		p.logger.WarnContext(ctx, "activity publish buffer full, dropping record",
			"kind", string(rec.Kind),
			"record_id", rec.ID.String(),
		)
	}
}

func (p *KafkaPublisher) run() {
	defer close(p.done)
	for rec := range p.inbox {
		p.produce(rec)
	}
}

func (p *KafkaPublisher) produce(rec Record) {
	wire := wireRecord{
		ID:          rec.ID.String(),
		ActorUserID: rec.ActorUserID.String(),
		ActorName:   rec.ActorName,
		Kind:        string(rec.Kind),
		Description: rec.Description,
		Timestamp:   rec.Timestamp,
	}
	if rec.Metadata.DocumentID != nil {
		wire.DocumentID = rec.Metadata.DocumentID.String()
	}
	wire.DocumentName = rec.Metadata.DocumentName
	if rec.Metadata.PropertyID != nil {
		wire.PropertyID = rec.Metadata.PropertyID.String()
	}
	wire.PropertyTitle = rec.Metadata.PropertyTitle

	payload, err := json.Marshal(wire)
	if err != nil {
		p.logger.Error("marshal activity record", "error", err, "record_id", wire.ID)
		return
	}

	// Key by actor so one user's records stay ordered per partition.
	record := &kgo.Record{
		Topic: p.topic,
		Key:   []byte(wire.ActorUserID),
		Value: payload,
	}
	p.client.Produce(context.Background(), record, func(_ *kgo.Record, err error) {
		if err != nil {
			p.logger.Error("produce activity record", "error", err, "record_id", wire.ID)
		}
	})
}

// Close drains the inbox, flushes in-flight produces, and releases the
// client.
func (p *KafkaPublisher) Close() {
	close(p.inbox)
	<-p.done
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	_ = p.client.Flush(ctx)
	p.client.Close()
}
