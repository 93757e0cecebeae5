package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/SscSPs/family_bank/internal/core/domain"
	portssvc "github.com/SscSPs/family_bank/internal/core/ports/services"
	"github.com/segmentio/kafka-go"
)

// EventTypeEntryCommitted is the type of every event this package publishes.
const EventTypeEntryCommitted = "ledger.entry_committed"

// DefaultWriteTimeout bounds one publish.
const DefaultWriteTimeout = 5 * time.Second

// EntryEvent is the JSON payload announcing a committed ledger entry.
type EntryEvent struct {
	Type         string           `json:"type"`
	EntryID      string           `json:"transactionId"`
	AccountID    string           `json:"userId"`
	Kind         domain.EntryKind `json:"entryType"`
	Amount       string           `json:"amount"`
	BalanceAfter string           `json:"balanceAfter"`
	Description  string           `json:"description"`
	InitiatedBy  string           `json:"initiatedBy"`
	Timestamp    time.Time        `json:"timestamp"`
}

// NewEntryEvent builds the event for entry.
func NewEntryEvent(entry domain.LedgerEntry) EntryEvent {
	return EntryEvent{
		Type:         EventTypeEntryCommitted,
		EntryID:      entry.EntryID,
		AccountID:    entry.AccountID,
		Kind:         entry.Kind,
		Amount:       entry.Amount.StringFixed(2),
		BalanceAfter: entry.BalanceAfter.StringFixed(2),
		Description:  entry.Description,
		InitiatedBy:  entry.InitiatedBy,
		Timestamp:    entry.Timestamp,
	}
}

// messageWriter is the subset of *kafka.Writer the publisher uses.
type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// Publisher writes ledger entry events to one topic. Messages are keyed by
// account, so the entries of an account stay in order within a partition.
type Publisher struct {
	writer  messageWriter
	timeout time.Duration
}

// NewPublisher creates a publisher writing to topic on brokers.
func NewPublisher(brokers []string, topic string) *Publisher {
	return newPublisher(&kafka.Writer{
		Addr:                   kafka.TCP(brokers...),
		Topic:                  topic,
		Balancer:               &kafka.Hash{},
		RequiredAcks:           kafka.RequireAll,
		AllowAutoTopicCreation: true,
	})
}

func newPublisher(w messageWriter) *Publisher {
	return &Publisher{writer: w, timeout: DefaultWriteTimeout}
}

var _ portssvc.EntryPublisher = (*Publisher)(nil)

// PublishEntry writes the event for entry. The write is detached from ctx
// cancellation so that a finished request does not abort it, but bounded by
// the publisher's own timeout.
func (p *Publisher) PublishEntry(ctx context.Context, entry domain.LedgerEntry) error {
	data, err := json.Marshal(NewEntryEvent(entry))
	if err != nil {
		return fmt.Errorf("failed to encode ledger event: %w", err)
	}

	wctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), p.timeout)
	defer cancel()

	err = p.writer.WriteMessages(wctx, kafka.Message{
		Key:   []byte(entry.AccountID),
		Value: data,
		Time:  entry.Timestamp,
		Headers: []kafka.Header{
			{Key: "type", Value: []byte(EventTypeEntryCommitted)},
		},
	})
	if err != nil {
		return fmt.Errorf("failed to publish entry %s: %w", entry.EntryID, err)
	}
	return nil
}

// Close flushes pending writes and releases the writer.
func (p *Publisher) Close() error {
	return p.writer.Close()
}
