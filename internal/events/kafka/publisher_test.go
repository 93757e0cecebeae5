package kafka

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/SscSPs/family_bank/internal/core/domain"
	"github.com/segmentio/kafka-go"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingWriter struct {
	msgs   []kafka.Message
	err    error
	closed bool
}

func (w *recordingWriter) WriteMessages(ctx context.Context, msgs ...kafka.Message) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if w.err != nil {
		return w.err
	}
	w.msgs = append(w.msgs, msgs...)
	return nil
}

func (w *recordingWriter) Close() error {
	w.closed = true
	return nil
}

func testEntry() domain.LedgerEntry {
	return domain.LedgerEntry{
		EntryID:      "entry-1",
		AccountID:    "child-1",
		Amount:       decimal.RequireFromString("12.5"),
		Kind:         domain.EntryDeposit,
		Description:  "Pocket money",
		BalanceAfter: decimal.RequireFromString("40"),
		InitiatedBy:  "parent-1",
		Timestamp:    time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC),
	}
}

func TestPublishEntryWritesKeyedEvent(t *testing.T) {
	w := &recordingWriter{}
	p := newPublisher(w)

	require.NoError(t, p.PublishEntry(context.Background(), testEntry()))
	require.Len(t, w.msgs, 1)

	msg := w.msgs[0]
	assert.Equal(t, "child-1", string(msg.Key))

	var event EntryEvent
	require.NoError(t, json.Unmarshal(msg.Value, &event))
	assert.Equal(t, EventTypeEntryCommitted, event.Type)
	assert.Equal(t, "entry-1", event.EntryID)
	assert.Equal(t, "12.50", event.Amount)
	assert.Equal(t, "40.00", event.BalanceAfter)
	assert.Equal(t, domain.EntryDeposit, event.Kind)
}

func TestPublishEntryIgnoresCallerCancellation(t *testing.T) {
	w := &recordingWriter{}
	p := newPublisher(w)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	require.NoError(t, p.PublishEntry(ctx, testEntry()))
	assert.Len(t, w.msgs, 1)
}

func TestPublishEntryWrapsWriterError(t *testing.T) {
	boom := errors.New("broker down")
	p := newPublisher(&recordingWriter{err: boom})

	err := p.PublishEntry(context.Background(), testEntry())
	assert.ErrorIs(t, err, boom)
	assert.Contains(t, err.Error(), "entry-1")
}

func TestCloseClosesWriter(t *testing.T) {
	w := &recordingWriter{}
	require.NoError(t, newPublisher(w).Close())
	assert.True(t, w.closed)
}
