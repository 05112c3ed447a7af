package amqp

import (
	"encoding/json"
	"fmt"
	"time"
)

// Message kinds routed over the mirror queue.
const (
	KindEntrySync   = "entry_sync"
	KindEntryDelete = "entry_delete"
)

// Envelope is the wire frame for mirror messages. Payloads are lightweight:
// they carry the entry date and the worker fetches the full row from the
// ledger store when it needs one.
type Envelope struct {
	Kind      string    `json:"kind"`
	Date      string    `json:"date"`
	Timestamp time.Time `json:"timestamp"`
}

// EntrySyncMessage asks the worker to mirror the entry for a date.
type EntrySyncMessage struct {
	Date      string
	Timestamp time.Time
}

// EntryDeleteMessage asks the worker to remove the mirrored row for a date.
type EntryDeleteMessage struct {
	Date      string
	Timestamp time.Time
}

// NewSyncEnvelope creates a sync envelope for a ledger date.
func NewSyncEnvelope(date string) Envelope {
	return Envelope{Kind: KindEntrySync, Date: date, Timestamp: time.Now()}
}

// NewDeleteEnvelope creates a delete envelope for a ledger date.
func NewDeleteEnvelope(date string) Envelope {
	return Envelope{Kind: KindEntryDelete, Date: date, Timestamp: time.Now()}
}

// ToJSON converts the envelope to JSON bytes.
func (e Envelope) ToJSON() ([]byte, error) {
	return json.Marshal(e)
}

// EnvelopeFromJSON parses an envelope and validates its kind.
func EnvelopeFromJSON(data []byte) (Envelope, error) {
	var e Envelope
	if err := json.Unmarshal(data, &e); err != nil {
		return Envelope{}, err
	}
	switch e.Kind {
	case KindEntrySync, KindEntryDelete:
	default:
		return Envelope{}, fmt.Errorf("unknown message kind %q", e.Kind)
	}
	if e.Date == "" {
		return Envelope{}, fmt.Errorf("message kind %q missing date", e.Kind)
	}
	return e, nil
}
