package amqp

import (
	"errors"
	"fmt"
	"testing"
	"time"
)

func TestExponentialBackoff(t *testing.T) {
	tests := []struct {
		attempt  int
		expected time.Duration
	}{
		{0, 1 * time.Second},
		{1, 2 * time.Second},
		{2, 4 * time.Second},
		{3, 8 * time.Second},
		{4, 16 * time.Second},
		{5, 30 * time.Second},  // capped at 30s
		{10, 30 * time.Second}, // capped at 30s
		{40, 30 * time.Second}, // shift overflow stays capped
	}

	for _, tt := range tests {
		t.Run(fmt.Sprintf("attempt_%d", tt.attempt), func(t *testing.T) {
			result := exponentialBackoff(tt.attempt)
			if result != tt.expected {
				t.Errorf("exponentialBackoff(%d) = %v, want %v", tt.attempt, result, tt.expected)
			}
		})
	}
}

func TestIsConnectionError(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected bool
	}{
		{
			name:     "nil error",
			err:      nil,
			expected: false,
		},
		{
			name:     "connection refused",
			err:      errors.New("connection refused"),
			expected: true,
		},
		{
			name:     "closed connection",
			err:      errors.New("connection closed"),
			expected: true,
		},
		{
			name:     "unexpected EOF",
			err:      errors.New("unexpected EOF"),
			expected: true,
		},
		{
			name:     "broken pipe",
			err:      errors.New("broken pipe"),
			expected: true,
		},
		{
			name:     "closed network connection",
			err:      errors.New("use of closed network connection"),
			expected: true,
		},
		{
			name:     "consume loop channel closed",
			err:      errors.New("message channel closed"),
			expected: true,
		},
		{
			name:     "handler error",
			err:      errors.New("append to sheet: quota exceeded"),
			expected: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := isConnectionError(tt.err); got != tt.expected {
				t.Errorf("isConnectionError(%v) = %v, want %v", tt.err, got, tt.expected)
			}
		})
	}
}

func TestEnvelopeFromJSON(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr bool
	}{
		{
			name:  "valid sync message",
			input: `{"kind":"entry_sync","date":"2025-02-01","timestamp":"2025-02-01T10:00:00Z"}`,
		},
		{
			name:  "valid delete message",
			input: `{"kind":"entry_delete","date":"2025-02-01","timestamp":"2025-02-01T10:00:00Z"}`,
		},
		{
			name:    "unknown kind",
			input:   `{"kind":"entry_update","date":"2025-02-01"}`,
			wantErr: true,
		},
		{
			name:    "missing date",
			input:   `{"kind":"entry_sync"}`,
			wantErr: true,
		},
		{
			name:    "not json",
			input:   `date=2025-02-01`,
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := EnvelopeFromJSON([]byte(tt.input))
			if (err != nil) != tt.wantErr {
				t.Errorf("EnvelopeFromJSON() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}
