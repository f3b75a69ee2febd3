package models

import (
	"encoding/json"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Kind names one type of study record. It is the first path segment of the
// API and the partition key of the record store.
type Kind string

const (
	KindWorker      Kind = "worker"
	KindApplication Kind = "application"
	KindProduct     Kind = "product"
	KindMixing      Kind = "mixing"
)

// Kinds lists every record kind in display order.
var Kinds = []Kind{KindWorker, KindApplication, KindProduct, KindMixing}

// ParseKind validates a kind taken from user input
func ParseKind(s string) (Kind, error) {
	k := Kind(strings.ToLower(strings.TrimSpace(s)))
	for _, known := range Kinds {
		if k == known {
			return k, nil
		}
	}
	return "", &ValidationError{
		Field:   "kind",
		Value:   s,
		Message: "unknown record kind",
	}
}

// Title returns the kind for display, e.g. "Worker".
func (k Kind) Title() string {
	if k == "" {
		return ""
	}
	return strings.ToUpper(string(k[:1])) + string(k[1:])
}

// StoredRecord is one row of the record store: a record serialized as JSON
// and keyed by kind and id.
type StoredRecord struct {
	Kind      Kind      `json:"kind" db:"kind"`
	ID        string    `json:"id" db:"id"`
	Payload   []byte    `json:"-" db:"payload"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

// Document is implemented by every study record.
type Document interface {
	RecordKind() Kind
	RecordID() uuid.UUID
	Label() string
	Stamp(t time.Time)
}

// Encode stamps a record with at and turns it into its stored form.
func Encode(doc Document, at time.Time) (*StoredRecord, error) {
	doc.Stamp(at)
	payload, err := json.Marshal(doc)
	if err != nil {
		return nil, err
	}
	return &StoredRecord{
		Kind:      doc.RecordKind(),
		ID:        doc.RecordID().String(),
		Payload:   payload,
		UpdatedAt: at,
	}, nil
}

// ValidationError represents a data validation error
type ValidationError struct {
	Field   string
	Value   string
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

// IsTransient returns false as validation errors are permanent
func (e *ValidationError) IsTransient() bool {
	return false
}
