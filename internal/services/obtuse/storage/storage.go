// Package storage defines persistence contracts for obtusify call history.
package storage

import (
	"context"
	"errors"
	"time"

	"github.com/louisbranch/obtuse.units/internal/services/obtuse/domain/catalog"
)

var (
	// ErrNotFound indicates a call record that does not exist.
	ErrNotFound = errors.New("record not found")
	// ErrInvalidFilter indicates a history filter that does not parse.
	ErrInvalidFilter = errors.New("invalid filter")
)

// OutcomeOK is the Code recorded for a successful call.
const OutcomeOK = "OK"

// CallRecord is one durable obtusify call: everything needed to replay it
// and what it produced.
type CallRecord struct {
	ID         int64
	Seed       int64
	SeedSource string
	// Surface is the quantity as the caller wrote it, empty for numeric input.
	Surface       string
	Value         float64
	Dims          catalog.Dimensions
	Loops         int
	MinValueOrder *int
	MaxValueOrder *int
	MaxPrefixes   *int
	Spread        *float64
	// Text is the rendered output; empty when the call failed.
	Text string
	// Code is OutcomeOK or the error code the call failed with.
	Code      string
	CreatedAt time.Time
}

// CallQuery selects a page of call records.
type CallQuery struct {
	// Filter is an AIP-160 expression over the history fields.
	Filter string
	Limit  int
	Offset int
	// OldestFirst reverses the default newest-first order.
	OldestFirst bool
}

// HistoryStore persists obtusify call records.
type HistoryStore interface {
	RecordCall(ctx context.Context, call CallRecord) (int64, error)
	GetCall(ctx context.Context, id int64) (CallRecord, error)
	ListCalls(ctx context.Context, query CallQuery) ([]CallRecord, error)
}
