// Package audit provides the change-log contract for money-moving documents.
// The persisting implementation lives in the infrastructure layer.
package audit

import (
	"context"

	"mdcars/internal/core/id"
)

// Common actions.
const (
	ActionCreate = "create"
	ActionUpdate = "update"
	ActionDelete = "delete"
	ActionReturn = "return"
	ActionCancel = "cancel"
	ActionPay    = "pay"
)

// Entry describes one recorded change. Changes is marshaled to JSON by the
// recorder; large payloads are stored compressed.
type Entry struct {
	EntityType string
	EntityID   id.ID
	Action     string
	Actor      string
	Changes    any
}

// Recorder persists audit entries. Recording failures must not fail the
// business operation; implementations log and swallow their own errors.
type Recorder interface {
	Record(ctx context.Context, entry Entry)
}

// NopRecorder discards entries. Used in tests and when auditing is disabled.
type NopRecorder struct{}

// Record implements Recorder.
func (NopRecorder) Record(ctx context.Context, entry Entry) {}

var _ Recorder = NopRecorder{}
