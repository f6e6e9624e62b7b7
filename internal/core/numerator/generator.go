// Package numerator provides domain contracts for document auto-numbering.
// Implementations live in the infrastructure layer.
package numerator

import (
	"context"
	"time"
)

// Generator generates sequential document numbers.
// This is the domain contract - implementations live in infrastructure layer.
//
// Numbers are issued from a database-backed counter (UPSERT ... RETURNING),
// never from a count(*) read, so concurrent creations can not collide.
type Generator interface {
	// NextNumber generates the next document number for the config and
	// business date, e.g. MD-20250115-0042 or EXP-00042.
	NextNumber(ctx context.Context, cfg Config, period time.Time) (string, error)

	// SetNextNumber sets the next counter value (for migration purposes).
	SetNextNumber(ctx context.Context, cfg Config, period time.Time, value int64) error
}
