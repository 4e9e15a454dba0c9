package media

import (
	"context"

	"github.com/google/uuid"
)

// Ledger decides whether a physical file is still in use.
type Ledger struct {
	refs ReferenceChecker
}

// NewLedger returns a ledger reading from refs.
func NewLedger(refs ReferenceChecker) *Ledger {
	return &Ledger{refs: refs}
}

// IsReferenced reports whether any row other than excluding has path as its
// path or thumb_path. It reads the store on every call.
func (l *Ledger) IsReferenced(ctx context.Context, path string, excluding uuid.UUID) (bool, error) {
	if path == "" {
		return false, nil
	}
	return l.refs.ReferencesPath(ctx, path, excluding)
}
