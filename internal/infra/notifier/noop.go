package notifier

import "context"

// NoOp is a no-operation implementation of the Notifier interface. It is
// used when no webhook is configured so callers never need a nil check.
type NoOp struct{}

// NewNoOp creates a new NoOp notifier.
func NewNoOp() *NoOp {
	return &NoOp{}
}

// NotifyDigest does nothing and returns nil immediately.
func (n *NoOp) NotifyDigest(ctx context.Context, digest *Digest) error {
	return nil
}

// IsEnabled always returns false.
func (n *NoOp) IsEnabled() bool {
	return false
}
