package budget

import (
	"context"
	"time"
)

// Budget tracks the wall-clock allowance of one pipeline run. Stage and
// task contexts derived from it never extend past the overall deadline,
// so a slow early stage shrinks the room left for later ones.
type Budget struct {
	caps     Caps
	deadline time.Time
}

// Start derives the run context bounded by the overall timeout and
// returns the budget tracking it. If the parent context already has an
// earlier deadline, that deadline wins.
func Start(ctx context.Context, caps Caps) (*Budget, context.Context, context.CancelFunc) {
	runCtx, cancel := context.WithTimeout(ctx, caps.OverallTimeout)
	deadline, _ := runCtx.Deadline()
	return &Budget{caps: caps, deadline: deadline}, runCtx, cancel
}

// Caps returns the limits this run operates under.
func (b *Budget) Caps() Caps {
	return b.caps
}

// Remaining reports how much of the overall allowance is left,
// floored at zero.
func (b *Budget) Remaining() time.Duration {
	r := time.Until(b.deadline)
	if r < 0 {
		return 0
	}
	return r
}

// Exhausted reports whether the overall allowance has run out.
func (b *Budget) Exhausted() bool {
	return b.Remaining() == 0
}

// StageContext returns a child context whose timeout is the smaller of
// the stage default and the remaining overall allowance. The same rule
// applies to per-task deadlines; pass the task default instead.
func (b *Budget) StageContext(parent context.Context, stageDefault time.Duration) (context.Context, context.CancelFunc) {
	d := stageDefault
	if r := b.Remaining(); r < d {
		d = r
	}
	return context.WithTimeout(parent, d)
}
