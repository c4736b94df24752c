package budget

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultCaps_Valid(t *testing.T) {
	caps := DefaultCaps()
	require.NoError(t, caps.Validate())

	assert.Equal(t, 6, caps.MaxTotalFeeds)
	assert.Equal(t, 2, caps.MaxFeedsPerPublisher)
	assert.Equal(t, 3, caps.MaxConcurrentSummaries)
	assert.Equal(t, 50, caps.MinContentLength)
	assert.Equal(t, 8000, caps.MaxInputChars)
	assert.Equal(t, 60*time.Second, caps.OverallTimeout)
}

func TestCaps_Validate_Invalid(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Caps)
	}{
		{"zero overall timeout", func(c *Caps) { c.OverallTimeout = 0 }},
		{"negative stage timeout", func(c *Caps) { c.StageTimeout = -time.Second }},
		{"zero total feeds", func(c *Caps) { c.MaxTotalFeeds = 0 }},
		{"inverted article range", func(c *Caps) { c.MinMaxArticles = 30 }},
		{"default outside range", func(c *Caps) { c.DefaultMaxArticles = 100 }},
		{"zero semaphore", func(c *Caps) { c.MaxConcurrentSummaries = 0 }},
		{"input cap below content floor", func(c *Caps) { c.MaxInputChars = 10 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			caps := DefaultCaps()
			tt.mutate(&caps)
			assert.Error(t, caps.Validate())
		})
	}
}

func TestCaps_ClampMaxArticles(t *testing.T) {
	caps := DefaultCaps()

	tests := []struct {
		in       int
		expected int
	}{
		{0, 10},  // unspecified -> default
		{-5, 1},  // below floor
		{1, 1},   // floor
		{7, 7},   // in range
		{20, 20}, // ceiling
		{500, 20},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.expected, caps.ClampMaxArticles(tt.in))
	}
}

func TestCaps_ClampEntriesPerFeed(t *testing.T) {
	caps := DefaultCaps()

	assert.Equal(t, 20, caps.ClampEntriesPerFeed(0))
	assert.Equal(t, 20, caps.ClampEntriesPerFeed(-1))
	assert.Equal(t, 50, caps.ClampEntriesPerFeed(50))
	assert.Equal(t, 100, caps.ClampEntriesPerFeed(100))
	assert.Equal(t, 100, caps.ClampEntriesPerFeed(9999))
}

func TestBudget_StageContextShrinksToRemaining(t *testing.T) {
	caps := DefaultCaps()
	caps.OverallTimeout = 100 * time.Millisecond

	b, runCtx, cancel := Start(context.Background(), caps)
	defer cancel()

	// A stage default far larger than the overall allowance is cut down.
	stageCtx, stageCancel := b.StageContext(runCtx, 10*time.Second)
	defer stageCancel()

	stageDeadline, ok := stageCtx.Deadline()
	require.True(t, ok)
	runDeadline, ok := runCtx.Deadline()
	require.True(t, ok)
	assert.False(t, stageDeadline.After(runDeadline))
}

func TestBudget_StageContextKeepsShortDefault(t *testing.T) {
	caps := DefaultCaps()

	b, runCtx, cancel := Start(context.Background(), caps)
	defer cancel()

	stageCtx, stageCancel := b.StageContext(runCtx, 50*time.Millisecond)
	defer stageCancel()

	deadline, ok := stageCtx.Deadline()
	require.True(t, ok)
	assert.WithinDuration(t, time.Now().Add(50*time.Millisecond), deadline, 30*time.Millisecond)
}

func TestBudget_ParentDeadlineWins(t *testing.T) {
	parent, parentCancel := context.WithTimeout(context.Background(), 30*time.Millisecond)
	defer parentCancel()

	b, runCtx, cancel := Start(parent, DefaultCaps())
	defer cancel()

	// The run inherits the tighter parent deadline, not the 60s default.
	assert.LessOrEqual(t, b.Remaining(), 30*time.Millisecond)

	deadline, ok := runCtx.Deadline()
	require.True(t, ok)
	assert.WithinDuration(t, time.Now().Add(30*time.Millisecond), deadline, 20*time.Millisecond)
}

func TestBudget_RemainingFloorsAtZero(t *testing.T) {
	caps := DefaultCaps()
	caps.OverallTimeout = 10 * time.Millisecond

	b, _, cancel := Start(context.Background(), caps)
	defer cancel()

	time.Sleep(20 * time.Millisecond)
	assert.Equal(t, time.Duration(0), b.Remaining())
	assert.True(t, b.Exhausted())
}
