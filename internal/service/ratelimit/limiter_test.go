package ratelimit

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestAllow(t *testing.T) {
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	l := New(2, 1)
	l.now = func() time.Time { return now }

	assert.True(t, l.Allow("a"))
	assert.True(t, l.Allow("a"))
	assert.False(t, l.Allow("a"))
	assert.True(t, l.Allow("b"), "keys are independent")

	now = now.Add(500 * time.Millisecond)
	assert.False(t, l.Allow("a"))
	now = now.Add(500 * time.Millisecond)
	assert.True(t, l.Allow("a"))

	now = now.Add(time.Hour)
	assert.True(t, l.Allow("a"))
	assert.True(t, l.Allow("a"))
	assert.False(t, l.Allow("a"), "refill is capped at burst")
}

func TestPrune(t *testing.T) {
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	l := New(4, 2)
	l.now = func() time.Time { return now }

	l.Allow("a")
	now = now.Add(time.Second)
	l.Allow("b")
	now = now.Add(time.Second)

	assert.Equal(t, 1, l.Prune())
	assert.Len(t, l.m, 1)
}
