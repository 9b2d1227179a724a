package intake

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/Fluxline-Pro/Fluxline-pro-website-sub002/pkg/domain"
)

func TestTransientCache_EvictsLeastRecentlyUsed(t *testing.T) {
	c := newTransientCache(2)
	failed := transient{submission: domain.SubmissionState{Status: domain.SubmissionFailed, Attempts: 1}}

	c.put("a", failed)
	c.put("b", failed)
	_, ok := c.get("a")
	assert.True(t, ok)

	c.put("c", failed)
	assert.Equal(t, 2, c.size())
	_, ok = c.get("b")
	assert.False(t, ok, "b was the least recently used")
	_, ok = c.get("a")
	assert.True(t, ok)
}

func TestTransientCache_IdleIsForgotten(t *testing.T) {
	c := newTransientCache(0)
	c.put("a", transient{submission: domain.SubmissionState{Status: domain.SubmissionSucceeded, SubmissionID: "x"}})
	got, ok := c.get("a")
	assert.True(t, ok)
	assert.Equal(t, "x", got.submission.SubmissionID)

	c.put("a", transient{})
	assert.Equal(t, 0, c.size())
}
