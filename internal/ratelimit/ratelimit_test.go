package ratelimit

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestUTCDayKey(t *testing.T) {
	key := utcDayKey()
	parsed, err := time.Parse("2006-01-02", key)
	assert.NoError(t, err)
	assert.Equal(t, time.Now().UTC().Truncate(24*time.Hour).Format("2006-01-02"), parsed.Format("2006-01-02"))
}

// The daily quota resets at UTC midnight, so the expiry must land exactly on
// the next midnight boundary regardless of local timezone.
func TestNextUTCMidnight(t *testing.T) {
	m := nextUTCMidnight()
	assert.True(t, m.After(time.Now().UTC()))
	assert.Equal(t, 0, m.Hour())
	assert.Equal(t, 0, m.Minute())
	assert.Equal(t, 0, m.Second())
	assert.Equal(t, time.UTC, m.Location())
	assert.LessOrEqual(t, time.Until(m), 24*time.Hour)
}
