package statistics

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestTruncateDay(t *testing.T) {
	loc := time.FixedZone("MSK", 3*3600)
	in := time.Date(2026, 8, 31, 23, 30, 0, 0, loc)

	got := truncateDay(in)
	assert.Equal(t, time.Date(2026, 8, 31, 0, 0, 0, 0, time.UTC), got)
	assert.Equal(t, time.UTC, got.Location())
}
