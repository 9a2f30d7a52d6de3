package service

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestNextUTCMidnight(t *testing.T) {
	at := time.Date(2026, 8, 26, 15, 4, 5, 0, time.UTC)
	assert.Equal(t, time.Date(2026, 8, 27, 0, 0, 0, 0, time.UTC), nextUTCMidnight(at))

	// Just after midnight still rolls to the following day.
	at = time.Date(2026, 8, 26, 0, 0, 0, 1, time.UTC)
	assert.Equal(t, time.Date(2026, 8, 27, 0, 0, 0, 0, time.UTC), nextUTCMidnight(at))

	// Local times convert to UTC before the day boundary is computed.
	jst := time.FixedZone("JST", 9*3600)
	at = time.Date(2026, 8, 27, 3, 0, 0, 0, jst) // 18:00 UTC on the 26th
	assert.Equal(t, time.Date(2026, 8, 27, 0, 0, 0, 0, time.UTC), nextUTCMidnight(at))
}
