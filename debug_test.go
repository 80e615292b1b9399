package matrixview

import (
	"testing"
	"time"

	log "github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDebugStatsFlush(t *testing.T) {
	logger, hook := test.NewNullLogger()
	logger.SetLevel(log.DebugLevel)
	entry := log.NewEntry(logger)

	var s debugStats
	for i := 0; i < debugLogInterval-1; i++ {
		s.record(2*time.Millisecond, 4*time.Millisecond, 100, 40)
	}
	assert.False(t, s.flush(entry, IngestStats{}))
	assert.Empty(t, hook.AllEntries())

	s.record(2*time.Millisecond, 4*time.Millisecond, 100, 25)
	require.True(t, s.flush(entry, IngestStats{Received: 7, Dropped: 1}))

	last := hook.LastEntry()
	require.NotNil(t, last)
	assert.Equal(t, log.DebugLevel, last.Level)
	assert.Equal(t, 2*time.Millisecond, last.Data["build"])
	assert.Equal(t, 4*time.Millisecond, last.Data["draw"])
	assert.Equal(t, 25, last.Data["visible"])
	assert.Equal(t, uint64(7), last.Data["received"])
	assert.Zero(t, s.frames, "counters reset after flush")
}
