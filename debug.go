package matrixview

import (
	"time"

	log "github.com/sirupsen/logrus"
)

const debugLogInterval = 60 // frames

// debugStats accumulates per-frame timing and cell counts. Only populated
// when the viewer runs with Debug set.
type debugStats struct {
	frames       int
	buildTime    time.Duration
	drawTime     time.Duration
	cellCount    int
	visibleCount int
}

func (s *debugStats) record(build, draw time.Duration, cells, visible int) {
	s.frames++
	s.buildTime += build
	s.drawTime += draw
	s.cellCount = cells
	s.visibleCount = visible
}

// flush logs averages every debugLogInterval frames and resets the counters.
// Returns true when a line was logged.
func (s *debugStats) flush(logger *log.Entry, ingest IngestStats) bool {
	if s.frames < debugLogInterval {
		return false
	}
	n := time.Duration(s.frames)
	logger.WithFields(log.Fields{
		"build":    s.buildTime / n,
		"draw":     s.drawTime / n,
		"cells":    s.cellCount,
		"visible":  s.visibleCount,
		"received": ingest.Received,
		"dropped":  ingest.Dropped,
	}).Debug("frame stats")
	*s = debugStats{}
	return true
}
