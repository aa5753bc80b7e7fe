package subtitle

import (
	"github.com/mgpai22/splice/internal/timeline"
)

// smallest duration given to a kept cue whose mapped range collapsed
const minCueDuration = 0.001

// where a cue lands on the concatenated timeline
type Mapping struct {
	Start   float64
	End     float64
	Belongs bool
	// end was pushed forward to keep the cue non-empty
	Clamped bool
}

// MapCue projects [start, end) from the source timeline onto the timeline
// formed by laying the keep-segments end to end. A cue spanning a removed
// gap starts where its first surviving part starts and ends where its last
// surviving part ends.
func MapCue(start, end float64, segments []timeline.Segment) Mapping {
	var (
		m          Mapping
		cumulative float64
	)
	for _, seg := range segments {
		segDuration := seg.Duration()
		if segDuration <= 0 {
			continue
		}

		overlapStart := max(start, seg.Start)
		overlapEnd := min(end, seg.End)
		if overlapStart < overlapEnd {
			if !m.Belongs {
				m.Start = cumulative + (overlapStart - seg.Start)
				m.Belongs = true
			}
			m.End = cumulative + (overlapEnd - seg.Start)
		}
		cumulative += segDuration
	}

	if m.Belongs && m.End <= m.Start {
		m.End = m.Start + minCueDuration
		m.Clamped = true
	}
	return m
}

// counts from a Retime pass
type Stats struct {
	Kept    int
	Dropped int
	Clamped int
}

// Retime returns a copy of doc holding only the cues that overlap a
// keep-segment, with their times moved onto the concatenated timeline.
func Retime(doc *Document, segments []timeline.Segment) (*Document, Stats) {
	out := &Document{
		Format:   doc.Format,
		Header:   doc.Header,
		Preamble: doc.Preamble,
		Cues:     make([]Cue, 0, len(doc.Cues)),
	}

	var stats Stats
	for _, cue := range doc.Cues {
		m := MapCue(cue.Start, cue.End, segments)
		if !m.Belongs {
			stats.Dropped++
			continue
		}
		if m.Clamped {
			stats.Clamped++
		}
		cue.Start = m.Start
		cue.End = m.End
		out.Cues = append(out.Cues, cue)
		stats.Kept++
	}
	return out, stats
}
