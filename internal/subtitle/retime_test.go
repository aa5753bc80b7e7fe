package subtitle

import (
	"bytes"
	"math"
	"strings"
	"testing"

	"github.com/mgpai22/splice/internal/timeline"
)

func TestMapCue(t *testing.T) {
	segments := []timeline.Segment{{Start: 0, End: 10}, {Start: 20, End: 30}}

	tests := []struct {
		name        string
		start, end  float64
		wantBelongs bool
		wantStart   float64
		wantEnd     float64
	}{
		{"truncated at the cut", 5, 15, true, 5, 10},
		{"inside removed gap", 12, 14, false, 0, 0},
		{"inside second segment", 22, 25, true, 12, 15},
		{"straddles the gap", 8, 23, true, 8, 13},
		{"starts in gap", 15, 21, true, 10, 11},
		{"past the end", 31, 35, false, 0, 0},
		{"covers everything", 0, 40, true, 0, 20},
		{"touches segment end only", 10, 12, false, 0, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := MapCue(tt.start, tt.end, segments)
			if m.Belongs != tt.wantBelongs {
				t.Fatalf("belongs = %v, want %v", m.Belongs, tt.wantBelongs)
			}
			if !m.Belongs {
				return
			}
			if math.Abs(m.Start-tt.wantStart) > 1e-9 || math.Abs(m.End-tt.wantEnd) > 1e-9 {
				t.Errorf("got %v-%v, want %v-%v", m.Start, m.End, tt.wantStart, tt.wantEnd)
			}
		})
	}
}

func TestMapCuePreservesDurationInsideSegment(t *testing.T) {
	segments := []timeline.Segment{
		{Start: 2, End: 5},
		{Start: 7.5, End: 9},
		{Start: 12, End: 20},
	}
	m := MapCue(13.25, 15.75, segments)
	if !m.Belongs {
		t.Fatal("expected cue to belong")
	}
	wantStart := 3 + 1.5 + (13.25 - 12)
	if math.Abs(m.Start-wantStart) > 1e-9 {
		t.Errorf("start = %v, want %v", m.Start, wantStart)
	}
	if math.Abs((m.End-m.Start)-2.5) > 1e-9 {
		t.Errorf("duration = %v, want 2.5", m.End-m.Start)
	}
}

func TestMapCueStaysWithinKeptDuration(t *testing.T) {
	segments := []timeline.Segment{{Start: 1, End: 4}, {Start: 6, End: 7}, {Start: 9, End: 12}}
	total := timeline.TotalDuration(segments)
	for start := 0.0; start < 13; start += 0.25 {
		for _, length := range []float64{0.1, 1, 2.5, 6} {
			m := MapCue(start, start+length, segments)
			if !m.Belongs {
				continue
			}
			if m.Start < 0 || m.End > total+minCueDuration || m.End <= m.Start {
				t.Errorf("cue %v-%v mapped outside [0,%v]: %+v", start, start+length, total, m)
			}
		}
	}
}

func TestMapCueSkipsEmptySegments(t *testing.T) {
	segments := []timeline.Segment{{Start: 0, End: 5}, {Start: 7, End: 7}, {Start: 10, End: 20}}
	m := MapCue(12, 13, segments)
	if !m.Belongs {
		t.Fatal("expected cue to belong")
	}
	if m.Start != 7 || m.End != 8 {
		t.Errorf("got %v-%v, want 7-8", m.Start, m.End)
	}
	if m.Clamped {
		t.Error("unexpected clamp")
	}
}

func TestRetimeRoundTrip(t *testing.T) {
	content := `1
00:00:05,000 --> 00:00:15,000
Straddles the cut.

2
00:00:12,000 --> 00:00:14,000
Removed.

3
00:00:25,000 --> 00:00:27,250
Kept.
`
	doc, err := Parse(strings.NewReader(content), FormatSRT)
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}

	retimed, stats := Retime(doc, []timeline.Segment{{Start: 0, End: 10}, {Start: 20, End: 30}})
	if stats.Kept != 2 || stats.Dropped != 1 {
		t.Errorf("unexpected stats %+v", stats)
	}
	if len(doc.Cues) != 3 {
		t.Errorf("source document modified: %d cues", len(doc.Cues))
	}

	var buf bytes.Buffer
	if err := Write(&buf, retimed); err != nil {
		t.Fatalf("Write failed: %v", err)
	}

	want := `1
00:00:05,000 --> 00:00:10,000
Straddles the cut.

3
00:00:15,000 --> 00:00:17,250
Kept.
`
	if buf.String() != want {
		t.Errorf("unexpected output:\n%s\nwant:\n%s", buf.String(), want)
	}
}

func TestWriteVTTWithoutHeader(t *testing.T) {
	doc := &Document{
		Format: FormatVTT,
		Cues: []Cue{
			{Start: 1, End: 2.5, TextLines: []string{"Built in code."}},
		},
	}
	var buf bytes.Buffer
	if err := Write(&buf, doc); err != nil {
		t.Fatalf("Write failed: %v", err)
	}
	want := "WEBVTT\n\n00:00:01.000 --> 00:00:02.500\nBuilt in code.\n"
	if buf.String() != want {
		t.Errorf("got %q, want %q", buf.String(), want)
	}
}
