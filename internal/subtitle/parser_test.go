package subtitle

import (
	"strings"
	"testing"
)

func TestParseSRT(t *testing.T) {
	content := `1
00:00:01,000 --> 00:00:04,000
Hello, world!

2
00:00:05,500 --> 00:00:08,200
This is a test.
With multiple lines.

3
00:00:10,000 --> 00:00:12,500
Final subtitle.`

	doc, err := Parse(strings.NewReader(content), FormatSRT)
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	if len(doc.Cues) != 3 {
		t.Fatalf("expected 3 cues, got %d", len(doc.Cues))
	}

	first := doc.Cues[0]
	if first.Start != 1 || first.End != 4 {
		t.Errorf("cue 0: expected 1-4s, got %v-%v", first.Start, first.End)
	}
	if len(first.HeaderLines) != 1 || first.HeaderLines[0] != "1" {
		t.Errorf("cue 0: expected header [1], got %q", first.HeaderLines)
	}
	if first.TimeLine != "00:00:01,000 --> 00:00:04,000" {
		t.Errorf("cue 0: unexpected time line %q", first.TimeLine)
	}

	second := doc.Cues[1]
	if second.Start != 5.5 || second.End != 8.2 {
		t.Errorf("cue 1: expected 5.5-8.2s, got %v-%v", second.Start, second.End)
	}
	wantText := []string{"This is a test.", "With multiple lines."}
	if strings.Join(second.TextLines, "\n") != strings.Join(wantText, "\n") {
		t.Errorf("cue 1: expected %q, got %q", wantText, second.TextLines)
	}

	// no trailing blank line
	if doc.Cues[2].TextLines[0] != "Final subtitle." {
		t.Errorf("cue 2: expected final cue text, got %q", doc.Cues[2].TextLines)
	}
}

func TestParseVTT(t *testing.T) {
	content := "\ufeffWEBVTT - Sample\nKind: captions\n\n" +
		"NOTE this is a comment\n\n" +
		"1\n00:00:01.000 --> 00:00:04.000 line:90%\nHello, world!\n\n" +
		"00:05.500 --> 00:08.200\nShort form.\n\n" +
		"1:00:10.000 --> 1:00:12.500\nOne-digit hours.\n"

	doc, err := Parse(strings.NewReader(content), FormatVTT)
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	if doc.Header != "WEBVTT - Sample" {
		t.Errorf("expected header to be kept, got %q", doc.Header)
	}
	if len(doc.Preamble) != 1 || doc.Preamble[0] != "Kind: captions" {
		t.Errorf("expected preamble [Kind: captions], got %q", doc.Preamble)
	}
	if len(doc.Cues) != 3 {
		t.Fatalf("expected 3 cues, got %d", len(doc.Cues))
	}
	if len(doc.Cues[0].HeaderLines) != 1 || doc.Cues[0].HeaderLines[0] != "1" {
		t.Errorf("cue 0: NOTE block leaked into header: %q", doc.Cues[0].HeaderLines)
	}
	if doc.Cues[1].Start != 5.5 || doc.Cues[1].End != 8.2 {
		t.Errorf("cue 1: expected 5.5-8.2s, got %v-%v", doc.Cues[1].Start, doc.Cues[1].End)
	}
	if doc.Cues[2].Start != 3610 {
		t.Errorf("cue 2: expected 3610s, got %v", doc.Cues[2].Start)
	}
}

func TestParseRecoversFromHeaderWithoutTime(t *testing.T) {
	content := `1
orphan identifier

2
00:00:02,000 --> 00:00:03,000
Survivor.
`
	var warnings int
	doc, err := Parse(
		strings.NewReader(content),
		FormatSRT,
		WithParseWarn(func(string, ...interface{}) { warnings++ }),
	)
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	if len(doc.Cues) != 1 {
		t.Fatalf("expected 1 cue, got %d", len(doc.Cues))
	}
	if got := doc.Cues[0].HeaderLines; len(got) != 1 || got[0] != "2" {
		t.Errorf("stale header lines carried over: %q", got)
	}
	if warnings != 1 {
		t.Errorf("expected 1 warning, got %d", warnings)
	}
}

func TestParseMultiLineHeader(t *testing.T) {
	content := `cue-7
region:left
00:00:02.000 --> 00:00:03.000
Text.
`
	doc, err := Parse(strings.NewReader(content), FormatVTT)
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	if len(doc.Cues) != 1 {
		t.Fatalf("expected 1 cue, got %d", len(doc.Cues))
	}
	want := []string{"cue-7", "region:left"}
	got := doc.Cues[0].HeaderLines
	if len(got) != 2 || got[0] != want[0] || got[1] != want[1] {
		t.Errorf("expected header %q, got %q", want, got)
	}
}

func TestParseIgnoresTrailingCueWithoutText(t *testing.T) {
	content := "1\n00:00:01,000 --> 00:00:02,000\nText.\n\n2\n00:00:03,000 --> 00:00:04,000"
	doc, err := Parse(strings.NewReader(content), FormatSRT)
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	if len(doc.Cues) != 1 {
		t.Errorf("expected 1 cue, got %d", len(doc.Cues))
	}
}

func TestParseStates(t *testing.T) {
	p := &parser{doc: &Document{Format: FormatSRT}}

	steps := []struct {
		line string
		want parseState
	}{
		{"", stateSeekingHeaderOrTime},
		{"12", stateSeekingTime},
		{"position:10%", stateSeekingTime},
		{"00:00:01,000 --> 00:00:02,000", stateInText},
		{"text", stateInText},
		{"", stateSeekingHeaderOrTime},
		{"00:00:03,000 --> 00:00:04,000", stateInText},
	}
	for i, step := range steps {
		if err := p.step(step.line); err != nil {
			t.Fatalf("step %d: unexpected error: %v", i, err)
		}
		if p.state != step.want {
			t.Fatalf("step %d (%q): state %s, want %s", i, step.line, p.state, step.want)
		}
	}
	if len(p.doc.Cues) != 1 {
		t.Errorf("expected 1 closed cue, got %d", len(p.doc.Cues))
	}
}
