package subtitle

import (
	"math"
	"testing"
)

func TestFormatTimestamp(t *testing.T) {
	tests := []struct {
		seconds float64
		format  Format
		want    string
	}{
		{0, FormatVTT, "00:00:00.000"},
		{5, FormatSRT, "00:00:05,000"},
		{61.5, FormatVTT, "00:01:01.500"},
		{3723.042, FormatSRT, "01:02:03,042"},
		{10.0004, FormatVTT, "00:00:10.000"},
		{10.0006, FormatVTT, "00:00:10.001"},
		{59.9996, FormatVTT, "00:01:00.000"},
		{3599.9999, FormatSRT, "01:00:00,000"},
		{-1, FormatVTT, "00:00:00.000"},
		{math.NaN(), FormatSRT, "00:00:00,000"},
		{100 * 3600, FormatVTT, "100:00:00.000"},
	}
	for _, tt := range tests {
		got := FormatTimestamp(tt.seconds, tt.format)
		if got != tt.want {
			t.Errorf("FormatTimestamp(%v, %s) = %q, want %q", tt.seconds, tt.format, got, tt.want)
		}
	}
}

func TestParseTimestamp(t *testing.T) {
	tests := []struct {
		in      string
		want    float64
		wantErr bool
	}{
		{"00:00:01.000", 1, false},
		{"00:00:01,250", 1.25, false},
		{"1:02:03.004", 3723.004, false},
		{"02:03.5", 123.5, false},
		{"12:34", 754, false},
		{"bogus", 0, true},
		{"aa:00:01.000", 0, true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseTimestamp(tt.in)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseTimestamp(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			}
			if math.Abs(got-tt.want) > 1e-9 {
				t.Errorf("ParseTimestamp(%q) = %v, want %v", tt.in, got, tt.want)
			}
		})
	}
}

func TestTimestampRoundTrip(t *testing.T) {
	for ms := int64(0); ms < 7_200_000; ms += 7919 {
		for _, f := range []Format{FormatSRT, FormatVTT} {
			ts := FormatTimestamp(float64(ms)/1000, f)
			back, err := ParseTimestamp(ts)
			if err != nil {
				t.Fatalf("ParseTimestamp(%q): %v", ts, err)
			}
			if again := FormatTimestamp(back, f); again != ts {
				t.Fatalf("round trip drifted: %q -> %v -> %q", ts, back, again)
			}
		}
	}
}

func TestRewriteTimeLine(t *testing.T) {
	tests := []struct {
		name     string
		template string
		format   Format
		want     string
	}{
		{
			name:     "srt",
			template: "00:00:05,000 --> 00:00:15,000",
			format:   FormatSRT,
			want:     "00:00:01,500 --> 00:00:02,000",
		},
		{
			name:     "vtt settings kept",
			template: "00:05.000 --> 00:15.000 position:10% align:start",
			format:   FormatVTT,
			want:     "00:00:01.500 --> 00:00:02.000 position:10% align:start",
		},
		{
			name:     "leading whitespace kept",
			template: "  0:00:05.000  -->  0:00:15.000",
			format:   FormatVTT,
			want:     "  00:00:01.500 --> 00:00:02.000",
		},
		{
			name:     "no template",
			template: "",
			format:   FormatSRT,
			want:     "00:00:01,500 --> 00:00:02,000",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := rewriteTimeLine(tt.template, 1.5, 2, tt.format)
			if got != tt.want {
				t.Errorf("got %q, want %q", got, tt.want)
			}
		})
	}
}
