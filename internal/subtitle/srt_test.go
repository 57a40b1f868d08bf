package subtitle

import (
	"fmt"
	"strings"
	"testing"

	"github.com/lexsightllc/video-transcriber-app/internal/model"
)

func sampleSegments() []model.Segment {
	return []model.Segment{
		{Start: 0.0, End: 2.5, Text: "Hello there."},
		{Start: 2.5, End: 5.1, Text: "This is a test."},
		{Start: 6.0, End: 9.75, Text: "Goodbye."},
	}
}

func TestFormatSRT_Empty(t *testing.T) {
	if got := FormatSRT(nil); got != "" {
		t.Errorf("expected empty output for nil segments, got %q", got)
	}
	if got := FormatSRT([]model.Segment{}); got != "" {
		t.Errorf("expected empty output for empty segments, got %q", got)
	}
}

func TestFormatSRT_CueStructure(t *testing.T) {
	out := FormatSRT(sampleSegments())

	want := "1\n" +
		"00:00:00,000 --> 00:00:02,500\n" +
		"Hello there.\n\n" +
		"2\n" +
		"00:00:02,500 --> 00:00:05,100\n" +
		"This is a test.\n\n" +
		"3\n" +
		"00:00:06,000 --> 00:00:09,750\n" +
		"Goodbye.\n\n"

	if out != want {
		t.Errorf("unexpected SRT output:\ngot:\n%s\nwant:\n%s", out, want)
	}
}

func TestFormatSRT_Deterministic(t *testing.T) {
	segs := sampleSegments()
	first := FormatSRT(segs)
	second := FormatSRT(segs)
	if first != second {
		t.Error("identical segment sequences produced different output")
	}
}

func TestFormatSRT_CueNumbering(t *testing.T) {
	const n = 25
	segs := make([]model.Segment, 0, n)
	for i := 0; i < n; i++ {
		start := float64(i) * 2.0
		segs = append(segs, model.Segment{
			Start: start,
			End:   start + 1.5,
			Text:  fmt.Sprintf("segment %d", i),
		})
	}

	out := FormatSRT(segs)
	cues := strings.Split(strings.TrimSuffix(out, "\n\n"), "\n\n")
	if len(cues) != n {
		t.Fatalf("expected %d cues, got %d", n, len(cues))
	}
	for i, cue := range cues {
		lines := strings.SplitN(cue, "\n", 2)
		if lines[0] != fmt.Sprintf("%d", i+1) {
			t.Errorf("cue %d: expected sequence number %d, got %q", i, i+1, lines[0])
		}
	}
}

func TestFormatSRT_TrimsText(t *testing.T) {
	out := FormatSRT([]model.Segment{{Start: 0, End: 1, Text: "  padded  "}})
	if !strings.Contains(out, "\npadded\n") {
		t.Errorf("expected trimmed cue text, got %q", out)
	}
}

func TestFormatTimestamp(t *testing.T) {
	cases := []struct {
		seconds float64
		want    string
	}{
		{0, "00:00:00,000"},
		{1.5, "00:00:01,500"},
		{59.999, "00:00:59,999"},
		{60, "00:01:00,000"},
		{3599.001, "00:59:59,001"},
		{3600, "01:00:00,000"},
		{7325.25, "02:02:05,250"},
		{-3, "00:00:00,000"},
	}

	for _, tc := range cases {
		if got := FormatTimestamp(tc.seconds); got != tc.want {
			t.Errorf("FormatTimestamp(%v) = %q, want %q", tc.seconds, got, tc.want)
		}
	}
}
