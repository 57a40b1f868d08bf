// Package subtitle renders timed transcript segments as SubRip (SRT) text.
package subtitle

import (
	"fmt"
	"math"
	"strings"

	"github.com/lexsightllc/video-transcriber-app/internal/model"
)

// FormatSRT converts an ordered segment sequence into SRT text. Each
// segment becomes one numbered cue with a blank line after it. The
// output is deterministic: the same segments always produce the same
// bytes. An empty sequence yields an empty string.
func FormatSRT(segments []model.Segment) string {
	if len(segments) == 0 {
		return ""
	}

	var b strings.Builder
	for i, seg := range segments {
		b.WriteString(fmt.Sprintf("%d\n", i+1))
		b.WriteString(fmt.Sprintf("%s --> %s\n", FormatTimestamp(seg.Start), FormatTimestamp(seg.End)))
		b.WriteString(strings.TrimSpace(seg.Text))
		b.WriteString("\n\n")
	}
	return b.String()
}

// FormatTimestamp renders seconds as an SRT timestamp, HH:MM:SS,mmm.
// Negative inputs clamp to zero.
func FormatTimestamp(seconds float64) string {
	if seconds < 0 {
		seconds = 0
	}
	totalMs := int64(math.Round(seconds * 1000))
	ms := totalMs % 1000
	totalSec := totalMs / 1000
	h := totalSec / 3600
	m := (totalSec % 3600) / 60
	s := totalSec % 60
	return fmt.Sprintf("%02d:%02d:%02d,%03d", h, m, s, ms)
}
