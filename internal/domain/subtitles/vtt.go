package subtitles

import (
	"strings"
)

type Cue struct {
	Timing string
	Lines  []string
}

// ParseSRT splits SRT content into cues. Blocks without a timing line are
// skipped; the index line is discarded.
func ParseSRT(content string) []Cue {
	content = strings.ReplaceAll(content, "\r\n", "\n")
	content = strings.TrimSpace(content)
	if content == "" {
		return nil
	}
	var out []Cue
	for _, block := range strings.Split(content, "\n\n") {
		lines := strings.Split(block, "\n")
		if len(lines) < 2 {
			continue
		}
		out = append(out, Cue{
			Timing: strings.TrimSpace(lines[1]),
			Lines:  lines[2:],
		})
	}
	return out
}

// ToWebVTT converts SRT content into a WebVTT document.
func ToWebVTT(content string) string {
	var b strings.Builder
	b.WriteString("WEBVTT\n")
	for _, c := range ParseSRT(content) {
		b.WriteString("\n")
		// WebVTT uses '.' as the millisecond separator.
		b.WriteString(strings.ReplaceAll(c.Timing, ",", "."))
		b.WriteString("\n")
		for _, ln := range c.Lines {
			b.WriteString(ln)
			b.WriteString("\n")
		}
	}
	return b.String()
}

func CueCount(content string) int { return len(ParseSRT(content)) }
