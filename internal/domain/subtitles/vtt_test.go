package subtitles

import (
	"strings"
	"testing"
)

const sampleSRT = "1\n00:00:01,000 --> 00:00:04,000\nHello\nworld\n\n2\n00:00:05,500 --> 00:00:07,000\nBye\n"

func TestToWebVTT(t *testing.T) {
	got := ToWebVTT(sampleSRT)
	want := "WEBVTT\n\n00:00:01.000 --> 00:00:04.000\nHello\nworld\n\n00:00:05.500 --> 00:00:07.000\nBye\n"
	if got != want {
		t.Fatalf("unexpected vtt:\n%q\nwant:\n%q", got, want)
	}
}

func TestToWebVTT_CRLFAndBrokenBlocks(t *testing.T) {
	in := strings.ReplaceAll(sampleSRT, "\n", "\r\n") + "\r\n3\r\n"
	got := ToWebVTT(in)
	if strings.Contains(got, "\r") {
		t.Fatalf("expected CRLF to be normalized, got %q", got)
	}
	if CueCount(in) != 2 {
		t.Fatalf("expected the index-only block to be skipped, got %d cues", CueCount(in))
	}
}

func TestToWebVTT_Empty(t *testing.T) {
	if got := ToWebVTT("   "); got != "WEBVTT\n" {
		t.Fatalf("unexpected vtt for empty input: %q", got)
	}
}
