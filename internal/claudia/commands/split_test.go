package commands

import (
	"strings"
	"testing"
)

func TestSplitMessageShortTextUntouched(t *testing.T) {
	chunks := SplitMessage("short answer", 2000)
	if len(chunks) != 1 || chunks[0] != "short answer" {
		t.Errorf("expected a single untouched chunk, got %v", chunks)
	}
}

func TestSplitMessagePrefersNewlines(t *testing.T) {
	text := "first paragraph\nsecond paragraph\nthird paragraph"
	chunks := SplitMessage(text, 20)

	for i, chunk := range chunks {
		if len([]rune(chunk)) > 20 {
			t.Errorf("chunk %d exceeds the limit: %q", i, chunk)
		}
	}
	if chunks[0] != "first paragraph\n" {
		t.Errorf("expected the first cut at the newline, got %q", chunks[0])
	}
	if strings.Join(chunks, "") != text {
		t.Errorf("joined chunks differ from the input: %q", strings.Join(chunks, ""))
	}
}

func TestSplitMessageHardCutWithoutNewlines(t *testing.T) {
	text := strings.Repeat("a", 45)
	chunks := SplitMessage(text, 20)

	if len(chunks) != 3 {
		t.Fatalf("expected 3 chunks, got %d", len(chunks))
	}
	if len(chunks[0]) != 20 || len(chunks[1]) != 20 || len(chunks[2]) != 5 {
		t.Errorf("unexpected chunk sizes: %d %d %d", len(chunks[0]), len(chunks[1]), len(chunks[2]))
	}
	if strings.Join(chunks, "") != text {
		t.Error("joined chunks differ from the input")
	}
}

func TestSplitMessageRuneSafe(t *testing.T) {
	text := strings.Repeat("héllo wörld ", 10)
	chunks := SplitMessage(text, 25)

	for i, chunk := range chunks {
		if len([]rune(chunk)) > 25 {
			t.Errorf("chunk %d exceeds the rune limit", i)
		}
		if !strings.ContainsAny(chunk, "hélowrd ") {
			t.Errorf("chunk %d looks corrupted: %q", i, chunk)
		}
	}
	if strings.Join(chunks, "") != text {
		t.Error("joined chunks differ from the input")
	}
}
