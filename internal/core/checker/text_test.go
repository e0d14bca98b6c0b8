package checker

import "testing"

func TestNormalizeText(t *testing.T) {
	got := NormalizeText("Eﬃcient ﬁne-tuning\r\nsecond\rthird")
	want := "Efficient fine-tuning\nsecond\nthird"
	if got != want {
		t.Fatalf("NormalizeText() = %q, want %q", got, want)
	}
}

func TestSplitLinesDropsBlank(t *testing.T) {
	lines := SplitLines("  first \n\n\t\nsecond\n")
	if len(lines) != 2 || lines[0] != "first" || lines[1] != "second" {
		t.Fatalf("SplitLines() = %q", lines)
	}
}

func TestSnippet(t *testing.T) {
	text := "abcdef\nghij"
	if got := snippet(text, 3, 4, 2); got != "bcdef" {
		t.Fatalf("snippet() = %q", got)
	}
	if got := snippet(text, 0, 2, 10); got != "abcdef ghij" {
		t.Fatalf("snippet() at edges = %q", got)
	}
	if got := snippet("héllo wörld", 6, 7, 2); got != "lo wö" {
		t.Fatalf("snippet() over multibyte runes = %q", got)
	}
}
