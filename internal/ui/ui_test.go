package ui

import (
	"bytes"
	"strings"
	"testing"
)

func TestClamp(t *testing.T) {
	tests := []struct{ v, want int }{
		{10, 40},
		{80, 80},
		{500, 200},
	}
	for _, tt := range tests {
		if got := Clamp(tt.v, 40, 200); got != tt.want {
			t.Errorf("Clamp(%d) = %d, want %d", tt.v, got, tt.want)
		}
	}
}

func TestPadRight(t *testing.T) {
	if got := PadRight("ab", 5); got != "ab   " {
		t.Errorf("PadRight() = %q", got)
	}
	if got := PadRight("abcdef", 3); got != "abcdef" {
		t.Errorf("PadRight() should not cut, got %q", got)
	}
}

func TestTruncate(t *testing.T) {
	if got := Truncate("deploy-service", 9); got != "deploy..." {
		t.Errorf("Truncate() = %q", got)
	}
	if got := Truncate("short", 10); got != "short" {
		t.Errorf("Truncate() = %q", got)
	}
	if got := Truncate("résumé", 5); got != "ré..." {
		t.Errorf("Truncate() should count runes, got %q", got)
	}
}

func TestPrinter(t *testing.T) {
	var buf bytes.Buffer
	p := NewPrinter(&buf)
	p.Success("workflows/a.ds.md")
	p.Error("workflows/b.ds.md")
	p.Warning("skipped")
	p.Detail("Schema validation error: missing title")

	out := buf.String()
	for _, want := range []string{IconSuccess, IconError, IconWarning, "workflows/a.ds.md", "missing title"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}

func TestRenderMarkdown(t *testing.T) {
	out, err := RenderMarkdown("# Deploy\n\nRun the **deploy** steps.", 80)
	if err != nil {
		t.Fatalf("RenderMarkdown() error: %v", err)
	}
	if !strings.Contains(out, "Deploy") || !strings.Contains(out, "deploy") {
		t.Errorf("rendered output missing text:\n%s", out)
	}

	r1, _ := MarkdownRenderer(10)
	r2, _ := MarkdownRenderer(40)
	if r1 != r2 {
		t.Error("widths below the minimum should share a renderer")
	}
}

func TestKeyValueTable(t *testing.T) {
	if got := KeyValueTable(nil, 40); got != "" {
		t.Errorf("empty table = %q", got)
	}
	out := KeyValueTable([][2]string{{"version", "1.0.0"}, {"status", "stable"}}, 40)
	if !strings.Contains(out, "version") || !strings.Contains(out, "stable") {
		t.Errorf("table missing rows:\n%s", out)
	}
}
