package strip_test

import (
	"testing"

	"github.com/robfig/ctemplate/strip"
)

func TestDoNotStrip(t *testing.T) {
	in := "  a  \n  b  \n"
	if got := string(strip.Apply([]byte(in), strip.DoNotStrip)); got != in {
		t.Errorf("DoNotStrip changed input: %q", got)
	}
}

func TestStripWhitespace(t *testing.T) {
	in := "  hello  \n  world  \n"
	want := "helloworld"
	if got := string(strip.Apply([]byte(in), strip.StripWhitespace)); got != want {
		t.Errorf("StripWhitespace = %q, want %q", got, want)
	}
}

func TestStripBlankLinesDropsBlanks(t *testing.T) {
	in := "a\n   \nb\n"
	want := "a\nb\n"
	if got := string(strip.Apply([]byte(in), strip.StripBlankLines)); got != want {
		t.Errorf("StripBlankLines = %q, want %q", got, want)
	}
}

func TestStripBlankLinesDropsRemovableMarkers(t *testing.T) {
	cases := []string{
		"{{#section}}\n",
		"{{/section}}\n",
		"{{>include}}\n",
		"{{!comment}}\n",
		"  {{#section}}  \n",
	}
	for _, in := range cases {
		if got := string(strip.Apply([]byte(in), strip.StripBlankLines)); got != "" {
			t.Errorf("StripBlankLines(%q) = %q, want empty", in, got)
		}
	}
}

func TestStripBlankLinesKeepsNonRemovableLines(t *testing.T) {
	in := "before {{#section}} after\n"
	want := "before {{#section}} after\n"
	if got := string(strip.Apply([]byte(in), strip.StripBlankLines)); got != want {
		t.Errorf("StripBlankLines(%q) = %q, want %q", in, got, want)
	}
}

func TestStripBlankLinesPreservesLineWhitespace(t *testing.T) {
	in := "  x  \n"
	if got := string(strip.Apply([]byte(in), strip.StripBlankLines)); got != in {
		t.Errorf("StripBlankLines(%q) = %q, want unchanged %q", in, got, in)
	}
}

func TestStripBlankLinesRejectsEmbeddedCloseBrace(t *testing.T) {
	in := "{{#section}}extra}}\n"
	if got := string(strip.Apply([]byte(in), strip.StripBlankLines)); got == "" {
		t.Errorf("line with content after the marker's own close should not be dropped, got %q", got)
	}
}

func TestOutputNeverExceedsInput(t *testing.T) {
	in := "{{#a}}\nx\n  \n{{/a}}\n"
	for _, m := range []strip.Mode{strip.DoNotStrip, strip.StripWhitespace, strip.StripBlankLines} {
		if got := strip.Apply([]byte(in), m); len(got) > len(in) {
			t.Errorf("mode %v: output %d bytes exceeds input %d bytes", m, len(got), len(in))
		}
	}
}
