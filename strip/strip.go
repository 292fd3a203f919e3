// Package strip preprocesses raw template bytes before lexing, trimming
// whitespace the author left purely for source readability.
package strip

import "bytes"

// Mode selects how aggressively Apply trims whitespace.
type Mode int

const (
	// DoNotStrip leaves the input unchanged.
	DoNotStrip Mode = iota
	// StripBlankLines drops lines that are blank or contain exactly one
	// removable marker ({{#...}}, {{/...}}, {{>...}}, {{!...}}) and
	// nothing else, leaving every other line's text and newline as-is.
	StripBlankLines
	// StripWhitespace does everything StripBlankLines does, and also
	// trims leading/trailing ASCII whitespace from every remaining line
	// and drops its terminating newline. This is the highest mode.
	StripWhitespace
)

func (m Mode) String() string {
	switch m {
	case DoNotStrip:
		return "DO_NOT_STRIP"
	case StripWhitespace:
		return "STRIP_WHITESPACE"
	case StripBlankLines:
		return "STRIP_BLANK_LINES"
	default:
		return "UNKNOWN"
	}
}

var asciiSpace = [256]bool{' ': true, '\t': true, '\r': true, '\v': true, '\f': true}

// Apply returns the preprocessed form of input for the given mode. The
// result is never larger than input, so callers may preallocate at input
// size.
func Apply(input []byte, mode Mode) []byte {
	if mode == DoNotStrip {
		return input
	}
	out := make([]byte, 0, len(input))
	for _, line := range splitLines(input) {
		text, newline := line.text, line.newline
		trimmed := trimASCIISpace(text)
		if len(trimmed) == 0 || isRemovableMarker(trimmed) {
			// Both modes drop a blank or removable-marker line, and its
			// newline, entirely.
			continue
		}
		if mode == StripWhitespace {
			out = append(out, trimmed...)
			// the terminating newline is dropped unconditionally
		} else {
			out = append(out, text...)
			out = append(out, newline...)
		}
	}
	return out
}

type rawLine struct {
	text    []byte
	newline []byte // "" (last line, no trailing newline), "\n", or "\r\n"
}

func splitLines(input []byte) []rawLine {
	var lines []rawLine
	start := 0
	for i := 0; i < len(input); i++ {
		if input[i] == '\n' {
			end := i
			nl := "\n"
			if end > start && input[end-1] == '\r' {
				end--
				nl = "\r\n"
			}
			lines = append(lines, rawLine{text: input[start:end], newline: []byte(nl)})
			start = i + 1
		}
	}
	if start < len(input) {
		lines = append(lines, rawLine{text: input[start:], newline: nil})
	}
	return lines
}

func trimASCIISpace(b []byte) []byte {
	start := 0
	for start < len(b) && asciiSpace[b[start]] {
		start++
	}
	end := len(b)
	for end > start && asciiSpace[b[end-1]] {
		end--
	}
	return b[start:end]
}

// isRemovableMarker reports whether trimmed is a single template marker of
// a kind with no textual output: a section start/end, an include, or a
// comment, with nothing else on the line.
func isRemovableMarker(trimmed []byte) bool {
	if !bytes.HasSuffix(trimmed, []byte("}}")) {
		return false
	}
	for _, prefix := range [][]byte{[]byte("{{#"), []byte("{{/"), []byte("{{>"), []byte("{{!")} {
		if bytes.HasPrefix(trimmed, prefix) {
			return !bytes.Contains(trimmed[len(prefix):len(trimmed)-2], []byte("}}"))
		}
	}
	return false
}
