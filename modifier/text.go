package modifier

import (
	"strconv"
	"strings"
	"unicode/utf8"
)

// defaultWordBreakChars and defaultTruncateLen bound InsertWordBreaks and
// TruncateText when the template omits the "=N" argument.
const (
	defaultWordBreakChars = 40
	defaultTruncateLen    = 140
)

// InsertWordBreaks inserts a <wbr> tag after every run of maxChars
// non-space characters (maxChars from the modifier's "=N" argument, or
// defaultWordBreakChars if absent), so a long unbroken token such as a
// URL can still wrap in constrained layouts. It is not itself XSS-safe:
// register it to run after html_escape in a chain, never in place of it,
// since it passes its input through unescaped apart from the tags it
// inserts.
func InsertWordBreaks(in []byte, arg string, data *Data, out Emitter) {
	maxChars := defaultWordBreakChars
	if n, ok := argInt(arg); ok {
		maxChars = n
	}
	chars := 0
	for i := 0; i < len(in); {
		r, size := utf8.DecodeRune(in[i:])
		if r == ' ' {
			chars = 0
		} else if chars >= maxChars {
			out.EmitString("<wbr>")
			chars = 1
		} else {
			chars++
		}
		out.EmitBytes(in[i : i+size])
		i += size
	}
}

// TruncateText cuts in to at most maxLen bytes (maxLen from the
// modifier's "=N" argument, or defaultTruncateLen if absent), backing
// off to the nearest preceding rune boundary, and appends "..." in place
// of the last three bytes of the surviving text when there is room.
func TruncateText(in []byte, arg string, data *Data, out Emitter) {
	maxLen := defaultTruncateLen
	if n, ok := argInt(arg); ok {
		maxLen = n
	}
	if len(in) <= maxLen {
		out.EmitBytes(in)
		return
	}
	ellipsis := true
	cut := maxLen
	if cut > 3 {
		cut -= 3
	} else {
		ellipsis = false
	}
	for cut > 0 && !utf8.RuneStart(in[cut]) {
		cut--
	}
	out.EmitBytes(in[:cut])
	if ellipsis {
		out.EmitString("...")
	}
}

// ChangeNewlineToBr replaces every line ending with "<br>". Like
// InsertWordBreaks, it does not escape the rest of its input, so it is
// meant to run after html_escape in a modifier chain, not instead of it.
func ChangeNewlineToBr(in []byte, arg string, data *Data, out Emitter) {
	start := 0
	for i := 0; i < len(in); i++ {
		switch in[i] {
		case '\n':
			out.EmitBytes(in[start:i])
			out.EmitString("<br>")
			start = i + 1
		case '\r':
			end := i + 1
			if end < len(in) && in[end] == '\n' {
				end++
			}
			out.EmitBytes(in[start:i])
			out.EmitString("<br>")
			start = end
			i = end - 1
		}
	}
	out.EmitBytes(in[start:])
}

// argInt parses the "=N" suffix a with-arg modifier receives in template
// source, e.g. the "=12" in "{{SNIPPET:truncate=12}}".
func argInt(arg string) (int, bool) {
	if len(arg) < 2 || arg[0] != '=' {
		return 0, false
	}
	n, err := strconv.Atoi(strings.TrimPrefix(arg, "="))
	if err != nil {
		return 0, false
	}
	return n, true
}
