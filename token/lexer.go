package token

import (
	"fmt"
	"strings"

	"github.com/robfig/ctemplate/strip"
)

// stateFn represents the next step of the lexer.
type stateFn func(*Lexer) stateFn

// Lexer turns raw template bytes into a channel of Tokens, modeled on
// text/template's channel-driven, state-function scanner.
type Lexer struct {
	name  string
	input string
	strip strip.Mode

	pos   int
	start int
	line  int
	col   int

	items chan Token
	state stateFn
}

// Lex starts lexing input in a new goroutine and returns the Lexer to
// read tokens from via Next. mode controls whether the "eat newline" rule
// (§4.4) is active: it only applies when strip == StripWhitespace.
func Lex(name, input string, mode strip.Mode) *Lexer {
	l := &Lexer{
		name:  name,
		input: input,
		strip: mode,
		items: make(chan Token),
		state: lexText,
		line:  1,
		col:   1,
	}
	go l.run()
	return l
}

// Next returns the next Token. The stream ends with an EOF or Error token;
// callers must stop reading after either.
func (l *Lexer) Next() Token {
	return <-l.items
}

func (l *Lexer) run() {
	for l.state != nil {
		l.state = l.state(l)
	}
	close(l.items)
}

func (l *Lexer) emit(t Token) {
	t.Pos = l.start
	t.Line, t.Col = l.posLineCol(l.start)
	l.items <- t
	l.start = l.pos
}

func (l *Lexer) posLineCol(pos int) (line, col int) {
	line = 1 + strings.Count(l.input[:pos], "\n")
	if nl := strings.LastIndexByte(l.input[:pos], '\n'); nl >= 0 {
		col = pos - nl
	} else {
		col = pos + 1
	}
	return
}

func (l *Lexer) errorf(format string, args ...interface{}) stateFn {
	l.items <- Token{Kind: Error, Val: fmt.Sprintf(format, args...), Pos: l.pos}
	return nil
}

const (
	leftDelim  = "{{"
	rightDelim = "}}"
)

// lexText scans for the opening "{{", emitting everything before it as a
// Text token. A "{{{" is not an opener: the extra '{' is literal text and
// scanning resumes one byte later.
func lexText(l *Lexer) stateFn {
	for {
		idx := strings.Index(l.input[l.pos:], leftDelim)
		if idx < 0 {
			l.pos = len(l.input)
			if l.pos > l.start {
				l.emit(Token{Kind: Text, Val: l.input[l.start:l.pos]})
			}
			l.emit(Token{Kind: EOF})
			return nil
		}
		open := l.pos + idx
		if open+2 < len(l.input) && l.input[open+2] == '{' {
			// "{{{": the delimiter doesn't fire here; treat the first
			// '{' as literal text and retry scanning just past it.
			l.pos = open + 1
			continue
		}
		l.pos = open
		if l.pos > l.start {
			l.emit(Token{Kind: Text, Val: l.input[l.start:l.pos]})
		}
		l.pos += len(leftDelim)
		l.start = l.pos
		return lexName
	}
}

func isIdentByte(c byte) bool {
	return (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') || (c >= '0' && c <= '9') || c == '_'
}

// lexName reads the sigil (if any), the identifier, and any ":mod[=val]"
// suffixes, then the closing "}}", applying the eat-newline rule.
func lexName(l *Lexer) stateFn {
	if l.pos >= len(l.input) {
		return l.errorf("unterminated %q", leftDelim)
	}
	kind := Variable
	switch l.input[l.pos] {
	case '#':
		kind = SectionStart
		l.pos++
	case '/':
		kind = SectionEnd
		l.pos++
	case '>':
		kind = Include
		l.pos++
	case '!':
		kind = Comment
		l.pos++
		return lexComment(l)
	}
	nameStart := l.pos
	for l.pos < len(l.input) && isIdentByte(l.input[l.pos]) {
		l.pos++
	}
	if l.pos == nameStart {
		return l.errorf("empty identifier in template marker")
	}
	name := l.input[nameStart:l.pos]

	var mods []Modifier
	for l.pos < len(l.input) && l.input[l.pos] == ':' {
		l.pos++
		modStart := l.pos
		for l.pos < len(l.input) && isIdentByte(l.input[l.pos]) {
			l.pos++
		}
		if l.pos == modStart {
			return l.errorf("empty modifier name after ':'")
		}
		mod := Modifier{Name: l.input[modStart:l.pos]}
		if l.pos < len(l.input) && l.input[l.pos] == '=' {
			l.pos++
			valStart := l.pos
			for l.pos < len(l.input) && l.input[l.pos] != ':' && !strings.HasPrefix(l.input[l.pos:], rightDelim) {
				l.pos++
			}
			mod.Value = l.input[valStart:l.pos]
			mod.HasValue = true
		}
		mods = append(mods, mod)
	}
	if kind != Variable && kind != Include && len(mods) > 0 {
		return l.errorf("modifiers are not allowed on %s", kind)
	}

	if !strings.HasPrefix(l.input[l.pos:], rightDelim) {
		return l.errorf("expected %q after identifier %q", rightDelim, name)
	}
	l.pos += len(rightDelim)

	tok := Token{Kind: kind, Name: name, Modifiers: mods}
	tok.EatNewline = l.maybeEatNewline(kind)
	l.emit(tok)
	return lexText
}

func lexComment(l *Lexer) stateFn {
	idx := strings.Index(l.input[l.pos:], rightDelim)
	if idx < 0 {
		return l.errorf("unterminated comment")
	}
	body := l.input[l.pos : l.pos+idx]
	if strings.ContainsRune(body, '}') {
		return l.errorf("comment body must not contain '}'")
	}
	l.pos += idx + len(rightDelim)
	tok := Token{Kind: Comment, Val: ""}
	tok.EatNewline = l.maybeEatNewline(Comment)
	l.emit(tok)
	return lexText
}

// maybeEatNewline implements §4.4/§6.1's newline rules: after any token
// that is not VARIABLE, a following "\n" is consumed only when strip mode
// is STRIP_WHITESPACE (the highest mode, not STRIP_BLANK_LINES); a
// "\\\n" preserves the newline but still consumes the backslash. VARIABLE
// tokens never eat a trailing newline. STRIP_BLANK_LINES exists
// specifically so a .js template can drop blank/removable lines without
// this rule eating newlines that terminate a "//" JS comment.
func (l *Lexer) maybeEatNewline(kind Kind) bool {
	if kind == Variable {
		return false
	}
	if l.strip != strip.StripWhitespace {
		return false
	}
	if l.pos < len(l.input) && l.input[l.pos] == '\\' && l.pos+1 < len(l.input) && l.input[l.pos+1] == '\n' {
		l.pos++ // consume only the backslash; the newline is preserved as text
		return false
	}
	if l.pos < len(l.input) && l.input[l.pos] == '\n' {
		l.pos++
		return true
	}
	return false
}
