// Package token lexes the {{…}} template grammar into a stream of typed
// tokens, in the style of text/template's channel-driven, stateFn lexer.
package token

// Kind identifies what a Token represents.
type Kind int

const (
	// Invalid is the zero Kind; never emitted.
	Invalid Kind = iota
	// EOF marks the end of input.
	EOF
	// Error carries a message in Token.Val; the lexer stops after it.
	Error

	// Text is a run of literal output bytes.
	Text
	// Variable is a {{name:mod...}} marker.
	Variable
	// SectionStart is a {{#name}} marker.
	SectionStart
	// SectionEnd is a {{/name}} marker.
	SectionEnd
	// Include is a {{>name:mod...}} marker.
	Include
	// Comment is a {{!...}} marker; its text is discarded by the lexer.
	Comment
)

func (k Kind) String() string {
	switch k {
	case EOF:
		return "EOF"
	case Error:
		return "ERROR"
	case Text:
		return "TEXT"
	case Variable:
		return "VARIABLE"
	case SectionStart:
		return "SECTION_START"
	case SectionEnd:
		return "SECTION_END"
	case Include:
		return "INCLUDE"
	case Comment:
		return "COMMENT"
	default:
		return "INVALID"
	}
}

// Modifier is one ":name[=value]" suffix attached to a Variable or
// Include token.
type Modifier struct {
	Name     string
	Value    string // without the leading '='; empty if none was given
	HasValue bool
}

// Token is one lexical item. Name and Modifiers are populated only for
// Variable/SectionStart/SectionEnd/Include; Val carries the literal bytes
// for Text, and the message for Error.
type Token struct {
	Kind      Kind
	Val       string
	Name      string
	Modifiers []Modifier
	Pos       int // byte offset in the source where this token starts
	Line      int
	Col       int
	// EatNewline reports whether the lexer already consumed a trailing
	// newline after this token's closing "}}" (the "eat newline" rule,
	// §4.4); the node builder does not need to special-case it again.
	EatNewline bool
}
