// Package htmlctx tracks enough parse state over a byte stream to answer,
// at any boundary, what kind of HTML/JS/CSS content appears there. It is a
// one-deep, tag-scoped tracker (see the State.Tag caveat below), not a full
// HTML5 tree parser: it exists to drive auto-escape decisions, not to
// build a DOM.
package htmlctx

// Mode names the top-level parser state.
type Mode int

const (
	ModeText Mode = iota
	ModeTag
	ModeAttr
	ModeValue
	ModeComment
	ModeJSFile
	ModeCSSFile
	ModeError
)

func (m Mode) String() string {
	switch m {
	case ModeText:
		return "TEXT"
	case ModeTag:
		return "TAG"
	case ModeAttr:
		return "ATTR"
	case ModeValue:
		return "VALUE"
	case ModeComment:
		return "COMMENT"
	case ModeJSFile:
		return "JS_FILE"
	case ModeCSSFile:
		return "CSS_FILE"
	case ModeError:
		return "ERROR"
	default:
		return "UNKNOWN"
	}
}

// AttrType classifies an attribute by the table in attrtable.go, which in
// turn governs which escape modifier auto-escape requires for a variable
// appearing in its value.
type AttrType int

const (
	AttrNone AttrType = iota
	AttrRegular
	AttrURI
	AttrJS
	AttrStyle
)

func (a AttrType) String() string {
	switch a {
	case AttrNone:
		return "NONE"
	case AttrRegular:
		return "REGULAR"
	case AttrURI:
		return "URI"
	case AttrJS:
		return "JS"
	case AttrStyle:
		return "STYLE"
	default:
		return "UNKNOWN"
	}
}

// JSState is the JavaScript tokenizer sub-state, tracked whenever State is
// inside a <script> body or a JS-typed attribute value.
type JSState int

const (
	JSText JSState = iota
	JSSingleQuote
	JSDoubleQuote
	JSRegexp
	JSComment
)

func (j JSState) String() string {
	switch j {
	case JSText:
		return "TEXT"
	case JSSingleQuote:
		return "Q"
	case JSDoubleQuote:
		return "DQ"
	case JSRegexp:
		return "REGEXP"
	case JSComment:
		return "COMMENT"
	default:
		return "UNKNOWN"
	}
}

// State is the full checkpointable parse state. Zero value is valid: Mode
// ModeText, everything else empty/false/zero.
type State struct {
	Mode Mode

	// Tag is the name of the tag currently open for attribute purposes.
	// Tracking is one-deep only: entering a nested tag before the
	// enclosing one closes overwrites Tag, and it is not restored on the
	// nested tag's close (see the package doc caveat).
	Tag string

	// Attr is the name of the attribute currently being parsed (ModeAttr,
	// ModeValue).
	Attr string
	// AttrType classifies Attr via the table in attrtable.go.
	AttrType AttrType
	// Quoted reports whether the current attribute value is quoted (by
	// either ' or ").
	Quoted bool
	// QuoteChar is the quote byte in effect when Quoted is true.
	QuoteChar byte
	// ValueIndex is the 0-based byte offset within the current attribute
	// value or JS/CSS file body, reset to 0 on Reset/ResetMode and at the
	// start of each new value.
	ValueIndex int

	// InJS reports whether content here is JavaScript: either inside a
	// <script> element (Mode == ModeJSFile) or an AttrJS attribute value
	// (Mode == ModeValue && AttrType == AttrJS).
	InJS bool
	// JS is the JS tokenizer sub-state, meaningful only when InJS.
	JS JSState
	// InJSString reports whether JS is currently inside a string literal
	// (JSSingleQuote or JSDoubleQuote); kept distinct from JS itself so
	// callers can ask the question without switching on JS's value.
	InJSString bool

	// InCSS reports whether content here is CSS: inside a <style>
	// element (Mode == ModeCSSFile) or an AttrStyle attribute value.
	InCSS bool
}

// Reset restores s to the initial TEXT state.
func (s *State) Reset() {
	*s = State{Mode: ModeText}
}

// ResetMode restarts s with the given initial mode, used when a template's
// declared context (§6.3) is JS or CSS rather than HTML, e.g. a .js-typed
// file that is pure script with no surrounding <script> tag.
func (s *State) ResetMode(m Mode) {
	*s = State{Mode: m}
	switch m {
	case ModeJSFile:
		s.InJS = true
	case ModeCSSFile:
		s.InCSS = true
	}
}

// CopyFrom replaces s's contents with a copy of other's, used to
// checkpoint state before a conditional branch and restore it afterward.
func (s *State) CopyFrom(other *State) {
	*s = *other
}

// Clone returns an independent copy of s.
func (s *State) Clone() *State {
	c := *s
	return &c
}
