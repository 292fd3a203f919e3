package htmlctx

import "strings"

// Parser drives State through a byte stream. It is not safe for concurrent
// use; callers checkpoint with State.Clone/CopyFrom when they need to
// explore a branch (e.g. a section body) and possibly roll back.
type Parser struct {
	State State

	tagBuf       strings.Builder
	attrBuf      strings.Builder
	closeTag     bool // true if the tag currently being named starts with '/'
	jsEscapeNext bool // previous JS string byte was an unconsumed '\'
}

// NewParser returns a parser starting in the TEXT state.
func NewParser() *Parser {
	return &Parser{State: State{Mode: ModeText}}
}

// Parse advances the parser over data. It never returns an error: on a
// byte sequence it cannot make sense of (e.g. '<' inside a quoted
// attribute value, which is legal HTML) it degrades by treating the byte
// literally, matching the original parser's permissive, best-effort
// stance — auto-escape correctness depends on attribute/JS/CSS
// classification, not on rejecting malformed markup.
func (p *Parser) Parse(data []byte) {
	for i := 0; i < len(data); i++ {
		p.step(data[i])
	}
}

// InsertText signals that a template expansion occurs at the current
// position: the parser cannot see what bytes will appear here at
// render time, so it must stop assuming the surrounding syntax continues
// through them. Concretely, an unquoted attribute value is terminated
// here (so "href={{URL}} alt=..." does not glue "alt" onto the URL), and
// a JS/CSS string literal in progress is left exactly as it was (the
// expansion is assumed to produce more characters of the same literal).
func (p *Parser) InsertText() {
	if p.State.Mode == ModeValue && !p.State.Quoted {
		p.endValue()
	}
}

// Reset restarts the parser in the initial TEXT state.
func (p *Parser) Reset() {
	p.State.Reset()
	p.tagBuf.Reset()
	p.attrBuf.Reset()
	p.closeTag = false
	p.jsEscapeNext = false
}

// ResetMode restarts the parser in the given initial mode.
func (p *Parser) ResetMode(m Mode) {
	p.State.ResetMode(m)
	p.tagBuf.Reset()
	p.attrBuf.Reset()
	p.closeTag = false
	p.jsEscapeNext = false
}

// CopyFrom replaces p's full state (including scratch buffers) with a
// checkpoint taken from other.
func (p *Parser) CopyFrom(other *Parser) {
	p.State.CopyFrom(&other.State)
	p.tagBuf.Reset()
	p.tagBuf.WriteString(other.tagBuf.String())
	p.attrBuf.Reset()
	p.attrBuf.WriteString(other.attrBuf.String())
	p.closeTag = other.closeTag
	p.jsEscapeNext = other.jsEscapeNext
}

// Clone returns an independent checkpoint of p.
func (p *Parser) Clone() *Parser {
	c := &Parser{State: *p.State.Clone(), closeTag: p.closeTag, jsEscapeNext: p.jsEscapeNext}
	c.tagBuf.WriteString(p.tagBuf.String())
	c.attrBuf.WriteString(p.attrBuf.String())
	return c
}

func isTagNameByte(c byte) bool {
	return (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') || (c >= '0' && c <= '9') || c == '-' || c == ':'
}

func isSpace(c byte) bool {
	return c == ' ' || c == '\t' || c == '\n' || c == '\r' || c == '\f'
}

func (p *Parser) step(c byte) {
	s := &p.State
	switch s.Mode {
	case ModeText:
		if c == '<' {
			s.Mode = ModeTag
			p.tagBuf.Reset()
			p.closeTag = false
		}

	case ModeTag:
		switch {
		case c == '/' && p.tagBuf.Len() == 0:
			p.closeTag = true
		case isTagNameByte(c):
			p.tagBuf.WriteByte(c)
		case isSpace(c):
			p.attrBuf.Reset()
			s.Mode = ModeAttr
		case c == '>':
			p.openTag(p.tagBuf.String())
		default:
			// Stray byte before whitespace/'>' (e.g. a stray '<' in
			// text misparsed as a tag): stay in ModeTag and keep
			// collecting, matching the original's permissive scanning.
		}

	case ModeAttr:
		switch {
		case c == '=':
			s.Attr = strings.ToLower(p.attrBuf.String())
			s.AttrType = classifyAttr(s.Attr)
			s.Mode = ModeValue
			s.ValueIndex = 0
			s.Quoted = false
			s.QuoteChar = 0
		case c == '>':
			p.openTag(p.tagBuf.String())
		case isSpace(c):
			if p.attrBuf.Len() > 0 {
				p.attrBuf.Reset()
			}
		default:
			p.attrBuf.WriteByte(c)
		}

	case ModeValue:
		p.stepValue(c)

	case ModeJSFile:
		p.stepScriptBody(c)

	case ModeCSSFile:
		p.stepStyleBody(c)

	case ModeComment:
		// Comments are tracked only enough to find their end; auto-escape
		// never escapes content inside a comment.
		if c == '>' {
			s.Mode = ModeText
		}

	case ModeError:
		// Sticky: once ERROR, stay ERROR (§4.4's error convention).
	}
}

// openTag transitions out of ModeTag once '>' closes the opening tag,
// applying the one-deep tag-tracking caveat: the new tag name always
// overwrites State.Tag, even if an outer tag is still notionally open.
func (p *Parser) openTag(name string) {
	s := &p.State
	lname := strings.ToLower(name)
	s.Attr = ""
	s.AttrType = AttrNone
	if p.closeTag {
		s.Tag = ""
		s.Mode = ModeText
		return
	}
	s.Tag = lname
	switch lname {
	case "script":
		s.Mode = ModeJSFile
		s.InJS = true
		s.JS = JSText
		s.InJSString = false
		s.ValueIndex = 0
	case "style":
		s.Mode = ModeCSSFile
		s.InCSS = true
		s.ValueIndex = 0
	default:
		s.Mode = ModeText
	}
}

func (p *Parser) stepValue(c byte) {
	s := &p.State
	if s.ValueIndex == 0 && !s.Quoted && s.QuoteChar == 0 {
		// First byte of the value decides whether it is quoted.
		if c == '"' || c == '\'' {
			s.Quoted = true
			s.QuoteChar = c
			if s.AttrType == AttrJS {
				s.InJS = true
				s.JS = JSText
			}
			if s.AttrType == AttrStyle {
				s.InCSS = true
			}
			return
		}
	}
	if s.Quoted {
		if c == s.QuoteChar {
			p.endValue()
			return
		}
		s.ValueIndex++
		return
	}
	// Unquoted value: runs until whitespace or '>'.
	if isSpace(c) || c == '>' {
		end := c == '>'
		p.endValue()
		if end {
			p.openTag(p.tagBuf.String())
		}
		return
	}
	if s.ValueIndex == 0 {
		if s.AttrType == AttrJS {
			s.InJS = true
		}
		if s.AttrType == AttrStyle {
			s.InCSS = true
		}
	}
	s.ValueIndex++
}

func (p *Parser) endValue() {
	s := &p.State
	s.Mode = ModeAttr
	s.Quoted = false
	s.QuoteChar = 0
	s.ValueIndex = 0
	s.InJS = false
	s.InCSS = false
	s.JS = JSText
	s.InJSString = false
	p.attrBuf.Reset()
	p.jsEscapeNext = false
}

// stepStyleBody scans the text between <style> and </style>, watching
// only for the closing tag.
func (p *Parser) stepStyleBody(c byte) {
	s := &p.State
	if c == '<' {
		p.tagBuf.Reset()
		p.tagBuf.WriteByte(c)
		// Look for the literal "</style>" close; handled a byte at a
		// time below via a small match buffer encoded in attrBuf.
	}
	p.attrBuf.WriteByte(c)
	if strings.HasSuffix(strings.ToLower(p.attrBuf.String()), "</style>") {
		s.Mode = ModeText
		s.InCSS = false
		s.Tag = ""
		p.attrBuf.Reset()
		return
	}
	if p.attrBuf.Len() > 16 {
		// Keep the scratch buffer bounded; only the tail ever matters
		// for matching the closing tag.
		tail := p.attrBuf.String()
		p.attrBuf.Reset()
		p.attrBuf.WriteString(tail[len(tail)-8:])
	}
	s.ValueIndex++
}

// stepScriptBody scans the text between <script> and </script>, tracking
// the JS tokenizer sub-state enough to know whether we are inside a
// quoted string literal or a /* */ comment. Regexp literals and // line
// comments are not detected.
func (p *Parser) stepScriptBody(c byte) {
	s := &p.State
	p.attrBuf.WriteByte(c)
	if strings.HasSuffix(strings.ToLower(p.attrBuf.String()), "</script>") {
		s.Mode = ModeText
		s.InJS = false
		s.JS = JSText
		s.InJSString = false
		s.Tag = ""
		p.attrBuf.Reset()
		return
	}
	if p.attrBuf.Len() > 18 {
		tail := p.attrBuf.String()
		p.attrBuf.Reset()
		p.attrBuf.WriteString(tail[len(tail)-9:])
	}

	switch s.JS {
	case JSSingleQuote:
		switch {
		case p.jsEscapeNext:
			p.jsEscapeNext = false
		case c == '\\':
			p.jsEscapeNext = true
		case c == '\'':
			s.JS = JSText
			s.InJSString = false
		}
	case JSDoubleQuote:
		switch {
		case p.jsEscapeNext:
			p.jsEscapeNext = false
		case c == '\\':
			p.jsEscapeNext = true
		case c == '"':
			s.JS = JSText
			s.InJSString = false
		}
	case JSComment:
		if strings.HasSuffix(p.attrBuf.String(), "*/") {
			s.JS = JSText
		}
	default:
		switch c {
		case '\'':
			s.JS = JSSingleQuote
			s.InJSString = true
		case '"':
			s.JS = JSDoubleQuote
			s.InJSString = true
		case '*':
			if strings.HasSuffix(p.attrBuf.String(), "/*") {
				s.JS = JSComment
			}
		}
	}
	s.ValueIndex++
}
