package compile

import (
	"github.com/robfig/ctemplate/errortypes"
	"github.com/robfig/ctemplate/htmlctx"
	"github.com/robfig/ctemplate/modifier"
	"github.com/robfig/ctemplate/node"
	"github.com/robfig/ctemplate/strip"
	"github.com/robfig/ctemplate/token"
)

// Reserved variable names meaning a literal single space / newline,
// never auto-escaped (§4.5).
const (
	biSpace   = "BI_SPACE"
	biNewline = "BI_NEWLINE"
)

// Tree is a compiled template: its node tree plus the post-strip source
// buffer its Text/Variable/Include nodes address by offset. Both fields
// are swapped together on recompilation (Invariant 1, §3).
type Tree struct {
	Root   *node.Section
	Buffer []byte
}

// Compile lexes and parses src into a Tree under the given context, strip
// mode, and modifier registry. name is used only for error messages.
func Compile(name string, src []byte, ctx Context, sm strip.Mode, reg *modifier.Registry) (*Tree, error) {
	buf := strip.Apply(src, sm)
	b := &builder{
		name: name,
		buf:  append([]byte(nil), buf...),
		lex:  token.Lex(name, string(buf), sm),
		ctx:  ctx,
		sm:   sm,
		reg:  reg,
	}
	if usesHTMLParser(ctx) {
		b.hp = htmlctx.NewParser()
		switch ctx {
		case HTMLInTag:
			b.hp.ResetMode(htmlctx.ModeAttr)
		case JS:
			b.hp.ResetMode(htmlctx.ModeJSFile)
		case CSS:
			b.hp.ResetMode(htmlctx.ModeCSSFile)
		}
	}
	root, err := b.buildSection(node.MainSection, true)
	if err != nil {
		return nil, err
	}
	return &Tree{Root: root, Buffer: b.buf}, nil
}

type builder struct {
	name string
	buf  []byte
	lex  *token.Lexer
	hp   *htmlctx.Parser
	ctx  Context
	sm   strip.Mode
	reg  *modifier.Registry

	indent string
}

// errAt builds an ErrFilePos for a failure detected at byte offset pos in
// b.buf, classified by code so a caller can branch on syntax vs. policy
// failures without string-matching (errortypes.Is).
func (b *builder) errAt(code errortypes.Code, pos int, format string, args ...interface{}) error {
	line, col := linecol(b.buf, pos)
	return errortypes.New(code, b.name, line, col, format, args...)
}

// linecol converts a byte offset into buf to a 1-based line and column.
func linecol(buf []byte, pos int) (line, col int) {
	if pos > len(buf) {
		pos = len(buf)
	}
	line = 1
	lineStart := 0
	for i := 0; i < pos; i++ {
		if buf[i] == '\n' {
			line++
			lineStart = i + 1
		}
	}
	return line, pos - lineStart + 1
}

// appendSynthetic appends a single literal byte to the owned buffer and
// returns the Text node addressing it, for BI_SPACE/BI_NEWLINE.
func (b *builder) appendSynthetic(c byte) *node.Text {
	start := len(b.buf)
	b.buf = append(b.buf, c)
	return &node.Text{Begin: start, End: start + 1}
}

func (b *builder) buildSection(name string, isRoot bool) (*node.Section, error) {
	sec := &node.Section{Name: name}
	for {
		tok := b.lex.Next()
		switch tok.Kind {
		case token.EOF:
			if !isRoot {
				return nil, b.errAt(errortypes.CodeSyntax, len(b.buf), "section %q never closed", name)
			}
			return sec, nil

		case token.Error:
			return nil, b.errAt(errortypes.CodeSyntax, tok.Pos, "%s", tok.Val)

		case token.Text:
			txt := &node.Text{Begin: tok.Pos, End: tok.Pos + len(tok.Val)}
			sec.Children = append(sec.Children, txt)
			if b.hp != nil {
				b.hp.Parse([]byte(tok.Val))
			}
			b.indent = trailingIndent(tok.Val, tok.Pos)

		case token.Variable:
			v, err := b.buildVariable(tok)
			if err != nil {
				return nil, err
			}
			sec.Children = append(sec.Children, v)
			b.indent = ""

		case token.SectionStart:
			child, err := b.buildSection(tok.Name, false)
			if err != nil {
				return nil, err
			}
			child.Pos = tok.Pos
			sec.Children = append(sec.Children, child)
			b.indent = ""

		case token.SectionEnd:
			if tok.Name != name {
				return nil, b.errAt(errortypes.CodeSyntax, tok.Pos, "mismatched section end: got %q, want %q", tok.Name, name)
			}
			return sec, nil

		case token.Include:
			inc, err := b.buildInclude(tok)
			if err != nil {
				return nil, err
			}
			sec.Children = append(sec.Children, inc)
			b.indent = ""

		case token.Comment:
			// discarded; indentation tracking is unaffected.
		}
	}
}

func (b *builder) buildVariable(tok token.Token) (node.Node, error) {
	if tok.Name == biSpace {
		return b.appendSyntheticFed(' '), nil
	}
	if tok.Name == biNewline {
		return b.appendSyntheticFed('\n'), nil
	}

	// Compute this variable's modifiers against the parser state as it
	// stands right here, before InsertText (below) advances the parser
	// past the unknown-length gap the variable's expansion leaves behind.
	m, err := b.resolveModifiers(tok.Modifiers, tok.Pos)
	if err != nil {
		return nil, err
	}
	if autoescapes(b.ctx) {
		var hs *htmlctx.State
		if b.hp != nil {
			hs = &b.hp.State
		}
		a, err := computeModifiers(b.reg, b.ctx, hs)
		if err != nil {
			return nil, b.errAt(errortypes.CodePolicy, tok.Pos, "%s", err.Error())
		}
		m = reconcile(b.reg, m, a)
	}

	if b.hp != nil {
		b.hp.InsertText()
	}
	return &node.Variable{Pos: tok.Pos, Name: tok.Name, Modifiers: m}, nil
}

// appendSyntheticFed appends the literal byte to the buffer (so the node
// still addresses a byte range of the Template's own buffer) and, if an
// HTML parser is active, feeds it that same byte on the variable's
// behalf, per §4.5's BI_SPACE/BI_NEWLINE rule.
func (b *builder) appendSyntheticFed(c byte) *node.Text {
	txt := b.appendSynthetic(c)
	if b.hp != nil {
		b.hp.Parse([]byte{c})
	}
	return txt
}

func (b *builder) buildInclude(tok token.Token) (*node.Include, error) {
	propagated := b.ctx
	if (b.ctx == HTML || b.ctx == JS) && b.hp != nil && b.hp.State.InJS {
		propagated = JS
	}

	// A parser mid-tag at the include site (Mode != ModeText) is not
	// rejected here: §4.5 treats that as a warning condition, not one
	// that aborts compilation.

	m, err := b.resolveModifiers(tok.Modifiers, tok.Pos)
	if err != nil {
		return nil, err
	}
	includeCtx := propagated
	var finalMods []node.ModApp
	if autoescapes(b.ctx) {
		var hs *htmlctx.State
		if b.hp != nil {
			hs = &b.hp.State
		}
		a, err := computeModifiers(b.reg, b.ctx, hs)
		if err != nil {
			return nil, b.errAt(errortypes.CodePolicy, tok.Pos, "%s", err.Error())
		}
		if len(m) > 0 {
			finalMods = reconcile(b.reg, m, a)
			includeCtx = None
		}
	} else {
		finalMods = m
	}

	if b.hp != nil {
		b.hp.InsertText()
	}

	return &node.Include{
		Pos:       tok.Pos,
		Name:      tok.Name,
		Strip:     b.sm,
		Context:   includeCtx,
		Modifiers: finalMods,
		Indent:    b.indent,
	}, nil
}

// resolveModifiers resolves each author-written ":name[=value]" occurrence
// against the registry and validates it against the modifier's ValueStatus
// (§4.4): a ValueRequired modifier with no "=value", or a ValueForbidden
// modifier given one, is a syntax error rather than a silently-accepted
// no-op. pos is the owning token's byte offset, used for error reporting.
func (b *builder) resolveModifiers(mods []token.Modifier, pos int) ([]node.ModApp, error) {
	if len(mods) == 0 {
		return nil, nil
	}
	out := make([]node.ModApp, 0, len(mods))
	for _, m := range mods {
		info := b.reg.Find(m.Name)
		switch info.ValueStatus {
		case modifier.ValueRequired:
			if !m.HasValue {
				return nil, b.errAt(errortypes.CodeSyntax, pos, "modifier %q requires a \"=value\" argument", m.Name)
			}
		case modifier.ValueForbidden:
			if m.HasValue {
				return nil, b.errAt(errortypes.CodeSyntax, pos, "modifier %q does not take a \"=value\" argument", m.Name)
			}
		}
		arg := ""
		if m.HasValue {
			arg = "=" + m.Value
		}
		out = append(out, node.ModApp{Info: info, Arg: arg})
	}
	return out, nil
}

// trailingIndent returns the whitespace-only run at the end of s if it is
// immediately preceded by a newline (i.e. s ends in "\n" followed only by
// spaces/tabs); otherwise it returns "", clearing any pending indent. pos
// is s's byte offset in the template's source buffer: the beginning of
// the document counts as an implicit newline (GetIndentation's
// implicit_newline, tags/ctemplate-0.90/src/template.cc:1152), so
// whitespace running from offset 0 is captured as indentation even
// though no literal "\n" precedes it.
func trailingIndent(s string, pos int) string {
	i := len(s)
	for i > 0 && (s[i-1] == ' ' || s[i-1] == '\t') {
		i--
	}
	if i > 0 && s[i-1] == '\n' {
		return s[i:]
	}
	if i == 0 && pos == 0 {
		return s
	}
	return ""
}
