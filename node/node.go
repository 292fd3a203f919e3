// Package node defines the compiled template tree: Text, Variable,
// Section, and Include nodes whose byte content is addressed as offsets
// into the owning template's source buffer rather than as raw slices, so
// a recompiled template can swap in a new (buffer, tree) pair atomically.
package node

import (
	"fmt"

	"github.com/robfig/ctemplate/modifier"
	"github.com/robfig/ctemplate/strip"
)

// Context is the HTML/JS/CSS/JSON/XML context an Include resolves into,
// captured at compile time so the cache looks up the included template
// keyed by the context it will actually be expanded into. Defined here
// (rather than in package compile, which builds this tree) to avoid an
// import cycle; package compile re-exports it as compile.Context.
type Context int

const (
	ContextManual Context = iota
	ContextHTML
	ContextJS
	ContextCSS
	ContextJSON
	ContextXML
	ContextHTMLInTag
	ContextNone
)

func (c Context) String() string {
	switch c {
	case ContextManual:
		return "MANUAL"
	case ContextHTML:
		return "HTML"
	case ContextJS:
		return "JS"
	case ContextCSS:
		return "CSS"
	case ContextJSON:
		return "JSON"
	case ContextXML:
		return "XML"
	case ContextHTMLInTag:
		return "HTML_IN_TAG"
	case ContextNone:
		return "NONE"
	default:
		return "UNKNOWN"
	}
}

// MainSection is the reserved name of the tree's root Section, matching
// __{{MAIN}}__'s role as the distinguished top-level container.
const MainSection = "__{{MAIN}}__"

// Node is any element of a compiled template tree.
type Node interface {
	// Start is the byte offset, in the owning template's source buffer,
	// where this node begins.
	Start() int
}

// ModApp is one resolved modifier application on a Variable or Include:
// the registry entry plus its literal argument text (empty, or starting
// with '=').
type ModApp struct {
	Info *modifier.Info
	Arg  string
}

// Text is a verbatim run of output bytes, referenced as [Begin, End) into
// the owning template's source buffer.
type Text struct {
	Begin, End int
}

func (t *Text) Start() int { return t.Begin }

// Bytes returns the node's literal text given the buffer it was compiled
// against.
func (t *Text) Bytes(src []byte) []byte { return src[t.Begin:t.End] }

// Variable is a {{name:mod...}} reference.
type Variable struct {
	Pos       int
	Name      string
	Modifiers []ModApp
}

func (v *Variable) Start() int { return v.Pos }

// Section is {{#name}}...{{/name}}, or the tree root (Name == MainSection).
type Section struct {
	Pos      int
	Name     string
	Children []Node
}

func (s *Section) Start() int { return s.Pos }

// Include is {{>name:mod...}}. Context is the HTML/JS/CSS context the
// compiler inferred at this call site, captured so the cache looks up the
// included template keyed by the context it will actually be expanded
// into, not by the including template's own declared context.
type Include struct {
	Pos       int
	Name      string
	Strip     strip.Mode
	Context   Context
	Modifiers []ModApp
	// Indent is the synthetic prefix_line indentation captured from the
	// immediately preceding Text node, applied after the include's own
	// modifier chain at expand time.
	Indent string
}

func (i *Include) Start() int { return i.Pos }

// Walk calls fn for n and, if n is a Section, recursively for every
// descendant, in document order. fn may return false to stop descending
// into n's children (it still returns to the caller of Walk normally).
func Walk(n Node, fn func(Node) bool) {
	if !fn(n) {
		return
	}
	if sec, ok := n.(*Section); ok {
		for _, c := range sec.Children {
			Walk(c, fn)
		}
	}
}

// String renders a node for debugging; it does not reproduce original
// source syntax byte-for-byte.
func String(n Node) string {
	switch n := n.(type) {
	case *Text:
		return fmt.Sprintf("Text[%d:%d]", n.Begin, n.End)
	case *Variable:
		return fmt.Sprintf("Variable(%s)", n.Name)
	case *Section:
		return fmt.Sprintf("Section(%s, %d children)", n.Name, len(n.Children))
	case *Include:
		return fmt.Sprintf("Include(%s)", n.Name)
	default:
		return fmt.Sprintf("%T", n)
	}
}
