// Package compile turns a token stream into a compiled node tree, running
// the HTML/JS/CSS context parser and auto-escape resolver as it goes.
package compile

import "github.com/robfig/ctemplate/node"

// Context is the template's declared context: whether the compiler runs
// the HTML parser at all, and if so, where it starts. It is an alias for
// node.Context, which an Include node carries forward to the expander and
// cache so a compiled subtree can be looked up by the context it will
// actually run under.
type Context = node.Context

const (
	// Manual disables both the HTML parser and auto-escape; the author
	// is responsible for every modifier.
	Manual    = node.ContextManual
	HTML      = node.ContextHTML
	JS        = node.ContextJS
	CSS       = node.ContextCSS
	JSON      = node.ContextJSON
	XML       = node.ContextXML
	// HTMLInTag starts the HTML parser as if already inside a tag body
	// (used for snippets that are purely a run of attributes).
	HTMLInTag = node.ContextHTMLInTag
	// None disables auto-escape; used for includes whose explicit
	// modifiers have already been reconciled at the call site, per
	// §4.5's include rule.
	None = node.ContextNone
)

// usesHTMLParser reports whether this context runs the byte-driven
// HTML/JS/CSS context parser (C) during compilation.
func usesHTMLParser(c Context) bool {
	switch c {
	case HTML, JS, CSS, HTMLInTag:
		return true
	default:
		return false
	}
}

// autoescapes reports whether this context runs the auto-escape resolver.
// Every context but Manual does; None runs it, but its row in
// computeModifiers is empty, so it attaches nothing either. An author can
// also suppress it with an explicit trailing "none" modifier.
func autoescapes(c Context) bool {
	return c != Manual
}
