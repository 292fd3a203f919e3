// Package dictionary defines the interface the expander consumes to
// resolve variable values, section repetition, and includes, plus a
// reference in-memory implementation callers can build up directly.
package dictionary

// Dictionary is the data source an expansion walks. Implementations may
// back it with anything; Map below is the reference implementation.
//
// value, is_hidden_section, and dictionaries walk the parent chain when a
// name is not found locally. is_hidden_template, template_dictionaries,
// and include_template_name do not: include boundaries block inheritance
// by design, so an included template only ever sees what was explicitly
// bound for it.
type Dictionary interface {
	// Value returns the bytes bound to name, walking the parent chain.
	// It never returns an error; a total miss yields "".
	Value(name string) []byte
	// IsHiddenSection reports whether name has no entry in this
	// dictionary's section map, walking the parent chain.
	IsHiddenSection(name string) bool
	// Dictionaries returns the ordered sub-dictionaries bound to a
	// section name, walking the parent chain. An empty (non-nil or nil)
	// result means "expand the section body once against the current
	// dictionary".
	Dictionaries(name string) []Dictionary
	// IsHiddenTemplate reports whether an include name has no entry;
	// does not walk the parent chain.
	IsHiddenTemplate(name string) bool
	// TemplateDictionaries returns the sub-dictionaries bound to an
	// include name, one per iteration; does not walk the parent chain.
	TemplateDictionaries(name string) []Dictionary
	// IncludeTemplateName returns the filename to load for the index'th
	// iteration of an include bound under name; does not walk the
	// parent chain.
	IncludeTemplateName(name string, index int) []byte
	// ModifierData returns the opaque per-expand context passed to
	// modifiers (see modifier.Data).
	ModifierData() interface{}
	// ShouldAnnotateOutput and TemplatePathStart support §6.5's
	// annotation output.
	ShouldAnnotateOutput() bool
	TemplatePathStart() []byte
}
