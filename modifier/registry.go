package modifier

import "sync"

// ValueStatus describes whether a modifier accepts (and requires) the
// "=value" suffix, e.g. "h=attribute" vs plain "h".
type ValueStatus int

const (
	// ValueForbidden means the modifier never takes a "=value" suffix.
	ValueForbidden ValueStatus = iota
	// ValueOptional means the modifier may appear with or without one.
	ValueOptional
	// ValueRequired means the modifier must have a "=value" suffix.
	ValueRequired
)

// XSSClass groups modifiers for the purposes of the safe-alternative
// equivalence relation used by auto-escape reconciliation (the design's
// longest-suffix matching over XSS-safe alternatives).
type XSSClass int

const (
	// ClassWebStandard modifiers are one of the built-ins ctemplate itself
	// defines; two web-standard modifiers of the same name are always
	// mutually compatible (the author wrote what auto-escape would add).
	ClassWebStandard XSSClass = iota
	// ClassUnique modifiers are caller-registered and not presumed safe:
	// auto-escape always appends its own modifier alongside them.
	ClassUnique
	// ClassSafe modifiers are caller-registered but declared (via
	// AddXSSSafeModifier) to fully satisfy a particular context by
	// themselves; auto-escape will not append anything further.
	ClassSafe
)

// Info describes one registered modifier: its names, how it consumes its
// argument, which escaping context(s) it satisfies, and the function that
// applies it.
type Info struct {
	// LongName is the modifier's full name, e.g. "html_escape".
	LongName string
	// ShortName is the single-character alias used in template source,
	// e.g. 'h' for html_escape. Zero if the modifier has no short alias.
	ShortName byte
	// ValueStatus says whether "=value" is forbidden/optional/required.
	ValueStatus ValueStatus
	// Class governs how this modifier interacts with auto-escape.
	Class XSSClass
	// Func applies the modifier.
	Func Func
}

func (m *Info) String() string {
	if m == nil {
		return "<nil modifier>"
	}
	return m.LongName
}

// Registry holds every modifier known to a Set: the built-ins, plus
// whatever the caller adds via AddModifier/AddXSSSafeModifier. It is
// append-only and safe for concurrent use.
//
// Info pointers returned by Find remain valid for the registry's entire
// lifetime: entries are never moved or reallocated out from under a
// compiled tree that stored one.
type Registry struct {
	mu      sync.RWMutex
	byLong  map[string]*Info
	byShort map[byte]*Info
	// safeAlts maps a modifier's LongName to the set of LongNames it is
	// considered an XSS-safe alternative for (see SafeAlt).
	safeAlts map[string]map[string]bool
}

// NewRegistry returns a registry pre-populated with every built-in
// modifier from the original template_modifiers.cc table.
func NewRegistry() *Registry {
	r := &Registry{
		byLong:   make(map[string]*Info),
		byShort:  make(map[byte]*Info),
		safeAlts: make(map[string]map[string]bool),
	}
	for _, m := range builtins {
		r.register(m)
	}
	r.addSafeAltGroup("html_escape", "snippet_escape", "cleanse_attribute", "pre_escape")
	r.addSafeAltGroup("url_escape_validate_html", "url_escape_validate_js", "url_escape_validate_css")
	return r
}

func (r *Registry) register(m *Info) {
	r.byLong[m.LongName] = m
	if m.ShortName != 0 {
		r.byShort[m.ShortName] = m
	}
}

// addSafeAltGroup records that every named modifier is an XSS-safe
// alternative for every other one in the group: any one of them, alone,
// fully satisfies the context the others satisfy.
func (r *Registry) addSafeAltGroup(names ...string) {
	for _, a := range names {
		if r.safeAlts[a] == nil {
			r.safeAlts[a] = make(map[string]bool)
		}
		for _, b := range names {
			if a != b {
				r.safeAlts[a][b] = true
			}
		}
	}
}

// Find resolves a modifier occurrence's name. An unrecognized name is not
// an error: it is lazily registered as a UNIQUE, no-op (Null) placeholder
// so future lookups of the same name are cheap and return the identical
// pointer (§7's "unknown modifier" error kind) — the template still
// compiles, but the variable's output is unescaped at that point, so the
// condition is worth monitoring in logs rather than silently ignoring.
func (r *Registry) Find(name string) *Info {
	if m := r.findLocked(name); m != nil {
		return m
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	// Re-check under the write lock: another goroutine may have inserted
	// the same placeholder between our read unlock and this lock.
	if len(name) == 1 {
		if m, ok := r.byShort[name[0]]; ok {
			return m
		}
	}
	if m, ok := r.byLong[name]; ok {
		return m
	}
	placeholder := &Info{LongName: name, ValueStatus: ValueOptional, Class: ClassUnique, Func: Null}
	r.byLong[name] = placeholder
	return placeholder
}

func (r *Registry) findLocked(name string) *Info {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if len(name) == 1 {
		if m, ok := r.byShort[name[0]]; ok {
			return m
		}
	}
	if m, ok := r.byLong[name]; ok {
		return m
	}
	return nil
}

// AddModifier registers a caller-defined modifier. name must not collide
// with a built-in's long or short name. The modifier is classed Unique:
// auto-escape will never treat it as satisfying a context by itself.
func (r *Registry) AddModifier(name string, shortName byte, fn Func) error {
	return r.add(&Info{LongName: name, ShortName: shortName, ValueStatus: ValueOptional, Class: ClassUnique, Func: fn})
}

// AddXSSSafeModifier registers a caller-defined modifier that the caller
// asserts fully satisfies one or more auto-escape contexts on its own, so
// auto-escape should not append anything further when an author already
// wrote it. By ctemplate convention such names are prefixed "x-" to flag
// at the call site that the safety guarantee is caller-asserted, not
// verified by the compiler.
func (r *Registry) AddXSSSafeModifier(name string, shortName byte, fn Func) error {
	return r.add(&Info{LongName: name, ShortName: shortName, ValueStatus: ValueOptional, Class: ClassSafe, Func: fn})
}

func (r *Registry) add(m *Info) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.byLong[m.LongName]; exists {
		return &conflictError{m.LongName}
	}
	if m.ShortName != 0 {
		if _, exists := r.byShort[m.ShortName]; exists {
			return &conflictError{string(m.ShortName)}
		}
	}
	r.register(m)
	return nil
}

type conflictError struct{ name string }

func (e *conflictError) Error() string {
	return "modifier: " + e.name + " is already registered"
}

// SafeAlt reports whether a and b are XSS-safe alternatives for one
// another: an author who wrote a has already satisfied whatever context
// auto-escape would have added b for, so auto-escape should leave a alone
// rather than append a second modifier. Two modifiers of the same name
// are always their own safe alternative (idempotence, §8), and a ClassSafe
// a is a safe alternative for any b.
func (r *Registry) SafeAlt(a, b *Info) bool {
	if a == nil || b == nil {
		return false
	}
	if a.LongName == b.LongName {
		return true
	}
	if a.Class == ClassSafe {
		return true
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.safeAlts[a.LongName][b.LongName]
}

// builtins mirrors the fixed table of built-in modifiers from the
// original template_modifiers.cc: name, short alias, value status, and
// implementing function. validate_url's three context-specific
// specializations are registered under their own compound names
// (url_escape_validate_html/_js/_css); Find matches whole names only, so
// a "=value" suffix such as "h=attribute" or "u=css" does not select them.
// JavascriptEscape handles the plain "j" case.
var builtins = []*Info{
	{LongName: "none", ShortName: 0, ValueStatus: ValueForbidden, Class: ClassWebStandard, Func: Null},
	{LongName: "html_escape", ShortName: 'h', ValueStatus: ValueOptional, Class: ClassWebStandard, Func: HTMLEscape},
	{LongName: "pre_escape", ShortName: 'p', ValueStatus: ValueForbidden, Class: ClassWebStandard, Func: PreEscape},
	{LongName: "snippet_escape", ShortName: 0, ValueStatus: ValueForbidden, Class: ClassWebStandard, Func: SnippetEscape},
	{LongName: "cleanse_attribute", ShortName: 0, ValueStatus: ValueForbidden, Class: ClassWebStandard, Func: CleanseAttribute},
	{LongName: "cleanse_css", ShortName: 'c', ValueStatus: ValueForbidden, Class: ClassWebStandard, Func: CleanseCSS},
	{LongName: "xml_escape", ShortName: 0, ValueStatus: ValueForbidden, Class: ClassWebStandard, Func: XMLEscape},
	{LongName: "javascript_escape", ShortName: 'j', ValueStatus: ValueForbidden, Class: ClassWebStandard, Func: JavascriptEscape},
	{LongName: "javascript_number", ShortName: 0, ValueStatus: ValueForbidden, Class: ClassWebStandard, Func: JavascriptNumber},
	{LongName: "url_query_escape", ShortName: 'u', ValueStatus: ValueForbidden, Class: ClassWebStandard, Func: URLQueryEscape},
	{LongName: "json_escape", ShortName: 'o', ValueStatus: ValueForbidden, Class: ClassWebStandard, Func: JSONEscape},
	{LongName: "url_escape_validate_html", ShortName: 0, ValueStatus: ValueForbidden, Class: ClassWebStandard, Func: ValidateURL(HTMLEscape)},
	{LongName: "url_escape_validate_js", ShortName: 0, ValueStatus: ValueForbidden, Class: ClassWebStandard, Func: ValidateURL(JavascriptEscape)},
	{LongName: "url_escape_validate_css", ShortName: 0, ValueStatus: ValueForbidden, Class: ClassWebStandard, Func: ValidateURL(CleanseCSS)},
}
