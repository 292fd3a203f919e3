package compile

import (
	"github.com/robfig/ctemplate/htmlctx"
	"github.com/robfig/ctemplate/modifier"
	"github.com/robfig/ctemplate/node"
)

// errPolicy is returned by computeModifiers for an ERROR row of the
// context -> modifier table (§4.5's "On an ERROR row, mark template
// status ERROR and abort compilation").
type errPolicy struct{ msg string }

func (e *errPolicy) Error() string { return e.msg }

// modList builds a single-element modifier list from a registered
// built-in's long name; computeModifiers never needs more than one entry
// per row of the context table.
func modList(reg *modifier.Registry, longName string) []node.ModApp {
	return []node.ModApp{{Info: reg.Find(longName)}}
}

// computeModifiers implements the context -> modifier list table. hs is
// nil when ctx does not run the HTML parser (JSON, XML, Manual, None).
func computeModifiers(reg *modifier.Registry, ctx Context, hs *htmlctx.State) ([]node.ModApp, error) {
	switch ctx {
	case None, Manual:
		return nil, nil
	case XML:
		return modList(reg, "xml_escape"), nil
	case JSON:
		return modList(reg, "javascript_escape"), nil
	}

	// HTML/JS/CSS/HTMLInTag: consult parser state.
	switch {
	case hs.Mode == htmlctx.ModeJSFile && hs.Attr == "":
		if hs.InJSString {
			return modList(reg, "javascript_escape"), nil
		}
		return modList(reg, "javascript_number"), nil

	case hs.Mode == htmlctx.ModeText || hs.Mode == htmlctx.ModeComment:
		return modList(reg, "html_escape"), nil

	case hs.Mode == htmlctx.ModeTag || hs.Mode == htmlctx.ModeAttr:
		return modList(reg, "cleanse_attribute"), nil

	case hs.Mode == htmlctx.ModeValue:
		switch hs.AttrType {
		case htmlctx.AttrURI:
			switch {
			case hs.Quoted && hs.ValueIndex == 0:
				return modList(reg, "url_escape_validate_html"), nil
			case hs.Quoted:
				return modList(reg, "html_escape"), nil
			case !hs.Quoted && hs.ValueIndex > 0:
				return modList(reg, "url_query_escape"), nil
			default:
				return nil, &errPolicy{"unquoted URI attribute value may not start with a template variable"}
			}
		case htmlctx.AttrJS:
			switch {
			case !hs.Quoted:
				return nil, &errPolicy{"JS event attribute value must be quoted"}
			case hs.InJSString:
				return modList(reg, "javascript_escape"), nil
			default:
				return modList(reg, "javascript_number"), nil
			}
		case htmlctx.AttrStyle:
			if !hs.Quoted {
				return nil, &errPolicy{"style attribute value must be quoted"}
			}
			return modList(reg, "cleanse_css"), nil
		default: // AttrRegular, AttrNone
			if hs.Quoted {
				return modList(reg, "html_escape"), nil
			}
			return modList(reg, "cleanse_attribute"), nil
		}
	}
	return modList(reg, "html_escape"), nil
}

// reconcile implements §4.5.1's longest-suffix reconciliation: find the
// longest suffix of A that is already covered by M (matching XSS-safe
// alternatives, skipping same-class non-UNIQUE "neutral filler" elements
// of M), and append whatever prefix of A remains uncovered.
func reconcile(reg *modifier.Registry, m, a []node.ModApp) []node.ModApp {
	if len(m) == 0 {
		return a
	}
	if len(m) > 0 && m[len(m)-1].Info != nil && m[len(m)-1].Info.LongName == "none" {
		return m
	}
	if len(a) == 0 {
		return m
	}

	// For each candidate suffix length of A (from longest to shortest),
	// try to match it against the tail of M.
	for k := len(a); k >= 0; k-- {
		suffix := a[len(a)-k:]
		if suffixMatches(reg, m, suffix) {
			prefix := a[:len(a)-k]
			out := make([]node.ModApp, 0, len(m)+len(prefix))
			out = append(out, m...)
			out = append(out, prefix...)
			return out
		}
	}
	out := make([]node.ModApp, 0, len(m)+len(a))
	out = append(out, m...)
	out = append(out, a...)
	return out
}

// suffixMatches reports whether suffix (a tail of A) can be matched
// walking M right-to-left, allowing neutral fillers in M to be skipped.
func suffixMatches(reg *modifier.Registry, m, suffix []node.ModApp) bool {
	if len(suffix) == 0 {
		return true
	}
	mi := len(m) - 1
	for ai := len(suffix) - 1; ai >= 0; ai-- {
		for {
			if mi < 0 {
				return false
			}
			mMod, aMod := m[mi].Info, suffix[ai].Info
			if reg.SafeAlt(mMod, aMod) {
				mi--
				break
			}
			if mMod != nil && aMod != nil && mMod.Class == aMod.Class && aMod.Class != modifier.ClassUnique {
				// neutral filler: consumed from M only, A element still
				// needs to be matched by something further left in M.
				mi--
				continue
			}
			return false
		}
	}
	return true
}
