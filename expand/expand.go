// Package expand walks a compiled node tree against a Dictionary,
// writing literal text, resolved variable values, and included
// sub-templates to an output stream.
package expand

import (
	"bytes"
	"io"
	"strings"

	"github.com/robfig/ctemplate/cache"
	"github.com/robfig/ctemplate/compile"
	"github.com/robfig/ctemplate/dictionary"
	"github.com/robfig/ctemplate/modifier"
	"github.com/robfig/ctemplate/node"
)

// state carries the per-call output sink and running failure flag; the
// current dictionary and source buffer are threaded as parameters
// instead, since they change at every Section/Include boundary.
type state struct {
	w     io.Writer
	reg   *modifier.Registry
	cache *cache.Cache
	ok    bool
}

// Expand writes tree's expansion against dict to w, returning true iff no
// sub-expansion failure occurred anywhere in the tree (§4.7).
func Expand(w io.Writer, tree *compile.Tree, dict dictionary.Dictionary, reg *modifier.Registry, c *cache.Cache) bool {
	s := &state{w: w, reg: reg, cache: c, ok: true}
	s.section(tree.Root, tree.Buffer, dict)
	return s.ok
}

func (s *state) fail() { s.ok = false }

func (s *state) walk(n node.Node, buf []byte, dict dictionary.Dictionary) {
	switch n := n.(type) {
	case *node.Text:
		s.w.Write(n.Bytes(buf))
	case *node.Variable:
		s.variable(n, dict)
	case *node.Section:
		s.section(n, buf, dict)
	case *node.Include:
		s.include(n, dict)
	}
}

// section implements §4.7's Section node rule: the root sentinel expands
// its children once; otherwise a hidden section is skipped, an empty
// sub-dictionary list expands once against the current dict, and a
// non-empty list expands once per sub-dictionary.
func (s *state) section(sec *node.Section, buf []byte, dict dictionary.Dictionary) {
	if sec.Name == node.MainSection {
		s.expandChildren(sec, buf, dict)
		return
	}
	if dict.IsHiddenSection(sec.Name) {
		return
	}
	subs := dict.Dictionaries(sec.Name)
	annotate := dict.ShouldAnnotateOutput()
	if len(subs) == 0 {
		s.expandSectionOnce(sec, buf, dict, annotate)
		return
	}
	for _, sub := range subs {
		s.expandSectionOnce(sec, buf, sub, annotate)
	}
}

func (s *state) expandSectionOnce(sec *node.Section, buf []byte, dict dictionary.Dictionary, annotate bool) {
	if annotate {
		s.writeOpenTag("SECTION", sec.Name)
	}
	s.expandChildren(sec, buf, dict)
	if annotate {
		s.writeCloseTag("SECTION")
	}
}

func (s *state) expandChildren(sec *node.Section, buf []byte, dict dictionary.Dictionary) {
	for _, c := range sec.Children {
		s.walk(c, buf, dict)
	}
}

// variable implements §4.7's Variable node rule: look up the value,
// piping it through the modifier chain if any, with intermediate buffers
// sized per modifier.Chain's growth allowance.
func (s *state) variable(v *node.Variable, dict dictionary.Dictionary) {
	value := dict.Value(v.Name)
	annotate := dict.ShouldAnnotateOutput()
	if annotate {
		s.writeOpenTag("VAR", annotationDetail(v.Name, v.Modifiers))
	}
	modifier.Chain(toApplications(v.Modifiers), dataFor(dict), value, modifier.WriterEmitter{W: s.w})
	if annotate {
		s.writeCloseTag("VAR")
	}
}

// include implements §4.7's Include node rule: one iteration per
// sub-dictionary bound to the include name, each loaded from the cache
// under the context the compiler already resolved for this call site
// (node.Include.Context), with failures ORed into the running flag
// without aborting sibling iterations or the surrounding expansion.
func (s *state) include(inc *node.Include, dict dictionary.Dictionary) {
	if dict.IsHiddenTemplate(inc.Name) {
		return
	}
	subs := dict.TemplateDictionaries(inc.Name)
	annotate := dict.ShouldAnnotateOutput()

	for i, sub := range subs {
		filename := dict.IncludeTemplateName(inc.Name, i)
		if len(filename) == 0 {
			continue
		}
		tree, err := s.cache.Get(cache.Key{Path: string(filename), Strip: inc.Strip, Ctx: inc.Context})
		if err != nil {
			cache.Logger.Printf("include %q -> %s: %v", inc.Name, filename, err)
			s.fail()
			continue
		}

		needsBuffer := len(inc.Modifiers) > 0 || inc.Indent != ""
		var out io.Writer = s.w
		var buf *bytes.Buffer
		if needsBuffer {
			buf = new(bytes.Buffer)
			out = buf
		}

		if annotate {
			io.WriteString(out, "{{#INCLUDE="+inc.Name+"}}")
			io.WriteString(out, "{{#FILE="+stripPathPrefix(string(filename), dict.TemplatePathStart())+"}}")
		}
		inner := &state{w: out, reg: s.reg, cache: s.cache, ok: true}
		inner.section(tree.Root, tree.Buffer, sub)
		if annotate {
			io.WriteString(out, "{{/FILE}}")
			io.WriteString(out, "{{/INCLUDE}}")
		}
		if !inner.ok {
			s.fail()
		}

		if !needsBuffer {
			continue
		}
		content := buf.Bytes()
		if inc.Indent != "" {
			var indented bytes.Buffer
			modifier.PrefixLine(inc.Indent)(content, "", nil, modifier.BufferEmitter{Buf: &indented})
			content = indented.Bytes()
		}
		modifier.Chain(toApplications(inc.Modifiers), dataFor(dict), content, modifier.WriterEmitter{W: s.w})
	}
}

func dataFor(dict dictionary.Dictionary) *modifier.Data {
	md, _ := dict.ModifierData().(*modifier.Data)
	return md
}

func toApplications(mods []node.ModApp) []modifier.Application {
	if len(mods) == 0 {
		return nil
	}
	out := make([]modifier.Application, len(mods))
	for i, m := range mods {
		out[i] = modifier.Application{Info: m.Info, Arg: m.Arg}
	}
	return out
}

// annotationDetail builds the "name:mods" detail text for a VAR
// annotation tag (§6.5).
func annotationDetail(name string, mods []node.ModApp) string {
	if len(mods) == 0 {
		return name
	}
	parts := make([]string, 0, len(mods)+1)
	parts = append(parts, name)
	for _, m := range mods {
		parts = append(parts, m.Info.LongName)
	}
	return strings.Join(parts, ":")
}

func (s *state) writeOpenTag(kind, detail string) {
	io.WriteString(s.w, "{{#"+kind+"="+detail+"}}")
}

func (s *state) writeCloseTag(kind string) {
	io.WriteString(s.w, "{{/"+kind+"}}")
}

// stripPathPrefix removes everything up to and including the first
// occurrence of pathStart from filename, for the FILE annotation's
// detail text (§6.5).
func stripPathPrefix(filename string, pathStart []byte) string {
	if len(pathStart) == 0 {
		return filename
	}
	idx := strings.Index(filename, string(pathStart))
	if idx < 0 {
		return filename
	}
	return filename[idx+len(pathStart):]
}
