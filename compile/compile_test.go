package compile_test

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/robfig/ctemplate/compile"
	"github.com/robfig/ctemplate/errortypes"
	"github.com/robfig/ctemplate/modifier"
	"github.com/robfig/ctemplate/node"
	"github.com/robfig/ctemplate/strip"
)

func mustCompile(t *testing.T, src string, ctx compile.Context) *compile.Tree {
	t.Helper()
	tr, err := compile.Compile("t", []byte(src), ctx, strip.DoNotStrip, modifier.NewRegistry())
	if err != nil {
		t.Fatalf("Compile(%q) error: %v", src, err)
	}
	return tr
}

func names(children []node.Node) []string {
	out := make([]string, len(children))
	for i, c := range children {
		out[i] = node.String(c)
	}
	return out
}

func TestPlainTextTree(t *testing.T) {
	tr := mustCompile(t, "hello world", compile.Manual)
	if len(tr.Root.Children) != 1 {
		t.Fatalf("children = %v", names(tr.Root.Children))
	}
	txt, ok := tr.Root.Children[0].(*node.Text)
	if !ok {
		t.Fatalf("expected *node.Text, got %T", tr.Root.Children[0])
	}
	if string(txt.Bytes(tr.Buffer)) != "hello world" {
		t.Errorf("text = %q", txt.Bytes(tr.Buffer))
	}
}

func TestVariableAutoEscapesInHTMLText(t *testing.T) {
	tr := mustCompile(t, "hi {{NAME}}", compile.HTML)
	v, ok := tr.Root.Children[1].(*node.Variable)
	if !ok {
		t.Fatalf("expected *node.Variable, got %T", tr.Root.Children[1])
	}
	if len(v.Modifiers) != 1 || v.Modifiers[0].Info.LongName != "html_escape" {
		t.Errorf("modifiers = %+v, want [html_escape]", v.Modifiers)
	}
}

func TestVariableInUnquotedURIAttrErrors(t *testing.T) {
	_, err := compile.Compile("t", []byte(`<a href={{URL}}>`), compile.HTML, strip.DoNotStrip, modifier.NewRegistry())
	if err == nil {
		t.Fatal("expected error for unquoted URI attribute starting with a variable")
	}
}

func TestVariableInQuotedURIAttrGetsValidateURL(t *testing.T) {
	tr := mustCompile(t, `<a href="{{URL}}">`, compile.HTML)
	// child[0] Text "<a href=\"", child[1] Variable
	v := tr.Root.Children[1].(*node.Variable)
	if len(v.Modifiers) != 1 || v.Modifiers[0].Info.LongName != "url_escape_validate_html" {
		t.Errorf("modifiers = %+v, want [url_escape_validate_html]", v.Modifiers)
	}
}

func TestSectionNesting(t *testing.T) {
	tr := mustCompile(t, "{{#items}}x{{/items}}", compile.Manual)
	if len(tr.Root.Children) != 1 {
		t.Fatalf("children = %v", names(tr.Root.Children))
	}
	sec, ok := tr.Root.Children[0].(*node.Section)
	if !ok || sec.Name != "items" {
		t.Fatalf("expected Section(items), got %v", tr.Root.Children[0])
	}
	if len(sec.Children) != 1 {
		t.Fatalf("section children = %v", names(sec.Children))
	}
}

func TestSectionNestingShape(t *testing.T) {
	tr := mustCompile(t, "a{{#outer}}b{{#inner}}c{{/inner}}d{{/outer}}e", compile.Manual)
	want := []string{"Text[0:1]", "Section(outer, 3 children)", "Text[44:45]"}
	if diff := cmp.Diff(want, names(tr.Root.Children)); diff != "" {
		t.Errorf("root children mismatch (-want +got):\n%s", diff)
	}
}

func TestMismatchedSectionEndErrors(t *testing.T) {
	_, err := compile.Compile("t", []byte("{{#a}}x{{/b}}"), compile.Manual, strip.DoNotStrip, modifier.NewRegistry())
	if err == nil {
		t.Fatal("expected error for mismatched section end")
	}
}

func TestUnclosedSectionErrors(t *testing.T) {
	_, err := compile.Compile("t", []byte("{{#a}}x"), compile.Manual, strip.DoNotStrip, modifier.NewRegistry())
	if err == nil {
		t.Fatal("expected error for unclosed section")
	}
}

func TestMismatchedSectionEndIsClassifiedAsSyntaxError(t *testing.T) {
	_, err := compile.Compile("t", []byte("{{#a}}x{{/b}}"), compile.Manual, strip.DoNotStrip, modifier.NewRegistry())
	if !errortypes.Is(err, errortypes.CodeSyntax) {
		t.Fatalf("err = %v, want a CodeSyntax ErrFilePos", err)
	}
	fp := errortypes.ToErrFilePos(err)
	if fp == nil || fp.File() != "t" || fp.Line() != 1 {
		t.Errorf("fp = %+v", fp)
	}
}

func TestUnquotedURIAttrErrorIsClassifiedAsPolicyError(t *testing.T) {
	_, err := compile.Compile("t", []byte(`<a href={{U}}>`), compile.HTML, strip.DoNotStrip, modifier.NewRegistry())
	if !errortypes.Is(err, errortypes.CodePolicy) {
		t.Fatalf("err = %v, want a CodePolicy ErrFilePos", err)
	}
}

func TestBISpaceAndNewlineAreLiteralText(t *testing.T) {
	tr := mustCompile(t, "a{{BI_SPACE}}b{{BI_NEWLINE}}c", compile.Manual)
	var out []byte
	for _, c := range tr.Root.Children {
		txt := c.(*node.Text)
		out = append(out, txt.Bytes(tr.Buffer)...)
	}
	if string(out) != "a b\nc" {
		t.Errorf("out = %q, want %q", out, "a b\nc")
	}
}

func TestIncludeWithoutModifiersPropagatesContext(t *testing.T) {
	tr := mustCompile(t, "{{>body}}", compile.HTML)
	inc := tr.Root.Children[0].(*node.Include)
	if inc.Context != compile.HTML {
		t.Errorf("Context = %v, want HTML", inc.Context)
	}
	if len(inc.Modifiers) != 0 {
		t.Errorf("Modifiers = %+v, want none", inc.Modifiers)
	}
}

func TestIncludeWithModifiersForcesNone(t *testing.T) {
	tr := mustCompile(t, "{{>body:h}}", compile.HTML)
	inc := tr.Root.Children[0].(*node.Include)
	if inc.Context != compile.None {
		t.Errorf("Context = %v, want None", inc.Context)
	}
	if len(inc.Modifiers) == 0 {
		t.Errorf("Modifiers should include the author's explicit modifier")
	}
}

func TestIndentCapturedOnInclude(t *testing.T) {
	tr := mustCompile(t, "line\n  {{>body}}", compile.Manual)
	inc := tr.Root.Children[1].(*node.Include)
	if inc.Indent != "  " {
		t.Errorf("Indent = %q, want %q", inc.Indent, "  ")
	}
}

func TestIndentClearedAfterNonWhitespaceText(t *testing.T) {
	tr := mustCompile(t, "line\n  x{{>body}}", compile.Manual)
	inc := tr.Root.Children[2].(*node.Include)
	if inc.Indent != "" {
		t.Errorf("Indent = %q, want empty", inc.Indent)
	}
}

func TestIndentCapturedAtDocumentStart(t *testing.T) {
	tr := mustCompile(t, "  {{>body}}", compile.Manual)
	inc := tr.Root.Children[1].(*node.Include)
	if inc.Indent != "  " {
		t.Errorf("Indent = %q, want %q (beginning of document counts as an implicit newline)", inc.Indent, "  ")
	}
}

func TestCommentDiscardedFromTree(t *testing.T) {
	tr := mustCompile(t, "a{{!note}}b", compile.Manual)
	if len(tr.Root.Children) != 2 {
		t.Fatalf("children = %v, want 2 text nodes", names(tr.Root.Children))
	}
}

func TestHTMLInTagStartsInsideTag(t *testing.T) {
	tr := mustCompile(t, `class="{{C}}"`, compile.HTMLInTag)
	v := tr.Root.Children[0].(*node.Variable)
	if len(v.Modifiers) != 1 || v.Modifiers[0].Info.LongName != "html_escape" {
		t.Errorf("modifiers = %+v, want [html_escape]", v.Modifiers)
	}
}

func TestScriptBodyVariableGetsJavascriptEscape(t *testing.T) {
	tr := mustCompile(t, `<script>var x = "{{V}}";</script>`, compile.HTML)
	var v *node.Variable
	node.Walk(tr.Root, func(n node.Node) bool {
		if vv, ok := n.(*node.Variable); ok {
			v = vv
		}
		return true
	})
	if v == nil {
		t.Fatal("no Variable node found")
	}
	if len(v.Modifiers) != 1 || v.Modifiers[0].Info.LongName != "javascript_escape" {
		t.Errorf("modifiers = %+v, want [javascript_escape]", v.Modifiers)
	}
}

func TestManualContextAttachesNoModifiers(t *testing.T) {
	tr := mustCompile(t, "<a href={{URL}}>", compile.Manual)
	v := tr.Root.Children[1].(*node.Variable)
	if len(v.Modifiers) != 0 {
		t.Errorf("modifiers = %+v, want none under MANUAL", v.Modifiers)
	}
}

func TestModifierGivenForbiddenValueErrors(t *testing.T) {
	// pre_escape (short name 'p') is ValueForbidden; "=foo" must be rejected.
	_, err := compile.Compile("t", []byte("{{X:p=foo}}"), compile.Manual, strip.DoNotStrip, modifier.NewRegistry())
	if !errortypes.Is(err, errortypes.CodeSyntax) {
		t.Fatalf("err = %v, want a CodeSyntax ErrFilePos", err)
	}
}

func TestModifierMissingRequiredValueErrors(t *testing.T) {
	reg := modifier.NewRegistry()
	if err := reg.AddModifier("needs_value", 0, func(in []byte, arg string, data *modifier.Data, out modifier.Emitter) {
		out.EmitBytes(in)
	}); err != nil {
		t.Fatal(err)
	}
	reg.Find("needs_value").ValueStatus = modifier.ValueRequired

	_, err := compile.Compile("t", []byte("{{X:needs_value}}"), compile.Manual, strip.DoNotStrip, reg)
	if !errortypes.Is(err, errortypes.CodeSyntax) {
		t.Fatalf("err = %v, want a CodeSyntax ErrFilePos", err)
	}
}

func TestExplicitNoneModifierSuppressesAutoEscape(t *testing.T) {
	tr := mustCompile(t, "{{NAME:none}}", compile.HTML)
	v := tr.Root.Children[0].(*node.Variable)
	if len(v.Modifiers) != 1 || v.Modifiers[0].Info.LongName != "none" {
		t.Errorf("modifiers = %+v, want [none]", v.Modifiers)
	}
}
