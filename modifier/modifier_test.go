package modifier_test

import (
	"bytes"
	"testing"

	"github.com/robfig/ctemplate/modifier"
)

func run(fn modifier.Func, in string) string {
	var buf bytes.Buffer
	fn([]byte(in), "", nil, modifier.BufferEmitter{Buf: &buf})
	return buf.String()
}

func TestHTMLEscape(t *testing.T) {
	cases := map[string]string{
		`<script>`:      `&lt;script&gt;`,
		`a & b`:         `a &amp; b`,
		`"quoted"`:      `&quot;quoted&quot;`,
		"tab\there":     "tab here",
		`it's`:          `it&#39;s`,
		`plain`:         `plain`,
	}
	for in, want := range cases {
		if got := run(modifier.HTMLEscape, in); got != want {
			t.Errorf("HTMLEscape(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestHTMLEscapeNotIdempotentOnMarkup(t *testing.T) {
	once := run(modifier.HTMLEscape, `<a href="x">`)
	twice := run(modifier.HTMLEscape, once)
	if once == twice {
		t.Errorf("escaping & is not idempotent by construction; double application should change %q", once)
	}
}

func TestPreEscapePreservesWhitespace(t *testing.T) {
	if got := run(modifier.PreEscape, "a\tb\nc"); got != "a\tb\nc" {
		t.Errorf("PreEscape mangled whitespace: %q", got)
	}
	if got := run(modifier.PreEscape, "<b>"); got != "&lt;b&gt;" {
		t.Errorf("PreEscape(%q) = %q", "<b>", got)
	}
}

func TestSnippetEscapeWhitelist(t *testing.T) {
	cases := map[string]string{
		"<b>bold</b>":    "<b>bold</b>",
		"<br>":           "<br>",
		"<wbr>":          "<wbr>",
		"<i>not allowed": "&lt;i&gt;not allowed",
		"<b>unclosed":    "<b>unclosed</b>",
		"&{evil}":        "&amp;{evil}",
		"&amp;":          "&amp;amp;",
	}
	for in, want := range cases {
		if got := run(modifier.SnippetEscape, in); got != want {
			t.Errorf("SnippetEscape(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestCleanseAttribute(t *testing.T) {
	if got := run(modifier.CleanseAttribute, `onclick="x"`); got != `onclick__x_` {
		t.Errorf("CleanseAttribute = %q", got)
	}
	if got := run(modifier.CleanseAttribute, "valid-name_1.2:3"); got != "valid-name_1.2:3" {
		t.Errorf("CleanseAttribute mangled a valid name: %q", got)
	}
}

func TestCleanseCSS(t *testing.T) {
	if got := run(modifier.CleanseCSS, `red; background: url(javascript:alert(1))`); got != `red background urljavascriptalert1` {
		t.Errorf("CleanseCSS = %q", got)
	}
}

func TestValidateURL(t *testing.T) {
	safe := modifier.ValidateURL(modifier.HTMLEscape)
	if got := run(safe, "http://example.com/a?b=c"); got != "http://example.com/a?b=c" {
		t.Errorf("ValidateURL rejected a safe http URL: %q", got)
	}
	if got := run(safe, "https://example.com"); got != "https://example.com" {
		t.Errorf("ValidateURL rejected a safe https URL: %q", got)
	}
	if got := run(safe, "javascript:alert(1)"); got != "#" {
		t.Errorf("ValidateURL let a javascript: URL through: %q", got)
	}
	if got := run(safe, "/relative/path"); got != "/relative/path" {
		t.Errorf("ValidateURL rejected a scheme-less relative URL: %q", got)
	}
}

func TestXMLEscapeNbsp(t *testing.T) {
	if got := run(modifier.XMLEscape, "a&nbsp;b"); got != "a&#160;b" {
		t.Errorf("XMLEscape(nbsp) = %q", got)
	}
	if got := run(modifier.XMLEscape, "a & b"); got != "a &amp; b" {
		t.Errorf("XMLEscape(amp) = %q", got)
	}
}

func TestJavascriptEscape(t *testing.T) {
	cases := map[string]string{
		`it's a "test"`: `it\x27s a \x22test\x22`,
		"\n\t\\":        `\n\t\\`,
		"<script>":      `\x3cscript\x3e`,
		"  ":  `  `,
		"plain text":    "plain text",
	}
	for in, want := range cases {
		if got := run(modifier.JavascriptEscape, in); got != want {
			t.Errorf("JavascriptEscape(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestJavascriptNumber(t *testing.T) {
	cases := map[string]string{
		"123":       "123",
		"-1.5e10":   "-1.5e10",
		"0xFF":      "0xFF",
		"true":      "true",
		"false":     "false",
		"alert(1)":  "null",
		"":          "null",
	}
	for in, want := range cases {
		if got := run(modifier.JavascriptNumber, in); got != want {
			t.Errorf("JavascriptNumber(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestURLQueryEscape(t *testing.T) {
	if got := run(modifier.URLQueryEscape, "a b/c"); got != "a+b/c" {
		t.Errorf("URLQueryEscape = %q", got)
	}
	if got := run(modifier.URLQueryEscape, "100%"); got != "100%25" {
		t.Errorf("URLQueryEscape = %q", got)
	}
	if got := run(modifier.URLQueryEscape, "a=b&c"); got != "a%3Db%26c" {
		t.Errorf("URLQueryEscape = %q", got)
	}
}

func TestJSONEscape(t *testing.T) {
	if got := run(modifier.JSONEscape, `a"b\c/d`); got != `a\"b\\c\/d` {
		t.Errorf("JSONEscape = %q", got)
	}
}

func TestPrefixLine(t *testing.T) {
	fn := modifier.PrefixLine("  ")
	if got := run(fn, "a\nb\nc"); got != "a\n  b\n  c" {
		t.Errorf("PrefixLine = %q", got)
	}
}

func TestDataSetGet(t *testing.T) {
	d := modifier.NewData().Set("nonce", "abc")
	if got := d.Get("nonce"); got != "abc" {
		t.Errorf("Data.Get(nonce) = %v", got)
	}
	if got := d.Get("missing"); got != nil {
		t.Errorf("Data.Get(missing) = %v, want nil", got)
	}
	var nilData *modifier.Data
	if got := nilData.Get("x"); got != nil {
		t.Errorf("nil *Data.Get = %v, want nil", got)
	}
}
