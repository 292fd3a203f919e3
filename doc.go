/*
Package ctemplate is a server-side implementation of Google's ctemplate
library: string templates with {{name}} substitutions, {{#section}}
repetition, and {{>include}} composition, paired with a context-aware
auto-escaper that inspects the surrounding HTML/JS/CSS markup and attaches
the right escaping automatically.

Compared to html/template, the template source is parsed once up front
into a byte-addressed node tree; expansion walks that tree against a
Dictionary of values rather than re-evaluating Go expressions, which
keeps per-request work to tree-walk-and-escape.

Usage example

	set := ctemplate.New().
		SetTemplateRootDirectory("views").
		WatchFiles()
	if err := set.Err(); err != nil {
		log.Fatal(err)
	}

	tmpl := set.Template("account/overview.tpl", strip.StripWhitespace, compile.HTML)

	dict := dictionary.NewMap().
		SetValueString("user_name", user.Name)
	dict.AddSectionDict("orders").SetValueString("id", "1001")

	ok, err := tmpl.Expand(w, dict)

Each Template is cached by (path, strip mode, context); WatchFiles starts
an fsnotify watch over the directories of templates already compiled when
it is called, so edits to those files are picked up without restarting the
process. See package dictionary for building the per-request data tree,
and package modifier for registering custom escape functions.
*/
package ctemplate
