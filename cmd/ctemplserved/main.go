/*
Command ctemplserved is a small development server for one template.

Invoke it like so:

	go run ./cmd/ctemplserved -root views account/overview.tpl

It serves the named template under the given root directory on every
request, binding each URL query parameter as a top-level variable.
WatchFiles is enabled, so editing the template takes effect on the next
request without restarting the process.
*/
package main

import (
	"bytes"
	"flag"
	"fmt"
	"io"
	"log"
	"net/http"

	ctemplate "github.com/robfig/ctemplate"
	"github.com/robfig/ctemplate/compile"
	"github.com/robfig/ctemplate/strip"
)

var (
	port = flag.Int("port", 9812, "port on which to listen")
	root = flag.String("root", ".", "template root directory")
	ctx  = flag.String("context", "html", "top-level context: html, js, css, manual")
)

func main() {
	flag.Parse()
	if flag.NArg() != 1 {
		log.Fatal("usage: ctemplserved -root <dir> <template-name>")
	}

	c, err := parseContext(*ctx)
	if err != nil {
		log.Fatal(err)
	}

	set := ctemplate.New().SetTemplateRootDirectory(*root)
	tmpl := set.Template(flag.Arg(0), strip.StripWhitespace, c)
	// WatchFiles only watches the directories of templates already in the
	// cache, so load this one first.
	if err := tmpl.ReloadIfChanged(); err != nil {
		log.Println(err)
	}
	if err := set.WatchFiles().Err(); err != nil {
		log.Fatal(err)
	}

	http.HandleFunc("/", func(res http.ResponseWriter, req *http.Request) {
		serve(res, req, set, tmpl)
	})
	fmt.Printf("Listening on :%d, serving %s under %s...\n", *port, flag.Arg(0), *root)
	log.Fatal(http.ListenAndServe(fmt.Sprintf(":%d", *port), nil))
}

func serve(res http.ResponseWriter, req *http.Request, set *ctemplate.Set, tmpl *ctemplate.Template) {
	dict := set.NewDictionary()
	for k, v := range req.URL.Query() {
		dict.SetValueString(k, v[0])
	}

	var buf bytes.Buffer
	ok, err := tmpl.Expand(&buf, dict)
	if err != nil {
		http.Error(res, err.Error(), http.StatusInternalServerError)
		return
	}
	if !ok {
		res.Header().Set("X-Ctemplate-Incomplete", "1")
	}
	io.Copy(res, &buf)
}

func parseContext(s string) (compile.Context, error) {
	switch s {
	case "html":
		return compile.HTML, nil
	case "js":
		return compile.JS, nil
	case "css":
		return compile.CSS, nil
	case "manual":
		return compile.Manual, nil
	default:
		return 0, fmt.Errorf("unknown -context %q", s)
	}
}
