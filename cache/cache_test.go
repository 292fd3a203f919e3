package cache_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/robfig/ctemplate/cache"
	"github.com/robfig/ctemplate/compile"
	"github.com/robfig/ctemplate/modifier"
	"github.com/robfig/ctemplate/strip"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestGetCompilesAndCaches(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "a.tpl", "hello")
	c := cache.New(modifier.NewRegistry())
	key := cache.Key{Path: path, Strip: strip.DoNotStrip, Ctx: compile.Manual}

	tr1, err := c.Get(key)
	if err != nil {
		t.Fatal(err)
	}
	tr2, err := c.Get(key)
	if err != nil {
		t.Fatal(err)
	}
	if tr1 != tr2 {
		t.Errorf("Get should return the same cached *Tree on repeat calls")
	}
}

func TestReloadIfChangedPicksUpEdit(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "a.tpl", "v1")
	c := cache.New(modifier.NewRegistry())
	key := cache.Key{Path: path, Strip: strip.DoNotStrip, Ctx: compile.Manual}

	tr1, err := c.Get(key)
	if err != nil {
		t.Fatal(err)
	}

	// Ensure the new mtime is observably later.
	future := time.Now().Add(2 * time.Second)
	writeFile(t, dir, "a.tpl", "v2")
	if err := os.Chtimes(path, future, future); err != nil {
		t.Fatal(err)
	}

	tr2, err := c.ReloadIfChanged(key)
	if err != nil {
		t.Fatal(err)
	}
	if tr1 == tr2 {
		t.Errorf("ReloadIfChanged should have produced a new *Tree after an edit")
	}
	if string(tr2.Root.Children[0].(interface{ Bytes([]byte) []byte }).Bytes(tr2.Buffer)) != "v2" {
		t.Errorf("reloaded content mismatch")
	}
}

func TestClearForcesRecompile(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "a.tpl", "hello")
	c := cache.New(modifier.NewRegistry())
	key := cache.Key{Path: path, Strip: strip.DoNotStrip, Ctx: compile.Manual}

	tr1, err := c.Get(key)
	if err != nil {
		t.Fatal(err)
	}
	c.Clear()
	tr2, err := c.Get(key)
	if err != nil {
		t.Fatal(err)
	}
	if tr1 == tr2 {
		t.Errorf("Clear should force a fresh compile")
	}
}

func TestJSSuffixDowngradesStripWhitespace(t *testing.T) {
	dir := t.TempDir()
	// A line with trailing whitespace-only content would be fully trimmed
	// under STRIP_WHITESPACE; under the .js downgrade to
	// STRIP_BLANK_LINES it is left alone unless the whole line is blank.
	path := writeFile(t, dir, "a.js", "x\n\ny\n")
	c := cache.New(modifier.NewRegistry())
	key := cache.Key{Path: path, Strip: strip.StripWhitespace, Ctx: compile.Manual}

	tr, err := c.Get(key)
	if err != nil {
		t.Fatal(err)
	}
	var out []byte
	for _, ch := range tr.Root.Children {
		out = append(out, ch.(interface{ Bytes([]byte) []byte }).Bytes(tr.Buffer)...)
	}
	if string(out) != "x\ny\n" {
		t.Errorf("got %q, want blank-line-stripped content %q", out, "x\ny\n")
	}
}

func TestMissingFileErrors(t *testing.T) {
	c := cache.New(modifier.NewRegistry())
	key := cache.Key{Path: filepath.Join(t.TempDir(), "missing.tpl"), Strip: strip.DoNotStrip, Ctx: compile.Manual}
	if _, err := c.Get(key); err == nil {
		t.Fatal("expected an error for a missing file")
	}
}
