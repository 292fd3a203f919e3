package ctemplate

import (
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/robfig/ctemplate/cache"
	"github.com/robfig/ctemplate/compile"
	"github.com/robfig/ctemplate/dictionary"
	"github.com/robfig/ctemplate/expand"
	"github.com/robfig/ctemplate/modifier"
	"github.com/robfig/ctemplate/strip"
)

// Set is a fluent builder over a modifier registry and template cache,
// in the same deferred-error style as the original bundle: every method
// returns the receiver, and the first error encountered sticks until Err
// is checked.
type Set struct {
	reg   *modifier.Registry
	cache *cache.Cache
	root  string
	err   error

	global *dictionary.Map
}

// New returns an empty Set with the built-in modifiers registered and no
// template root directory configured (paths passed to Template are then
// used as-is).
func New() *Set {
	reg := modifier.NewRegistry()
	return &Set{
		reg:    reg,
		cache:  cache.New(reg),
		global: dictionary.NewMap(),
	}
}

// Err returns the first error recorded by a builder call, or nil.
func (s *Set) Err() error { return s.err }

// SetTemplateRootDirectory makes every subsequent Template path relative
// to dir, unless the path given to Template is already absolute.
func (s *Set) SetTemplateRootDirectory(dir string) *Set {
	s.root = dir
	return s
}

// AddModifier registers a caller-defined modifier, usable by name in
// template source and by auto-escape's own reconciliation.
func (s *Set) AddModifier(name string, shortName byte, fn modifier.Func) *Set {
	if s.err == nil {
		s.err = s.reg.AddModifier(name, shortName, fn)
	}
	return s
}

// AddXSSSafeModifier registers a caller-defined modifier that the caller
// asserts fully satisfies the auto-escape contexts it is meant for.
func (s *Set) AddXSSSafeModifier(name string, shortName byte, fn modifier.Func) *Set {
	if s.err == nil {
		s.err = s.reg.AddXSSSafeModifier(name, shortName, fn)
	}
	return s
}

// Global binds name to value in this Set's global dictionary, which every
// dictionary made by NewDictionary falls through to once its own parent
// chain misses. It is shared by every Template the Set serves; there is no
// further tier above it.
func (s *Set) Global(name string, value []byte) *Set {
	s.global.SetValue(name, value)
	return s
}

// WatchFiles starts an fsnotify watch over every directory holding a
// template this Set has already compiled at least once, reloading
// affected entries on write. Call it after the Set's templates have been
// warmed by at least one Expand, or rely on ReloadIfChanged instead.
func (s *Set) WatchFiles() *Set {
	if s.err == nil {
		s.err = s.cache.Watch()
	}
	return s
}

// NewDictionary returns a root dictionary parented to this Set's global
// tier, for a single Expand call.
func (s *Set) NewDictionary() *dictionary.Map {
	return dictionary.NewMapWithParent(s.global)
}

// Template returns a handle on the template at name (resolved against
// the Set's root directory, if one was configured and name is not
// already absolute), compiled under the given strip mode and context.
func (s *Set) Template(name string, sm strip.Mode, ctx compile.Context) *Template {
	path := name
	if s.root != "" && !filepath.IsAbs(name) {
		path = filepath.Join(s.root, name)
	}
	return &Template{set: s, path: path, strip: sm, ctx: ctx}
}

// Template is a handle on one cached, compiled template: the path,
// strip mode, and context together form its cache.Key.
type Template struct {
	set   *Set
	path  string
	strip strip.Mode
	ctx   compile.Context
}

func (t *Template) key() cache.Key {
	return cache.Key{Path: t.path, Strip: t.strip, Ctx: t.ctx}
}

// Expand writes t's expansion against dict to w. The returned bool is
// false if any nested include failed to load or expand, without aborting
// the rest of the tree, per §4.7; the error
// return is non-nil only for a failure to load or compile t itself.
func (t *Template) Expand(w io.Writer, dict dictionary.Dictionary) (bool, error) {
	tree, err := t.set.cache.Get(t.key())
	if err != nil {
		return false, err
	}
	return expand.Expand(w, tree, dict, t.set.reg, t.set.cache), nil
}

// ReloadIfChanged re-stats and, if needed, recompiles t's source file,
// for callers that poll explicitly instead of using Set.WatchFiles.
func (t *Template) ReloadIfChanged() error {
	_, err := t.set.cache.ReloadIfChanged(t.key())
	return err
}

// AddTemplateDir registers every file under root matching suffix with the
// cache by pre-warming it (a Get under sm/ctx), so a subsequent WatchFiles
// call picks up its directory. Errors from individual files are logged
// and skipped; the first filesystem-walk error, if any, is returned.
func (s *Set) AddTemplateDir(root string, suffix string, sm strip.Mode, ctx compile.Context) error {
	return filepath.Walk(root, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if info.IsDir() || !strings.HasSuffix(path, suffix) {
			return nil
		}
		if _, err := s.cache.Get(cache.Key{Path: path, Strip: sm, Ctx: ctx}); err != nil {
			cache.Logger.Printf("precompile %s: %v", path, err)
		}
		return nil
	})
}
