// Package cache holds compiled templates keyed by (path, strip mode,
// context), reloading one from disk when its file's mtime advances and,
// optionally, watching the filesystem so edits take effect without an
// explicit reload call.
package cache

import (
	"fmt"
	"io/ioutil"
	"log"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/robfig/ctemplate/compile"
	"github.com/robfig/ctemplate/errortypes"
	"github.com/robfig/ctemplate/modifier"
	"github.com/robfig/ctemplate/strip"
)

// Logger receives reload-error and watch-event diagnostics, in the style
// of the bundle's own package-level Logger.
var Logger = log.New(os.Stderr, "[ctemplate] ", 0)

// Key identifies one cached compiled template: its source path, the
// strip mode it was compiled under, and the context the compiler ran
// (an Include is cached under the context it will actually expand into,
// not the including template's declared context; see node.Include).
type Key struct {
	Path  string
	Strip strip.Mode
	Ctx   compile.Context
}

// resolveStripMode applies §6.2's file-extension rule: a .js-suffixed
// template downgrades STRIP_WHITESPACE to STRIP_BLANK_LINES, since blank
// line removal is always safe for JS but naive whitespace trimming can
// change token boundaries (e.g. inside a regex literal or ASI-sensitive
// statement).
func resolveStripMode(path string, sm strip.Mode) strip.Mode {
	if sm == strip.StripWhitespace && strings.HasSuffix(path, ".js") {
		return strip.StripBlankLines
	}
	return sm
}

type entry struct {
	mu      sync.RWMutex
	tree    *compile.Tree
	modTime time.Time
}

// Cache is safe for concurrent use. Template→cache lock ordering is
// fixed: callers holding an entry's lock never re-enter the Cache's own
// map lock, so reload never deadlocks against a concurrent Get.
type Cache struct {
	reg *modifier.Registry

	mu      sync.RWMutex
	entries map[Key]*entry

	watcher   *fsnotify.Watcher
	watchOnce sync.Once
}

// New returns an empty cache that compiles templates using reg's
// registered modifiers.
func New(reg *modifier.Registry) *Cache {
	return &Cache{
		reg:     reg,
		entries: make(map[Key]*entry),
	}
}

// Get returns the compiled tree for key, compiling and caching it on
// first use.
func (c *Cache) Get(key Key) (*compile.Tree, error) {
	e := c.entryFor(key)
	e.mu.RLock()
	if e.tree != nil {
		tr := e.tree
		e.mu.RUnlock()
		return tr, nil
	}
	e.mu.RUnlock()
	return c.load(key, e)
}

// ReloadIfChanged re-reads key's source file if its mtime has advanced
// since the cached copy was compiled, swapping in the new (buffer, tree)
// pair atomically. It is a no-op, returning the cached tree, if the file
// is unchanged.
func (c *Cache) ReloadIfChanged(key Key) (*compile.Tree, error) {
	e := c.entryFor(key)
	info, err := os.Stat(key.Path)
	if err != nil {
		return nil, err
	}
	e.mu.RLock()
	stale := e.tree == nil || info.ModTime().After(e.modTime)
	tr := e.tree
	e.mu.RUnlock()
	if !stale {
		return tr, nil
	}
	return c.load(key, e)
}

// ReloadAllIfChanged calls ReloadIfChanged for every key currently in the
// cache, continuing past individual failures and returning the last
// error encountered, if any (mirroring the node tree's own
// failure-without-abort convention, §4.7).
func (c *Cache) ReloadAllIfChanged() error {
	c.mu.RLock()
	keys := make([]Key, 0, len(c.entries))
	for k := range c.entries {
		keys = append(keys, k)
	}
	c.mu.RUnlock()

	var lastErr error
	for _, k := range keys {
		if _, err := c.ReloadIfChanged(k); err != nil {
			Logger.Printf("reload %s: %v", k.Path, err)
			lastErr = err
		}
	}
	return lastErr
}

// Clear drops every cached entry; the next Get recompiles from disk.
func (c *Cache) Clear() {
	c.mu.Lock()
	c.entries = make(map[Key]*entry)
	c.mu.Unlock()
}

// Watch starts an fsnotify watch over the directories of every
// currently-cached file and reloads on write events. It is idempotent;
// only the first call starts the watcher goroutine.
func (c *Cache) Watch() error {
	var err error
	c.watchOnce.Do(func() {
		c.watcher, err = fsnotify.NewWatcher()
		if err != nil {
			return
		}
		c.mu.RLock()
		dirs := map[string]bool{}
		for k := range c.entries {
			dirs[filepath.Dir(k.Path)] = true
		}
		c.mu.RUnlock()
		for d := range dirs {
			if werr := c.watcher.Add(d); werr != nil {
				Logger.Println(werr)
			}
		}
		go c.watchLoop()
	})
	return err
}

func (c *Cache) watchLoop() {
	for {
		select {
		case ev, ok := <-c.watcher.Events:
			if !ok {
				return
			}
			if ev.Op&(fsnotify.Write|fsnotify.Create) == 0 {
				continue
			}
			if err := c.ReloadAllIfChanged(); err != nil {
				Logger.Printf("reload after %v: %v", ev, err)
			}
		case err, ok := <-c.watcher.Errors:
			if !ok {
				return
			}
			Logger.Println(err)
		}
	}
}

func (c *Cache) entryFor(key Key) *entry {
	c.mu.RLock()
	e, ok := c.entries[key]
	c.mu.RUnlock()
	if ok {
		return e
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if e, ok := c.entries[key]; ok {
		return e
	}
	e = &entry{}
	c.entries[key] = e
	return e
}

func (c *Cache) load(key Key, e *entry) (*compile.Tree, error) {
	info, err := os.Stat(key.Path)
	if err != nil {
		return nil, errortypes.New(errortypes.CodeIO, key.Path, 0, 0, "stat: %v", err)
	}
	src, err := ioutil.ReadFile(key.Path)
	if err != nil {
		return nil, errortypes.New(errortypes.CodeIO, key.Path, 0, 0, "read: %v", err)
	}
	sm := resolveStripMode(key.Path, key.Strip)
	tree, err := compile.Compile(key.Path, src, key.Ctx, sm, c.reg)
	if err != nil {
		return nil, fmt.Errorf("compile %s: %w", key.Path, err)
	}

	e.mu.Lock()
	e.tree = tree
	e.modTime = info.ModTime()
	e.mu.Unlock()
	return tree, nil
}
