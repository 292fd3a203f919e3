package dictionary

import "github.com/robfig/ctemplate/modifier"

// Map is the reference Dictionary: an in-memory tree the caller builds
// with SetValue/AddSectionDict/AddIncludeDict before handing it to an
// expansion, mirroring the fluent style of the root package's Set builder.
type Map struct {
	parent *Map

	values   map[string][]byte
	sections map[string][]*Map
	// includes holds, per include name, the ordered sub-dictionaries and
	// the filename bound for each iteration (same index).
	includes map[string][]*Map
	filenames map[string][][]byte

	modifierData      *modifier.Data
	annotate          bool
	templatePathStart []byte
}

// NewMap returns an empty top-level dictionary with no parent.
func NewMap() *Map {
	return &Map{
		values:    make(map[string][]byte),
		sections:  make(map[string][]*Map),
		includes:  make(map[string][]*Map),
		filenames: make(map[string][][]byte),
	}
}

// NewMapWithParent returns an empty dictionary whose Value/IsHiddenSection/
// Dictionaries lookups fall through to parent when this one has no entry.
// It is how a Set roots a caller's per-request dictionary above the Set's
// own global dictionary (Set.NewDictionary): each tier is just another Map
// in the same parent chain.
func NewMapWithParent(parent *Map) *Map {
	m := NewMap()
	m.parent = parent
	return m
}

// SetValue binds name to value in this dictionary.
func (m *Map) SetValue(name string, value []byte) *Map {
	m.values[name] = value
	return m
}

// SetValueString is SetValue for a string value.
func (m *Map) SetValueString(name, value string) *Map {
	return m.SetValue(name, []byte(value))
}

// AddSectionDict appends a sub-dictionary for repeated section name,
// parented to m, and returns it for further population.
func (m *Map) AddSectionDict(name string) *Map {
	child := NewMap()
	child.parent = m
	m.sections[name] = append(m.sections[name], child)
	return child
}

// AddIncludeDict appends a sub-dictionary for the include name, bound to
// the given filename for that iteration. Include sub-dictionaries are
// never parented: include boundaries block inheritance by design.
func (m *Map) AddIncludeDict(name, filename string) *Map {
	child := NewMap()
	m.includes[name] = append(m.includes[name], child)
	m.filenames[name] = append(m.filenames[name], []byte(filename))
	return child
}

// SetModifierData attaches the per-expand modifier context.
func (m *Map) SetModifierData(d *modifier.Data) *Map {
	m.modifierData = d
	return m
}

// SetAnnotate turns on §6.5 annotation output, with prefix stripped up to
// pathStart when rendering a file's detail.
func (m *Map) SetAnnotate(pathStart string) *Map {
	m.annotate = true
	m.templatePathStart = []byte(pathStart)
	return m
}

func (m *Map) Value(name string) []byte {
	for d := m; d != nil; d = d.parent {
		if v, ok := d.values[name]; ok {
			return v
		}
	}
	return nil
}

func (m *Map) IsHiddenSection(name string) bool {
	for d := m; d != nil; d = d.parent {
		if _, ok := d.sections[name]; ok {
			return false
		}
	}
	return true
}

func (m *Map) Dictionaries(name string) []Dictionary {
	for d := m; d != nil; d = d.parent {
		if subs, ok := d.sections[name]; ok {
			return toDictionaries(subs)
		}
	}
	return nil
}

func (m *Map) IsHiddenTemplate(name string) bool {
	_, ok := m.includes[name]
	return !ok
}

func (m *Map) TemplateDictionaries(name string) []Dictionary {
	return toDictionaries(m.includes[name])
}

func (m *Map) IncludeTemplateName(name string, index int) []byte {
	names, ok := m.filenames[name]
	if !ok || index < 0 || index >= len(names) {
		return nil
	}
	return names[index]
}

func (m *Map) ModifierData() interface{} {
	if m.modifierData == nil {
		return nil
	}
	return m.modifierData
}

func (m *Map) ShouldAnnotateOutput() bool { return m.annotate }
func (m *Map) TemplatePathStart() []byte  { return m.templatePathStart }

func toDictionaries(subs []*Map) []Dictionary {
	if len(subs) == 0 {
		return nil
	}
	out := make([]Dictionary, len(subs))
	for i, s := range subs {
		out[i] = s
	}
	return out
}
