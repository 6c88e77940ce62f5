package noteskin

import (
	"fmt"
	"sort"
	"strings"
)

// Registry is the set of noteskins available by name. It is built once and
// only read afterwards, so it can be shared between goroutines.
type Registry struct {
	skins    map[string]*Noteskin
	names    []string
	fallback string
}

// NewRegistry loads every definition. defaultName, if not empty, is the skin
// preferred by DefaultFor. Names are case-insensitive.
func NewRegistry(defs []Definition, defaultName string) (*Registry, error) {
	r := &Registry{skins: map[string]*Noteskin{}, fallback: strings.ToLower(defaultName)}
	for _, def := range defs {
		name := strings.ToLower(def.Name)
		if _, ok := r.skins[name]; ok {
			return nil, fmt.Errorf("duplicate noteskin name %q", def.Name)
		}
		skin, err := Load(def)
		if err != nil {
			return nil, err
		}
		r.skins[name] = skin
		r.names = append(r.names, name)
	}
	if r.fallback != "" {
		if _, ok := r.skins[r.fallback]; !ok {
			return nil, fmt.Errorf("default noteskin %q is not defined", defaultName)
		}
	}
	sort.Strings(r.names)
	return r, nil
}

// Get returns the noteskin with the given name.
func (r *Registry) Get(name string) (*Noteskin, bool) {
	skin, ok := r.skins[strings.ToLower(name)]
	return skin, ok
}

// Names returns the sorted names of all noteskins.
func (r *Registry) Names() []string {
	ret := make([]string, len(r.names))
	copy(ret, r.names)
	return ret
}

// DefaultFor returns a noteskin that can draw the keymode: the default skin
// if it can, otherwise the first one by name.
func (r *Registry) DefaultFor(keymode int) (string, *Noteskin, bool) {
	if skin, ok := r.skins[r.fallback]; ok && skin.SupportsKeymode(keymode) {
		return r.fallback, skin, true
	}
	for _, name := range r.names {
		if skin := r.skins[name]; skin.SupportsKeymode(keymode) {
			return name, skin, true
		}
	}
	return "", nil, false
}
