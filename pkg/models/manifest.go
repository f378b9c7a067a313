package models

import "encoding/json"

// Manifest is the job's structured configuration document (the source's
// JDL-derived manifest): a flat set of free-form, possibly multi-valued
// options, plus named, mutable sections that the scheduling core creates
// to record its site decision (the "JobRequirements" section).
type Manifest struct {
	options  map[string][]string
	sections map[string]*ManifestSection
}

// manifestWire is the JSON-serializable shape of a Manifest, used by
// pkg/catalog to store it as a single JSONB column.
type manifestWire struct {
	Options  map[string][]string         `json:"options"`
	Sections map[string]*ManifestSection `json:"sections"`
}

// MarshalJSON implements json.Marshaler over the manifest's unexported fields.
func (m *Manifest) MarshalJSON() ([]byte, error) {
	return json.Marshal(manifestWire{Options: m.options, Sections: m.sections})
}

// UnmarshalJSON implements json.Unmarshaler, rehydrating a manifest
// persisted by MarshalJSON.
func (m *Manifest) UnmarshalJSON(data []byte) error {
	var wire manifestWire
	if err := json.Unmarshal(data, &wire); err != nil {
		return err
	}
	if wire.Options == nil {
		wire.Options = make(map[string][]string)
	}
	if wire.Sections == nil {
		wire.Sections = make(map[string]*ManifestSection)
	}
	m.options = wire.Options
	m.sections = wire.Sections
	return nil
}

// ManifestSection is a named group of single-valued options.
type ManifestSection struct {
	Options map[string]string
}

// NewManifest builds an empty manifest.
func NewManifest() *Manifest {
	return &Manifest{
		options:  make(map[string][]string),
		sections: make(map[string]*ManifestSection),
	}
}

// SetOption sets a (possibly multi-valued) top-level option. Used by tests
// and by collaborator implementations hydrating a manifest from storage.
func (m *Manifest) SetOption(name string, values ...string) {
	m.options[name] = values
}

// GetOption returns a multi-valued option, or def if unset.
func (m *Manifest) GetOption(name string, def []string) []string {
	if v, ok := m.options[name]; ok {
		return v
	}
	return def
}

// GetOptionString returns the first value of an option, or def if unset or empty.
func (m *Manifest) GetOptionString(name, def string) string {
	v := m.GetOption(name, nil)
	if len(v) == 0 {
		return def
	}
	return v[0]
}

// HasSection reports whether a named section exists (the manifest's
// membership test, `name in manifest`, for a specific section name).
func (m *Manifest) HasSection(name string) bool {
	_, ok := m.sections[name]
	return ok
}

// GetSection returns a named section and whether it exists.
func (m *Manifest) GetSection(name string) (*ManifestSection, bool) {
	s, ok := m.sections[name]
	return s, ok
}

// CreateSection creates (or returns the existing) named section.
func (m *Manifest) CreateSection(name string) *ManifestSection {
	if s, ok := m.sections[name]; ok {
		return s
	}
	s := &ManifestSection{Options: make(map[string]string)}
	m.sections[name] = s
	return s
}

// SetOption sets a single-valued option on the section.
func (s *ManifestSection) SetOption(name, value string) {
	s.Options[name] = value
}
