package presets

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/Conceptual-Machines/magda-trapbeat/internal/trapbeat"
	"github.com/Conceptual-Machines/magda-trapbeat/pkg/embedded"
	"github.com/gin-gonic/gin/binding"
	"gopkg.in/yaml.v3"
)

// ErrInvalidCatalog is returned when a preset file cannot be used
var ErrInvalidCatalog = errors.New("invalid preset catalog")

// Preset is a named base configuration. Zero or nil fields are left to the request.
type Preset struct {
	Name            string   `yaml:"name" json:"name" binding:"required"`
	Description     string   `yaml:"description" json:"description,omitempty"`
	BPM             float64  `yaml:"bpm" json:"bpm,omitempty" binding:"gte=0,lte=300"`
	Compases        int      `yaml:"compases" json:"compases,omitempty" binding:"gte=0"`
	Tonic           string   `yaml:"tonic" json:"tonic,omitempty"`
	TonicMidi       *int     `yaml:"tonic_midi" json:"tonic_midi,omitempty" binding:"omitempty,min=0,max=127"`
	Mode            string   `yaml:"mode" json:"mode,omitempty" binding:"omitempty,oneof=minor harmonic phrygianDom"`
	Swing           *float64 `yaml:"swing" json:"swing,omitempty"`
	MelodyRange     []int    `yaml:"melody_range" json:"melody_range,omitempty" binding:"omitempty,len=2,dive,min=0,max=127"`
	DarknessCeiling *float64 `yaml:"darkness_ceiling" json:"darkness_ceiling,omitempty" binding:"omitempty,gte=0"`
}

// ResolvedTonic returns the preset tonic as MIDI, preferring tonic_midi over the note name.
func (p Preset) ResolvedTonic() (int, bool) {
	if p.TonicMidi != nil {
		return *p.TonicMidi, true
	}
	if p.Tonic == "" {
		return 0, false
	}
	midi, err := trapbeat.ParseNoteName(p.Tonic)
	if err != nil {
		return 0, false
	}
	return midi, true
}

type catalogFile struct {
	Presets []Preset `yaml:"presets"`
}

// Catalog is an immutable set of presets keyed by name
type Catalog struct {
	byName map[string]Preset
	names  []string
}

// Load parses and validates a YAML preset catalog
func Load(data []byte) (*Catalog, error) {
	var file catalogFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidCatalog, err)
	}

	catalog := &Catalog{byName: make(map[string]Preset, len(file.Presets))}
	for i, preset := range file.Presets {
		preset.Name = strings.TrimSpace(preset.Name)
		if err := validate(preset); err != nil {
			return nil, fmt.Errorf("%w: preset %d: %v", ErrInvalidCatalog, i, err)
		}
		if _, dup := catalog.byName[preset.Name]; dup {
			return nil, fmt.Errorf("%w: duplicate preset %q", ErrInvalidCatalog, preset.Name)
		}
		catalog.byName[preset.Name] = preset
		catalog.names = append(catalog.names, preset.Name)
	}
	sort.Strings(catalog.names)

	return catalog, nil
}

// LoadEmbedded loads the catalog compiled into the binary
func LoadEmbedded() (*Catalog, error) {
	return Load(embedded.PresetsYAML)
}

// Get looks a preset up by name
func (c *Catalog) Get(name string) (Preset, bool) {
	preset, ok := c.byName[strings.TrimSpace(name)]
	return preset, ok
}

// List returns every preset sorted by name
func (c *Catalog) List() []Preset {
	out := make([]Preset, 0, len(c.names))
	for _, name := range c.names {
		out = append(out, c.byName[name])
	}
	return out
}

// Len returns the number of presets
func (c *Catalog) Len() int {
	return len(c.names)
}

// validate applies the binding tags, the same rules a generate request goes through
func validate(p Preset) error {
	if err := binding.Validator.ValidateStruct(p); err != nil {
		return err
	}
	if p.Tonic != "" {
		if _, err := trapbeat.ParseNoteName(p.Tonic); err != nil {
			return fmt.Errorf("%s: %w", p.Name, err)
		}
	}
	return nil
}
