// Package lab reads lab manifests: a data source, the schema applied to it,
// filters and the chart that draws the result.
package lab

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"regexp"
	"sort"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"github.com/okian/labviz/internal/adapters/source"
	"github.com/okian/labviz/internal/domain/events"
	"github.com/okian/labviz/internal/domain/layout"
	model "github.com/okian/labviz/internal/domain/model"
	"github.com/okian/labviz/internal/domain/pipeline"
	"github.com/okian/labviz/internal/domain/schema"
	"github.com/okian/labviz/internal/render/svg"
	"github.com/okian/labviz/internal/render/trend"
)

var (
	validate = validator.New(validator.WithRequiredStructEnabled())
	nameRe   = regexp.MustCompile(`^[a-z0-9][a-z0-9_-]*$`)
)

// Section changes the chart while a narrative section is active.
type Section struct {
	Highlight []pipeline.Predicate `yaml:"highlight" json:"highlight" validate:"dive"`
}

// Chart holds the layout and drawing settings for a lab.
type Chart struct {
	layout.Config `yaml:",inline"`

	Style svg.Style `yaml:"style,omitempty" json:"style,omitempty"`
	// Triggers limits section changes to these ids. Empty forwards every
	// change.
	Triggers []string           `yaml:"triggers,omitempty" json:"triggers,omitempty" validate:"dive,required"`
	Sections map[string]Section `yaml:"sections,omitempty" json:"sections,omitempty" validate:"dive"`
}

// Manifest describes one lab.
type Manifest struct {
	Name    string               `yaml:"name" json:"name" validate:"required"`
	Title   string               `yaml:"title,omitempty" json:"title,omitempty"`
	Source  source.Spec          `yaml:"source" json:"source"`
	Schema  schema.Schema        `yaml:"schema" json:"schema"`
	Filters []pipeline.Predicate `yaml:"filters,omitempty" json:"filters,omitempty" validate:"dive"`
	Limit   int                  `yaml:"limit,omitempty" json:"limit,omitempty" validate:"gte=0"`
	Chart   Chart                `yaml:"chart" json:"chart"`
	Trend   *trend.Options       `yaml:"trend,omitempty" json:"trend,omitempty"`

	dir       string
	highlight map[string]func(model.NormalizedRecord) bool
}

// Parse decodes and validates a manifest. Unknown keys are rejected.
func Parse(r io.Reader) (*Manifest, error) {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	var m Manifest
	if err := dec.Decode(&m); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidManifest, err)
	}
	if err := m.Validate(); err != nil {
		return nil, err
	}
	return &m, nil
}

// LoadFile parses the manifest at path. Relative source paths resolve
// against the manifest's directory.
func LoadFile(path string) (*Manifest, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer func() { _ = f.Close() }()

	m, err := Parse(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", filepath.Base(path), err)
	}
	m.dir = filepath.Dir(path)
	return m, nil
}

// Validate checks the manifest and compiles its schema and predicates.
func (m *Manifest) Validate() error {
	if err := validate.Struct(m); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidManifest, err)
	}
	if !nameRe.MatchString(m.Name) {
		return fmt.Errorf("%w: name %q must be lowercase letters, digits, '-' or '_'", ErrInvalidManifest, m.Name)
	}
	if (m.Source.Path == "") == (m.Source.URL == "") {
		return fmt.Errorf("%w: source needs exactly one of path or url", ErrInvalidManifest)
	}
	if _, err := m.Source.ResolveFormat(); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidManifest, err)
	}
	if err := m.Schema.Compile(); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidManifest, err)
	}
	if _, err := pipeline.Compile(m.Filters); err != nil {
		return fmt.Errorf("%w: filters: %v", ErrInvalidManifest, err)
	}
	for axis, enc := range map[string]layout.Encoding{"x": m.Chart.X, "y": m.Chart.Y} {
		if enc.Field == "" {
			continue
		}
		if _, ok := m.Schema.Field(enc.Field); !ok {
			return fmt.Errorf("%w: chart %s field %q is not in the schema", ErrInvalidManifest, axis, enc.Field)
		}
	}
	if err := svg.ValidateGlyph(m.Chart.Style.Glyph); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidManifest, err)
	}

	m.highlight = make(map[string]func(model.NormalizedRecord) bool, len(m.Chart.Sections))
	for id, sec := range m.Chart.Sections {
		if len(sec.Highlight) == 0 {
			continue
		}
		keep, err := pipeline.Compile(sec.Highlight)
		if err != nil {
			return fmt.Errorf("%w: section %q: %v", ErrInvalidManifest, id, err)
		}
		m.highlight[id] = keep
	}
	return nil
}

// SourceSpec returns the source with a relative path resolved against the
// manifest directory.
func (m *Manifest) SourceSpec() source.Spec {
	spec := m.Source
	if spec.Path != "" && !filepath.IsAbs(spec.Path) && m.dir != "" {
		spec.Path = filepath.Join(m.dir, spec.Path)
	}
	return spec
}

// Definition returns the pipeline definition for the manifest.
func (m *Manifest) Definition() pipeline.Definition {
	s := m.Schema
	s.Fields = append([]schema.Field(nil), m.Schema.Fields...)
	return pipeline.Definition{
		Name:    m.Name,
		Title:   m.Title,
		Schema:  &s,
		Filters: m.Filters,
		Limit:   m.Limit,
	}
}

// Style returns the chart style for a narrative section. An unknown or
// empty section draws every point normally.
func (m *Manifest) Style(section string) svg.Style {
	st := m.Chart.Style
	if st.Title == "" {
		st.Title = m.Title
	}
	st.Highlight = m.highlight[section]
	return st
}

// Gate returns a new section gate honouring the chart triggers.
func (m *Manifest) Gate() *events.SectionGate {
	return events.NewSectionGate(m.Chart.Triggers...)
}

// LoadDir parses every *.yaml and *.yml manifest in dir, in name order.
// Invalid manifests are skipped and reported in the joined error.
func LoadDir(dir string) ([]*Manifest, error) {
	var paths []string
	for _, pattern := range []string{"*.yaml", "*.yml"} {
		matches, err := filepath.Glob(filepath.Join(dir, pattern))
		if err != nil {
			return nil, err
		}
		paths = append(paths, matches...)
	}
	if len(paths) == 0 {
		return nil, fmt.Errorf("%w in %s", ErrNoManifests, dir)
	}
	sort.Strings(paths)

	var (
		out  []*Manifest
		errs []error
		seen = make(map[string]string, len(paths))
	)
	for _, p := range paths {
		m, err := LoadFile(p)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		if prev, dup := seen[m.Name]; dup {
			errs = append(errs, fmt.Errorf("%w: %q in %s and %s", ErrDuplicateLab, m.Name, filepath.Base(prev), filepath.Base(p)))
			continue
		}
		seen[m.Name] = p
		out = append(out, m)
	}
	return out, errors.Join(errs...)
}
