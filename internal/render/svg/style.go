package svg

import (
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"strings"

	model "github.com/okian/labviz/internal/domain/model"
)

// ErrGlyph is returned for glyph fragments that are not well-formed XML.
var ErrGlyph = errors.New("invalid glyph")

// DefaultBackground is the chart background colour.
const DefaultBackground = "lavender"

// Palette colours categories in first-seen order.
var Palette = []string{
	"#1f77b4", "#ff7f0e", "#2ca02c", "#d62728", "#9467bd",
	"#8c564b", "#e377c2", "#7f7f7f", "#bcbd22", "#17becf",
}

// Style controls how marks are drawn.
type Style struct {
	Background string `yaml:"background,omitempty" json:"background,omitempty"`
	Fill       string `yaml:"fill,omitempty" json:"fill,omitempty"`
	// Glyph is a raw SVG fragment drawn instead of a circle.
	Glyph      string  `yaml:"glyph,omitempty" json:"glyph,omitempty"`
	GlyphScale float64 `yaml:"glyph_scale,omitempty" json:"glyph_scale,omitempty" validate:"gte=0"`
	// ColorBy picks a palette colour per distinct value of a field.
	ColorBy string `yaml:"color_by,omitempty" json:"color_by,omitempty"`
	Title   string `yaml:"title,omitempty" json:"title,omitempty"`

	// Highlight marks points for the active narrative section. Unmatched
	// points are dimmed. Nil highlights nothing.
	Highlight func(model.NormalizedRecord) bool `yaml:"-" json:"-"`
}

// ValidateGlyph checks that a glyph fragment is well-formed XML.
func ValidateGlyph(fragment string) error {
	if strings.TrimSpace(fragment) == "" {
		return nil
	}
	dec := xml.NewDecoder(strings.NewReader("<glyph>" + fragment + "</glyph>"))
	for {
		_, err := dec.Token()
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return fmt.Errorf("%w: %v", ErrGlyph, err)
		}
	}
}
