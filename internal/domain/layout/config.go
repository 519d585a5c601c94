package layout

import "github.com/okian/labviz/internal/domain/scale"

// Init policies for relaxation.
const (
	InitDomain   = "domain"
	InitCentroid = "centroid"
)

// ConstantCenter places every mark on the viewport's midline.
const ConstantCenter = "center"

// Encoding binds one axis to a field through a scale, or to a constant.
// With both set, marks sit at the constant and the field only draws the
// axis.
type Encoding struct {
	Field    string     `yaml:"field,omitempty" json:"field,omitempty" validate:"required_without=Constant"`
	Scale    scale.Kind `yaml:"scale,omitempty" json:"scale,omitempty" validate:"omitempty,oneof=linear time point"`
	Constant string     `yaml:"constant,omitempty" json:"constant,omitempty" validate:"omitempty,oneof=center"`
	// Nice rounds a linear domain outward to tick values.
	Nice bool `yaml:"nice,omitempty" json:"nice,omitempty"`
}

// Padding is the space kept free around the plotting area, in pixels.
type Padding struct {
	Top    float64 `yaml:"top" json:"top" validate:"gte=0"`
	Right  float64 `yaml:"right" json:"right" validate:"gte=0"`
	Bottom float64 `yaml:"bottom" json:"bottom" validate:"gte=0"`
	Left   float64 `yaml:"left" json:"left" validate:"gte=0"`
}

// Relaxation configures the collision pass.
type Relaxation struct {
	Init          string  `yaml:"init" json:"init" validate:"required,oneof=domain centroid"`
	Iterations    int     `yaml:"iterations,omitempty" json:"iterations,omitempty" validate:"gte=0"`
	CollideRadius float64 `yaml:"collide_radius,omitempty" json:"collide_radius,omitempty" validate:"gte=0"`
	Strength      float64 `yaml:"strength,omitempty" json:"strength,omitempty" validate:"gte=0"`
	Seed          int64   `yaml:"seed,omitempty" json:"seed,omitempty"`
}

// Config describes how records become positioned marks. It is passed by
// value and never mutated.
type Config struct {
	// Width is used when no viewport width is supplied.
	Width float64 `yaml:"width" json:"width" validate:"gt=0"`
	// AspectRatio is height divided by width. Zero keeps Height fixed.
	AspectRatio float64     `yaml:"aspect_ratio,omitempty" json:"aspect_ratio,omitempty" validate:"gte=0"`
	Height      float64     `yaml:"height,omitempty" json:"height,omitempty" validate:"required_without=AspectRatio,gte=0"`
	Padding     Padding     `yaml:"padding" json:"padding"`
	X           Encoding    `yaml:"x" json:"x"`
	Y           Encoding    `yaml:"y" json:"y"`
	Radius      float64     `yaml:"radius" json:"radius" validate:"gt=0"`
	Ticks       int         `yaml:"ticks,omitempty" json:"ticks,omitempty" validate:"gte=0"`
	Relax       *Relaxation `yaml:"relax,omitempty" json:"relax,omitempty"`
}

// Viewport is the pixel size of one render.
type Viewport struct {
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// Resize returns the viewport for a container width. Height follows the
// configured aspect ratio, or stays fixed when there is none. A
// non-positive width falls back to the configured width.
func Resize(cfg Config, width float64) Viewport {
	if width <= 0 {
		width = cfg.Width
	}
	if cfg.AspectRatio > 0 {
		return Viewport{Width: width, Height: width * cfg.AspectRatio}
	}
	return Viewport{Width: width, Height: cfg.Height}
}
