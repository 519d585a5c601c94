// Package source reads static tabular datasets from files or URLs.
package source

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"

	model "github.com/okian/labviz/internal/domain/model"
	"github.com/okian/labviz/pkg/logger"
)

// Format identifies how a source is encoded.
type Format string

// Supported formats.
const (
	FormatCSV  Format = "csv"
	FormatTSV  Format = "tsv"
	FormatJSON Format = "json"
	FormatXLSX Format = "xlsx"
)

const defaultMaxBytes = 64 << 20

// Spec locates a dataset. Exactly one of Path or URL is used; Path wins.
type Spec struct {
	Path   string `yaml:"path,omitempty" json:"path,omitempty"`
	URL    string `yaml:"url,omitempty" json:"url,omitempty" validate:"omitempty,url"`
	Format Format `yaml:"format,omitempty" json:"format,omitempty" validate:"omitempty,oneof=csv tsv json xlsx"`
	// Sheet selects the XLSX worksheet. Empty means the first sheet.
	Sheet string `yaml:"sheet,omitempty" json:"sheet,omitempty"`
}

// String describes the location for logs.
func (s Spec) String() string {
	if s.Path != "" {
		return s.Path
	}
	return s.URL
}

// ResolveFormat returns the configured format or infers it from the
// location's extension.
func (s Spec) ResolveFormat() (Format, error) {
	if s.Format != "" {
		return s.Format, nil
	}
	loc := s.Path
	if loc == "" {
		if u, err := url.Parse(s.URL); err == nil {
			loc = u.Path
		}
	}
	switch strings.ToLower(path.Ext(loc)) {
	case ".csv":
		return FormatCSV, nil
	case ".tsv", ".tab":
		return FormatTSV, nil
	case ".json":
		return FormatJSON, nil
	case ".xlsx":
		return FormatXLSX, nil
	default:
		return "", fmt.Errorf("%w: cannot infer format of %q", ErrFormat, loc)
	}
}

// Loader reads sources. It never retries.
type Loader struct {
	client   *http.Client
	baseDir  string
	maxBytes int64
	log      logger.Logger
}

// NewLoader creates a Loader.
func NewLoader(opts ...Option) *Loader {
	l := &Loader{
		client:   &http.Client{Timeout: 30 * time.Second},
		maxBytes: defaultMaxBytes,
		log:      logger.Nop(),
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Load reads and decodes spec. An unreachable source yields an empty table
// and ErrUnreachable. A source that breaks part way yields the records
// decoded so far and ErrMalformed.
func (l *Loader) Load(ctx context.Context, spec Spec) (model.Table, error) {
	format, err := spec.ResolveFormat()
	if err != nil {
		return model.Table{}, err
	}
	rc, err := l.open(ctx, spec)
	if err != nil {
		return model.Table{}, err
	}
	defer rc.Close()

	r := io.LimitReader(rc, l.maxBytes)
	var t model.Table
	switch format {
	case FormatCSV:
		t, err = decodeDelimited(r, ',')
	case FormatTSV:
		t, err = decodeDelimited(r, '\t')
	case FormatJSON:
		t, err = decodeJSON(r)
	case FormatXLSX:
		t, err = decodeXLSX(r, spec.Sheet)
	default:
		return model.Table{}, fmt.Errorf("%w: %s", ErrFormat, format)
	}
	l.log.Debug(ctx, "source decoded",
		logger.String("source", spec.String()),
		logger.String("format", string(format)),
		logger.Int("records", len(t.Records)),
		logger.Error(err),
	)
	return t, err
}

func (l *Loader) open(ctx context.Context, spec Spec) (io.ReadCloser, error) {
	switch {
	case spec.Path != "":
		p := spec.Path
		if !filepath.IsAbs(p) && l.baseDir != "" {
			p = filepath.Join(l.baseDir, p)
		}
		f, err := os.Open(p)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrUnreachable, err)
		}
		return f, nil
	case spec.URL != "":
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, spec.URL, nil)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrUnreachable, err)
		}
		resp, err := l.client.Do(req)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrUnreachable, err)
		}
		if resp.StatusCode != http.StatusOK {
			resp.Body.Close()
			return nil, fmt.Errorf("%w: unexpected status %d", ErrUnreachable, resp.StatusCode)
		}
		return resp.Body, nil
	default:
		return nil, ErrNoSource
	}
}

// Bound is a Spec paired with the Loader that reads it.
type Bound struct {
	loader *Loader
	spec   Spec
}

// Bind pairs spec with l.
func (l *Loader) Bind(spec Spec) Bound {
	return Bound{loader: l, spec: spec}
}

// Load reads the bound spec.
func (b Bound) Load(ctx context.Context) (model.Table, error) {
	return b.loader.Load(ctx, b.spec)
}

// String describes the bound location.
func (b Bound) String() string { return b.spec.String() }
