package model

import "time"

// Diagnostics summarizes what a pipeline run discarded.
type Diagnostics struct {
	Read       int            `json:"read"`
	Dropped    map[string]int `json:"dropped"`
	Filtered   int            `json:"filtered"`
	Duplicates int            `json:"duplicates"`
	LoadError  string         `json:"load_error,omitempty"`
}

// DroppedTotal sums drops over every reason.
func (d Diagnostics) DroppedTotal() int {
	total := 0
	for _, n := range d.Dropped {
		total += n
	}
	return total
}

// Dataset is the immutable result of running a lab pipeline.
type Dataset struct {
	Name     string             `json:"name"`
	Title    string             `json:"title,omitempty"`
	Records  []NormalizedRecord `json:"records"`
	Columns  []string           `json:"columns"`
	Diag     Diagnostics        `json:"diagnostics"`
	LoadedAt time.Time          `json:"loaded_at"`
}

// Len returns the number of normalized records.
func (d *Dataset) Len() int {
	if d == nil {
		return 0
	}
	return len(d.Records)
}

// Summary is the list view of a dataset.
type Summary struct {
	Name       string    `json:"name"`
	Title      string    `json:"title,omitempty"`
	Records    int       `json:"records"`
	Read       int       `json:"read"`
	Dropped    int       `json:"dropped"`
	Duplicates int       `json:"duplicates"`
	LoadError  string    `json:"load_error,omitempty"`
	LoadedAt   time.Time `json:"loaded_at"`
}

// Summarize builds the list view of d.
func (d *Dataset) Summarize() Summary {
	return Summary{
		Name:       d.Name,
		Title:      d.Title,
		Records:    len(d.Records),
		Read:       d.Diag.Read,
		Dropped:    d.Diag.DroppedTotal(),
		Duplicates: d.Diag.Duplicates,
		LoadError:  d.Diag.LoadError,
		LoadedAt:   d.LoadedAt,
	}
}
