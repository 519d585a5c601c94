package scrollsim

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// ErrInvalidScript is returned for scripts with unknown or incomplete steps.
var ErrInvalidScript = errors.New("invalid script")

// DefaultScript scrolls down through three sections, lingers, scrolls back
// and resizes the window twice.
func DefaultScript() []Step {
	return []Step{
		{Type: "section", ID: "intro"},
		{Type: "section", ID: "intro"},
		{Type: "section", ID: "one"},
		{Type: "section", ID: "two"},
		{Type: "section", ID: "two"},
		{Type: "resize", Width: 640},
		{Type: "section", ID: "three"},
		{Type: "section", ID: "two"},
		{Type: "resize", Width: 1200},
	}
}

// LoadScript reads a YAML list of steps.
func LoadScript(path string) ([]Step, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read script: %w", err)
	}
	var steps []Step
	if err := yaml.Unmarshal(data, &steps); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidScript, err)
	}
	if err := validateScript(steps); err != nil {
		return nil, err
	}
	return steps, nil
}

func validateScript(steps []Step) error {
	if len(steps) == 0 {
		return fmt.Errorf("%w: no steps", ErrInvalidScript)
	}
	for i, st := range steps {
		switch st.Type {
		case "resize":
			if st.Width <= 0 {
				return fmt.Errorf("%w: step %d: resize needs a positive width", ErrInvalidScript, i)
			}
		case "section":
			if st.ID == "" {
				return fmt.Errorf("%w: step %d: section needs an id", ErrInvalidScript, i)
			}
		default:
			return fmt.Errorf("%w: step %d: unknown type %q", ErrInvalidScript, i, st.Type)
		}
	}
	return nil
}

// message renders st in the client wire format.
func (st Step) message() map[string]any {
	if st.Type == "resize" {
		return map[string]any{"type": st.Type, "width": st.Width}
	}
	return map[string]any{"type": st.Type, "id": st.ID}
}

// Budget bounds what a script may cause: at most one render for the open,
// one per resize and one per change of section.
type Budget struct {
	Resizes        int
	SectionChanges int
	Sections       map[string]bool
}

// BudgetFor computes the render budget of steps.
func BudgetFor(steps []Step) Budget {
	b := Budget{Sections: map[string]bool{"": true}}
	last, seen := "", false
	for _, st := range steps {
		switch st.Type {
		case "resize":
			b.Resizes++
		case "section":
			b.Sections[st.ID] = true
			if !seen || st.ID != last {
				b.SectionChanges++
			}
			last, seen = st.ID, true
		}
	}
	return b
}
