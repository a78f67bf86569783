//go:build !solution

package webpage

import (
	"errors"
	"fmt"
	"os"
	"time"

	"go.uber.org/multierr"
	"gopkg.in/yaml.v2"

	"gitlab.com/slon/pageaccess/pageaccess"
)

// DefaultUnit is the length of one delay step.
const DefaultUnit = 100 * time.Millisecond

// Entry describes one visitor of the page.
type Entry struct {
	Role pageaccess.Role `yaml:"role"`
	ID   int             `yaml:"id"`
	// StartDelay and Work are measured in Roster.Unit steps.
	StartDelay int `yaml:"start"`
	Work       int `yaml:"work"`
}

func (e Entry) String() string {
	return fmt.Sprintf("%v %d", e.Role, e.ID)
}

// Roster is the schedule of visitors for one run.
type Roster struct {
	Policy  pageaccess.Policy `yaml:"policy"`
	Unit    time.Duration     `yaml:"unit"`
	Entries []Entry           `yaml:"entries"`
}

// DefaultRoster returns the classic schedule: two readers, two writers
// right behind them, then two late writers and two late readers.
func DefaultRoster() *Roster {
	return &Roster{
		Policy: pageaccess.WriterPreference,
		Unit:   DefaultUnit,
		Entries: []Entry{
			{Role: pageaccess.Reader, ID: 0, StartDelay: 1, Work: 4},
			{Role: pageaccess.Reader, ID: 1, StartDelay: 2, Work: 4},
			{Role: pageaccess.Writer, ID: 2, StartDelay: 3, Work: 4},
			{Role: pageaccess.Writer, ID: 3, StartDelay: 4, Work: 4},
			{Role: pageaccess.Writer, ID: 4, StartDelay: 22, Work: 4},
			{Role: pageaccess.Writer, ID: 5, StartDelay: 23, Work: 4},
			{Role: pageaccess.Reader, ID: 6, StartDelay: 24, Work: 4},
			{Role: pageaccess.Reader, ID: 7, StartDelay: 25, Work: 4},
		},
	}
}

// LoadRoster reads a YAML roster from path.
func LoadRoster(path string) (*Roster, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read roster file: %w", err)
	}
	return ParseRoster(data)
}

// ParseRoster decodes and validates a YAML roster. Empty input yields the
// default roster; a missing unit defaults to DefaultUnit.
func ParseRoster(data []byte) (*Roster, error) {
	if len(data) == 0 {
		return DefaultRoster(), nil
	}

	var r Roster
	if err := yaml.UnmarshalStrict(data, &r); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}
	if r.Unit == 0 {
		r.Unit = DefaultUnit
	}
	if err := r.Validate(); err != nil {
		return nil, err
	}
	return &r, nil
}

// Validate reports every problem of the roster at once.
func (r *Roster) Validate() error {
	var err error
	if r.Unit <= 0 {
		err = multierr.Append(err, fmt.Errorf("unit must be positive, got %v", r.Unit))
	}
	if r.Policy != pageaccess.WriterPreference && r.Policy != pageaccess.ReaderPreference {
		err = multierr.Append(err, fmt.Errorf("unknown policy %v", r.Policy))
	}
	if len(r.Entries) == 0 {
		err = multierr.Append(err, errors.New("roster has no entries"))
	}

	seen := make(map[int]bool, len(r.Entries))
	for i, e := range r.Entries {
		if !e.Role.Valid() {
			err = multierr.Append(err, fmt.Errorf("entry %d: invalid role %v", i, e.Role))
		}
		if seen[e.ID] {
			err = multierr.Append(err, fmt.Errorf("entry %d: duplicate id %d", i, e.ID))
		}
		seen[e.ID] = true
		if e.StartDelay < 0 || e.Work < 0 {
			err = multierr.Append(err, fmt.Errorf("entry %d: negative delay", i))
		}
	}

	if err != nil {
		return fmt.Errorf("invalid roster: %w", err)
	}
	return nil
}

// Marshal encodes the roster back to YAML.
func (r *Roster) Marshal() ([]byte, error) {
	return yaml.Marshal(r)
}
