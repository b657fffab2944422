package reporting

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
)

var (
	ErrCalculationNotFound = errors.New("calculation not found")
	ErrInvalidParameter    = errors.New("invalid parameter")
)

// Result is one patient's value for a calculation. Value is nil when the
// calculation could not determine anything for the patient.
type Result struct {
	PatientID uuid.UUID   `json:"patient_id"`
	Value     interface{} `json:"value"`
	Detail    string      `json:"detail,omitempty"`
}

// Calculation is a named per-patient cohort calculation.
type Calculation interface {
	Name() string
	Description() string
	Parameters() []string
	Evaluate(ctx context.Context, cohort []uuid.UUID, params map[string]string) (map[uuid.UUID]Result, error)
}

// Descriptor is the listing form of a registered calculation.
type Descriptor struct {
	Name        string   `json:"name"`
	Description string   `json:"description"`
	Parameters  []string `json:"parameters"`
}

// CalculationReport holds the results of evaluating a calculation.
type CalculationReport struct {
	Calculation string            `json:"calculation"`
	GeneratedAt time.Time         `json:"generated_at"`
	Parameters  map[string]string `json:"parameters,omitempty"`
	Results     []Result          `json:"results"`
}

// Registry holds the calculations the reporting API can run.
type Registry struct {
	mu    sync.RWMutex
	calcs map[string]Calculation
}

func NewRegistry() *Registry {
	return &Registry{calcs: make(map[string]Calculation)}
}

func (r *Registry) Register(c Calculation) error {
	if c == nil || c.Name() == "" {
		return errors.New("calculation name is required")
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.calcs[c.Name()]; ok {
		return fmt.Errorf("calculation %q already registered", c.Name())
	}
	r.calcs[c.Name()] = c
	return nil
}

func (r *Registry) Lookup(name string) (Calculation, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	c, ok := r.calcs[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrCalculationNotFound, name)
	}
	return c, nil
}

// List returns the registered calculations sorted by name.
func (r *Registry) List() []Descriptor {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]Descriptor, 0, len(r.calcs))
	for _, c := range r.calcs {
		params := c.Parameters()
		if params == nil {
			params = []string{}
		}
		out = append(out, Descriptor{Name: c.Name(), Description: c.Description(), Parameters: params})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// Run evaluates the named calculation and orders the results by cohort
// position. Repeated cohort entries are reported once.
func (r *Registry) Run(ctx context.Context, name string, cohort []uuid.UUID, params map[string]string) (*CalculationReport, error) {
	calc, err := r.Lookup(name)
	if err != nil {
		return nil, err
	}

	results, err := calc.Evaluate(ctx, cohort, params)
	if err != nil {
		return nil, err
	}

	report := &CalculationReport{
		Calculation: calc.Name(),
		GeneratedAt: time.Now().UTC(),
		Parameters:  params,
		Results:     make([]Result, 0, len(results)),
	}
	seen := make(map[uuid.UUID]bool, len(cohort))
	for _, pid := range cohort {
		if seen[pid] {
			continue
		}
		seen[pid] = true
		if res, ok := results[pid]; ok {
			report.Results = append(report.Results, res)
		}
	}
	return report, nil
}
