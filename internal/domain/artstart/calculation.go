package artstart

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/ehr/artreports/internal/platform/reporting"
)

const (
	CalculationName = "initial-art-start-date"
	ParamOnOrBefore = "on_or_before"
	dateLayout      = "2006-01-02"
)

// Calculation exposes a Calculator through the reporting registry.
type Calculation struct {
	calc *Calculator
}

func NewCalculation(calc *Calculator) *Calculation {
	return &Calculation{calc: calc}
}

func (c *Calculation) Name() string { return CalculationName }

func (c *Calculation) Description() string {
	return "Date on which each patient first started ART: the earliest of HIV program enrollment, " +
		"a 'start drugs' ARV plan observation, a historical drug start date and the first pharmacy visit"
}

func (c *Calculation) Parameters() []string { return []string{ParamOnOrBefore} }

func (c *Calculation) Evaluate(ctx context.Context, cohort []uuid.UUID, params map[string]string) (map[uuid.UUID]reporting.Result, error) {
	p, err := ParseParams(params)
	if err != nil {
		return nil, err
	}

	resolved, err := c.calc.EvaluateCohort(ctx, cohort, p)
	if err != nil {
		return nil, err
	}

	out := make(map[uuid.UUID]reporting.Result, len(resolved))
	for pid, r := range resolved {
		res := reporting.Result{PatientID: pid}
		if r.StartDate != nil {
			res.Value = r.StartDate.Format(dateLayout)
			res.Detail = r.Source.String()
		}
		out[pid] = res
	}
	return out, nil
}

// ParseParams reads the evaluation parameters of a report request.
func ParseParams(params map[string]string) (Params, error) {
	var p Params
	if raw := params[ParamOnOrBefore]; raw != "" {
		t, err := time.Parse(dateLayout, raw)
		if err != nil {
			return Params{}, fmt.Errorf("%w: %s must be YYYY-MM-DD, got %q", reporting.ErrInvalidParameter, ParamOnOrBefore, raw)
		}
		p.OnOrBefore = &t
	}
	return p, nil
}
