package artstart

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/ehr/artreports/internal/domain/encounter"
	"github.com/ehr/artreports/internal/domain/observation"
)

// EnrollmentLookup yields the first program enrollment date per patient.
type EnrollmentLookup interface {
	EnrollmentDates(ctx context.Context, cohort []uuid.UUID, onOrBefore *time.Time) (map[uuid.UUID]time.Time, error)
}

// ObservationLookup yields the first observation of a concept per patient.
type ObservationLookup interface {
	FirstObs(ctx context.Context, conceptCode string, cohort []uuid.UUID, onOrBefore *time.Time) (map[uuid.UUID]*observation.Observation, error)
}

// EncounterLookup yields the first encounter of a type per patient.
type EncounterLookup interface {
	FirstEncounter(ctx context.Context, encounterType string, cohort []uuid.UUID, onOrBefore *time.Time) (map[uuid.UUID]*encounter.Encounter, error)
}

// Calculator resolves ART start dates for a whole cohort. The four lookups
// run once per evaluation; the per-patient step only reads their results.
type Calculator struct {
	meta         Metadata
	resolver     *Resolver
	enrollments  EnrollmentLookup
	observations ObservationLookup
	encounters   EncounterLookup
	logger       zerolog.Logger
	timeout      time.Duration
}

func NewCalculator(meta Metadata, enrollments EnrollmentLookup, observations ObservationLookup, encounters EncounterLookup, logger zerolog.Logger) *Calculator {
	return &Calculator{
		meta:         meta,
		resolver:     NewResolver(meta.Rules()),
		enrollments:  enrollments,
		observations: observations,
		encounters:   encounters,
		logger:       logger.With().Str("calculation", CalculationName).Logger(),
	}
}

// SetLookupTimeout bounds the time spent in the lookups of one evaluation.
// Zero disables the bound.
func (c *Calculator) SetLookupTimeout(d time.Duration) {
	c.timeout = d
}

type lookups struct {
	enrolled   map[uuid.UUID]time.Time
	structured map[uuid.UUID]*observation.Observation
	historical map[uuid.UUID]*observation.Observation
	pharmacy   map[uuid.UUID]*encounter.Encounter
}

// EvaluateCohort returns one Resolution per distinct patient of cohort.
func (c *Calculator) EvaluateCohort(ctx context.Context, cohort []uuid.UUID, p Params) (map[uuid.UUID]Resolution, error) {
	start := time.Now()
	results := make(map[uuid.UUID]Resolution, len(cohort))
	if len(cohort) == 0 {
		return results, nil
	}

	l, err := c.fetch(ctx, cohort, p.upperBound())
	if err != nil {
		c.logger.Error().Err(err).Int("cohort_size", len(cohort)).Msg("lookup failed")
		return nil, err
	}

	determined := 0
	for _, pid := range cohort {
		res := Resolution{PatientID: pid}
		if cand, ok := c.resolver.Explain(c.signalsFor(pid, l)); ok {
			d := cand.Date
			res.StartDate = &d
			res.Source = cand.Source
			determined++
		}
		results[pid] = res
	}

	c.logger.Info().
		Int("cohort_size", len(results)).
		Int("determined", determined).
		Int("undetermined", len(results)-determined).
		Dur("duration", time.Since(start)).
		Msg("cohort evaluated")

	return results, nil
}

func (c *Calculator) fetch(ctx context.Context, cohort []uuid.UUID, onOrBefore *time.Time) (*lookups, error) {
	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	var (
		l   lookups
		err error
	)
	if l.enrolled, err = c.enrollments.EnrollmentDates(ctx, cohort, onOrBefore); err != nil {
		return nil, fmt.Errorf("program enrollment lookup: %w", err)
	}
	if l.structured, err = c.observations.FirstObs(ctx, c.meta.ARVPlanConcept, cohort, onOrBefore); err != nil {
		return nil, fmt.Errorf("arv plan observation lookup: %w", err)
	}
	if l.historical, err = c.observations.FirstObs(ctx, c.meta.HistoricalDrugStartDateConcept, cohort, onOrBefore); err != nil {
		return nil, fmt.Errorf("historical start date observation lookup: %w", err)
	}
	if l.pharmacy, err = c.encounters.FirstEncounter(ctx, c.meta.PharmacyEncounterType, cohort, onOrBefore); err != nil {
		return nil, fmt.Errorf("pharmacy encounter lookup: %w", err)
	}
	return &l, nil
}

func (c *Calculator) signalsFor(pid uuid.UUID, l *lookups) Signals {
	var s Signals

	if d, ok := l.enrolled[pid]; ok {
		s.ProgramEnrollment = &d
	}
	if o := l.structured[pid]; o != nil {
		obsDate := o.ObsDatetime
		s.Structured = &StructuredObservation{
			CodedValue:    o.CodedValue(),
			VisitCategory: c.meta.VisitCategory(o.EncounterType),
			Date:          &obsDate,
		}
	}
	if o := l.historical[pid]; o != nil {
		s.Historical = &HistoricalObservation{
			VisitCategory: c.meta.VisitCategory(o.EncounterType),
			Date:          o.ValueDatetime,
		}
	}
	if e := l.pharmacy[pid]; e != nil {
		visit := e.EncounterDatetime
		s.PharmacyVisit = &visit
	}
	return s
}
