package artstart

import "time"

// Rules is the eligibility table applied to the two observation sources.
// Program enrollment and pharmacy visits are admitted whenever present.
type Rules struct {
	StartDrugs    string
	AllowedVisits map[VisitCategory]bool
}

// DefaultRules returns the rules derived from the built-in metadata.
func DefaultRules() Rules {
	return DefaultMetadata().Rules()
}

func (r Rules) allowsVisit(v VisitCategory) bool {
	return v != "" && r.AllowedVisits[v]
}

// Resolver picks the earliest admitted date out of a patient's signals. It
// holds no state beyond its rules and is safe for concurrent use.
type Resolver struct {
	rules Rules
}

func NewResolver(rules Rules) *Resolver {
	return &Resolver{rules: rules}
}

// Candidates returns the admitted signals in source order. A present signal
// that fails its rule is dropped exactly as if it were absent.
func (r *Resolver) Candidates(s Signals) []CandidateDate {
	var admitted []CandidateDate

	if s.ProgramEnrollment != nil {
		admitted = append(admitted, CandidateDate{Source: SourceProgramEnrollment, Date: *s.ProgramEnrollment})
	}

	if obs := s.Structured; obs != nil && obs.Date != nil &&
		r.rules.StartDrugs != "" && obs.CodedValue == r.rules.StartDrugs &&
		r.rules.allowsVisit(obs.VisitCategory) {
		admitted = append(admitted, CandidateDate{
			Source:        SourceStructuredStart,
			Date:          *obs.Date,
			VisitCategory: obs.VisitCategory,
		})
	}

	if obs := s.Historical; obs != nil && obs.Date != nil && r.rules.allowsVisit(obs.VisitCategory) {
		admitted = append(admitted, CandidateDate{
			Source:        SourceHistoricalStart,
			Date:          *obs.Date,
			VisitCategory: obs.VisitCategory,
		})
	}

	if s.PharmacyVisit != nil {
		admitted = append(admitted, CandidateDate{Source: SourcePharmacyVisit, Date: *s.PharmacyVisit})
	}

	return admitted
}

// Resolve returns the earliest admitted date, or false when nothing was admitted.
func (r *Resolver) Resolve(s Signals) (time.Time, bool) {
	c, ok := Earliest(r.Candidates(s))
	if !ok {
		return time.Time{}, false
	}
	return c.Date, true
}

// Explain is Resolve plus the source of the winning candidate.
func (r *Resolver) Explain(s Signals) (CandidateDate, bool) {
	return Earliest(r.Candidates(s))
}

// Earliest folds the candidates down to the one with the minimum date. On a
// tie the earlier entry in the slice is kept; the date is the same either way.
func Earliest(candidates []CandidateDate) (CandidateDate, bool) {
	if len(candidates) == 0 {
		return CandidateDate{}, false
	}
	min := candidates[0]
	for _, c := range candidates[1:] {
		if c.Date.Before(min.Date) {
			min = c
		}
	}
	return min, true
}
