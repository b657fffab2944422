package artstart

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// SourceKind identifies which independent signal a candidate date came from.
type SourceKind int

const (
	SourceNone SourceKind = iota
	SourceProgramEnrollment
	SourceStructuredStart
	SourceHistoricalStart
	SourcePharmacyVisit
)

var sourceNames = map[SourceKind]string{
	SourceNone:              "",
	SourceProgramEnrollment: "program-enrollment",
	SourceStructuredStart:   "structured-start-observation",
	SourceHistoricalStart:   "historical-start-observation",
	SourcePharmacyVisit:     "pharmacy-visit",
}

func (k SourceKind) String() string {
	if name, ok := sourceNames[k]; ok {
		return name
	}
	return fmt.Sprintf("source(%d)", int(k))
}

// MarshalText renders the kind by name so JSON output stays readable.
func (k SourceKind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

// VisitCategory is the encounter classification an observation was recorded under.
type VisitCategory string

const (
	VisitPharmacy          VisitCategory = "pharmacy"
	VisitAdultFollowUp     VisitCategory = "adult-follow-up"
	VisitPediatricFollowUp VisitCategory = "pediatric-follow-up"
)

// StructuredObservation is the first "ARV plan" observation for a patient.
type StructuredObservation struct {
	CodedValue    string
	VisitCategory VisitCategory
	Date          *time.Time
}

// HistoricalObservation is the first "historical drug start date" observation
// for a patient. Date holds the recorded value, not the observation time.
type HistoricalObservation struct {
	VisitCategory VisitCategory
	Date          *time.Time
}

// Signals holds the raw, possibly missing, inputs for one patient.
type Signals struct {
	ProgramEnrollment *time.Time
	Structured        *StructuredObservation
	Historical        *HistoricalObservation
	PharmacyVisit     *time.Time
}

// CandidateDate is a signal that passed its eligibility rule.
type CandidateDate struct {
	Source        SourceKind    `json:"source"`
	Date          time.Time     `json:"date"`
	VisitCategory VisitCategory `json:"visit_category,omitempty"`
}

// Resolution is the per-patient output of a cohort evaluation. StartDate is
// nil when no signal was admitted.
type Resolution struct {
	PatientID uuid.UUID  `json:"patient_id"`
	StartDate *time.Time `json:"start_date"`
	Source    SourceKind `json:"source,omitempty"`
}

// Determined reports whether a start date was found.
func (r Resolution) Determined() bool { return r.StartDate != nil }

// Params bounds a cohort evaluation. A nil OnOrBefore means no upper bound.
type Params struct {
	OnOrBefore *time.Time
}

// upperBound returns the last instant of the OnOrBefore day, so a record
// dated any time on that day still counts.
func (p Params) upperBound() *time.Time {
	if p.OnOrBefore == nil {
		return nil
	}
	t := p.OnOrBefore
	end := time.Date(t.Year(), t.Month(), t.Day(), 23, 59, 59, int(time.Second-time.Nanosecond), t.Location())
	return &end
}
