package observation

import (
	"time"

	"github.com/google/uuid"
)

// Observation maps to the obs table. EncounterType is joined from the
// observation's encounter and is nil when the observation has none.
type Observation struct {
	ID            uuid.UUID  `db:"id" json:"id"`
	PatientID     uuid.UUID  `db:"patient_id" json:"patient_id"`
	EncounterID   *uuid.UUID `db:"encounter_id" json:"encounter_id,omitempty"`
	EncounterType *string    `db:"encounter_type" json:"encounter_type,omitempty"`
	ConceptCode   string     `db:"concept_code" json:"concept_code"`
	ValueCoded    *string    `db:"value_coded" json:"value_coded,omitempty"`
	ValueDatetime *time.Time `db:"value_datetime" json:"value_datetime,omitempty"`
	ObsDatetime   time.Time  `db:"obs_datetime" json:"obs_datetime"`
}

// CodedValue returns the coded answer, or "" when the observation has none.
func (o *Observation) CodedValue() string {
	if o == nil || o.ValueCoded == nil {
		return ""
	}
	return *o.ValueCoded
}
