package encounter

import (
	"time"

	"github.com/google/uuid"
)

// Encounter maps to the encounter table.
type Encounter struct {
	ID                uuid.UUID `db:"id" json:"id"`
	PatientID         uuid.UUID `db:"patient_id" json:"patient_id"`
	EncounterType     string    `db:"encounter_type" json:"encounter_type"`
	EncounterDatetime time.Time `db:"encounter_datetime" json:"encounter_datetime"`
}
