package enrollment

import (
	"time"

	"github.com/google/uuid"
)

// ProgramEnrollment maps to the patient_program table.
type ProgramEnrollment struct {
	ID            uuid.UUID  `db:"id" json:"id"`
	PatientID     uuid.UUID  `db:"patient_id" json:"patient_id"`
	ProgramCode   string     `db:"program_code" json:"program_code"`
	DateEnrolled  time.Time  `db:"date_enrolled" json:"date_enrolled"`
	DateCompleted *time.Time `db:"date_completed" json:"date_completed,omitempty"`
}

