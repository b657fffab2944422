package enrollment

import (
	"context"
	"time"

	"github.com/google/uuid"
)

type Repository interface {
	// FirstByProgram returns, per patient in cohort, the earliest non-voided
	// enrollment in the program, ignoring enrollments after onOrBefore.
	FirstByProgram(ctx context.Context, programCode string, cohort []uuid.UUID, onOrBefore *time.Time) (map[uuid.UUID]*ProgramEnrollment, error)
}
