package cohort

import (
	"context"

	"github.com/google/uuid"
)

// Repository supplies the patient identifiers a calculation runs over.
type Repository interface {
	// ListPatientIDs pages through non-voided patients ordered by id.
	ListPatientIDs(ctx context.Context, limit, offset int) ([]uuid.UUID, int, error)
	// InProgram returns every patient with a non-voided enrollment in the program.
	InProgram(ctx context.Context, programCode string) ([]uuid.UUID, error)
}
