package encounter

import (
	"context"
	"time"

	"github.com/google/uuid"
)

type Repository interface {
	// FirstByType returns, per patient in cohort, the earliest non-voided
	// encounter of the given type, ignoring encounters after onOrBefore.
	FirstByType(ctx context.Context, encounterType string, cohort []uuid.UUID, onOrBefore *time.Time) (map[uuid.UUID]*Encounter, error)
}
