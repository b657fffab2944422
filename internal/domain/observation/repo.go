package observation

import (
	"context"
	"time"

	"github.com/google/uuid"
)

type Repository interface {
	// FirstByConcept returns, per patient in cohort, the earliest non-voided
	// observation of the concept. Observations after onOrBefore are ignored
	// when it is set.
	FirstByConcept(ctx context.Context, conceptCode string, cohort []uuid.UUID, onOrBefore *time.Time) (map[uuid.UUID]*Observation, error)
}
