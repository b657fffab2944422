package observation

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
)

type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// FirstObs returns the first observation of conceptCode for each patient of
// the cohort that has one. Patients without a matching observation are
// absent from the map.
func (s *Service) FirstObs(ctx context.Context, conceptCode string, cohort []uuid.UUID, onOrBefore *time.Time) (map[uuid.UUID]*Observation, error) {
	if conceptCode == "" {
		return nil, fmt.Errorf("concept code is required")
	}
	if len(cohort) == 0 {
		return map[uuid.UUID]*Observation{}, nil
	}
	return s.repo.FirstByConcept(ctx, conceptCode, cohort, onOrBefore)
}
