package encounter

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

// FirstEncounter returns the first encounter of encounterType per patient.
func (s *Service) FirstEncounter(ctx context.Context, encounterType string, cohort []uuid.UUID, onOrBefore *time.Time) (map[uuid.UUID]*Encounter, error) {
	if encounterType == "" {
		return nil, fmt.Errorf("encounter type is required")
	}
	if len(cohort) == 0 {
		return map[uuid.UUID]*Encounter{}, nil
	}
	return s.repo.FirstByType(ctx, encounterType, cohort, onOrBefore)
}
