package cohort

import (
	"context"

	"github.com/google/uuid"
)

type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// Resolve builds the cohort for a run: the explicit ids when any are given,
// otherwise everyone enrolled in programCode. The result holds no duplicates
// and keeps first-seen order.
func (s *Service) Resolve(ctx context.Context, explicit []uuid.UUID, programCode string) ([]uuid.UUID, error) {
	if len(explicit) > 0 {
		return Unique(explicit), nil
	}
	ids, err := s.repo.InProgram(ctx, programCode)
	if err != nil {
		return nil, err
	}
	return Unique(ids), nil
}

// Page returns one page of the patient register.
func (s *Service) Page(ctx context.Context, limit, offset int) ([]uuid.UUID, int, error) {
	return s.repo.ListPatientIDs(ctx, limit, offset)
}

// Unique drops repeated and nil ids.
func Unique(ids []uuid.UUID) []uuid.UUID {
	seen := make(map[uuid.UUID]bool, len(ids))
	out := make([]uuid.UUID, 0, len(ids))
	for _, id := range ids {
		if id == uuid.Nil || seen[id] {
			continue
		}
		seen[id] = true
		out = append(out, id)
	}
	return out
}
