package enrollment

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Service answers "when did each patient first enroll in the program" for
// the one program it is configured with.
type Service struct {
	repo    Repository
	program string
}

func NewService(repo Repository, programCode string) *Service {
	return &Service{repo: repo, program: programCode}
}

// EnrollmentDates returns the first enrollment date per patient. Patients
// never enrolled are absent from the map.
func (s *Service) EnrollmentDates(ctx context.Context, cohort []uuid.UUID, onOrBefore *time.Time) (map[uuid.UUID]time.Time, error) {
	if s.program == "" {
		return nil, fmt.Errorf("program code is required")
	}
	if len(cohort) == 0 {
		return map[uuid.UUID]time.Time{}, nil
	}

	enrollments, err := s.repo.FirstByProgram(ctx, s.program, cohort, onOrBefore)
	if err != nil {
		return nil, err
	}

	dates := make(map[uuid.UUID]time.Time, len(enrollments))
	for pid, e := range enrollments {
		dates[pid] = e.DateEnrolled
	}
	return dates, nil
}
