package enrollment

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/ehr/artreports/internal/platform/db"
)

type repoPG struct{ pool *pgxpool.Pool }

func NewRepoPG(pool *pgxpool.Pool) Repository {
	return &repoPG{pool: pool}
}

const firstByProgramSQL = `
	SELECT DISTINCT ON (patient_id)
		id, patient_id, program_code, date_enrolled, date_completed
	FROM patient_program
	WHERE program_code = $1
		AND NOT voided
		AND patient_id = ANY($2::uuid[])
		AND ($3::timestamptz IS NULL OR date_enrolled <= $3)
	ORDER BY patient_id, date_enrolled ASC, id ASC`

func (r *repoPG) FirstByProgram(ctx context.Context, programCode string, cohort []uuid.UUID, onOrBefore *time.Time) (map[uuid.UUID]*ProgramEnrollment, error) {
	rows, err := db.Conn(ctx, r.pool).Query(ctx, firstByProgramSQL, programCode, db.UUIDArray(cohort), onOrBefore)
	if err != nil {
		return nil, fmt.Errorf("query first enrollments in program %s: %w", programCode, err)
	}
	defer rows.Close()

	result := make(map[uuid.UUID]*ProgramEnrollment)
	for rows.Next() {
		var e ProgramEnrollment
		if err := rows.Scan(&e.ID, &e.PatientID, &e.ProgramCode, &e.DateEnrolled, &e.DateCompleted); err != nil {
			return nil, fmt.Errorf("scan enrollment: %w", err)
		}
		result[e.PatientID] = &e
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate enrollments: %w", err)
	}
	return result, nil
}
