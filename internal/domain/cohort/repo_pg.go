package cohort

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/ehr/artreports/internal/platform/db"
)

type repoPG struct{ pool *pgxpool.Pool }

func NewRepoPG(pool *pgxpool.Pool) Repository {
	return &repoPG{pool: pool}
}

func (r *repoPG) ListPatientIDs(ctx context.Context, limit, offset int) ([]uuid.UUID, int, error) {
	var total int
	if err := db.Conn(ctx, r.pool).QueryRow(ctx, `SELECT COUNT(*) FROM patient WHERE NOT voided`).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count patients: %w", err)
	}

	rows, err := db.Conn(ctx, r.pool).Query(ctx,
		`SELECT id FROM patient WHERE NOT voided ORDER BY id LIMIT $1 OFFSET $2`, limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("list patients: %w", err)
	}
	ids, err := collectIDs(rows)
	if err != nil {
		return nil, 0, err
	}
	return ids, total, nil
}

func (r *repoPG) InProgram(ctx context.Context, programCode string) ([]uuid.UUID, error) {
	rows, err := db.Conn(ctx, r.pool).Query(ctx, `
		SELECT DISTINCT pp.patient_id
		FROM patient_program pp
		JOIN patient p ON p.id = pp.patient_id AND NOT p.voided
		WHERE pp.program_code = $1 AND NOT pp.voided
		ORDER BY pp.patient_id`, programCode)
	if err != nil {
		return nil, fmt.Errorf("list patients in program %s: %w", programCode, err)
	}
	return collectIDs(rows)
}

func collectIDs(rows pgx.Rows) ([]uuid.UUID, error) {
	defer rows.Close()
	ids := []uuid.UUID{}
	for rows.Next() {
		var id uuid.UUID
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan patient id: %w", err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate patient ids: %w", err)
	}
	return ids, nil
}
