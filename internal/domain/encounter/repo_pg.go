package encounter

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/ehr/artreports/internal/platform/db"
)

type repoPG struct{ pool *pgxpool.Pool }

func NewRepoPG(pool *pgxpool.Pool) Repository {
	return &repoPG{pool: pool}
}

const encCols = `id, patient_id, encounter_type, encounter_datetime`

func (r *repoPG) scanRow(row pgx.Row) (*Encounter, error) {
	var e Encounter
	err := row.Scan(&e.ID, &e.PatientID, &e.EncounterType, &e.EncounterDatetime)
	return &e, err
}

const firstByTypeSQL = `
	SELECT DISTINCT ON (patient_id) ` + encCols + `
	FROM encounter
	WHERE encounter_type = $1
		AND NOT voided
		AND patient_id = ANY($2::uuid[])
		AND ($3::timestamptz IS NULL OR encounter_datetime <= $3)
	ORDER BY patient_id, encounter_datetime ASC, id ASC`

func (r *repoPG) FirstByType(ctx context.Context, encounterType string, cohort []uuid.UUID, onOrBefore *time.Time) (map[uuid.UUID]*Encounter, error) {
	rows, err := db.Conn(ctx, r.pool).Query(ctx, firstByTypeSQL, encounterType, db.UUIDArray(cohort), onOrBefore)
	if err != nil {
		return nil, fmt.Errorf("query first encounters of type %s: %w", encounterType, err)
	}
	defer rows.Close()

	result := make(map[uuid.UUID]*Encounter)
	for rows.Next() {
		e, err := r.scanRow(rows)
		if err != nil {
			return nil, fmt.Errorf("scan encounter: %w", err)
		}
		result[e.PatientID] = e
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate encounters: %w", err)
	}
	return result, nil
}
