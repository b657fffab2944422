package observation

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

const firstByConceptSQL = `
	SELECT DISTINCT ON (o.patient_id)
		o.id, o.patient_id, o.encounter_id, e.encounter_type, o.concept_code,
		o.value_coded, o.value_datetime, o.obs_datetime
	FROM obs o
	LEFT JOIN encounter e ON e.id = o.encounter_id AND NOT e.voided
	WHERE o.concept_code = $1
		AND NOT o.voided
		AND o.patient_id = ANY($2::uuid[])
		AND ($3::timestamptz IS NULL OR o.obs_datetime <= $3)
	ORDER BY o.patient_id, o.obs_datetime ASC, o.id ASC`

func (r *repoPG) FirstByConcept(ctx context.Context, conceptCode string, cohort []uuid.UUID, onOrBefore *time.Time) (map[uuid.UUID]*Observation, error) {
	rows, err := db.Conn(ctx, r.pool).Query(ctx, firstByConceptSQL, conceptCode, db.UUIDArray(cohort), onOrBefore)
	if err != nil {
		return nil, fmt.Errorf("query first obs for concept %s: %w", conceptCode, err)
	}
	defer rows.Close()

	result := make(map[uuid.UUID]*Observation)
	for rows.Next() {
		var o Observation
		if err := rows.Scan(&o.ID, &o.PatientID, &o.EncounterID, &o.EncounterType, &o.ConceptCode,
			&o.ValueCoded, &o.ValueDatetime, &o.ObsDatetime); err != nil {
			return nil, fmt.Errorf("scan obs: %w", err)
		}
		result[o.PatientID] = &o
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate obs: %w", err)
	}
	return result, nil
}
