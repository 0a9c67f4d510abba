package resources

import (
	"context"
	"database/sql"

	"github.com/lib/pq"

	apperrors "generation-workers/internal/common/errors"
	"generation-workers/internal/generation"
)

const resolveVersionsQuery = `
SELECT mv.id, mv."baseModel", m.id, m.type, mv."trainedWords"
FROM "ModelVersion" mv
JOIN "Model" m ON m.id = mv."modelId"
WHERE mv.id = ANY($1)`

// PostgresResolver reads resource data from the model catalogue tables.
type PostgresResolver struct {
	db *sql.DB
}

func NewPostgresResolver(db *sql.DB) *PostgresResolver {
	return &PostgresResolver{db: db}
}

func (p *PostgresResolver) Resolve(ctx context.Context, ids []int) (map[int]generation.ResourceData, error) {
	versionIDs := make(pq.Int64Array, len(ids))
	for i, id := range ids {
		versionIDs[i] = int64(id)
	}

	rows, err := p.db.QueryContext(ctx, resolveVersionsQuery, versionIDs)
	if err != nil {
		return nil, apperrors.NewResourceLookupFailedError("postgres", err)
	}
	defer rows.Close()

	out := make(map[int]generation.ResourceData, len(ids))
	for rows.Next() {
		var (
			r            generation.ResourceData
			trainedWords pq.StringArray
		)
		if err := rows.Scan(&r.ID, &r.BaseModel, &r.Model.ID, &r.Model.Type, &trainedWords); err != nil {
			return nil, apperrors.NewResourceLookupFailedError("postgres", err)
		}
		if len(trainedWords) > 0 {
			r.TrainedWords = []string(trainedWords)
		}
		out[r.ID] = r
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.NewResourceLookupFailedError("postgres", err)
	}
	return out, nil
}
