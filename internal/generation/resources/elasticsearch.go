package resources

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"

	"generation-workers/internal/common/database"
	apperrors "generation-workers/internal/common/errors"
	"generation-workers/internal/generation"
)

// ElasticsearchResolver reads resource data from the model version index.
type ElasticsearchResolver struct {
	client *database.ElasticsearchClient
	index  string
}

func NewElasticsearchResolver(client *database.ElasticsearchClient, index string) *ElasticsearchResolver {
	return &ElasticsearchResolver{client: client, index: index}
}

func (e *ElasticsearchResolver) Resolve(ctx context.Context, ids []int) (map[int]generation.ResourceData, error) {
	docIDs := make([]string, len(ids))
	for i, id := range ids {
		docIDs[i] = strconv.Itoa(id)
	}

	docs, err := e.client.MultiGet(ctx, e.index, docIDs)
	if err != nil {
		return nil, apperrors.NewResourceLookupFailedError("elasticsearch", err)
	}

	out := make(map[int]generation.ResourceData, len(docs))
	for _, doc := range docs {
		var r generation.ResourceData
		if err := json.Unmarshal(doc.Source, &r); err != nil {
			return nil, apperrors.NewResourceLookupFailedError("elasticsearch", fmt.Errorf("decode document %s: %w", doc.ID, err))
		}
		if r.ID == 0 {
			r.ID, _ = strconv.Atoi(doc.ID)
		}
		out[r.ID] = r
	}
	return out, nil
}
