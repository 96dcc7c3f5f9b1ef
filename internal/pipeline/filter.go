package pipeline

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"github.com/recruiteros/recruiteros/internal/ai"
)

// FilterAdapter narrows the visible candidate set with the external semantic
// filter. It fails open: a service failure degrades to "show everything"
// rather than hiding candidates from the recruiter.
type FilterAdapter struct {
	filterer ai.Filterer
	logger   *zap.Logger
}

func NewFilterAdapter(filterer ai.Filterer, logger *zap.Logger) *FilterAdapter {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &FilterAdapter{filterer: filterer, logger: logger}
}

// Filter returns the matching record ids and whether a filter is active. A
// blank query means no filter (active=false), which is distinct from an
// active filter with no matches.
func (f *FilterAdapter) Filter(ctx context.Context, query string, records []*CandidateRecord) ([]string, bool) {
	if strings.TrimSpace(query) == "" {
		return nil, false
	}

	pool := make([]ai.CandidateSummary, 0, len(records))
	for _, record := range records {
		pool = append(pool, ai.CandidateSummary{
			ID:      record.ID,
			Name:    record.Name,
			Score:   record.Score,
			Tags:    record.Tags,
			Summary: record.Summary,
		})
	}

	ids, err := f.filterer.Filter(ctx, query, pool)
	if err != nil {
		f.logger.Warn("semantic filter failed, showing all candidates",
			zap.String("query", query),
			zap.Error(err),
		)
		all := make([]string, 0, len(records))
		for _, record := range records {
			all = append(all, record.ID)
		}
		return all, true
	}

	return ids, true
}
