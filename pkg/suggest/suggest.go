// Package suggest maintains an in-memory search index over the distinct
// values observed per column, powering typeahead suggestions in the
// faceted filter UI.
package suggest

import (
	"context"
	"fmt"
	"strings"

	"github.com/blevesearch/bleve/v2"
	"github.com/blevesearch/bleve/v2/analysis/analyzer/keyword"
	"go.uber.org/zap"

	"github.com/gridworks/datagrid-panel/pkg/filtering"
)

type document struct {
	Column string `json:"column"`
	Value  string `json:"value"`
	Raw    string `json:"raw"`
}

// Index is a memory-only bleve index of column values.
type Index struct {
	idx    bleve.Index
	logger *zap.Logger
	// docs remembers each column's current document ids so a reindex can
	// drop values no longer present in the dataset.
	docs map[string][]string
}

// NewIndex creates an empty suggestion index.
func NewIndex(log *zap.Logger) (*Index, error) {
	docMapping := bleve.NewDocumentMapping()

	colField := bleve.NewTextFieldMapping()
	colField.Analyzer = keyword.Name
	docMapping.AddFieldMappingsAt("column", colField)

	valueField := bleve.NewTextFieldMapping()
	valueField.Analyzer = keyword.Name
	docMapping.AddFieldMappingsAt("value", valueField)

	rawField := bleve.NewTextFieldMapping()
	rawField.Index = false
	docMapping.AddFieldMappingsAt("raw", rawField)

	indexMapping := bleve.NewIndexMapping()
	indexMapping.DefaultMapping = docMapping

	idx, err := bleve.NewMemOnly(indexMapping)
	if err != nil {
		return nil, fmt.Errorf("failed to create suggestion index: %w", err)
	}
	return &Index{idx: idx, logger: log, docs: make(map[string][]string)}, nil
}

// IndexColumn replaces the indexed value set of one column: documents of
// the previous pass that are not in the new value set are deleted, so a
// data refresh never leaves stale suggestions behind.
func (s *Index) IndexColumn(columnID string, values []any) error {
	batch := s.idx.NewBatch()
	for _, id := range s.docs[columnID] {
		batch.Delete(id)
	}

	seen := make(map[string]struct{}, len(values))
	ids := make([]string, 0, len(values))
	for _, v := range values {
		raw := filtering.CoerceString(v)
		if raw == "" {
			continue
		}
		if _, dup := seen[raw]; dup {
			continue
		}
		seen[raw] = struct{}{}
		id := columnID + "\x00" + raw
		// A later Index on the same id supersedes the Delete above.
		if err := batch.Index(id, document{Column: columnID, Value: strings.ToLower(raw), Raw: raw}); err != nil {
			return fmt.Errorf("failed to index value for column %s: %w", columnID, err)
		}
		ids = append(ids, id)
	}
	if err := s.idx.Batch(batch); err != nil {
		return fmt.Errorf("failed to apply suggestion batch: %w", err)
	}
	s.docs[columnID] = ids
	s.logger.Debug("Indexed column values for suggestions", zap.String("column", columnID), zap.Int("distinct", len(seen)))
	return nil
}

// Suggest returns up to limit distinct values of the column matching the
// prefix, case-insensitively. An empty prefix matches everything.
func (s *Index) Suggest(ctx context.Context, columnID, prefix string, limit int) ([]string, error) {
	if limit <= 0 {
		limit = 10
	}

	colQuery := bleve.NewTermQuery(columnID)
	colQuery.SetField("column")

	var query = bleve.NewConjunctionQuery(colQuery)
	if prefix != "" {
		prefixQuery := bleve.NewPrefixQuery(strings.ToLower(prefix))
		prefixQuery.SetField("value")
		query.AddQuery(prefixQuery)
	}

	req := bleve.NewSearchRequestOptions(query, limit, 0, false)
	req.Fields = []string{"raw"}

	res, err := s.idx.SearchInContext(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("suggestion search failed: %w", err)
	}

	out := make([]string, 0, len(res.Hits))
	for _, hit := range res.Hits {
		if raw, ok := hit.Fields["raw"].(string); ok {
			out = append(out, raw)
		}
	}
	return out, nil
}

// Close releases the index.
func (s *Index) Close() error {
	return s.idx.Close()
}
