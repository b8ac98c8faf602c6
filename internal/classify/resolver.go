// Package classify assigns category identifiers to transactions. Keyword
// matching against the catalog handles the common merchant strings for free;
// an injected AI classifier covers the remainder and degrades to the
// sentinel category on any doubt, so classification can never fail an
// import.
package classify

import (
	"context"
	"strings"

	"github.com/rs/zerolog"

	"github.com/smartspend/smartspend/internal/catalog"
)

// BatchItem is one row of a batch classification request.
type BatchItem struct {
	Description string `json:"description"`
	Type        string `json:"type"`
}

// Classifier is the external AI collaborator. Implementations may fail or
// return out-of-vocabulary values; the Resolver validates and substitutes
// the sentinel.
type Classifier interface {
	// Classify returns a category identifier for a single description.
	Classify(ctx context.Context, description string) (string, error)
	// ClassifyBatch returns one category name or identifier per item.
	ClassifyBatch(ctx context.Context, items []BatchItem) ([]string, error)
}

// Resolver resolves transaction categories: declared value first, then
// catalog keywords, then the classifier, then the sentinel.
type Resolver struct {
	catalog    *catalog.Catalog
	classifier Classifier // nil disables the AI fallback
	log        zerolog.Logger
}

// NewResolver builds a resolver. classifier may be nil, in which case
// unmatched descriptions resolve to the sentinel directly.
func NewResolver(cat *catalog.Catalog, classifier Classifier, log zerolog.Logger) *Resolver {
	return &Resolver{catalog: cat, classifier: classifier, log: log}
}

// Resolve assigns a category identifier for the description. A non-empty
// declared category short-circuits everything else. Classifier failures are
// logged and swallowed; the result is always a known category identifier.
func (r *Resolver) Resolve(ctx context.Context, description, declared string) string {
	if declared = strings.ToLower(strings.TrimSpace(declared)); declared != "" {
		return declared
	}

	category, matched := r.catalog.MatchKeyword(description)
	if matched && category != catalog.Sentinel {
		return category
	}

	return r.classify(ctx, description)
}

func (r *Resolver) classify(ctx context.Context, description string) string {
	if r.classifier == nil || strings.TrimSpace(description) == "" {
		return catalog.Sentinel
	}

	category, err := r.classifier.Classify(ctx, description)
	if err != nil {
		r.log.Warn().Err(err).Str("description", description).Msg("classifier failed, using sentinel")
		return catalog.Sentinel
	}

	category = strings.ToLower(strings.TrimSpace(category))
	if !r.catalog.Has(category) {
		r.log.Warn().Str("category", category).Msg("classifier returned unknown category, using sentinel")
		return catalog.Sentinel
	}
	return category
}

// ResolveBatch classifies a preview batch in one classifier call, mapping
// returned names to identifiers. Any failure degrades the whole batch to
// sentinels rather than erroring.
func (r *Resolver) ResolveBatch(ctx context.Context, items []BatchItem) []string {
	out := make([]string, len(items))
	for i := range out {
		out[i] = catalog.Sentinel
	}
	if r.classifier == nil || len(items) == 0 {
		return out
	}

	names, err := r.classifier.ClassifyBatch(ctx, items)
	if err != nil {
		r.log.Warn().Err(err).Int("items", len(items)).Msg("batch classification failed, using sentinels")
		return out
	}
	for i := range out {
		if i < len(names) {
			out[i] = r.catalog.IDFromName(names[i])
		}
	}
	return out
}
