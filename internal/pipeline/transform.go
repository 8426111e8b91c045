package pipeline

import (
	"context"
	"time"

	"github.com/couchcryptid/nowcast-alerts/internal/domain"
)

// FeedTransformer implements Transformer: it parses a feed document and
// projects the configured regions.
type FeedTransformer struct {
	regions  []string
	location *time.Location
}

// NewTransformer creates a FeedTransformer. Empty regions means the whole
// country; loc is the zone alert windows are reported in.
func NewTransformer(regions []string, loc *time.Location) *FeedTransformer {
	return &FeedTransformer{
		regions:  regions,
		location: loc,
	}
}

// Transform always returns a snapshot. A malformed document yields an empty
// snapshot together with the *domain.ParseError.
func (t *FeedTransformer) Transform(_ context.Context, doc string) (*domain.Snapshot, error) {
	result, err := domain.ParseFeed(doc, t.location)
	return &domain.Snapshot{
		Result: result,
		States: domain.ProjectRegions(t.regions, result),
	}, err
}
