package mock

import (
	"context"

	"github.com/fwojciec/serpwatch"
)

var _ serpwatch.RankProvider = (*RankProvider)(nil)

// RankProvider is a mock implementation of serpwatch.RankProvider.
type RankProvider struct {
	FetchResultsFn func(ctx context.Context, keyword string) ([]serpwatch.RawResult, error)
}

func (p *RankProvider) FetchResults(ctx context.Context, keyword string) ([]serpwatch.RawResult, error) {
	return p.FetchResultsFn(ctx, keyword)
}
