package datasource

import (
	"context"
	"time"

	"github.com/moznion/go-optional"
	"github.com/rxtech-lab/argo-signal/internal/types"
)

// Range restricts the observations returned by a Source.
type Range struct {
	// Start is the earliest timestamp included
	Start optional.Option[time.Time]
	// End is the latest timestamp included
	End optional.Option[time.Time]
	// Lookback keeps only the most recent observations after the time filter
	Lookback optional.Option[int]
}

// All is the unrestricted range.
func All() Range {
	return Range{
		Start:    optional.None[time.Time](),
		End:      optional.None[time.Time](),
		Lookback: optional.None[int](),
	}
}

// Source loads a raw price series from a file.
type Source interface {
	// Load reads the observations of the CSV or Parquet file at path, oldest first
	Load(ctx context.Context, path string, r Range) (types.PriceSeries, error)
	// Close releases the underlying database
	Close() error
}
