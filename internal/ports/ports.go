package ports

import (
	"context"
	"time"

	"github.com/forPelevin/frankenbite/internal/types"
)

// History remembers recent queries and bites the user chose to keep.
type History interface {
	Record(ctx context.Context, query string) error
	Recent(ctx context.Context, limit int) ([]string, error)
	SaveBite(ctx context.Context, bite types.SavedBite) (types.SavedBite, error)
	ListBites(ctx context.Context) ([]types.SavedBite, error)
	DeleteBite(ctx context.Context, id string) error
}

// Range is a source media span in an assembled bite.
type Range struct {
	Start time.Duration
	End   time.Duration
}

// Renderer cuts bite ranges out of source media and joins them in order.
type Renderer interface {
	RenderBite(ctx context.Context, media string, ranges []Range, outMP4 string, burnASS string) error
	ProbeDuration(ctx context.Context, media string) (time.Duration, error)
}
