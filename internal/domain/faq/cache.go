package faq

import (
	"context"
	"time"
)

// Cache keeps listing results between writes. Entries are namespaced by a
// generation: callers read Generation before loading from the repository and
// pass it to GetRecords and SaveRecords. Invalidate advances the generation,
// so a save tagged with an older generation is never served.
type Cache interface {
	Generation(ctx context.Context) (int64, error)
	GetRecords(ctx context.Context, gen int64, key string) ([]Record, bool, error)
	SaveRecords(ctx context.Context, gen int64, key string, records []Record, ttl time.Duration) error
	Invalidate(ctx context.Context) error
}

const cacheKeyAll = "all"

func departmentCacheKey(department string) string {
	return "department:" + department
}
