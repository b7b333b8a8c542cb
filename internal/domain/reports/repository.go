package reports

import (
	"context"
	"time"
)

// Repository defines report data access interface.
type Repository interface {
	// DailySales groups sales dated within [from, to] by UTC day, ascending.
	DailySales(ctx context.Context, from, to time.Time) ([]DailyPoint, error)

	// ExpensesByCategory groups expenses dated within [from, to] by category,
	// largest total first.
	ExpensesByCategory(ctx context.Context, from, to time.Time) ([]CategoryAmount, error)
}

// CacheSlot is an entry key pinned to the tag generations seen by Get.
type CacheSlot string

// Cache stores computed reports. Entries are dropped when any of their tags
// is invalidated for the owner.
//
// Set must receive the slot returned by the Get that missed. A report built
// while a tag was invalidated is then written under the old generations and
// never served.
type Cache interface {
	Get(ctx context.Context, key string, tags []string, dst any) (CacheSlot, bool, error)
	Set(ctx context.Context, slot CacheSlot, value any) error
}
