package model

import "time"

// Product is an entry in the shared, read-mostly product catalog. New rows
// are registered only through the catalog store's idempotent
// get-or-create operation; LastKnownPrice is refreshed by purchase
// recording.
type Product struct {
	ID             int64
	CanonicalName  string
	Category       string
	LastKnownPrice *float64
	CreatedAt      time.Time
}
