package storage

import "lease-scraper/models"

// OfferWriter persists one run's accepted offers in a single shot. Writers
// consume the batch only at end-of-run, never incrementally, so a crashed
// run leaves no partial artifact behind.
type OfferWriter interface {
	Write(offers []*models.LeaseOffer) error
	Path() string
}
