package services

import (
	"errors"
	"strings"

	"lease-scraper/models"
	"lease-scraper/utils"
)

// Ingestion rejection reasons that occur before record construction.
var (
	ErrEmptyProductURL = errors.New("offer has no product URL")
	ErrDuplicateOffer  = errors.New("offer URL already ingested")
)

// Pipeline turns raw scraped fragments into validated LeaseOffers, one
// record at a time in discovery order. It owns the accumulating batch for a
// single run; the batch is handed to the output writers only once the run
// is complete. Not safe for concurrent use — the crawler must feed it
// sequentially.
type Pipeline struct {
	logger *utils.Logger

	seen     map[string]struct{}
	accepted []*models.LeaseOffer
	rejected int
	flagged  int
}

// NewPipeline creates an empty pipeline for one run.
func NewPipeline(logger *utils.Logger) *Pipeline {
	return &Pipeline{
		logger: logger,
		seen:   make(map[string]struct{}),
	}
}

// Ingest normalizes and validates one raw offer. On success it returns the
// constructed record; a record that fails the soft validation pass is still
// returned, annotated, but excluded from Accepted. Hard validation failure
// returns the structured rejection instead of a record. A bad record never
// aborts the run.
func (p *Pipeline) Ingest(raw *models.RawOffer) (*models.LeaseOffer, error) {
	url := strings.TrimSpace(raw.ProductURL)
	if url == "" {
		p.rejected++
		p.logger.Warn("[pipeline] Dropping offer with empty product URL: %s", raw.MakeModelText)
		return nil, ErrEmptyProductURL
	}
	if _, dup := p.seen[url]; dup {
		p.logger.Debug("[pipeline] Duplicate URL skipped: %s", url)
		return nil, ErrDuplicateOffer
	}
	p.seen[url] = struct{}{}

	make_, model := ExtractMakeModel(raw.MakeModelText)
	price := p.repairPrice(ExtractPrice(raw.PriceText))
	duration, kilometers := p.durationKilometers(raw)

	offer, err := models.NewLeaseOffer(
		make_, model,
		strings.TrimSpace(raw.VersionText),
		price,
		duration, kilometers,
		strings.TrimSpace(raw.DeliveryText),
		raw.PromoTexts,
		raw.ImageCandidates,
		url,
	)
	if err != nil {
		p.rejected++
		p.logger.Warn("[pipeline] Rejected %s: %v", url, err)
		return nil, err
	}

	if errs := ValidateOffer(offer); len(errs) > 0 {
		offer.ValidationErrors = errs
		p.flagged++
		p.logger.Warn("[pipeline] Validation errors for %s: %v", url, errs)
		return offer, nil
	}

	p.accepted = append(p.accepted, offer)
	return offer, nil
}

// repairPrice fixes prices scraped with a dropped trailing digit: a
// non-zero value below the plausible floor is assumed to be missing its
// last digit and is multiplied by ten.
func (p *Pipeline) repairPrice(price float64) float64 {
	if price > 0 && price < models.MinMonthlyPrice {
		repaired := price * 10
		p.logger.Info("[pipeline] Repaired low price: %.2f → %.2f", price, repaired)
		return repaired
	}
	return price
}

// durationKilometers resolves duration and yearly kilometers for one raw
// offer. The lease-info text, when present, goes through the extractor and
// its 60-month/10000-km defaults; the scraper's page-scan fallback values
// (which default to 72 months/5000 km at their call site) are used
// otherwise. The two default pairs are intentionally distinct.
func (p *Pipeline) durationKilometers(raw *models.RawOffer) (int, int) {
	if raw.LeaseInfoText != "" {
		return ExtractDurationKilometers(raw.LeaseInfoText)
	}
	if raw.FallbackDuration > 0 && raw.FallbackKilometers > 0 {
		return raw.FallbackDuration, raw.FallbackKilometers
	}
	return ExtractDurationKilometers("")
}

// Accepted returns the records that passed both validation stages, in
// discovery order.
func (p *Pipeline) Accepted() []*models.LeaseOffer {
	return p.accepted
}

// Rejected returns the count of offers discarded by hard validation.
func (p *Pipeline) Rejected() int {
	return p.rejected
}

// Flagged returns the count of constructed offers excluded by the soft
// validation pass.
func (p *Pipeline) Flagged() int {
	return p.flagged
}
