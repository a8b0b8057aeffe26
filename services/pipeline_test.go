package services

import (
	"errors"
	"testing"

	"lease-scraper/models"
	"lease-scraper/utils"
)

func newTestLogger() *utils.Logger { return utils.NewLogger() }

func rawOffer(url string) *models.RawOffer {
	return &models.RawOffer{
		MakeModelText: "Leapmotor T03",
		PriceText:     "€ 329,-",
		LeaseInfoText: "based on 72 months - 5,000 km/year",
		ProductURL:    url,
	}
}

func TestPipelineIngestValidOffer(t *testing.T) {
	p := NewPipeline(newTestLogger())

	offer, err := p.Ingest(rawOffer("https://www.anwb.nl/aanbod/leapmotor/t03"))
	if err != nil {
		t.Fatalf("Ingest: %v", err)
	}

	if offer.Make != "Leapmotor" || offer.Model != "T03" {
		t.Errorf("make/model = %q/%q", offer.Make, offer.Model)
	}
	if offer.MonthlyPrice != 329 {
		t.Errorf("MonthlyPrice = %v; want 329", offer.MonthlyPrice)
	}
	if offer.LeaseDurationMonths != 72 || offer.YearlyKilometers != 5000 {
		t.Errorf("duration/km = %d/%d; want 72/5000",
			offer.LeaseDurationMonths, offer.YearlyKilometers)
	}
	if len(p.Accepted()) != 1 {
		t.Errorf("accepted %d offers; want 1", len(p.Accepted()))
	}
}

func TestPipelineDeduplicatesByURL(t *testing.T) {
	p := NewPipeline(newTestLogger())
	url := "https://www.anwb.nl/aanbod/leapmotor/t03"

	if _, err := p.Ingest(rawOffer(url)); err != nil {
		t.Fatalf("first Ingest: %v", err)
	}
	if _, err := p.Ingest(rawOffer(url)); !errors.Is(err, ErrDuplicateOffer) {
		t.Errorf("second Ingest err = %v; want ErrDuplicateOffer", err)
	}
	if len(p.Accepted()) != 1 {
		t.Errorf("accepted %d offers; want 1", len(p.Accepted()))
	}
}

func TestPipelineDropsEmptyProductURL(t *testing.T) {
	p := NewPipeline(newTestLogger())

	if _, err := p.Ingest(rawOffer("  ")); !errors.Is(err, ErrEmptyProductURL) {
		t.Errorf("Ingest err = %v; want ErrEmptyProductURL", err)
	}
	if p.Rejected() != 1 {
		t.Errorf("Rejected() = %d; want 1", p.Rejected())
	}
}

func TestPipelineRejectsOutOfRangePrice(t *testing.T) {
	p := NewPipeline(newTestLogger())

	raw := rawOffer("https://www.anwb.nl/aanbod/porsche/taycan")
	raw.PriceText = "€ 3500,-"

	if _, err := p.Ingest(raw); !errors.Is(err, models.ErrPriceOutOfRange) {
		t.Errorf("Ingest err = %v; want ErrPriceOutOfRange", err)
	}
	if p.Rejected() != 1 || len(p.Accepted()) != 0 {
		t.Errorf("rejected=%d accepted=%d; want 1/0", p.Rejected(), len(p.Accepted()))
	}
}

func TestPipelineRepairsDroppedDigitPrice(t *testing.T) {
	p := NewPipeline(newTestLogger())

	raw := rawOffer("https://www.anwb.nl/aanbod/kia/picanto")
	raw.PriceText = "€ 35,-"

	offer, err := p.Ingest(raw)
	if err != nil {
		t.Fatalf("Ingest: %v", err)
	}
	if offer.MonthlyPrice != 350 {
		t.Errorf("MonthlyPrice = %v; want 350 (35 with restored digit)", offer.MonthlyPrice)
	}
}

func TestPipelineFlagsSoftValidationFailures(t *testing.T) {
	p := NewPipeline(newTestLogger())

	raw := rawOffer("https://www.anwb.nl/aanbod/onbekend")
	raw.MakeModelText = ""

	offer, err := p.Ingest(raw)
	if err != nil {
		t.Fatalf("Ingest: %v", err)
	}
	if len(offer.ValidationErrors) == 0 {
		t.Fatal("expected validation errors on offer without make/model")
	}
	if offer.ValidationErrors[0] != "Invalid or missing make/model" {
		t.Errorf("first error = %q", offer.ValidationErrors[0])
	}
	if len(p.Accepted()) != 0 || p.Flagged() != 1 {
		t.Errorf("accepted=%d flagged=%d; want 0/1", len(p.Accepted()), p.Flagged())
	}
}

func TestPipelineDurationKilometerFallbacks(t *testing.T) {
	p := NewPipeline(newTestLogger())

	// No lease-info text and no scraper fallback: extractor defaults.
	raw := rawOffer("https://www.anwb.nl/aanbod/kia/niro")
	raw.LeaseInfoText = ""
	offer, err := p.Ingest(raw)
	if err != nil {
		t.Fatalf("Ingest: %v", err)
	}
	if offer.LeaseDurationMonths != 60 || offer.YearlyKilometers != 10000 {
		t.Errorf("extractor defaults = %d/%d; want 60/10000",
			offer.LeaseDurationMonths, offer.YearlyKilometers)
	}

	// Scraper fallback values win over extractor defaults.
	raw = rawOffer("https://www.anwb.nl/aanbod/kia/ev6")
	raw.LeaseInfoText = ""
	raw.FallbackDuration = 72
	raw.FallbackKilometers = 5000
	offer, err = p.Ingest(raw)
	if err != nil {
		t.Fatalf("Ingest: %v", err)
	}
	if offer.LeaseDurationMonths != 72 || offer.YearlyKilometers != 5000 {
		t.Errorf("scraper fallback = %d/%d; want 72/5000",
			offer.LeaseDurationMonths, offer.YearlyKilometers)
	}
}
