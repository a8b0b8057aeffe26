package models

import (
	"errors"
	"reflect"
	"testing"
)

func buildOffer(price float64, duration, kilometers int) (*LeaseOffer, error) {
	return NewLeaseOffer(
		"Leapmotor", "T03", "",
		price, duration, kilometers,
		"", nil,
		[]string{"https://images.anwb.nl/t03.jpg"},
		"https://www.anwb.nl/auto/private-lease/anwb-private-lease/aanbod/leapmotor/t03",
	)
}

func TestNewLeaseOfferPriceBounds(t *testing.T) {
	tests := []struct {
		price float64
		ok    bool
	}{
		{49.99, false},
		{50, true},
		{329, true},
		{3000, true},
		{3000.01, false},
	}

	for _, tt := range tests {
		_, err := buildOffer(tt.price, 60, 10000)
		if tt.ok && err != nil {
			t.Errorf("price %.2f: unexpected error: %v", tt.price, err)
		}
		if !tt.ok && !errors.Is(err, ErrPriceOutOfRange) {
			t.Errorf("price %.2f: got %v; want ErrPriceOutOfRange", tt.price, err)
		}
	}
}

func TestNewLeaseOfferDurationBounds(t *testing.T) {
	tests := []struct {
		duration int
		ok       bool
	}{
		{11, false},
		{12, true},
		{72, true},
		{73, false},
	}

	for _, tt := range tests {
		_, err := buildOffer(329, tt.duration, 10000)
		if tt.ok && err != nil {
			t.Errorf("duration %d: unexpected error: %v", tt.duration, err)
		}
		if !tt.ok && !errors.Is(err, ErrDurationOutOfRange) {
			t.Errorf("duration %d: got %v; want ErrDurationOutOfRange", tt.duration, err)
		}
	}
}

func TestNewLeaseOfferKilometerNormalization(t *testing.T) {
	tests := []struct {
		kilometers int
		want       int
		ok         bool
	}{
		{300, 5000, true},   // parse noise, clamped up
		{499, 5000, true},   // parse noise, clamped up
		{2500, 5000, true},  // low but plausible, still normalized
		{5000, 5000, true},  // lower bound stays
		{30000, 30000, true},
		{50000, 50000, true},
		{50001, 0, false},
	}

	for _, tt := range tests {
		offer, err := buildOffer(329, 60, tt.kilometers)
		if !tt.ok {
			if !errors.Is(err, ErrKilometersOutOfRange) {
				t.Errorf("kilometers %d: got %v; want ErrKilometersOutOfRange", tt.kilometers, err)
			}
			continue
		}
		if err != nil {
			t.Errorf("kilometers %d: unexpected error: %v", tt.kilometers, err)
			continue
		}
		if offer.YearlyKilometers != tt.want {
			t.Errorf("kilometers %d: normalized to %d; want %d",
				tt.kilometers, offer.YearlyKilometers, tt.want)
		}
	}
}

func TestNewLeaseOfferFiltersImageURLs(t *testing.T) {
	offer, err := NewLeaseOffer(
		"Leapmotor", "T03", "",
		329, 60, 10000,
		"", nil,
		[]string{"http://a.jpg", "not-a-url", "https://b.png", ""},
		"https://www.anwb.nl/aanbod/leapmotor/t03",
	)
	if err != nil {
		t.Fatalf("NewLeaseOffer: %v", err)
	}

	want := []string{"http://a.jpg", "https://b.png"}
	if !reflect.DeepEqual(offer.ImageURLs, want) {
		t.Errorf("ImageURLs = %v; want %v", offer.ImageURLs, want)
	}
}

func TestNewLeaseOfferRequiresProductURL(t *testing.T) {
	_, err := NewLeaseOffer("Leapmotor", "T03", "", 329, 60, 10000, "", nil, nil, "  ")
	if !errors.Is(err, ErrMissingProductURL) {
		t.Errorf("got %v; want ErrMissingProductURL", err)
	}
}

func TestNewLeaseOfferReportsAllViolations(t *testing.T) {
	_, err := NewLeaseOffer("Leapmotor", "T03", "", 10, 100, 60000, "", nil, nil, "")
	for _, want := range []error{
		ErrPriceOutOfRange, ErrDurationOutOfRange, ErrKilometersOutOfRange, ErrMissingProductURL,
	} {
		if !errors.Is(err, want) {
			t.Errorf("rejection %v does not wrap %v", err, want)
		}
	}
}

func TestOfferFromMap(t *testing.T) {
	offer := OfferFromMap(map[string]any{
		"make":                  "Kia",
		"model":                 "Picanto",
		"monthly_price":         299.0,
		"lease_duration_months": 48.0, // JSON numbers decode as float64
		"yearly_kilometers":     10000,
		"promotion_tags":        []any{"Ledenvoordeel"},
		"image_urls":            []string{"https://images.anwb.nl/picanto.jpg"},
		"product_url":           "https://www.anwb.nl/aanbod/kia/picanto",
	})

	if offer.Make != "Kia" || offer.Model != "Picanto" {
		t.Errorf("make/model = %q/%q", offer.Make, offer.Model)
	}
	if offer.MonthlyPrice != 299 {
		t.Errorf("MonthlyPrice = %v; want 299", offer.MonthlyPrice)
	}
	if offer.LeaseDurationMonths != 48 {
		t.Errorf("LeaseDurationMonths = %d; want 48", offer.LeaseDurationMonths)
	}
	if offer.YearlyKilometers != 10000 {
		t.Errorf("YearlyKilometers = %d; want 10000", offer.YearlyKilometers)
	}
	if !reflect.DeepEqual(offer.PromotionTags, []string{"Ledenvoordeel"}) {
		t.Errorf("PromotionTags = %v", offer.PromotionTags)
	}
}

func TestRowFlattensListFields(t *testing.T) {
	offer, err := NewLeaseOffer(
		"Kia", "Picanto", "DynamicLine",
		299, 48, 10000,
		"Binnen 2 weken",
		[]string{"Ledenvoordeel", "Inruilvoordeel"},
		[]string{"https://a.jpg", "https://b.jpg"},
		"https://www.anwb.nl/aanbod/kia/picanto",
	)
	if err != nil {
		t.Fatalf("NewLeaseOffer: %v", err)
	}

	row := offer.Row()
	if len(row) != len(offer.FieldNames()) {
		t.Fatalf("row has %d cells; header has %d", len(row), len(offer.FieldNames()))
	}
	if row[7] != "Ledenvoordeel; Inruilvoordeel" {
		t.Errorf("promotion_tags cell = %q", row[7])
	}
	if row[8] != "https://a.jpg; https://b.jpg" {
		t.Errorf("image_urls cell = %q", row[8])
	}
	if row[3] != "299" {
		t.Errorf("monthly_price cell = %q", row[3])
	}
}
