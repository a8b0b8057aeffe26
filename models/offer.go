package models

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Domain bounds for a lease offer. Construction enforces these; the soft
// validation pass in services re-checks them for records that arrive via
// OfferFromMap instead of NewLeaseOffer.
const (
	MinMonthlyPrice = 50.0
	MaxMonthlyPrice = 3000.0

	MinLeaseDurationMonths = 12
	MaxLeaseDurationMonths = 72

	MinYearlyKilometers = 5000
	MaxYearlyKilometers = 50000
)

// Construction rejection reasons.
var (
	ErrPriceOutOfRange      = errors.New("monthly price outside €50-€3000 range")
	ErrDurationOutOfRange   = errors.New("lease duration outside 12-72 month range")
	ErrKilometersOutOfRange = errors.New("yearly kilometers above 50000")
	ErrMissingProductURL    = errors.New("missing product URL")
)

// RawOffer holds the unprocessed text fragments scraped from one detail page.
// Field values are handed to the pipeline exactly as they appear on the page.
type RawOffer struct {
	MakeModelText   string
	PriceText       string
	LeaseInfoText   string
	VersionText     string
	DeliveryText    string
	PromoTexts      []string
	ImageCandidates []string
	ProductURL      string

	// Fallback values filled by the scraper when the page carries no
	// lease-info paragraph. Zero means unset; the pipeline then falls back
	// to the extractor defaults.
	FallbackDuration   int
	FallbackKilometers int

	ScrapedAt time.Time
}

// LeaseOffer is the normalized, range-validated record ready for output.
// It is immutable after construction except for the ValidationErrors
// annotation attached by the soft validation pass.
type LeaseOffer struct {
	Make                string   `json:"make"`
	Model               string   `json:"model"`
	Version             string   `json:"version,omitempty"`
	MonthlyPrice        float64  `json:"monthly_price"`
	LeaseDurationMonths int      `json:"lease_duration_months"`
	YearlyKilometers    int      `json:"yearly_kilometers"`
	DeliveryTime        string   `json:"delivery_time,omitempty"`
	PromotionTags       []string `json:"promotion_tags"`
	ImageURLs           []string `json:"image_urls"`
	ProductURL          string   `json:"product_url"`

	ValidationErrors []string `json:"validation_errors,omitempty"`
}

// NewLeaseOffer builds a validated LeaseOffer from already-extracted field
// values. All violations are reported together via errors.Join rather than
// stopping at the first one.
//
// Yearly kilometers below 5000 (including implausibly tiny values that are
// parse noise rather than real data) are normalized up to 5000; values above
// 50000 reject the record. Image URLs that are not absolute http/https links
// are silently dropped.
func NewLeaseOffer(
	make_, model, version string,
	monthlyPrice float64,
	leaseDurationMonths, yearlyKilometers int,
	deliveryTime string,
	promotionTags, imageURLs []string,
	productURL string,
) (*LeaseOffer, error) {
	var errs []error

	if monthlyPrice < MinMonthlyPrice || monthlyPrice > MaxMonthlyPrice {
		errs = append(errs, fmt.Errorf("%w: €%.2f", ErrPriceOutOfRange, monthlyPrice))
	}
	if leaseDurationMonths < MinLeaseDurationMonths || leaseDurationMonths > MaxLeaseDurationMonths {
		errs = append(errs, fmt.Errorf("%w: %d months", ErrDurationOutOfRange, leaseDurationMonths))
	}
	if yearlyKilometers > MaxYearlyKilometers {
		errs = append(errs, fmt.Errorf("%w: %d km", ErrKilometersOutOfRange, yearlyKilometers))
	}
	if strings.TrimSpace(productURL) == "" {
		errs = append(errs, ErrMissingProductURL)
	}
	if len(errs) > 0 {
		return nil, errors.Join(errs...)
	}

	if yearlyKilometers < MinYearlyKilometers {
		yearlyKilometers = MinYearlyKilometers
	}

	tags := make([]string, 0, len(promotionTags))
	tags = append(tags, promotionTags...)

	images := make([]string, 0, len(imageURLs))
	for _, u := range imageURLs {
		if strings.HasPrefix(u, "http://") || strings.HasPrefix(u, "https://") {
			images = append(images, u)
		}
	}

	return &LeaseOffer{
		Make:                make_,
		Model:               model,
		Version:             version,
		MonthlyPrice:        monthlyPrice,
		LeaseDurationMonths: leaseDurationMonths,
		YearlyKilometers:    yearlyKilometers,
		DeliveryTime:        deliveryTime,
		PromotionTags:       tags,
		ImageURLs:           images,
		ProductURL:          strings.TrimSpace(productURL),
	}, nil
}

// OfferFromMap converts a dictionary-shaped offer (e.g. one deserialized
// from a legacy export) into a LeaseOffer without applying construction
// rules. Records built this way rely on the soft validation pass; this is
// the single point where untyped input is mapped onto the canonical type.
func OfferFromMap(m map[string]any) *LeaseOffer {
	o := &LeaseOffer{}

	o.Make = asString(m["make"])
	o.Model = asString(m["model"])
	o.Version = asString(m["version"])
	o.DeliveryTime = asString(m["delivery_time"])
	o.ProductURL = asString(m["product_url"])

	switch v := m["monthly_price"].(type) {
	case float64:
		o.MonthlyPrice = v
	case int:
		o.MonthlyPrice = float64(v)
	}
	switch v := m["lease_duration_months"].(type) {
	case int:
		o.LeaseDurationMonths = v
	case float64:
		o.LeaseDurationMonths = int(v)
	}
	switch v := m["yearly_kilometers"].(type) {
	case int:
		o.YearlyKilometers = v
	case float64:
		o.YearlyKilometers = int(v)
	}

	o.PromotionTags = asStringSlice(m["promotion_tags"])
	o.ImageURLs = asStringSlice(m["image_urls"])

	return o
}

func asString(v any) string {
	s, _ := v.(string)
	return s
}

func asStringSlice(v any) []string {
	switch vs := v.(type) {
	case []string:
		return vs
	case []any:
		out := make([]string, 0, len(vs))
		for _, e := range vs {
			if s, ok := e.(string); ok {
				out = append(out, s)
			}
		}
		return out
	}
	return nil
}

// FieldNames returns the output column names in canonical order. The CSV
// writer takes its header from the first record of a batch.
func (o *LeaseOffer) FieldNames() []string {
	return []string{
		"make", "model", "version", "monthly_price", "lease_duration_months",
		"yearly_kilometers", "delivery_time", "promotion_tags", "image_urls",
		"product_url",
	}
}

// Row flattens the record to a single CSV row. List-valued fields are
// joined with "; " so each record stays on one line.
func (o *LeaseOffer) Row() []string {
	return []string{
		o.Make,
		o.Model,
		o.Version,
		strconv.FormatFloat(o.MonthlyPrice, 'f', -1, 64),
		strconv.Itoa(o.LeaseDurationMonths),
		strconv.Itoa(o.YearlyKilometers),
		o.DeliveryTime,
		strings.Join(o.PromotionTags, "; "),
		strings.Join(o.ImageURLs, "; "),
		o.ProductURL,
	}
}

// InsightReport holds the computed statistics over one run's accepted offers.
type InsightReport struct {
	TotalOffers    int
	AveragePrice   float64
	MinPrice       float64
	MaxPrice       float64
	Cheapest       *LeaseOffer
	MostExpensive  *LeaseOffer
	OffersByMake   map[string]int
	PromotionCount map[string]int
}
