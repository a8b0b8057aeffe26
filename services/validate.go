package services

import (
	"fmt"
	"strconv"
	"strings"

	"lease-scraper/models"
)

// Field validators are pure predicates. They accept either the native typed
// value or a string representation (comma as decimal separator for prices,
// `.`/`,` thousands separators for kilometers); a value that cannot be
// coerced simply fails the check.

// ValidMakeModel reports whether the make/model pair identifies a car.
func ValidMakeModel(make_, model string) bool {
	if make_ == "" || model == "" {
		return false
	}
	if strings.EqualFold(make_, "unknown") && model == "" {
		return false
	}
	return true
}

// ValidPrice reports whether v is a monthly price inside €50-€3000.
func ValidPrice(v any) bool {
	p, ok := coerceFloat(v)
	return ok && p >= models.MinMonthlyPrice && p <= models.MaxMonthlyPrice
}

// ValidDuration reports whether v is a lease duration inside 12-72 months.
func ValidDuration(v any) bool {
	d, ok := coerceInt(v, false)
	return ok && d >= models.MinLeaseDurationMonths && d <= models.MaxLeaseDurationMonths
}

// ValidKilometers reports whether v is a yearly allowance inside 5000-50000.
func ValidKilometers(v any) bool {
	km, ok := coerceInt(v, true)
	return ok && km >= models.MinYearlyKilometers && km <= models.MaxYearlyKilometers
}

// ValidImageURL reports whether u is an absolute http/https URL.
func ValidImageURL(u string) bool {
	return strings.HasPrefix(u, "http://") || strings.HasPrefix(u, "https://")
}

func coerceFloat(v any) (float64, bool) {
	switch x := v.(type) {
	case float64:
		return x, true
	case float32:
		return float64(x), true
	case int:
		return float64(x), true
	case string:
		f, err := strconv.ParseFloat(strings.ReplaceAll(x, ",", "."), 64)
		return f, err == nil
	}
	return 0, false
}

func coerceInt(v any, stripSeparators bool) (int, bool) {
	switch x := v.(type) {
	case int:
		return x, true
	case int64:
		return int(x), true
	case float64:
		return int(x), true
	case string:
		if stripSeparators {
			x = separatorStripper.Replace(x)
		}
		n, err := strconv.Atoi(x)
		return n, err == nil
	}
	return 0, false
}

// ValidateOffer audits a full record and returns one human-readable message
// per failing check, in a fixed order. An empty slice means the record is
// valid. Every check always runs so all applicable problems are reported.
//
// For records built through NewLeaseOffer the numeric checks cannot fire
// (construction already enforced those ranges); they exist for records that
// bypass the constructor, such as ones mapped in via OfferFromMap.
func ValidateOffer(o *models.LeaseOffer) []string {
	var errs []string

	if !ValidMakeModel(o.Make, o.Model) {
		errs = append(errs, "Invalid or missing make/model")
	}
	if !ValidPrice(o.MonthlyPrice) {
		errs = append(errs, fmt.Sprintf("Invalid price: %v", o.MonthlyPrice))
	}
	if !ValidDuration(o.LeaseDurationMonths) {
		errs = append(errs, fmt.Sprintf("Invalid lease duration: %v", o.LeaseDurationMonths))
	}
	if !ValidKilometers(o.YearlyKilometers) {
		errs = append(errs, fmt.Sprintf("Invalid yearly kilometers: %v", o.YearlyKilometers))
	}
	if len(o.ImageURLs) > 0 {
		invalid := 0
		for _, u := range o.ImageURLs {
			if !ValidImageURL(u) {
				invalid++
			}
		}
		if invalid > 0 {
			errs = append(errs, fmt.Sprintf("Invalid image URLs: %d invalid URLs", invalid))
		}
	}
	if strings.TrimSpace(o.ProductURL) == "" {
		errs = append(errs, "Missing or invalid product URL")
	}

	return errs
}
