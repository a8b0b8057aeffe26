package services

import (
	"regexp"
	"strconv"
	"strings"
	"unicode"
)

// Extractor defaults used when a fragment carries no parseable value.
// Deliberately the statistically common terms for this market, not zero
// sentinels, so missing fields do not skew the output distribution. The
// scraper's page-level fallback path uses its own, different defaults.
const (
	DefaultLeaseDurationMonths = 60
	DefaultYearlyKilometers    = 10000
)

var (
	// priceRegexp captures a digit run with an optional comma-separated
	// fraction; the source locale uses the comma as decimal separator.
	priceRegexp = regexp.MustCompile(`(\d+)(?:,(\d+))?`)
	// durationRegexp matches "72 months", "72 maanden" and the singulars.
	durationRegexp = regexp.MustCompile(`(?i)(\d+)\s*(?:months|month|maanden|maand)`)
	// kilometersRegexp matches "5,000 km/year", "5.000 km/jaar", "10 k/year".
	kilometersRegexp = regexp.MustCompile(`(?i)(\d+(?:[.,]\d+)?)\s*(?:km|k)/(?:year|jaar)`)

	separatorStripper = strings.NewReplacer(".", "", ",", "")
)

// ExtractPrice parses a monthly price out of a text fragment like "€ 329,-"
// or "€ 412,50". It never fails: unparseable or empty input yields 0.
func ExtractPrice(text string) float64 {
	if text == "" {
		return 0
	}

	m := priceRegexp.FindStringSubmatch(text)
	if m == nil {
		return 0
	}

	cents := m[2]
	if cents == "" {
		cents = "0"
	}

	v, err := strconv.ParseFloat(m[1]+"."+cents, 64)
	if err != nil {
		return 0
	}
	return v
}

// ExtractDurationKilometers parses a lease-info fragment like
// "based on 72 months - 5,000 km/year" (or its Dutch equivalent) into a
// (duration, yearly kilometers) pair, falling back to the extractor
// defaults for whichever part is absent.
func ExtractDurationKilometers(text string) (int, int) {
	if text == "" {
		return DefaultLeaseDurationMonths, DefaultYearlyKilometers
	}

	duration := DefaultLeaseDurationMonths
	if m := durationRegexp.FindStringSubmatch(text); m != nil {
		if v, err := strconv.Atoi(m[1]); err == nil {
			duration = v
		}
	}

	kilometers := DefaultYearlyKilometers
	if m := kilometersRegexp.FindStringSubmatch(text); m != nil {
		if v, err := strconv.Atoi(separatorStripper.Replace(m[1])); err == nil {
			kilometers = v
		}
	}

	return duration, kilometers
}

// makeCatalog lists known manufacturers so combined make/model strings can
// be split at the right boundary ("Alfa Romeo Tonale" → "Alfa Romeo",
// "Tonale"). Matching is case-insensitive on the longest catalog prefix.
var makeCatalog = []string{
	"Alfa Romeo", "Audi", "BMW", "Citroën", "Citroen", "Dacia", "Fiat",
	"Ford", "Honda", "Hyundai", "Jaguar", "Jeep", "Kia", "Land Rover",
	"Lexus", "Mazda", "Mercedes", "Mercedes-Benz", "Mini", "Mitsubishi",
	"Nissan", "Opel", "Peugeot", "Porsche", "Renault", "Seat", "Skoda",
	"Škoda", "Suzuki", "Tesla", "Toyota", "Volkswagen", "Volvo", "MG",
	"Leapmotor",
}

// ExtractMakeModel splits a combined make/model string. Unknown makes fall
// back to a split at the first whitespace; a single unrecognized token is
// reported with the "Unknown" make sentinel.
func ExtractMakeModel(text string) (string, string) {
	text = strings.TrimSpace(text)
	if text == "" {
		return "", ""
	}

	lower := strings.ToLower(text)
	best := ""
	for _, brand := range makeCatalog {
		if len(brand) > len(best) && strings.HasPrefix(lower, strings.ToLower(brand)) {
			best = brand
		}
	}
	if best != "" {
		return best, strings.TrimSpace(text[len(best):])
	}

	if i := strings.IndexFunc(text, unicode.IsSpace); i >= 0 {
		return text[:i], strings.TrimSpace(text[i:])
	}
	return "Unknown", text
}
