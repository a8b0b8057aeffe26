package anwb

import (
	"errors"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"lease-scraper/models"
)

// Page-level fallback defaults, applied only when a detail page carries no
// recognizable lease-info paragraph. These differ from the extractor
// defaults in services on purpose: this path mirrors the listing site's own
// most common configuration.
const (
	fallbackDurationMonths = 72
	fallbackKilometers     = 5000
)

var errNotOfferPage = errors.New("page does not look like a lease offer")

var (
	priceTextRegexp = regexp.MustCompile(`€\s*\d+(?:[.,]\d+)?(?:,-)?`)
	euroDigitRegexp = regexp.MustCompile(`€\s*\d`)

	pageDurationRegexp   = regexp.MustCompile(`(?i)(\d+)\s*(?:months|month|maanden|maand)`)
	pageKilometersRegexp = regexp.MustCompile(`(?i)(\d+(?:[.,]\d+)?)\s*(?:km|k)\b`)
)

// imageNoisePatterns marks site furniture that shows up in img tags but has
// nothing to do with the car on the page.
var imageNoisePatterns = []string{
	"icon", "logo", "banner", "anwb-fietsverzekeren", "autoverkoopservice",
	"wat-je-pech", "onderweg-app", "getty", "campagnepagina", "homepage",
	"zonnepanelen", "energiecontract",
}

// ParseDetailPage turns the captured HTML of one offer detail page into the
// raw-field tuple the pipeline consumes. It extracts text fragments only;
// all typed normalization happens downstream.
func ParseDetailPage(htmlSrc, pageURL string) (*models.RawOffer, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(htmlSrc))
	if err != nil {
		return nil, err
	}

	pageText := doc.Text()
	lowerText := strings.ToLower(pageText)

	if !euroDigitRegexp.MatchString(pageText) &&
		!strings.Contains(lowerText, "lease") &&
		!strings.Contains(lowerText, "auto") &&
		!strings.Contains(lowerText, "private") {
		return nil, errNotOfferPage
	}

	make_, model := makeModelFromURL(pageURL)

	raw := &models.RawOffer{
		MakeModelText: strings.TrimSpace(make_ + " " + model),
		PriceText:     priceTextRegexp.FindString(pageText),
		VersionText:   labeledText(doc, "version:", "versie:"),
		DeliveryText:  labeledText(doc, "delivery:", "levertijd:"),
		PromoTexts:    promoTags(doc, lowerText),
		ProductURL:    pageURL,
		ScrapedAt:     time.Now(),
	}

	raw.LeaseInfoText = leaseInfoText(doc)
	if raw.LeaseInfoText == "" {
		raw.FallbackDuration, raw.FallbackKilometers = scanLeaseDetails(doc)
	}

	raw.ImageCandidates = imageCandidates(doc, make_, model)

	return raw, nil
}

// makeModelFromURL derives the make and model from the last two path
// segments of an offer URL (".../aanbod/leapmotor/t03").
func makeModelFromURL(pageURL string) (string, string) {
	parts := strings.Split(strings.TrimRight(pageURL, "/"), "/")
	if len(parts) < 2 {
		return "", ""
	}
	return capitalize(parts[len(parts)-2]), capitalize(parts[len(parts)-1])
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}

// leaseInfoText finds the "based on 72 months - 5,000 km/year" style
// paragraph, trying the explicit phrasing first and then any text that
// mentions both a month count and kilometers.
func leaseInfoText(doc *goquery.Document) string {
	found := ""

	doc.Find("p").EachWithBreak(func(_ int, sel *goquery.Selection) bool {
		text := strings.TrimSpace(sel.Text())
		lower := strings.ToLower(text)
		if strings.Contains(lower, "based on") || strings.Contains(lower, "gebaseerd op") {
			found = text
			return false
		}
		return true
	})
	if found != "" {
		return found
	}

	doc.Find("p, span").EachWithBreak(func(_ int, sel *goquery.Selection) bool {
		text := strings.TrimSpace(sel.Text())
		lower := strings.ToLower(text)
		if (strings.Contains(lower, "months") || strings.Contains(lower, "maanden")) &&
			strings.Contains(lower, "km") {
			found = text
			return false
		}
		return true
	})
	return found
}

// scanLeaseDetails is the coarse fallback: scan every text node for month
// and kilometer mentions, keeping this path's own defaults when nothing
// plausible turns up. Kilometer readings of 500 or less are treated as
// parse noise and ignored.
func scanLeaseDetails(doc *goquery.Document) (int, int) {
	duration := fallbackDurationMonths
	kilometers := fallbackKilometers

	doc.Find("p, span, div").Each(func(_ int, sel *goquery.Selection) {
		text := sel.Text()

		if duration == fallbackDurationMonths {
			if m := pageDurationRegexp.FindStringSubmatch(text); m != nil {
				if v, err := strconv.Atoi(m[1]); err == nil {
					duration = v
				}
			}
		}

		if kilometers == fallbackKilometers {
			if m := pageKilometersRegexp.FindStringSubmatch(text); m != nil {
				digits := strings.NewReplacer(".", "", ",", "").Replace(m[1])
				if v, err := strconv.Atoi(digits); err == nil && v > 500 {
					kilometers = v
				}
			}
		}
	})

	return duration, kilometers
}

// labeledText finds a list item or inline element carrying one of the given
// lowercase labels ("versie:", "levertijd:") and returns the text after it.
func labeledText(doc *goquery.Document, labels ...string) string {
	found := ""

	doc.Find("li, div, span").EachWithBreak(func(_ int, sel *goquery.Selection) bool {
		text := strings.TrimSpace(sel.Text())
		lower := strings.ToLower(text)
		for _, label := range labels {
			if idx := strings.Index(lower, label); idx >= 0 {
				found = strings.TrimSpace(text[idx+len(label):])
				return false
			}
		}
		return true
	})

	return found
}

// promoTags collects promotional labels from the dedicated tag elements,
// with a page-text fallback for the member-discount banner.
func promoTags(doc *goquery.Document, lowerText string) []string {
	var tags []string
	seen := make(map[string]struct{})

	doc.Find(`.promotion-tag, .discount-tag, [data-test="promotion-tag"]`).Each(func(_ int, sel *goquery.Selection) {
		tag := strings.TrimSpace(sel.Text())
		if tag == "" {
			return
		}
		if _, dup := seen[tag]; dup {
			return
		}
		seen[tag] = struct{}{}
		tags = append(tags, tag)
	})

	if len(tags) == 0 && strings.Contains(lowerText, "ledenvoordeel") {
		tags = append(tags, "Ledenvoordeel")
	}

	return tags
}

// imageCandidates collects car image URLs, filtering out site furniture and
// preferring images whose URL mentions the make or model. At most ten
// survive; final absolute-URL validation happens at record construction.
func imageCandidates(doc *goquery.Document, make_, model string) []string {
	makeLower := strings.ToLower(make_)
	modelLower := strings.ToLower(model)
	modelFlat := strings.ReplaceAll(modelLower, "-", "")
	modelStem := strings.SplitN(modelLower, "-", 2)[0]

	var preferred, generic []string
	seen := make(map[string]struct{})

	doc.Find("img").Each(func(_ int, sel *goquery.Selection) {
		src := strings.TrimSpace(sel.AttrOr("src", ""))
		if !strings.HasPrefix(src, "http") {
			return
		}
		if !strings.Contains(src, "transform") &&
			!strings.Contains(src, ".jpg") && !strings.Contains(src, ".png") {
			return
		}

		lower := strings.ToLower(src)
		for _, noise := range imageNoisePatterns {
			if strings.Contains(lower, noise) {
				return
			}
		}
		if _, dup := seen[src]; dup {
			return
		}
		seen[src] = struct{}{}

		if (makeLower != "" && strings.Contains(lower, makeLower)) ||
			(modelFlat != "" && strings.Contains(lower, modelFlat)) ||
			(modelStem != "" && strings.Contains(lower, modelStem)) {
			preferred = append(preferred, src)
			return
		}
		generic = append(generic, src)
	})

	images := append(preferred, generic...)
	if len(images) > 10 {
		images = images[:10]
	}
	return images
}
