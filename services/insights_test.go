package services

import (
	"testing"

	"lease-scraper/models"
)

func offerFor(make_, model string, price float64) *models.LeaseOffer {
	return &models.LeaseOffer{
		Make:                make_,
		Model:               model,
		MonthlyPrice:        price,
		LeaseDurationMonths: 60,
		YearlyKilometers:    10000,
		PromotionTags:       []string{"Ledenvoordeel"},
		ProductURL:          "https://www.anwb.nl/aanbod/" + make_ + "/" + model,
	}
}

func TestInsightsGenerate(t *testing.T) {
	svc := NewInsightService(newTestLogger())

	offers := []*models.LeaseOffer{
		offerFor("Kia", "Picanto", 299),
		offerFor("Kia", "Niro", 499),
		offerFor("Leapmotor", "T03", 329),
	}

	r := svc.Generate(offers)

	if r.TotalOffers != 3 {
		t.Errorf("TotalOffers = %d; want 3", r.TotalOffers)
	}
	if r.MinPrice != 299 || r.MaxPrice != 499 {
		t.Errorf("min/max = %.2f/%.2f; want 299/499", r.MinPrice, r.MaxPrice)
	}
	if r.AveragePrice != 375.67 {
		t.Errorf("AveragePrice = %.2f; want 375.67", r.AveragePrice)
	}
	if r.Cheapest == nil || r.Cheapest.Model != "Picanto" {
		t.Errorf("Cheapest = %+v; want Picanto", r.Cheapest)
	}
	if r.MostExpensive == nil || r.MostExpensive.Model != "Niro" {
		t.Errorf("MostExpensive = %+v; want Niro", r.MostExpensive)
	}
	if r.OffersByMake["Kia"] != 2 || r.OffersByMake["Leapmotor"] != 1 {
		t.Errorf("OffersByMake = %v", r.OffersByMake)
	}
	if r.PromotionCount["Ledenvoordeel"] != 3 {
		t.Errorf("PromotionCount = %v", r.PromotionCount)
	}
}

func TestInsightsGenerateEmpty(t *testing.T) {
	svc := NewInsightService(newTestLogger())

	r := svc.Generate(nil)
	if r.TotalOffers != 0 || r.Cheapest != nil {
		t.Errorf("empty report = %+v", r)
	}
}
