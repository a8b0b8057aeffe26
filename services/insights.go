package services

import (
	"fmt"
	"sort"
	"strings"

	"lease-scraper/models"
	"lease-scraper/utils"
)

type InsightService struct {
	logger *utils.Logger
}

func NewInsightService(logger *utils.Logger) *InsightService {
	return &InsightService{logger: logger}
}

func (s *InsightService) Generate(offers []*models.LeaseOffer) *models.InsightReport {
	report := &models.InsightReport{
		OffersByMake:   make(map[string]int),
		PromotionCount: make(map[string]int),
	}

	if len(offers) == 0 {
		return report
	}

	report.TotalOffers = len(offers)
	report.MinPrice = offers[0].MonthlyPrice
	report.MaxPrice = offers[0].MonthlyPrice
	report.Cheapest = offers[0]
	report.MostExpensive = offers[0]

	var total float64
	for _, o := range offers {
		total += o.MonthlyPrice
		if o.MonthlyPrice < report.MinPrice {
			report.MinPrice = o.MonthlyPrice
			report.Cheapest = o
		}
		if o.MonthlyPrice > report.MaxPrice {
			report.MaxPrice = o.MonthlyPrice
			report.MostExpensive = o
		}
		if o.Make != "" {
			report.OffersByMake[o.Make]++
		}
		for _, tag := range o.PromotionTags {
			report.PromotionCount[tag]++
		}
	}

	report.AveragePrice = round2(total / float64(len(offers)))
	report.MinPrice = round2(report.MinPrice)
	report.MaxPrice = round2(report.MaxPrice)

	return report
}

func (s *InsightService) Print(r *models.InsightReport) {
	sep := strings.Repeat("═", 54)
	thin := strings.Repeat("─", 54)

	fmt.Printf("\n\033[1;35m%s\033[0m\n", sep)
	fmt.Printf("\033[1;35m  LEASE OFFER INSIGHTS\033[0m\n")
	fmt.Printf("\033[1;35m%s\033[0m\n\n", sep)

	fmt.Printf("\033[1;33m  Overview\033[0m\n")
	fmt.Printf("  %s\n", thin)
	fmt.Printf("  Accepted offers : \033[1m%d\033[0m\n", r.TotalOffers)
	fmt.Println()

	fmt.Printf("\033[1;33m  Monthly Price Statistics\033[0m\n")
	fmt.Printf("  %s\n", thin)
	if r.TotalOffers > 0 {
		fmt.Printf("  Average price : \033[1;32m€%.2f\033[0m\n", r.AveragePrice)
		fmt.Printf("  Minimum price : \033[1;32m€%.2f\033[0m\n", r.MinPrice)
		fmt.Printf("  Maximum price : \033[1;32m€%.2f\033[0m\n", r.MaxPrice)
	} else {
		fmt.Printf("  No price data available\n")
	}
	fmt.Println()

	if r.Cheapest != nil {
		fmt.Printf("\033[1;33m  Cheapest Offer\033[0m\n")
		fmt.Printf("  %s\n", thin)
		fmt.Printf("  %s %s\n", r.Cheapest.Make, r.Cheapest.Model)
		fmt.Printf("  Price : \033[1;32m€%.2f/month\033[0m (%d months, %d km/year)\n",
			r.Cheapest.MonthlyPrice, r.Cheapest.LeaseDurationMonths, r.Cheapest.YearlyKilometers)
		fmt.Println()
	}

	fmt.Printf("\033[1;33m  Offers by Make\033[0m\n")
	fmt.Printf("  %s\n", thin)
	if len(r.OffersByMake) == 0 {
		fmt.Printf("  No make data\n")
	} else {
		type makeCount struct {
			make_ string
			count int
		}
		var makes []makeCount
		for m, cnt := range r.OffersByMake {
			makes = append(makes, makeCount{m, cnt})
		}
		sort.Slice(makes, func(i, j int) bool {
			if makes[i].count != makes[j].count {
				return makes[i].count > makes[j].count
			}
			return makes[i].make_ < makes[j].make_
		})
		for _, mc := range makes {
			bar := strings.Repeat("█", mc.count)
			fmt.Printf("  %-16s %s (%d)\n", mc.make_, bar, mc.count)
		}
	}

	if len(r.PromotionCount) > 0 {
		fmt.Println()
		fmt.Printf("\033[1;33m  Promotions\033[0m\n")
		fmt.Printf("  %s\n", thin)
		for tag, cnt := range r.PromotionCount {
			fmt.Printf("  %-30s %d offers\n", tag, cnt)
		}
	}

	fmt.Printf("\n\033[1;35m%s\033[0m\n\n", sep)
}

func round2(f float64) float64 {
	return float64(int(f*100+0.5)) / 100
}
