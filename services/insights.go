package services

import (
	"car-rental-scraper/models"
	"fmt"
	"io"
	"math"
	"sort"
	"strings"
)

type Report struct {
	TotalOffers          int
	PricedOffers         int
	AveragePrice         float64
	MinPrice             float64
	MaxPrice             float64
	Cheapest             models.Offer
	MostExpensive        models.Offer
	CheapestFive         []models.Offer
	OffersBySite         map[string]int
	OffersByTransmission map[string]int
}

// GenerateReport summarises prices across every scraped offer. Offers
// without a parseable price count towards totals only.
func GenerateReport(offers []models.Offer) Report {
	report := Report{
		TotalOffers:          len(offers),
		OffersBySite:         make(map[string]int),
		OffersByTransmission: make(map[string]int),
	}

	var (
		priceSum float64
		maxPrice = -1.0
		minPrice = math.MaxFloat64
		priced   []models.Offer
	)

	for _, o := range offers {
		report.OffersBySite[normalize(o.Site)]++
		if t := o.Fields.Get("transmission"); t != "" {
			report.OffersByTransmission[normalize(t)]++
		}

		if o.Price <= 0 {
			continue
		}
		priced = append(priced, o)
		priceSum += o.Price

		if o.Price > maxPrice {
			maxPrice = o.Price
			report.MostExpensive = o
		}
		if o.Price < minPrice {
			minPrice = o.Price
			report.Cheapest = o
		}
	}

	report.PricedOffers = len(priced)
	if len(priced) == 0 {
		return report
	}

	report.AveragePrice = priceSum / float64(len(priced))
	report.MinPrice = minPrice
	report.MaxPrice = maxPrice

	sort.SliceStable(priced, func(i, j int) bool {
		return priced[i].Price < priced[j].Price
	})
	if len(priced) > 5 {
		priced = priced[:5]
	}
	report.CheapestFive = priced

	return report
}

func PrintReport(w io.Writer, report Report) {
	fmt.Fprintln(w)
	fmt.Fprintln(w, "┌──────────────────────────────────────────────────────────────┐")
	fmt.Fprintln(w, "│                  Car Rental Price Insights                   │")
	fmt.Fprintln(w, "├───────────────────────────────┬──────────────────────────────┤")
	fmt.Fprintf(w, "│ %-29s │ %-28d │\n", "Total Offers Scraped", report.TotalOffers)
	fmt.Fprintf(w, "│ %-29s │ %-28d │\n", "Offers With Price", report.PricedOffers)
	fmt.Fprintf(w, "│ %-29s │ %-28.2f │\n", "Average Price", report.AveragePrice)
	fmt.Fprintf(w, "│ %-29s │ %-28.2f │\n", "Minimum Price", report.MinPrice)
	fmt.Fprintf(w, "│ %-29s │ %-28.2f │\n", "Maximum Price", report.MaxPrice)
	fmt.Fprintln(w, "└───────────────────────────────┴──────────────────────────────┘")

	if report.MostExpensive.Title != "" {
		fmt.Fprintln(w)
		fmt.Fprintf(w, "Most expensive: %s (%s) %.2f %s\n",
			report.MostExpensive.Title, report.MostExpensive.Site,
			report.MostExpensive.Price, report.MostExpensive.Currency)
		fmt.Fprintf(w, "Cheapest:       %s (%s) %.2f %s\n",
			report.Cheapest.Title, report.Cheapest.Site,
			report.Cheapest.Price, report.Cheapest.Currency)
	}

	printCounts(w, "Offers per Site", report.OffersBySite)
	if len(report.OffersByTransmission) > 0 {
		printCounts(w, "Offers per Transmission", report.OffersByTransmission)
	}

	if len(report.CheapestFive) == 0 {
		return
	}
	fmt.Fprintln(w)
	fmt.Fprintln(w, "┌─────┬──────────────────────────────────────────────┬──────────┐")
	fmt.Fprintln(w, "│ #   │ Five Cheapest Offers                         │ Price    │")
	fmt.Fprintln(w, "├─────┼──────────────────────────────────────────────┼──────────┤")
	for i, o := range report.CheapestFive {
		fmt.Fprintf(w, "│ %-3d │ %-44s │ %-8.2f │\n", i+1, truncateText(o.Title, 44), o.Price)
	}
	fmt.Fprintln(w, "└─────┴──────────────────────────────────────────────┴──────────┘")
}

func printCounts(w io.Writer, title string, counts map[string]int) {
	fmt.Fprintln(w)
	fmt.Fprintln(w, "┌──────────────────────────────────────────────┬───────────────┐")
	fmt.Fprintf(w, "│ %-44s │ %-13s │\n", title, "Count")
	fmt.Fprintln(w, "├──────────────────────────────────────────────┼───────────────┤")
	for _, k := range sortedKeys(counts) {
		fmt.Fprintf(w, "│ %-44s │ %-13d │\n", truncateText(k, 44), counts[k])
	}
	fmt.Fprintln(w, "└──────────────────────────────────────────────┴───────────────┘")
}

func normalize(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return "Unknown"
	}
	return s
}

func sortedKeys(m map[string]int) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func truncateText(s string, max int) string {
	r := []rune(s)
	if len(r) <= max {
		return s
	}
	if max <= 3 {
		return string(r[:max])
	}
	return string(r[:max-3]) + "..."
}
