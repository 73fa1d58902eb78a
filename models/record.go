package models

import "strings"

// Record is one scraped listing: field name to extracted text.
// A missing field reads as "".
type Record map[string]string

func (r Record) Get(field string) string {
	return r[field]
}

// Values returns the record's fields in column order.
func (r Record) Values(columns []string) []string {
	out := make([]string, len(columns))
	for i, c := range columns {
		out[i] = r[c]
	}
	return out
}

// Key joins the given fields into the composite key used to spot duplicates.
func (r Record) Key(fields []string) string {
	return strings.Join(r.Values(fields), "|")
}

// Offer is the site-independent view of a vehicle record used for
// reporting and persistence.
type Offer struct {
	Site     string
	Key      string
	Title    string
	RawPrice string
	Price    float64
	Currency string
	Fields   Record
}

type ScrapeResult struct {
	Site         string
	Records      []Record
	CrawlRecords []Record
	CardsSeen    int
	Failed       int
	Dropped      int
}
