package services

import "car-rental-scraper/models"

// Collector keeps records in first-seen order and rejects any record whose
// composite key was already added.
type Collector struct {
	keyFields []string
	seen      map[string]bool
	records   []models.Record
}

func NewCollector(keyFields []string) *Collector {
	return &Collector{
		keyFields: keyFields,
		seen:      make(map[string]bool),
	}
}

// Add appends r unless its key was seen and reports whether it was kept.
func (c *Collector) Add(r models.Record) bool {
	key := r.Key(c.keyFields)
	if c.seen[key] {
		return false
	}
	c.seen[key] = true
	c.records = append(c.records, r)
	return true
}

func (c *Collector) Len() int {
	return len(c.records)
}

// Records returns a copy of the collected records.
func (c *Collector) Records() []models.Record {
	out := make([]models.Record, len(c.records))
	copy(out, c.records)
	return out
}
