// Package population loads and serves the synthetic user population. The
// store is immutable after load: pipeline stages receive index slices into it
// and never copy or mutate records.
package population

import (
	"fmt"
	"sort"

	"personagen/internal/types"
)

// =============================================================================
// POPULATION STORE
// =============================================================================

// Store holds the loaded population.
type Store struct {
	records []types.UserRecord
}

// NewFromRecords wraps an already-built record slice.
func NewFromRecords(records []types.UserRecord) *Store {
	return &Store{records: records}
}

// Len returns the population size.
func (s *Store) Len() int { return len(s.records) }

// Record returns the record at index i.
func (s *Store) Record(i int) *types.UserRecord { return &s.records[i] }

// Records returns the full record slice. Callers must not mutate it.
func (s *Store) Records() []types.UserRecord { return s.records }

// Stats summarizes the population for diagnostics.
type Stats struct {
	Total        int            `json:"total"`
	AvgAge       float64        `json:"avg_age"`
	ByGender     map[string]int `json:"by_gender"`
	ByCityTier   map[string]int `json:"by_city_tier"`
	ByIncomeBand map[string]int `json:"by_income_band"`
}

// Summarize computes population-level statistics.
func (s *Store) Summarize() Stats {
	st := Stats{
		Total:        len(s.records),
		ByGender:     make(map[string]int),
		ByCityTier:   make(map[string]int),
		ByIncomeBand: make(map[string]int),
	}
	if st.Total == 0 {
		return st
	}

	ageSum := 0.0
	for i := range s.records {
		r := &s.records[i]
		ageSum += float64(r.Age)
		st.ByGender[r.Gender]++
		st.ByCityTier[r.CityTier]++
		st.ByIncomeBand[r.IncomeBand]++
	}
	st.AvgAge = ageSum / float64(st.Total)
	return st
}

// Percentile returns the p-th percentile (0-100) of the values produced by
// extract over the given subset indices. Used by spend-based filters that cut
// at a subset-relative threshold.
func (s *Store) Percentile(subset []int, p float64, extract func(*types.UserRecord) float64) float64 {
	if len(subset) == 0 {
		return 0
	}
	vals := make([]float64, 0, len(subset))
	for _, idx := range subset {
		vals = append(vals, extract(&s.records[idx]))
	}
	sort.Float64s(vals)

	if p <= 0 {
		return vals[0]
	}
	if p >= 100 {
		return vals[len(vals)-1]
	}
	// Linear interpolation between closest ranks.
	rank := p / 100 * float64(len(vals)-1)
	lo := int(rank)
	hi := lo + 1
	if hi >= len(vals) {
		return vals[lo]
	}
	frac := rank - float64(lo)
	return vals[lo]*(1-frac) + vals[hi]*frac
}

// Validate checks the loaded population for obviously broken rows.
func (s *Store) Validate() error {
	for i := range s.records {
		r := &s.records[i]
		if r.Age < 0 || r.Age > 130 {
			return fmt.Errorf("record %d: age %d out of range", r.ID, r.Age)
		}
	}
	return nil
}
