// Package recommend scores starter-kit template records against a caller's
// stated preferences and returns them ranked. Scoring is pure arithmetic
// over in-memory records: identical inputs always produce identical scores
// and ordering.
package recommend

import (
	"fmt"
	"math"
	"sort"
	"strings"
)

// Scoring weights per criterion. Purpose dominates: a kit built for the
// wrong purpose is rarely rescued by matching colors.
const (
	purposeWeight    = 40
	animationsWeight = 20
	colorWeight      = 15
	featuresWeight   = 15
	complexityWeight = 10
)

// TemplateRecord describes one starter-kit in the static catalog. Records
// are loaded once from templates.json and never mutated at runtime.
type TemplateRecord struct {
	ID                     string   `json:"id"`
	Name                   string   `json:"name"`
	Description            string   `json:"description"`
	UseCases               []string `json:"useCases"`
	Complexity             string   `json:"complexity"`
	Animations             string   `json:"animations"`
	ColorScheme            string   `json:"colorScheme"`
	Features               []string `json:"features"`
	ArchitecturalDecisions string   `json:"architecturalDecisions"`
	RecommendedLibraries   string   `json:"recommendedLibraries"`

	// Matching is the precomputed profile used for scoring, embedded in
	// the same JSON record.
	Matching *MatchingProfile `json:"matching,omitempty"`
}

// MatchingProfile holds the precomputed tag sets a record is scored on.
type MatchingProfile struct {
	Purpose         []string `json:"purpose"`
	ColorPreference []string `json:"colorPreference"`
	Animations      []string `json:"animations"`
	Features        []string `json:"features"`
	Complexity      []string `json:"complexity"`
}

// Criteria carries the caller's preferences for one scoring call. All
// fields are optional; empty fields simply contribute nothing.
type Criteria struct {
	Purpose         string
	ColorPreference string
	Animations      string
	Features        []string
	Complexity      string
}

// IsEmpty reports whether no preference was supplied at all.
func (c Criteria) IsEmpty() bool {
	return c.Purpose == "" && c.ColorPreference == "" && c.Animations == "" &&
		len(c.Features) == 0 && c.Complexity == ""
}

// ScoredResult pairs a record with its match score (0-100) and the
// human-readable reasons the score was awarded.
type ScoredResult struct {
	Record  TemplateRecord
	Score   int
	Reasons []string
}

// Score ranks records against criteria, highest score first. Records
// without a profile in profiles are skipped, and records scoring zero are
// excluded. Ties keep the records' input order.
func Score(records []TemplateRecord, profiles map[string]MatchingProfile, criteria Criteria) []ScoredResult {
	var results []ScoredResult

	for _, record := range records {
		profile, ok := profiles[record.ID]
		if !ok {
			continue
		}

		var score float64
		var reasons []string

		if criteria.Purpose != "" && containsFold(profile.Purpose, criteria.Purpose) {
			score += purposeWeight
			reasons = append(reasons, fmt.Sprintf("suited for %s projects", criteria.Purpose))
		}

		if criteria.Animations != "" && containsFold(profile.Animations, criteria.Animations) {
			score += animationsWeight
			reasons = append(reasons, fmt.Sprintf("animation style matches %q", criteria.Animations))
		}

		if criteria.ColorPreference != "" && containsFold(profile.ColorPreference, criteria.ColorPreference) {
			score += colorWeight
			reasons = append(reasons, fmt.Sprintf("color scheme fits a %s look", criteria.ColorPreference))
		}

		if len(criteria.Features) > 0 {
			matched := intersectFold(criteria.Features, profile.Features)
			if matched > 0 {
				score += featuresWeight * float64(matched) / float64(len(criteria.Features))
				reasons = append(reasons, fmt.Sprintf("covers %d of %d requested features", matched, len(criteria.Features)))
			}
		}

		if criteria.Complexity != "" && containsFold(profile.Complexity, criteria.Complexity) {
			score += complexityWeight
			reasons = append(reasons, fmt.Sprintf("built at %s complexity", criteria.Complexity))
		}

		rounded := int(math.Round(score))
		if rounded <= 0 {
			continue
		}

		results = append(results, ScoredResult{
			Record:  record,
			Score:   rounded,
			Reasons: reasons,
		})
	}

	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Score > results[j].Score
	})

	return results
}

// containsFold reports whether set contains value, case-insensitively.
func containsFold(set []string, value string) bool {
	for _, s := range set {
		if strings.EqualFold(s, value) {
			return true
		}
	}
	return false
}

// intersectFold counts how many of wanted appear in available,
// case-insensitively. Duplicate wanted entries count once each.
func intersectFold(wanted, available []string) int {
	count := 0
	for _, w := range wanted {
		if containsFold(available, w) {
			count++
		}
	}
	return count
}
