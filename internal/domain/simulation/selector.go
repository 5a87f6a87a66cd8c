package simulation

import (
	"sort"

	"github.com/google/uuid"

	"github.com/salesim/salesim-api/internal/domain"
)

// severityRank orders severities mild < moderate < severe. Unknown values
// sort last so malformed catalog rows never crowd out valid ones.
func severityRank(s domain.Severity) int {
	switch s {
	case domain.SeverityMild:
		return 0
	case domain.SeverityModerate:
		return 1
	case domain.SeveritySevere:
		return 2
	}
	return 3
}

// selectPool picks the ordered subset of catalog objections a session may
// raise, capped by difficulty. Selection favors variety across categories
// before severity: categories are visited round-robin in order of first
// appearance, and within a category milder objections come first so early
// turns stay approachable. All ties fall back to catalog order, keeping the
// pool deterministic and a session reproducible for grading.
//
// An empty catalog falls back to the built-in default pool so a session is
// never unplayable; the difficulty cap still applies.
func selectPool(
	catalog []domain.GeneratedObjection,
	difficulty domain.Difficulty,
	params *Params,
) []domain.GeneratedObjection {
	if len(catalog) == 0 {
		catalog = DefaultPool()
	}

	limit, ok := params.PoolCaps[difficulty]
	if !ok || limit < 1 {
		limit = 1
	}

	// Bucket by category, preserving first-appearance order of categories.
	var order []domain.ObjectionCategory
	buckets := make(map[domain.ObjectionCategory][]domain.GeneratedObjection)
	for _, obj := range catalog {
		if _, seen := buckets[obj.Category]; !seen {
			order = append(order, obj.Category)
		}
		buckets[obj.Category] = append(buckets[obj.Category], obj)
	}

	// Within a category: severity ascending, catalog order for ties.
	for _, cat := range order {
		bucket := buckets[cat]
		sort.SliceStable(bucket, func(i, j int) bool {
			return severityRank(bucket[i].Severity) < severityRank(bucket[j].Severity)
		})
	}

	// Round-robin across categories until the cap is reached.
	pool := make([]domain.GeneratedObjection, 0, limit)
	for round := 0; len(pool) < limit; round++ {
		picked := false
		for _, cat := range order {
			bucket := buckets[cat]
			if round >= len(bucket) {
				continue
			}
			pool = append(pool, bucket[round])
			picked = true
			if len(pool) == limit {
				break
			}
		}
		if !picked {
			break
		}
	}

	return pool
}

// DefaultPool returns the built-in objections used when the backing catalog
// has no entries for a scenario. Kept intentionally small: it exists to make
// a session playable, not to replace a curated catalog.
func DefaultPool() []domain.GeneratedObjection {
	return []domain.GeneratedObjection{
		{
			ID:           uuid.New(),
			ScenarioType: "default",
			Category:     domain.CategoryPriceBudget,
			Severity:     domain.SeverityModerate,
			CoreContent:  "I think the price is too high for what we're getting.",
			Variations: []string{
				"That's more than we were hoping to spend.",
				"I've seen similar options for less.",
			},
			IdealResponse: "Acknowledge the concern, then reframe around value and total cost rather than sticker price.",
			CommonMistakes: []string{
				"Immediately offering a discount.",
				"Dismissing the comparison without addressing it.",
			},
		},
		{
			ID:           uuid.New(),
			ScenarioType: "default",
			Category:     domain.CategoryTimingUrgency,
			Severity:     domain.SeverityMild,
			CoreContent:  "We're not in a hurry. Maybe we should wait and see how the market moves.",
			IdealResponse: "Explore what waiting would cost them and anchor on their stated motivations.",
		},
		{
			ID:           uuid.New(),
			ScenarioType: "default",
			Category:     domain.CategoryTrustCredibility,
			Severity:     domain.SeverityModerate,
			CoreContent:  "How do I know you're not just telling me what I want to hear?",
			IdealResponse: "Offer verifiable evidence and invite independent validation instead of protesting sincerity.",
		},
	}
}
