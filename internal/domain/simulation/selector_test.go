package simulation

import (
	"testing"

	"github.com/google/uuid"

	"github.com/salesim/salesim-api/internal/domain"
)

func catalogObjection(category domain.ObjectionCategory, severity domain.Severity, content string) domain.GeneratedObjection {
	return domain.GeneratedObjection{
		ID:           uuid.New(),
		ScenarioType: "price_negotiation",
		Category:     category,
		Severity:     severity,
		CoreContent:  content,
	}
}

func TestSelectPoolDifficultyCaps(t *testing.T) {
	t.Parallel()
	params := NewDefaultParams()

	// Catalog larger than any cap.
	catalog := []domain.GeneratedObjection{
		catalogObjection(domain.CategoryPriceBudget, domain.SeverityMild, "a"),
		catalogObjection(domain.CategoryTimingUrgency, domain.SeverityMild, "b"),
		catalogObjection(domain.CategoryTrustCredibility, domain.SeverityModerate, "c"),
		catalogObjection(domain.CategoryLocation, domain.SeverityModerate, "d"),
		catalogObjection(domain.CategoryCompetition, domain.SeveritySevere, "e"),
		catalogObjection(domain.CategoryPriceBudget, domain.SeveritySevere, "f"),
		catalogObjection(domain.CategoryAuthority, domain.SeverityMild, "g"),
	}

	testCases := []struct {
		difficulty domain.Difficulty
		maxSize    int
	}{
		{domain.DifficultyEasy, 2},
		{domain.DifficultyMedium, 4},
		{domain.DifficultyHard, 5},
	}

	for _, tc := range testCases {
		t.Run(string(tc.difficulty), func(t *testing.T) {
			pool := selectPool(catalog, tc.difficulty, params)
			if len(pool) > tc.maxSize {
				t.Errorf("pool size %d exceeds cap %d for %s difficulty",
					len(pool), tc.maxSize, tc.difficulty)
			}
			if len(pool) == 0 {
				t.Error("expected non-empty pool")
			}
		})
	}
}

func TestSelectPoolFavorsCategoryVariety(t *testing.T) {
	t.Parallel()
	params := NewDefaultParams()

	// Three price objections before one timing objection: variety must win
	// over catalog position.
	catalog := []domain.GeneratedObjection{
		catalogObjection(domain.CategoryPriceBudget, domain.SeverityMild, "price 1"),
		catalogObjection(domain.CategoryPriceBudget, domain.SeverityMild, "price 2"),
		catalogObjection(domain.CategoryPriceBudget, domain.SeverityMild, "price 3"),
		catalogObjection(domain.CategoryTimingUrgency, domain.SeverityMild, "timing 1"),
	}

	pool := selectPool(catalog, domain.DifficultyEasy, params)
	if len(pool) != 2 {
		t.Fatalf("expected pool of 2, got %d", len(pool))
	}
	if pool[0].Category != domain.CategoryPriceBudget {
		t.Errorf("expected first pick from price_budget, got %s", pool[0].Category)
	}
	if pool[1].Category != domain.CategoryTimingUrgency {
		t.Errorf("expected second pick from timing_urgency, got %s", pool[1].Category)
	}
}

func TestSelectPoolSeverityWithinCategory(t *testing.T) {
	t.Parallel()
	params := NewDefaultParams()

	catalog := []domain.GeneratedObjection{
		catalogObjection(domain.CategoryPriceBudget, domain.SeveritySevere, "severe price"),
		catalogObjection(domain.CategoryPriceBudget, domain.SeverityMild, "mild price"),
	}

	pool := selectPool(catalog, domain.DifficultyEasy, params)
	if len(pool) != 2 {
		t.Fatalf("expected pool of 2, got %d", len(pool))
	}
	if pool[0].CoreContent != "mild price" {
		t.Errorf("expected milder objection first, got %q", pool[0].CoreContent)
	}
}

func TestSelectPoolDeterministic(t *testing.T) {
	t.Parallel()
	params := NewDefaultParams()

	catalog := []domain.GeneratedObjection{
		catalogObjection(domain.CategoryPriceBudget, domain.SeverityMild, "a"),
		catalogObjection(domain.CategoryTimingUrgency, domain.SeverityMild, "b"),
		catalogObjection(domain.CategoryLocation, domain.SeverityModerate, "c"),
		catalogObjection(domain.CategoryPriceBudget, domain.SeverityModerate, "d"),
	}

	first := selectPool(catalog, domain.DifficultyMedium, params)
	for i := 0; i < 10; i++ {
		again := selectPool(catalog, domain.DifficultyMedium, params)
		if len(again) != len(first) {
			t.Fatalf("pool size changed between runs: %d vs %d", len(again), len(first))
		}
		for j := range first {
			if again[j].ID != first[j].ID {
				t.Fatalf("pool order changed between runs at index %d", j)
			}
		}
	}
}

func TestSelectPoolEmptyCatalogFallsBack(t *testing.T) {
	t.Parallel()
	params := NewDefaultParams()

	pool := selectPool(nil, domain.DifficultyMedium, params)
	if len(pool) < 1 {
		t.Fatal("expected at least one default objection for empty catalog")
	}
	for i, obj := range pool {
		if obj.CoreContent == "" {
			t.Errorf("default objection %d has empty core content", i)
		}
	}

	// The cap still applies to the fallback pool.
	easy := selectPool(nil, domain.DifficultyEasy, params)
	if len(easy) > params.PoolCaps[domain.DifficultyEasy] {
		t.Errorf("fallback pool size %d exceeds easy cap", len(easy))
	}
}

func TestSelectPoolScenarioExamples(t *testing.T) {
	t.Parallel()
	params := NewDefaultParams()

	// price_negotiation, easy, 3 objections of distinct categories → ≤ 2.
	catalog := []domain.GeneratedObjection{
		catalogObjection(domain.CategoryPriceBudget, domain.SeverityMild, "a"),
		catalogObjection(domain.CategoryTimingUrgency, domain.SeverityModerate, "b"),
		catalogObjection(domain.CategoryTrustCredibility, domain.SeveritySevere, "c"),
	}
	pool := selectPool(catalog, domain.DifficultyEasy, params)
	if len(pool) > 2 {
		t.Errorf("expected at most 2 objections for easy difficulty, got %d", len(pool))
	}

	// property_showing, medium, empty catalog → ≥ 1 default with content.
	fallback := selectPool(nil, domain.DifficultyMedium, params)
	if len(fallback) < 1 || fallback[0].CoreContent == "" {
		t.Errorf("expected a default objection with defined core content, got %+v", fallback)
	}
}
