package prizepool

import (
	"errors"
	"testing"

	"github.com/Ashenafi-pixel/guaguale/rng"
)

func TestValidate_EmptyOrZero(t *testing.T) {
	cases := map[string][]Prize{
		"nil":        nil,
		"empty":      {},
		"all zero":   {{Name: "A", Count: 0}, {Name: "B", Count: 0}},
		"only blank": {{Name: "  ", Count: 3}},
		"negative":   {{Name: "A", Count: -2}},
	}
	for name, cfg := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := Validate(cfg)
			if !errors.Is(err, ErrConfig) {
				t.Fatalf("err = %v, want ErrConfig", err)
			}
			var ce *ConfigError
			if !errors.As(err, &ce) || ce.Message == "" {
				t.Errorf("expected *ConfigError with a message, got %v", err)
			}
		})
	}
}

func TestValidate_DiscardsInvalidEntries(t *testing.T) {
	pool, err := Validate([]Prize{
		{Name: " First ", Count: 1},
		{Name: "", Count: 5},
		{Name: "Bad", Count: -1},
		{Name: "Zero", Count: 0},
		{Name: "Second", Count: 3},
	})
	if err != nil {
		t.Fatal(err)
	}
	want := []Prize{{Name: "First", Count: 1}, {Name: "Second", Count: 3}}
	if len(pool.Prizes) != len(want) {
		t.Fatalf("Prizes = %+v, want %+v", pool.Prizes, want)
	}
	for i := range want {
		if pool.Prizes[i] != want[i] {
			t.Errorf("Prizes[%d] = %+v, want %+v", i, pool.Prizes[i], want[i])
		}
	}
	if pool.Total != 4 {
		t.Errorf("Total = %d, want 4", pool.Total)
	}
}

func TestSanitize_KeepsZeroCounts(t *testing.T) {
	got := Sanitize([]Prize{{Name: "A", Count: 0}, {Name: "", Count: 1}, {Name: "B", Count: 2}})
	if len(got) != 2 || got[0].Name != "A" || got[0].Count != 0 || got[1].Name != "B" {
		t.Errorf("Sanitize = %+v", got)
	}
}

func TestAggregate_MergesDuplicateNames(t *testing.T) {
	pool, err := Validate([]Prize{{"A", 2}, {"B", 1}, {"A", 3}})
	if err != nil {
		t.Fatal(err)
	}
	agg := pool.Aggregate()
	if len(agg) != 2 || agg[0] != (Prize{"A", 5}) || agg[1] != (Prize{"B", 1}) {
		t.Errorf("Aggregate = %+v", agg)
	}
	if len(pool.Prizes) != 3 {
		t.Errorf("Aggregate must not modify the pool: %+v", pool.Prizes)
	}
}

func TestPickSequence_ExactCounts(t *testing.T) {
	pool, _ := Validate([]Prize{{"A", 2}, {"B", 1}, {"C", 4}})
	seq := pool.PickSequence(rng.NewSeeded(3))
	if len(seq) != 7 {
		t.Fatalf("len = %d, want 7", len(seq))
	}
	got := map[string]int{}
	for _, n := range seq {
		got[n]++
	}
	if got["A"] != 2 || got["B"] != 1 || got["C"] != 4 {
		t.Errorf("counts = %v", got)
	}
}

func TestPickSequence_FirstDrawDistribution(t *testing.T) {
	// A 70%, B 20%, C 10% of units.
	pool, _ := Validate([]Prize{{"A", 7}, {"B", 2}, {"C", 1}})
	src := rng.NewSeeded(11)
	const rounds = 50_000
	count := map[string]int{}
	for i := 0; i < rounds; i++ {
		count[pool.PickSequence(src)[0]]++
	}
	if p := float64(count["A"]) / rounds; p < 0.68 || p > 0.72 {
		t.Errorf("A proportion %.4f want ~0.70", p)
	}
	if p := float64(count["B"]) / rounds; p < 0.18 || p > 0.22 {
		t.Errorf("B proportion %.4f want ~0.20", p)
	}
	if p := float64(count["C"]) / rounds; p < 0.08 || p > 0.12 {
		t.Errorf("C proportion %.4f want ~0.10", p)
	}
}
