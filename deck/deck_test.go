package deck

import (
	"errors"
	"testing"

	"github.com/Ashenafi-pixel/guaguale/prizepool"
	"github.com/Ashenafi-pixel/guaguale/rng"
)

// sequenceRNG returns values from a pre-set sequence.
type sequenceRNG struct {
	values []int
	idx    int
}

func (r *sequenceRNG) Intn(n int) int {
	v := r.values[r.idx%len(r.values)] % n
	r.idx++
	return v
}

// lastRNG always picks j = i, leaving the order untouched.
type lastRNG struct{}

func (lastRNG) Intn(n int) int { return n - 1 }

func mustPool(t *testing.T, prizes ...prizepool.Prize) prizepool.Pool {
	t.Helper()
	pool, err := prizepool.Validate(prizes)
	if err != nil {
		t.Fatal(err)
	}
	return pool
}

func nameCounts(d Deck) map[string]int {
	out := map[string]int{}
	for _, c := range d {
		out[c.PrizeName]++
	}
	return out
}

func TestDraw_ThreeCardScenario(t *testing.T) {
	pool := mustPool(t, prizepool.Prize{Name: "A", Count: 2}, prizepool.Prize{Name: "B", Count: 1})
	d := Draw(pool, rng.Crypto{})
	if len(d) != 3 {
		t.Fatalf("len = %d, want 3", len(d))
	}
	if c := nameCounts(d); c["A"] != 2 || c["B"] != 1 {
		t.Errorf("counts = %v", c)
	}
	ids := map[int]bool{}
	for _, c := range d {
		ids[c.ID] = true
		if c.Revealed {
			t.Errorf("card %d revealed at draw time", c.ID)
		}
	}
	for i := 0; i < 3; i++ {
		if !ids[i] {
			t.Errorf("missing id %d", i)
		}
	}
}

func TestDraw_MultisetMatchesConfig(t *testing.T) {
	pool := mustPool(t,
		prizepool.Prize{Name: "Gold", Count: 3},
		prizepool.Prize{Name: "Silver", Count: 5},
		prizepool.Prize{Name: "Gold", Count: 2},
		prizepool.Prize{Name: "None", Count: 40},
	)
	for seed := uint64(0); seed < 20; seed++ {
		d := Draw(pool, rng.NewSeeded(seed))
		c := nameCounts(d)
		if len(d) != 50 || c["Gold"] != 5 || c["Silver"] != 5 || c["None"] != 40 {
			t.Fatalf("seed %d: len=%d counts=%v", seed, len(d), c)
		}
		if err := d.Validate(); err != nil {
			t.Fatalf("seed %d: %v", seed, err)
		}
	}
}

func TestDraw_IdentityOrderWithoutSwaps(t *testing.T) {
	pool := mustPool(t, prizepool.Prize{Name: "A", Count: 2}, prizepool.Prize{Name: "B", Count: 1})
	d := Draw(pool, lastRNG{})
	want := []string{"A", "A", "B"}
	for i, c := range d {
		if c.ID != i || c.PrizeName != want[i] {
			t.Errorf("card %d = %+v, want id %d name %s", i, c, i, want[i])
		}
	}
}

func TestDraw_FisherYatesSwapOrder(t *testing.T) {
	// Expanded: [A A B]. i=2 picks j=0 -> [B A A]; i=1 picks j=0 -> [A B A].
	pool := mustPool(t, prizepool.Prize{Name: "A", Count: 2}, prizepool.Prize{Name: "B", Count: 1})
	d := Draw(pool, &sequenceRNG{values: []int{0}})
	got := []string{d[0].PrizeName, d[1].PrizeName, d[2].PrizeName}
	want := []string{"A", "B", "A"}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("order = %v, want %v", got, want)
		}
	}
}

func TestDraw_UniformOverArrangements(t *testing.T) {
	// 3 distinct prizes -> 6 arrangements, each ~1/6.
	pool := mustPool(t,
		prizepool.Prize{Name: "A", Count: 1},
		prizepool.Prize{Name: "B", Count: 1},
		prizepool.Prize{Name: "C", Count: 1},
	)
	src := rng.NewSeeded(99)
	const rounds = 60_000
	seen := map[string]int{}
	for i := 0; i < rounds; i++ {
		d := Draw(pool, src)
		seen[d[0].PrizeName+d[1].PrizeName+d[2].PrizeName]++
	}
	if len(seen) != 6 {
		t.Fatalf("saw %d arrangements, want 6", len(seen))
	}
	for k, n := range seen {
		if p := float64(n) / rounds; p < 0.155 || p > 0.178 {
			t.Errorf("arrangement %s proportion %.4f want ~0.1667", k, p)
		}
	}
}

func TestShuffle_IsPermutation(t *testing.T) {
	pool := mustPool(t, prizepool.Prize{Name: "A", Count: 4}, prizepool.Prize{Name: "B", Count: 6})
	d := Draw(pool, rng.NewSeeded(1))
	d.Reveal(d[3].ID)
	before := map[int]Card{}
	for _, c := range d {
		before[c.ID] = c
	}
	for seed := uint64(0); seed < 10; seed++ {
		d.Shuffle(rng.NewSeeded(seed))
		if len(d) != len(before) {
			t.Fatalf("len changed: %d", len(d))
		}
		for _, c := range d {
			if before[c.ID] != c {
				t.Fatalf("card %d changed: %+v -> %+v", c.ID, before[c.ID], c)
			}
		}
	}
}

func TestReveal_Monotonic(t *testing.T) {
	d := Deck{{ID: 0, PrizeName: "A"}, {ID: 1, PrizeName: "B"}}
	if !d.Reveal(1) {
		t.Fatal("first Reveal should report true")
	}
	if d.Reveal(1) {
		t.Error("second Reveal should report false")
	}
	if !d[1].Revealed {
		t.Error("card 1 should stay revealed")
	}
	if d.Reveal(7) {
		t.Error("unknown id should report false")
	}
	d.Shuffle(rng.NewSeeded(5))
	if i, _ := d.Find(1); !d[i].Revealed {
		t.Error("shuffle turned card 1 face-down")
	}
}

func TestActiveCounts_MatchScan(t *testing.T) {
	pool := mustPool(t,
		prizepool.Prize{Name: "A", Count: 3},
		prizepool.Prize{Name: "B", Count: 2},
	)
	d := Draw(pool, rng.NewSeeded(8))
	check := func(stage string) {
		t.Helper()
		counts := d.ActiveCounts()
		total := 0
		for _, n := range counts {
			total += n
		}
		if total != d.Remaining() || total != len(d.Unrevealed()) {
			t.Errorf("%s: counts %v sum %d, remaining %d", stage, counts, total, d.Remaining())
		}
	}
	check("fresh")
	for _, c := range d {
		if c.PrizeName == "B" {
			d.Reveal(c.ID)
			break
		}
	}
	check("after reveal")
	if got := d.ActiveCounts()["B"]; got != 1 {
		t.Errorf("B remaining = %d, want 1", got)
	}
	d.Shuffle(rng.NewSeeded(2))
	check("after shuffle")
	for _, c := range append(Deck(nil), d...) {
		d.Reveal(c.ID)
	}
	if len(d.ActiveCounts()) != 0 || d.Remaining() != 0 {
		t.Errorf("fully revealed deck: %v", d.ActiveCounts())
	}
}

func TestActiveList_Sorted(t *testing.T) {
	d := Deck{{ID: 0, PrizeName: "b"}, {ID: 1, PrizeName: "a"}, {ID: 2, PrizeName: "b", Revealed: true}, {ID: 3, PrizeName: "b"}}
	got := d.ActiveList()
	if len(got) != 2 || got[0] != (PrizeCount{"a", 1}) || got[1] != (PrizeCount{"b", 2}) {
		t.Errorf("ActiveList = %+v", got)
	}
}

func TestValidate(t *testing.T) {
	if err := (Deck{{ID: 0, PrizeName: "A"}, {ID: 0, PrizeName: "B"}}).Validate(); !errors.Is(err, ErrDuplicateID) {
		t.Errorf("duplicate id: %v", err)
	}
	if err := (Deck{{ID: 0, PrizeName: ""}}).Validate(); !errors.Is(err, ErrEmptyName) {
		t.Errorf("empty name: %v", err)
	}
}
