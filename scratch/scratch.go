// Package scratch tracks how much of a card's scratch layer has been removed and
// decides when the card flips to revealed.
package scratch

import "math"

// State is the reveal state of one card.
type State int

const (
	Hidden State = iota
	Revealing
	Revealed
)

func (s State) String() string {
	switch s {
	case Hidden:
		return "hidden"
	case Revealing:
		return "revealing"
	case Revealed:
		return "revealed"
	}
	return "unknown"
}

// Policy is the reveal policy shared by every card of a deployment.
type Policy struct {
	GridWidth   int     // samples across
	GridHeight  int     // samples down
	BrushRadius float64 // display units
	Threshold   float64 // reveal when coverage > Threshold
	Window      float64 // centered fraction of each axis that is measured; 1 = full surface
	Width       float64 // display size assumed until SetSize is called
	Height      float64
}

// DefaultPolicy: 100x60 samples over a 300x180 card, 30 unit brush, reveal past
// 30% of the full surface. One tap uncovers about 5%.
func DefaultPolicy() Policy {
	return Policy{
		GridWidth:   100,
		GridHeight:  60,
		BrushRadius: 30,
		Threshold:   0.30,
		Window:      1.0,
		Width:       300,
		Height:      180,
	}
}

// Normalized replaces unset or out-of-range fields with their defaults.
func (p Policy) Normalized() Policy {
	d := DefaultPolicy()
	if p.GridWidth < 1 {
		p.GridWidth = d.GridWidth
	}
	if p.GridHeight < 1 {
		p.GridHeight = d.GridHeight
	}
	if p.BrushRadius <= 0 {
		p.BrushRadius = d.BrushRadius
	}
	if p.Threshold <= 0 || p.Threshold >= 1 {
		p.Threshold = d.Threshold
	}
	if p.Window <= 0 || p.Window > 1 {
		p.Window = d.Window
	}
	if p.Width <= 0 || p.Height <= 0 {
		p.Width, p.Height = d.Width, d.Height
	}
	return p
}

// Tracker is the per-card coverage accumulator. The surface is a fixed sample grid;
// SetSize maps display coordinates onto it. Not safe for concurrent use.
type Tracker struct {
	cardID  int
	policy  Policy
	width   float64
	height  float64
	covered []bool // true = scratched off
	state   State
	active  bool // a gesture is in progress
}

// NewTracker returns a Hidden tracker sized to the policy's default display size.
func NewTracker(cardID int, policy Policy) *Tracker {
	p := policy.Normalized()
	return &Tracker{
		cardID:  cardID,
		policy:  p,
		width:   p.Width,
		height:  p.Height,
		covered: make([]bool, p.GridWidth*p.GridHeight),
	}
}

// Restore returns a tracker for a card loaded from storage. Face-up cards start Revealed.
func Restore(cardID int, policy Policy, revealed bool) *Tracker {
	t := NewTracker(cardID, policy)
	if revealed {
		t.state = Revealed
	}
	return t
}

func (t *Tracker) CardID() int { return t.cardID }

func (t *Tracker) State() State { return t.state }

func (t *Tracker) Policy() Policy { return t.policy }

// Active reports whether a gesture is in progress.
func (t *Tracker) Active() bool { return t.active }

// SetSize sets the display size of the card surface. Non-positive sizes are ignored.
// Coverage already recorded is kept; only the mapping of later points changes.
func (t *Tracker) SetSize(width, height float64) {
	if width <= 0 || height <= 0 {
		return
	}
	t.width, t.height = width, height
}

// Down starts a gesture and scratches at (x, y).
func (t *Tracker) Down(x, y float64) {
	if t.state == Revealed {
		return
	}
	t.active = true
	t.state = Revealing
	t.stamp(x, y)
}

// Move scratches at (x, y) while a gesture is active. Coverage is not evaluated here.
func (t *Tracker) Move(x, y float64) {
	if !t.active || t.state == Revealed {
		return
	}
	t.stamp(x, y)
}

// Up ends the gesture and reports whether this gesture revealed the card.
func (t *Tracker) Up() bool { return t.finish() }

// Leave ends the gesture when the pointer leaves the surface without an up event.
func (t *Tracker) Leave() bool { return t.finish() }

// Cancel ends an interrupted touch gesture.
func (t *Tracker) Cancel() bool { return t.finish() }

func (t *Tracker) finish() bool {
	if !t.active {
		return false
	}
	t.active = false
	if t.state == Revealed {
		return false
	}
	if t.Coverage() > t.policy.Threshold {
		t.state = Revealed
		return true
	}
	return false
}

// stamp marks every sample whose center lies within the brush radius of (x, y).
func (t *Tracker) stamp(x, y float64) {
	if math.IsNaN(x) || math.IsNaN(y) || math.IsInf(x, 0) || math.IsInf(y, 0) {
		return
	}
	gw, gh := t.policy.GridWidth, t.policy.GridHeight
	cw, ch := t.width/float64(gw), t.height/float64(gh)
	r := t.policy.BrushRadius
	// Candidate sample columns/rows whose centers can fall inside the circle.
	i0 := clamp(int(math.Floor((x-r)/cw-0.5)), 0, gw-1)
	i1 := clamp(int(math.Ceil((x+r)/cw-0.5)), 0, gw-1)
	j0 := clamp(int(math.Floor((y-r)/ch-0.5)), 0, gh-1)
	j1 := clamp(int(math.Ceil((y+r)/ch-0.5)), 0, gh-1)
	r2 := r * r
	for j := j0; j <= j1; j++ {
		cy := (float64(j) + 0.5) * ch
		dy := cy - y
		for i := i0; i <= i1; i++ {
			cx := (float64(i) + 0.5) * cw
			dx := cx - x
			if dx*dx+dy*dy <= r2 {
				t.covered[j*gw+i] = true
			}
		}
	}
}

// Coverage is the scratched fraction of the measured window.
func (t *Tracker) Coverage() float64 {
	i0, i1, j0, j1 := t.window()
	total := (i1 - i0) * (j1 - j0)
	if total == 0 {
		return 0
	}
	gw := t.policy.GridWidth
	n := 0
	for j := j0; j < j1; j++ {
		for i := i0; i < i1; i++ {
			if t.covered[j*gw+i] {
				n++
			}
		}
	}
	return float64(n) / float64(total)
}

// window returns the half-open sample ranges of the centered measuring window.
func (t *Tracker) window() (i0, i1, j0, j1 int) {
	gw, gh := t.policy.GridWidth, t.policy.GridHeight
	w := int(math.Round(float64(gw) * t.policy.Window))
	h := int(math.Round(float64(gh) * t.policy.Window))
	w = clamp(w, 1, gw)
	h = clamp(h, 1, gh)
	i0 = (gw - w) / 2
	j0 = (gh - h) / 2
	return i0, i0 + w, j0, j0 + h
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
