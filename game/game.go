// Package game owns one player's in-progress scratch-card game: the prize
// configuration, the deck, the per-card scratch trackers, and the view state.
//
// A Session is plain single-owner state. Callers that share a Session across
// goroutines must serialize access themselves.
package game

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/logger"
	"github.com/google/uuid"

	"github.com/Ashenafi-pixel/guaguale/deck"
	"github.com/Ashenafi-pixel/guaguale/events"
	"github.com/Ashenafi-pixel/guaguale/history"
	"github.com/Ashenafi-pixel/guaguale/kv"
	"github.com/Ashenafi-pixel/guaguale/paginate"
	"github.com/Ashenafi-pixel/guaguale/prizepool"
	"github.com/Ashenafi-pixel/guaguale/rng"
	"github.com/Ashenafi-pixel/guaguale/scratch"
	"github.com/Ashenafi-pixel/guaguale/session"
)

var (
	ErrNoGame      = errors.New("game: no game in progress")
	ErrUnknownCard = errors.New("game: unknown card")
)

// Recorder receives one record per revealed card.
type Recorder interface {
	Append(ctx context.Context, r history.Record) error
}

// Options wires a Session to its collaborators. Only Backend is required.
type Options struct {
	Backend       kv.Backend
	Sink          events.Sink
	Recorder      Recorder
	RNG           rng.Source
	Policy        scratch.Policy
	ItemsPerPage  int
	DefaultPrizes []prizepool.Prize // offered by Prizes when nothing is saved yet
	Now           func() time.Time
}

// GameStateKey and PrizeConfigKey name the two records kept per session.
func GameStateKey(id string) string   { return "game_state:" + id }
func PrizeConfigKey(id string) string { return "prize_config:" + id }

type Session struct {
	id       string
	prizes   *prizepool.Store
	state    *session.Store
	sink     events.Sink
	recorder Recorder
	src      rng.Source
	policy   scratch.Policy
	perPage  int
	defaults []prizepool.Prize
	now      func() time.Time

	deck     deck.Deck
	trackers map[int]*scratch.Tracker
	page     int
	filter   paginate.Filter
}

func New(id string, opts Options) *Session {
	if opts.Backend == nil {
		opts.Backend = kv.NewMemoryBackend()
	}
	if opts.RNG == nil {
		opts.RNG = rng.Crypto{}
	}
	if opts.ItemsPerPage < 1 {
		opts.ItemsPerPage = 1
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return &Session{
		id:       id,
		prizes:   prizepool.NewStore(opts.Backend, PrizeConfigKey(id)),
		state:    session.NewStore(opts.Backend, GameStateKey(id)),
		sink:     opts.Sink,
		recorder: opts.Recorder,
		src:      opts.RNG,
		policy:   opts.Policy.Normalized(),
		perPage:  opts.ItemsPerPage,
		defaults: prizepool.Sanitize(opts.DefaultPrizes),
		now:      opts.Now,
		page:     1,
	}
}

func (s *Session) ID() string { return s.id }

// Active reports whether a deck is in play.
func (s *Session) Active() bool { return s.deck != nil }

// Resume loads a persisted game. It reports false, leaving the session idle,
// when nothing usable is stored. A storage read failure is returned as an error
// and leaves the session untouched.
func (s *Session) Resume(ctx context.Context) (bool, error) {
	st, ok, err := s.state.Load(ctx)
	if err != nil {
		return false, fmt.Errorf("resume %s: %w", s.id, err)
	}
	if !ok {
		return false, nil
	}
	s.install(st.Deck)
	s.page = st.CurrentPage
	s.page = s.currentPage().Current
	logger.Infof("game %s: resumed %d cards, %d remaining", s.id, len(s.deck), s.deck.Remaining())
	return true, nil
}

// install replaces the deck and rebuilds one tracker per card.
func (s *Session) install(d deck.Deck) {
	s.deck = d
	s.trackers = make(map[int]*scratch.Tracker, len(d))
	for _, c := range d {
		s.trackers[c.ID] = scratch.Restore(c.ID, s.policy, c.Revealed)
	}
}

// Prizes returns the saved prize configuration, or the configured defaults
// when nothing has been saved.
func (s *Session) Prizes(ctx context.Context) []prizepool.Prize {
	if list, ok := s.prizes.Load(ctx); ok {
		return list
	}
	return append([]prizepool.Prize(nil), s.defaults...)
}

// SavePrizes stores a configuration for the setup form without starting a game.
func (s *Session) SavePrizes(ctx context.Context, configs []prizepool.Prize) error {
	if err := s.prizes.Save(ctx, configs); err != nil {
		return fmt.Errorf("save prizes for %s: %w", s.id, err)
	}
	return nil
}

// Start validates configs, saves them, and draws a fresh deck. An invalid
// configuration returns a *prizepool.ConfigError and leaves the session unchanged.
func (s *Session) Start(ctx context.Context, configs []prizepool.Prize) error {
	pool, err := prizepool.Validate(configs)
	if err != nil {
		return err
	}
	if err := s.state.Clear(ctx); err != nil {
		return fmt.Errorf("start %s: %w", s.id, err)
	}
	if err := s.SavePrizes(ctx, configs); err != nil {
		return err
	}
	s.install(deck.Draw(pool, s.src))
	s.page = 1
	s.filter = paginate.Filter{}
	logger.Infof("game %s: drew %d cards from %d prizes", s.id, pool.Total, len(pool.Prizes))
	return s.save(ctx)
}

// Reset ends the game. Persisted state is cleared first; memory is cleared only
// once that succeeds, so a failed reset leaves both sides intact.
func (s *Session) Reset(ctx context.Context) error {
	if err := s.state.Clear(ctx); err != nil {
		return fmt.Errorf("reset %s: %w", s.id, err)
	}
	s.deck = nil
	s.trackers = nil
	s.page = 1
	s.filter = paginate.Filter{}
	logger.Infof("game %s: reset", s.id)
	return nil
}

// Shuffle re-permutes the deck and returns to page 1.
func (s *Session) Shuffle(ctx context.Context) error {
	if !s.Active() {
		return ErrNoGame
	}
	s.deck.Shuffle(s.src)
	s.page = 1
	return s.save(ctx)
}

// SetFilter toggles the unrevealed-only view and returns to page 1.
func (s *Session) SetFilter(ctx context.Context, unrevealedOnly bool) error {
	s.filter.UnrevealedOnly = unrevealedOnly
	s.page = 1
	if !s.Active() {
		return nil
	}
	return s.save(ctx)
}

// SetItemsPerPage changes page capacity; the current page is clamped to the new range.
func (s *Session) SetItemsPerPage(ctx context.Context, n int) error {
	if n < 1 {
		n = 1
	}
	s.perPage = n
	s.page = s.currentPage().Current
	if !s.Active() {
		return nil
	}
	return s.save(ctx)
}

// GoToPage moves to page n, clamped into range.
func (s *Session) GoToPage(ctx context.Context, n int) error {
	if !s.Active() {
		return ErrNoGame
	}
	s.page = paginate.Compute(s.deck, s.filter, s.perPage, n).Current
	return s.save(ctx)
}

func (s *Session) tracker(cardID int) (*scratch.Tracker, error) {
	if !s.Active() {
		return nil, ErrNoGame
	}
	t, ok := s.trackers[cardID]
	if !ok {
		return nil, fmt.Errorf("%w: %d", ErrUnknownCard, cardID)
	}
	return t, nil
}

// SetSurfaceSize tells the tracker of cardID how large the card is drawn.
func (s *Session) SetSurfaceSize(cardID int, width, height float64) error {
	t, err := s.tracker(cardID)
	if err != nil {
		return err
	}
	t.SetSize(width, height)
	return nil
}

func (s *Session) PointerDown(_ context.Context, cardID int, x, y float64) error {
	t, err := s.tracker(cardID)
	if err != nil {
		return err
	}
	t.Down(x, y)
	return nil
}

func (s *Session) PointerMove(_ context.Context, cardID int, x, y float64) error {
	t, err := s.tracker(cardID)
	if err != nil {
		return err
	}
	t.Move(x, y)
	return nil
}

// PointerUp ends the gesture at (x, y) and reports whether it revealed the card.
func (s *Session) PointerUp(ctx context.Context, cardID int, x, y float64) (bool, error) {
	t, err := s.tracker(cardID)
	if err != nil {
		return false, err
	}
	t.Move(x, y)
	return s.finish(ctx, cardID, t.Up())
}

// PointerLeave ends a gesture whose pointer left the card without an up event.
func (s *Session) PointerLeave(ctx context.Context, cardID int, x, y float64) (bool, error) {
	t, err := s.tracker(cardID)
	if err != nil {
		return false, err
	}
	t.Move(x, y)
	return s.finish(ctx, cardID, t.Leave())
}

// PointerCancel ends an interrupted touch gesture.
func (s *Session) PointerCancel(ctx context.Context, cardID int) (bool, error) {
	t, err := s.tracker(cardID)
	if err != nil {
		return false, err
	}
	return s.finish(ctx, cardID, t.Cancel())
}

// finish applies a reveal to the deck, persists it and notifies listeners.
// The reveal stands even when the save fails: listeners are still told and the
// save error is returned; the next successful save persists the card.
// Event and history failures are logged only.
func (s *Session) finish(ctx context.Context, cardID int, revealed bool) (bool, error) {
	if !revealed || !s.deck.Reveal(cardID) {
		return false, nil
	}
	saveErr := s.save(ctx)
	i, _ := s.deck.Find(cardID)
	ev := events.RevealEvent{
		ID:         uuid.NewString(),
		SessionID:  s.id,
		CardID:     cardID,
		PrizeName:  s.deck[i].PrizeName,
		Remaining:  s.deck.Remaining(),
		RevealedAt: s.now().UTC(),
	}
	logger.Infof("game %s: card %d revealed %q, %d remaining", s.id, cardID, ev.PrizeName, ev.Remaining)
	if s.sink != nil {
		if err := s.sink.Publish(ctx, ev); err != nil {
			logger.Warningf("game %s: publish reveal of card %d: %v", s.id, cardID, err)
		}
	}
	if s.recorder != nil {
		rec := history.Record{
			SessionID:  s.id,
			CardID:     cardID,
			PrizeName:  ev.PrizeName,
			Remaining:  ev.Remaining,
			RevealedAt: ev.RevealedAt,
		}
		if err := s.recorder.Append(ctx, rec); err != nil {
			logger.Warningf("game %s: record reveal of card %d: %v", s.id, cardID, err)
		}
	}
	return true, saveErr
}

// HasPartialCoverage reports whether any card has been scratched without being revealed.
func (s *Session) HasPartialCoverage() bool {
	for _, t := range s.trackers {
		if t.State() == scratch.Revealing {
			return true
		}
	}
	return false
}

// PrizeOf returns the prize of a revealed card, or "" while it is hidden.
func (s *Session) PrizeOf(cardID int) string {
	i, ok := s.deck.Find(cardID)
	if !ok || !s.deck[i].Revealed {
		return ""
	}
	return s.deck[i].PrizeName
}

func (s *Session) save(ctx context.Context) error {
	if err := s.state.Save(ctx, s.deck, s.page); err != nil {
		return fmt.Errorf("game %s: %w", s.id, err)
	}
	return nil
}

func (s *Session) currentPage() paginate.Page {
	return paginate.Compute(s.deck, s.filter, s.perPage, s.page)
}

// CardView is a card as the player sees it. The prize is hidden until revealed.
type CardView struct {
	ID        int     `json:"id"`
	PrizeName string  `json:"prizeName,omitempty"`
	Revealed  bool    `json:"isRevealed"`
	State     string  `json:"state"`
	Coverage  float64 `json:"coverage"`
}

// View is everything a client needs to draw the game.
type View struct {
	SessionID      string            `json:"sessionId"`
	Active         bool              `json:"active"`
	Finished       bool              `json:"finished"`
	Cards          []CardView        `json:"cards"`
	CurrentPage    int               `json:"currentPage"`
	TotalPages     int               `json:"totalPages"`
	ItemsPerPage   int               `json:"itemsPerPage"`
	FilteredCount  int               `json:"filteredCount"`
	TotalCards     int               `json:"totalCards"`
	Remaining      int               `json:"remaining"`
	ActivePrizes   []deck.PrizeCount `json:"activePrizes"`
	UnrevealedOnly bool              `json:"unrevealedOnly"`
}

func (s *Session) View() View {
	p := s.currentPage()
	cards := make([]CardView, 0, len(p.Cards))
	for _, c := range p.Cards {
		cv := CardView{ID: c.ID, Revealed: c.Revealed, State: scratch.Hidden.String()}
		if c.Revealed {
			cv.PrizeName = c.PrizeName
		}
		if t, ok := s.trackers[c.ID]; ok {
			cv.State = t.State().String()
			cv.Coverage = t.Coverage()
		}
		cards = append(cards, cv)
	}
	remaining := s.deck.Remaining()
	return View{
		SessionID:      s.id,
		Active:         s.Active(),
		Finished:       s.Active() && remaining == 0,
		Cards:          cards,
		CurrentPage:    p.Current,
		TotalPages:     p.Total,
		ItemsPerPage:   p.ItemsPerPage,
		FilteredCount:  p.FilteredLen,
		TotalCards:     len(s.deck),
		Remaining:      remaining,
		ActivePrizes:   s.deck.ActiveList(),
		UnrevealedOnly: s.filter.UnrevealedOnly,
	}
}
