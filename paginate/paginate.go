// Package paginate slices a deck into display pages.
package paginate

import "github.com/Ashenafi-pixel/guaguale/deck"

// Filter selects which cards are paged. It never changes the deck itself.
type Filter struct {
	UnrevealedOnly bool `json:"unrevealedOnly"`
}

// Page is one slice of the filtered deck with its navigation metadata.
type Page struct {
	Cards        deck.Deck `json:"cards"`
	Current      int       `json:"currentPage"`
	Total        int       `json:"totalPages"`
	ItemsPerPage int       `json:"itemsPerPage"`
	FilteredLen  int       `json:"filteredCount"`
}

// TotalPages is ceil(n/perPage), and 1 for an empty list so navigation stays defined.
func TotalPages(n, perPage int) int {
	if perPage < 1 {
		perPage = 1
	}
	if n <= 0 {
		return 1
	}
	return (n + perPage - 1) / perPage
}

// Clamp moves page into [1, total].
func Clamp(page, total int) int {
	if total < 1 {
		total = 1
	}
	if page < 1 {
		return 1
	}
	if page > total {
		return total
	}
	return page
}

// Apply returns the cards the filter keeps, in deck order.
func Apply(d deck.Deck, f Filter) deck.Deck {
	if f.UnrevealedOnly {
		return d.Unrevealed()
	}
	return d
}

// Compute filters the deck, recomputes the page count for perPage and returns the
// requested page clamped into range. perPage below 1 is treated as 1.
func Compute(d deck.Deck, f Filter, perPage, requested int) Page {
	if perPage < 1 {
		perPage = 1
	}
	filtered := Apply(d, f)
	total := TotalPages(len(filtered), perPage)
	current := Clamp(requested, total)
	start := (current - 1) * perPage
	end := min(start+perPage, len(filtered))
	cards := make(deck.Deck, 0, max(end-start, 0))
	if start < end {
		cards = append(cards, filtered[start:end]...)
	}
	return Page{
		Cards:        cards,
		Current:      current,
		Total:        total,
		ItemsPerPage: perPage,
		FilteredLen:  len(filtered),
	}
}
