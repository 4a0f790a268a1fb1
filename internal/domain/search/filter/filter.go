// Package filter implements metadata filtering for archive searches.
package filter

import (
	"strings"

	"github.com/sedwardstx/DprgArchiveAgent/internal/domain/archive"
)

// Filter is a conjunction of optional metadata predicates. Unset predicates
// are ignored; an empty filter matches every document.
type Filter struct {
	author   string
	title    string
	year     int
	month    int
	day      int
	keywords []string
}

// New creates a filter. Zero/empty arguments leave the predicate unset.
// The author predicate is normalized (trim + lowercase) up front so that
// Matches stays allocation-free on the hot path.
func New(author, title string, year, month, day int, keywords []string) Filter {
	return Filter{
		author:   strings.ToLower(strings.TrimSpace(author)),
		title:    strings.TrimSpace(title),
		year:     year,
		month:    month,
		day:      day,
		keywords: keywords,
	}
}

// Author returns the author predicate ("" when unset).
func (f Filter) Author() string { return f.author }

// Title returns the title substring predicate ("" when unset).
func (f Filter) Title() string { return f.title }

// Year returns the year predicate (0 when unset).
func (f Filter) Year() int { return f.year }

// Month returns the month predicate (0 when unset).
func (f Filter) Month() int { return f.month }

// Day returns the day predicate (0 when unset).
func (f Filter) Day() int { return f.day }

// Keywords returns the keyword predicate set (nil when unset).
func (f Filter) Keywords() []string { return f.keywords }

// IsEmpty reports whether no predicate is set.
func (f Filter) IsEmpty() bool {
	return f.author == "" && f.title == "" &&
		f.year == 0 && f.month == 0 && f.day == 0 &&
		len(f.keywords) == 0
}

// Matches evaluates the filter against a document's metadata. All set
// predicates must match (logical AND). Absent metadata fields fail the
// predicates that reference them. Never errors.
func (f Filter) Matches(meta archive.Metadata) bool {
	if f.author != "" {
		if strings.ToLower(strings.TrimSpace(meta.Author)) != f.author {
			return false
		}
	}
	if f.title != "" {
		if meta.Title == "" || !strings.Contains(strings.ToLower(meta.Title), strings.ToLower(f.title)) {
			return false
		}
	}
	if f.year != 0 && meta.Year != f.year {
		return false
	}
	if f.month != 0 && meta.Month != f.month {
		return false
	}
	if f.day != 0 && meta.Day != f.day {
		return false
	}
	if len(f.keywords) > 0 {
		docKeywords := make(map[string]struct{}, len(meta.Keywords))
		for _, k := range meta.Keywords {
			docKeywords[k] = struct{}{}
		}
		for _, k := range f.keywords {
			if _, ok := docKeywords[k]; !ok {
				return false
			}
		}
	}
	return true
}
