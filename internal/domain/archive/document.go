// Package archive holds the document model for the DPRG list archive.
package archive

import "fmt"

// Metadata is the per-document metadata stored alongside each archive entry.
// Zero values mean the field is absent (the archive is old and patchy).
type Metadata struct {
	Author   string
	Title    string
	Year     int
	Month    int
	Day      int
	Keywords []string
	HasURL   bool
}

// Date renders the year/month/day parts as YYYY-MM-DD.
// Returns "" when the year is absent.
func (m Metadata) Date() string {
	if m.Year == 0 {
		return ""
	}
	if m.Month == 0 {
		return fmt.Sprintf("%04d", m.Year)
	}
	if m.Day == 0 {
		return fmt.Sprintf("%04d-%02d", m.Year, m.Month)
	}
	return fmt.Sprintf("%04d-%02d-%02d", m.Year, m.Month, m.Day)
}

// Document is a single archive entry. Immutable once retrieved; the
// retrieval backend owns the full text, downstream components see the
// bounded excerpt unless they explicitly fetch the full body.
type Document struct {
	id      string
	excerpt string
	meta    Metadata
}

// New creates an archive document.
func New(id, excerpt string, meta Metadata) Document {
	return Document{id: id, excerpt: excerpt, meta: meta}
}

// ID returns the opaque document identifier.
func (d Document) ID() string { return d.id }

// TextExcerpt returns the bounded-length excerpt.
func (d Document) TextExcerpt() string { return d.excerpt }

// Metadata returns the document metadata.
func (d Document) Metadata() Metadata { return d.meta }
