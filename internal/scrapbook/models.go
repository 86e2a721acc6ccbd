package scrapbook

import (
	"errors"
	"sort"

	"github.com/google/uuid"
)

// Page kinds. A scrapbook document is an ordered list of pages and each page
// maps to exactly one printed PDF page.
const (
	KindRegular  = "regular"
	KindTitle    = "title"
	KindTimeline = "timeline"
)

var (
	ErrPageNotFound = errors.New("page not found")
	ErrPageLocked   = errors.New("page is locked")
)

// Event is a single timeline entry. Year is kept as a string because users
// type free-form labels ("1999", "2024"); grouping sorts lexically.
type Event struct {
	Year        string `json:"year" bson:"year"`
	Date        string `json:"date" bson:"date"`
	Description string `json:"description" bson:"description"`
}

// Page is a tagged variant over the three page kinds. Unused fields stay
// empty for the kinds that don't carry them.
type Page struct {
	ID          string   `json:"id" bson:"id"`
	Type        string   `json:"type" bson:"type"`
	Title       string   `json:"title" bson:"title"`
	Description string   `json:"description,omitempty" bson:"description,omitempty"`
	Subtitle    string   `json:"subtitle,omitempty" bson:"subtitle,omitempty"`
	Images      []string `json:"images,omitempty" bson:"images,omitempty"`
	Events      []Event  `json:"events,omitempty" bson:"events,omitempty"`
	Locked      bool     `json:"locked" bson:"locked"`
}

// NewPage creates an empty page of the given kind with a fresh stable ID.
// IDs are assigned once and never reused, even across reorderings.
func NewPage(kind string) Page {
	return Page{ID: uuid.NewString(), Type: kind}
}

// Clone returns a deep copy of the page.
func (p Page) Clone() Page {
	out := p
	if p.Images != nil {
		out.Images = append([]string(nil), p.Images...)
	}
	if p.Events != nil {
		out.Events = append([]Event(nil), p.Events...)
	}
	return out
}

// Document is the ordered page sequence owned by a single user.
type Document struct {
	OwnerID string `json:"ownerId" bson:"ownerId"`
	Pages   []Page `json:"pages" bson:"pages"`
}

// Snapshot deep-copies the page sequence so later edits to the document
// cannot affect an in-flight export.
func (d *Document) Snapshot() []Page {
	out := make([]Page, 0, len(d.Pages))
	for _, p := range d.Pages {
		out = append(out, p.Clone())
	}
	return out
}

func (d *Document) indexOf(id string) int {
	for i := range d.Pages {
		if d.Pages[i].ID == id {
			return i
		}
	}
	return -1
}

// MoveUp swaps the page with its previous neighbor. A no-op at the top.
// Reordering is a pure permutation: page IDs are never renumbered.
func (d *Document) MoveUp(id string) error {
	return d.swap(id, -1)
}

// MoveDown swaps the page with its next neighbor. A no-op at the bottom.
func (d *Document) MoveDown(id string) error {
	return d.swap(id, +1)
}

func (d *Document) swap(id string, dir int) error {
	i := d.indexOf(id)
	if i < 0 {
		return ErrPageNotFound
	}
	if d.Pages[i].Locked {
		return ErrPageLocked
	}
	j := i + dir
	if j < 0 || j >= len(d.Pages) {
		return nil
	}
	d.Pages[i], d.Pages[j] = d.Pages[j], d.Pages[i]
	return nil
}

// ImageURLs enumerates every image URL referenced by any page, in page order.
func ImageURLs(pages []Page) []string {
	out := []string{}
	for _, p := range pages {
		out = append(out, p.Images...)
	}
	return out
}

// YearGroup holds the events of one timeline year in insertion order.
type YearGroup struct {
	Year   string
	Events []Event
}

// GroupEventsByYear buckets events by year label, years sorted lexically
// ascending, preserving the original relative order within each year.
func GroupEventsByYear(events []Event) []YearGroup {
	byYear := map[string][]Event{}
	years := []string{}
	for _, e := range events {
		if _, ok := byYear[e.Year]; !ok {
			years = append(years, e.Year)
		}
		byYear[e.Year] = append(byYear[e.Year], e)
	}
	sort.Strings(years)
	out := make([]YearGroup, 0, len(years))
	for _, y := range years {
		out = append(out, YearGroup{Year: y, Events: byYear[y]})
	}
	return out
}
