package feed

// Info holds feed-level fields extracted during parsing.
type Info struct {
	Title       string
	Link        string
	Description string
}

// Candidate is a normalized, not-yet-persisted item produced by parsing or
// by an API-backed source. The store decides whether it becomes durable.
type Candidate struct {
	Title     string
	Link      string
	Content   string
	Author    string
	Published string // verbatim source timestamp, no normalization

	EnclosureURL  string
	EnclosureType string
	Duration      string

	Metadata map[string]string
}
