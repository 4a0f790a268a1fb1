package archiveagent

// Strategy selects the retrieval algorithm.
type Strategy string

// Strategy constants.
const (
	StrategyDense  Strategy = "dense"
	StrategySparse Strategy = "sparse"
	StrategyHybrid Strategy = "hybrid"
)

// Filter narrows a search to documents matching all set fields. Zero values
// mean the field is not constrained.
type Filter struct {
	Author   string
	Title    string
	Year     int
	Month    int
	Day      int
	Keywords []string
}

// IsEmpty reports whether no field is set.
func (f Filter) IsEmpty() bool {
	return f.Author == "" && f.Title == "" &&
		f.Year == 0 && f.Month == 0 && f.Day == 0 && len(f.Keywords) == 0
}

// SearchOptions configures a search query.
type SearchOptions struct {
	Strategy Strategy // empty = dense
	Filter   Filter
	TopK     int     // 0 = default (10)
	MinScore float64 // 0 = keep everything
}

// Document is a retrieved archive entry.
type Document struct {
	ID       string
	Excerpt  string
	Author   string
	Title    string
	Date     string // YYYY-MM-DD, shorter when parts are absent
	Keywords []string
	HasURL   bool
}

// SearchResult is a single search hit.
type SearchResult struct {
	Document
	Score float64
}

// ChatReply is the outcome of one conversational turn.
type ChatReply struct {
	Text       string
	Referenced []Document
	Fallback   bool
	Done       bool
}
