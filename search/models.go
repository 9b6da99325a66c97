package search

// Result is a single extracted search hit. Constructed by an engine adapter
// during extraction and never mutated afterwards.
type Result struct {
	Title   string `json:"title"`
	Link    string `json:"link"`
	Snippet string `json:"snippet"`
}

// Response is the outcome of one completed search. Results keep the page
// rendering order of the engine.
type Response struct {
	Engine  string   `json:"engine"`
	Results []Result `json:"result"`
	Page    int      `json:"page"`
}
