package dto

type SearchResult struct {
	Title   string `json:"title"`
	URL     string `json:"url"`
	Snippet string `json:"snippet"`
}

// WebSearchArgs are the arguments the model passes to the web_search tool.
type WebSearchArgs struct {
	Query string `json:"query"`
}
