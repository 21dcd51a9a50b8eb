package common_tools

// Brave Search response types. Only the fields the formatter reads are decoded.

type braveResultData struct {
	Query braveQueryInfo `json:"query"`
	News  braveResults   `json:"news"`
	Web   braveResults   `json:"web"`
}

type braveQueryInfo struct {
	Original string `json:"original"`
	Country  string `json:"country"`
}

type braveResults struct {
	Results []braveResult `json:"results"`
}

type braveResult struct {
	Title       string `json:"title"`
	URL         string `json:"url"`
	Description string `json:"description"`
	Age         string `json:"age,omitempty"` // e.g., "9 hours ago"
}
