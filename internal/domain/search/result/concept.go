package result

// Concept is one entry of a query summary: a phrase, the cluster it belongs to
// and how many documents mention it.
type Concept struct {
	Text    string `json:"text"`
	Cluster int    `json:"cluster"`
	Docs    int    `json:"docs"`
}
