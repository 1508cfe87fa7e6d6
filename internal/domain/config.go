package domain

// QueryManipulation holds the enrichment channel settings. The value is
// re-read on every request because it can be reloaded at runtime.
type QueryManipulation struct {
	Enabled     bool
	Blacklist   string
	ExpandQuery bool
}
