package domain

// StoreFilter is the filter set a persisted store must apply. Difficulty
// holds the exact internal value to match (already translated from any
// display label).
type StoreFilter struct {
	Text       string
	Category   string
	Muscle     string
	Equipment  string
	Difficulty string
	Providers  []string
}

// StorePage selects the ordering and window of a store query.
type StorePage struct {
	Sort  SortKey
	Skip  int64
	Limit int64
}
