package ports

// MotivationMetrics records domain-level counters. Implementations must be
// safe for concurrent use.
type MotivationMetrics interface {
	// QuoteFetched counts a displayed quote by source: "remote" or "fallback".
	QuoteFetched(source string)

	// CollectionSize reports the number of liked quotes after a change.
	CollectionSize(n int)

	// StorageSelected reports the negotiated backend kind.
	StorageSelected(kind string)

	// SaveFailed counts a failed write of the collection.
	SaveFailed()
}

// NoopMetrics discards everything.
type NoopMetrics struct{}

func (NoopMetrics) QuoteFetched(string)    {}
func (NoopMetrics) CollectionSize(int)     {}
func (NoopMetrics) StorageSelected(string) {}
func (NoopMetrics) SaveFailed()            {}
