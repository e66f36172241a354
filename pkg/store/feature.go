package store

import "strings"

// Feature represents table capabilities as bit flags. Callers query them
// through Table.Features before relying on behavior the document engine may
// not provide.
type Feature uint32

const (
	FeatureTransactions Feature = 1 << iota // atomic multi-write transactions
	FeatureReadCache                        // bounded-freshness read cache on Get
)

// featureNames is ordered to match the flag declarations above.
var featureNames = []struct {
	flag Feature
	name string
}{
	{FeatureTransactions, "Transactions"},
	{FeatureReadCache, "ReadCache"},
}

// Has reports whether every flag in other is set in f.
func (f Feature) Has(other Feature) bool {
	return f&other == other
}

// String returns the set flags joined by "|", or "None" when empty.
func (f Feature) String() string {
	var set []string
	for _, fn := range featureNames {
		if f.Has(fn.flag) {
			set = append(set, fn.name)
		}
	}
	if len(set) == 0 {
		return "None"
	}
	return strings.Join(set, "|")
}
