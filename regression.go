package serpwatch

// DefaultTopN is the rank threshold above which keywords are not analyzed.
const DefaultTopN = 10

// IsRegression reports whether the tracked page moved to a numerically
// worse position. Either rank being zero (unknown) means there is no
// baseline to compare against and the result is false.
func IsRegression(current, previous int) bool {
	if current <= 0 || previous <= 0 {
		return false
	}
	return current > previous
}

// WithinTopN reports whether rank is a known position no worse than n.
func WithinTopN(rank, n int) bool {
	return rank > 0 && rank <= n
}

// NeedsAnalysis reports whether a keyword qualifies for a comparison: the
// current rank is within the top n and it regressed against previous.
func NeedsAnalysis(current, previous, n int) bool {
	return WithinTopN(current, n) && IsRegression(current, previous)
}
