package serpwatch

// SelectCompetitor picks the entry to benchmark the tracked page against.
//
// The preferred entry is the one sitting directly above the tracked page,
// i.e. the first competitor whose Position equals rank-1. When no entry has
// that position (a gap in provider data, or rank 1 leaving no valid target)
// the first competitor in list order is used. Returns false when there are
// no competitors at all.
//
// Positions are assumed to share the tracked page's numbering. Providers
// that number non-organic blocks can make this pick the wrong neighbour.
func SelectCompetitor(competitors []RankedResult, rank int) (RankedResult, bool) {
	if len(competitors) == 0 {
		return RankedResult{}, false
	}

	if target := rank - 1; target >= 1 {
		for _, c := range competitors {
			if c.Position == target {
				return c, true
			}
		}
	}

	return competitors[0], true
}
