package pipeline

// ClassifyScore maps a fit score to the initial pipeline stage. Offer is
// never assigned here; it is reachable only through a manual move.
func ClassifyScore(score int) Stage {
	switch {
	case score >= 80:
		return StageInterview
	case score >= 50:
		return StageScreening
	default:
		return StageNew
	}
}
