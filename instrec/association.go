package instrec

// NoMatch is the assignment value for a candidate which has not been matched to any track.
const NoMatch = -1

// Associator assigns candidates of a single frame to existing tracks.
// Tracks are given in ascending ID order. Result is indexed by candidate and holds
// either matched track ID or NoMatch. Every track ID must appear at most once in result.
type Associator[P any] interface {
	Associate(candidates []TrackFrame[P], tracks []*Track[P], scorer Scorer[P], threshold float64) []int
}

// acceptMatch checks whether score is strong enough. Threshold is inclusive,
// but zero overlap never counts as match.
func acceptMatch(score, threshold float64) bool {
	return score > 0 && score >= threshold
}

func noMatches(n int) []int {
	assignments := make([]int, n)
	for i := range assignments {
		assignments[i] = NoMatch
	}
	return assignments
}

// GreedyAssociator matches candidates first-come-first-served in the order they were provided.
// Each candidate takes its best scoring track; if that track has already been taken by
// an earlier candidate in the same frame, the candidate stays unmatched.
type GreedyAssociator[P any] struct{}

// NewGreedyAssociator creates default association policy
func NewGreedyAssociator[P any]() GreedyAssociator[P] {
	return GreedyAssociator[P]{}
}

// Associate implements Associator
func (GreedyAssociator[P]) Associate(candidates []TrackFrame[P], tracks []*Track[P], scorer Scorer[P], threshold float64) []int {
	assignments := noMatches(len(candidates))
	if len(tracks) == 0 {
		return assignments
	}
	// Prevent double update of tracks
	reservedTracks := make(map[int]struct{}, len(tracks))
	for i := range candidates {
		bestTrack, bestScore := findBestTrack(candidates[i], tracks, scorer)
		if bestTrack == nil || !acceptMatch(bestScore, threshold) {
			continue
		}
		if _, ok := reservedTracks[bestTrack.GetID()]; ok {
			continue
		}
		reservedTracks[bestTrack.GetID()] = struct{}{}
		assignments[i] = bestTrack.GetID()
	}
	return assignments
}

// findBestTrack returns the track with maximum score. Ties are resolved in favour of
// the track seen first. Returns nil when there are no tracks or all scores are zero.
func findBestTrack[P any](candidate TrackFrame[P], tracks []*Track[P], scorer Scorer[P]) (*Track[P], float64) {
	var bestTrack *Track[P]
	bestScore := 0.0
	for _, track := range tracks {
		score := scorer.Score(candidate, track)
		if score > bestScore {
			bestScore = score
			bestTrack = track
		}
	}
	return bestTrack, bestScore
}

// HungarianAssociator uses the Hungarian algorithm (Kuhn-Munkres) to maximize the total score
// of accepted matches in the frame. Unlike GreedyAssociator it does not depend on candidates order.
type HungarianAssociator[P any] struct{}

// NewHungarianAssociator creates optimal association policy
func NewHungarianAssociator[P any]() HungarianAssociator[P] {
	return HungarianAssociator[P]{}
}

// Associate implements Associator
func (HungarianAssociator[P]) Associate(candidates []TrackFrame[P], tracks []*Track[P], scorer Scorer[P], threshold float64) []int {
	assignments := noMatches(len(candidates))
	numCandidates := len(candidates)
	numTracks := len(tracks)
	if numCandidates == 0 || numTracks == 0 {
		return assignments
	}

	// Rows are candidates, columns are tracks. Pairs which could not be accepted
	// anyway contribute nothing, so the solver optimizes over acceptable pairs only
	scores := make([][]float64, numCandidates)
	for i := range scores {
		scores[i] = make([]float64, numTracks)
		for j := 0; j < numTracks; j++ {
			score := scorer.Score(candidates[i], tracks[j])
			if acceptMatch(score, threshold) {
				scores[i][j] = score
			}
		}
	}

	for candidateIdx, trackIdx := range hungarianAssign(scores, numTracks) {
		if trackIdx < 0 {
			continue
		}
		if acceptMatch(scores[candidateIdx][trackIdx], threshold) {
			assignments[candidateIdx] = tracks[trackIdx].GetID()
		}
	}
	return assignments
}
