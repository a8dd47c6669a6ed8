package instrec

import (
	"math"
	"testing"
)

func trackWithBoxes(boxes ...Rectangle) *Track[segment] {
	track := newTrack(0, NewTrackFrame(0, NewInstanceView(boxes[0], segment{})))
	for i, box := range boxes[1:] {
		track.addFrame(NewTrackFrame(i+1, NewInstanceView(box, segment{})))
	}
	return track
}

func TestIoUScorer(t *testing.T) {
	scorer := NewIoUScorer[segment]()
	track := trackWithBoxes(NewRectCorners(100, 100, 110, 110), NewRectCorners(0, 0, 10, 10))

	// Only the most recent observation counts
	candidate := NewTrackFrame(2, NewInstanceView(NewRectCorners(0, 0, 10, 10), segment{}))
	if score := scorer.Score(candidate, track); math.Abs(score-1.0) > eps {
		t.Errorf("Expected score 1.0 for identical boxes, got %f", score)
	}
	candidate = NewTrackFrame(2, NewInstanceView(NewRectCorners(100, 100, 110, 110), segment{}))
	if score := scorer.Score(candidate, track); score != 0 {
		t.Errorf("Expected score 0 against the last box, got %f", score)
	}
	if score := scorer.Score(candidate, &Track[segment]{}); score != 0 {
		t.Errorf("Expected score 0 for empty track, got %f", score)
	}
}

func TestKalmanScorerFallsBackToIoU(t *testing.T) {
	kalman := NewKalmanScorerDefault[segment]()
	iou := NewIoUScorer[segment]()
	track := trackWithBoxes(NewRectCorners(0, 0, 10, 10))
	candidate := NewTrackFrame(1, NewInstanceView(NewRectCorners(3, 0, 13, 10), segment{}))
	if math.Abs(kalman.Score(candidate, track)-iou.Score(candidate, track)) > eps {
		t.Errorf("Single frame track should be scored as IoU: %f vs %f", kalman.Score(candidate, track), iou.Score(candidate, track))
	}
	invalid := NewTrackFrame(1, NewInstanceView(NewRectCorners(13, 0, 3, 10), segment{}))
	if score := kalman.Score(invalid, track); score != 0 {
		t.Errorf("Invalid candidate should score 0, got %f", score)
	}
}

func TestKalmanScorerStationary(t *testing.T) {
	scorer := NewKalmanScorerDefault[segment]()
	box := NewRectCorners(20, 20, 40, 60)
	track := trackWithBoxes(box, box, box, box)
	candidate := NewTrackFrame(4, NewInstanceView(box, segment{}))
	score := scorer.Score(candidate, track)
	if score < 0.9 || score > 1.0 {
		t.Errorf("Stationary object should keep high score, got %f", score)
	}
}

func TestKalmanScorerFollowsMotion(t *testing.T) {
	kalman := NewKalmanScorerDefault[segment]()
	iou := NewIoUScorer[segment]()
	// Object moves 5px right every frame
	boxes := make([]Rectangle, 5)
	for i := range boxes {
		x := float64(i * 5)
		boxes[i] = NewRectCorners(x, 0, x+10, 10)
	}
	track := trackWithBoxes(boxes...)
	candidate := NewTrackFrame(5, NewInstanceView(NewRectCorners(25, 0, 35, 10), segment{}))

	kalmanScore := kalman.Score(candidate, track)
	iouScore := iou.Score(candidate, track)
	if kalmanScore < 0 || kalmanScore > 1 {
		t.Fatalf("Score out of range: %f", kalmanScore)
	}
	if kalmanScore <= iouScore {
		t.Errorf("Motion-aware score should beat plain IoU for moving object: %f vs %f", kalmanScore, iouScore)
	}
}

func TestKalmanScorerFeedsEveryFrameOnce(t *testing.T) {
	scorer := NewKalmanScorerDefault[segment]()
	boxes := make([]Rectangle, 50)
	for i := range boxes {
		x := float64(i * 2)
		boxes[i] = NewRectCorners(x, 0, x+10, 10)
	}
	track := trackWithBoxes(boxes...)
	candidate := NewTrackFrame(50, NewInstanceView(NewRectCorners(100, 0, 110, 10), segment{}))
	for i := 0; i < 10; i++ {
		scorer.Score(candidate, track)
	}
	if scorer.updates != len(boxes) {
		t.Errorf("Expected %d filter updates, got %d", len(boxes), scorer.updates)
	}

	// Cost of the next frame doesn't depend on history length
	for frameIdx := 50; frameIdx < 100; frameIdx++ {
		x := float64(frameIdx * 2)
		track.addFrame(NewTrackFrame(frameIdx, NewInstanceView(NewRectCorners(x, 0, x+10, 10), segment{})))
		before := scorer.updates
		next := NewTrackFrame(frameIdx+1, NewInstanceView(NewRectCorners(x+2, 0, x+12, 10), segment{}))
		scorer.Score(next, track)
		scorer.Score(next, track)
		if scorer.updates-before != 1 {
			t.Fatalf("Frame %d: expected 1 filter update, got %d", frameIdx, scorer.updates-before)
		}
	}
	if len(scorer.states) != 1 {
		t.Errorf("Expected single cached track, got %d", len(scorer.states))
	}
	scorer.ForgetTrack(track)
	if len(scorer.states) != 0 {
		t.Errorf("Expected empty cache after ForgetTrack, got %d", len(scorer.states))
	}
}

func TestKalmanScorerSkipsInvalidFrames(t *testing.T) {
	scorer := NewKalmanScorerDefault[segment]()
	box := NewRectCorners(20, 20, 40, 60)
	track := trackWithBoxes(box, NewRectCorners(40, 60, 20, 20), box, box)
	candidate := NewTrackFrame(4, NewInstanceView(box, segment{}))
	if score := scorer.Score(candidate, track); score < 0.9 || score > 1.0 {
		t.Errorf("Stationary object should keep high score, got %f", score)
	}
	if scorer.updates != 3 {
		t.Errorf("Expected 3 filter updates for valid boxes, got %d", scorer.updates)
	}
}

func TestInstanceTrackerForgetsPrunedTracks(t *testing.T) {
	scorer := NewKalmanScorerDefault[segment]()
	tracker := NewInstanceTracker[segment](DefaultMatchThreshold, 1, WithScorer[segment](scorer))
	tracker.ProcessInstanceViews(0, []InstanceView[segment]{view(0, 0, 10, 10), view(50, 50, 60, 60)})
	tracker.ProcessInstanceViews(1, []InstanceView[segment]{view(1, 0, 11, 10), view(51, 50, 61, 60)})
	if len(scorer.states) != 2 {
		t.Fatalf("Expected 2 cached tracks, got %d", len(scorer.states))
	}
	tracker.ProcessInstanceViews(2, []InstanceView[segment]{view(2, 0, 12, 10)})
	tracker.ProcessInstanceViews(3, []InstanceView[segment]{view(3, 0, 13, 10)})
	if tracker.GetActiveTrackCount() != 1 {
		t.Fatalf("Expected 1 active track, got %d", tracker.GetActiveTrackCount())
	}
	if len(scorer.states) != 1 {
		t.Errorf("Expected 1 cached track after pruning, got %d", len(scorer.states))
	}
	tracker.ProcessInstanceViews(10, nil)
	if len(scorer.states) != 0 {
		t.Errorf("Expected empty cache, got %d", len(scorer.states))
	}
}
