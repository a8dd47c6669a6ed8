package instrec

import (
	kalman_filter "github.com/LdDl/kalman-filter"
)

// Scorer computes similarity in [0, 1] between a candidate observation and a track.
// Implementations must not modify either argument, but may cache derived per-track state.
type Scorer[P any] interface {
	Score(candidate TrackFrame[P], track *Track[P]) float64
}

// IoUScorer scores candidate by IoU against the track's most recent bounding box.
type IoUScorer[P any] struct{}

// NewIoUScorer creates default scorer
func NewIoUScorer[P any]() IoUScorer[P] {
	return IoUScorer[P]{}
}

// Score implements Scorer
func (IoUScorer[P]) Score(candidate TrackFrame[P], track *Track[P]) float64 {
	if track.IsEmpty() {
		return 0.0
	}
	return IoU(candidate.GetBBox(), track.GetLastFrame().GetBBox())
}

// TrackForgetter is implemented by scorers holding per-track state.
// InstanceTracker calls ForgetTrack for every pruned track.
type TrackForgetter[P any] interface {
	ForgetTrack(track *Track[P])
}

// KalmanScorer scores candidate by IoU against the box predicted for the candidate's frame.
// Every track owns 8-D Kalman filter with state [cx, cy, w, h, vx, vy, vw, vh], which is fed
// with each appended observation exactly once. Tracks without motion history
// (single valid observation) are scored as IoUScorer does.
//
// Filters are kept until ForgetTrack is called. Not safe for concurrent use.
type KalmanScorer[P any] struct {
	// Time step between two consecutive frames
	dt float64
	// Process noise (acceleration standard deviation)
	stdDevA float64
	// Measurement noise for every bbox component
	stdDevM float64

	states map[*Track[P]]*kalmanTrackState
	// Number of observations fed to filters so far
	updates int
}

type kalmanTrackState struct {
	kf *kalman_filter.KalmanBBox
	// Number of track frames already consumed (valid or not)
	consumed int
	// Number of valid boxes seen by the filter
	valid int
	// Frame index of the last valid box
	lastIdx int
	// Set when filter update failed; track is scored as IoUScorer does from then on
	broken bool
}

// NewKalmanScorerDefault creates KalmanScorer with dt=1.0, stdDevA=2.0, stdDevM=0.1
func NewKalmanScorerDefault[P any]() *KalmanScorer[P] {
	return NewKalmanScorer[P](1.0, 2.0, 0.1)
}

// NewKalmanScorer creates KalmanScorer with specified filter parameters
func NewKalmanScorer[P any](dt, stdDevA, stdDevM float64) *KalmanScorer[P] {
	return &KalmanScorer[P]{
		dt:      dt,
		stdDevA: stdDevA,
		stdDevM: stdDevM,
		states:  make(map[*Track[P]]*kalmanTrackState),
	}
}

// Score implements Scorer
func (scorer *KalmanScorer[P]) Score(candidate TrackFrame[P], track *Track[P]) float64 {
	candidateBBox := candidate.GetBBox()
	if !candidateBBox.IsValid() || track.IsEmpty() {
		return 0.0
	}
	predicted, ok := scorer.predict(track, candidate.GetFrameIndex())
	if !ok {
		return IoU(candidateBBox, track.GetLastFrame().GetBBox())
	}
	return IoU(candidateBBox, predicted)
}

// ForgetTrack implements TrackForgetter
func (scorer *KalmanScorer[P]) ForgetTrack(track *Track[P]) {
	delete(scorer.states, track)
}

// sync feeds frames appended to the track since the previous call into its filter.
func (scorer *KalmanScorer[P]) sync(track *Track[P]) *kalmanTrackState {
	state, ok := scorer.states[track]
	if !ok || state.consumed > track.NumFrames() {
		state = &kalmanTrackState{}
		scorer.states[track] = state
	}
	for _, frame := range track.frames[state.consumed:] {
		state.consumed++
		bbox := frame.GetBBox()
		if state.broken || !bbox.IsValid() {
			continue
		}
		c := bbox.Center()
		scorer.updates++
		if state.kf == nil {
			state.kf = kalman_filter.NewKalmanBBox(
				scorer.dt, 0.0, 0.0, 0.0, 0.0,
				scorer.stdDevA, scorer.stdDevM, scorer.stdDevM, scorer.stdDevM, scorer.stdDevM,
				kalman_filter.WithStateBBox(c.X, c.Y, bbox.Width, bbox.Height),
			)
			state.valid = 1
			state.lastIdx = frame.GetFrameIndex()
			continue
		}
		for step := state.lastIdx; step < frame.GetFrameIndex(); step++ {
			state.kf.Predict()
		}
		err := state.kf.Update(c.X, c.Y, bbox.Width, bbox.Height)
		if err != nil {
			Logf("instrec: kalman update failed for track %d: %v", track.GetID(), err)
			state.broken = true
			continue
		}
		state.valid++
		state.lastIdx = frame.GetFrameIndex()
	}
	return state
}

// predict extrapolates filter state of the track up to targetFrameIdx without mutating the filter.
// Returns false when there is not enough history or filter failed.
func (scorer *KalmanScorer[P]) predict(track *Track[P], targetFrameIdx int) (Rectangle, bool) {
	state := scorer.sync(track)
	if state.broken || state.valid < 2 {
		return Rectangle{}, false
	}
	// Control input is zero, so k Predict() steps move state by k*dt*velocity
	steps := float64(targetFrameIdx - state.lastIdx)
	if steps < 0 {
		steps = 0
	}
	cx, cy, w, h := state.kf.GetState()
	vx, vy, vw, vh := state.kf.GetVelocity()
	shift := steps * scorer.dt
	cx += vx * shift
	cy += vy * shift
	w += vw * shift
	h += vh * shift
	return Rectangle{
		X:      cx - w/2.0,
		Y:      cy - h/2.0,
		Width:  w,
		Height: h,
	}, true
}
