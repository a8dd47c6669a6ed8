package instrec

import (
	"sort"

	"github.com/google/uuid"
	"github.com/pkg/errors"
)

// ErrTrackNotFound is returned when requested track is not active.
var ErrTrackNotFound = errors.New("track not found")

// InstanceTracker tracks instances over time by associating isolated per-frame detections.
// P is an opaque payload type carried by detections.
//
// InstanceTracker is not safe for concurrent use: hosts exposing queries to other
// goroutines must serialize them against ProcessInstanceViews.
type InstanceTracker[P any] struct {
	// Minimum score to accept a match. Between 0.0 and 1.0
	matchThreshold float64
	// Max age (in frames) of the latest frame in a track before it is discarded
	inactiveFrameThreshold int
	// Active tracks
	idToActiveTrack map[int]*Track[P]
	// Total number of tracks seen, including both active and pruned ones. Also the next track ID
	trackCount int
	// Track ID assigned to every detection of the last processed frame
	lastAssociations []int

	scorer     Scorer[P]
	associator Associator[P]
	metrics    *Metrics
	sessionID  uuid.UUID
}

// TrackerOption customizes InstanceTracker
type TrackerOption[P any] func(*InstanceTracker[P])

// WithScorer replaces default IoUScorer
func WithScorer[P any](scorer Scorer[P]) TrackerOption[P] {
	return func(tracker *InstanceTracker[P]) {
		tracker.scorer = scorer
	}
}

// WithAssociator replaces default GreedyAssociator
func WithAssociator[P any](associator Associator[P]) TrackerOption[P] {
	return func(tracker *InstanceTracker[P]) {
		tracker.associator = associator
	}
}

// WithMetrics attaches prometheus collectors. See NewMetrics
func WithMetrics[P any](metrics *Metrics) TrackerOption[P] {
	return func(tracker *InstanceTracker[P]) {
		tracker.metrics = metrics
	}
}

// WithSessionID overrides randomly generated session identifier
func WithSessionID[P any](sessionID uuid.UUID) TrackerOption[P] {
	return func(tracker *InstanceTracker[P]) {
		tracker.sessionID = sessionID
	}
}

// NewDefaultInstanceTracker creates a default instance of InstanceTracker.
// Default values: matchThreshold=0.15, inactiveFrameThreshold=3
func NewDefaultInstanceTracker[P any](options ...TrackerOption[P]) *InstanceTracker[P] {
	return NewInstanceTracker[P](DefaultMatchThreshold, DefaultInactiveFrameThreshold, options...)
}

// NewInstanceTracker creates a new instance of InstanceTracker with specified parameters.
// Parameters are not validated here; use NewInstanceTrackerFromConfig for checked construction.
func NewInstanceTracker[P any](matchThreshold float64, inactiveFrameThreshold int, options ...TrackerOption[P]) *InstanceTracker[P] {
	tracker := &InstanceTracker[P]{
		matchThreshold:         matchThreshold,
		inactiveFrameThreshold: inactiveFrameThreshold,
		idToActiveTrack:        make(map[int]*Track[P]),
		trackCount:             0,
		lastAssociations:       []int{},
		scorer:                 NewIoUScorer[P](),
		associator:             NewGreedyAssociator[P](),
		sessionID:              uuid.New(),
	}
	for _, option := range options {
		option(tracker)
	}
	return tracker
}

// NewInstanceTrackerFromConfig validates cfg and creates InstanceTracker using scorer and associator named there.
// Options are applied after configuration, so they take precedence.
func NewInstanceTrackerFromConfig[P any](cfg *TrackerConfig, options ...TrackerOption[P]) (*InstanceTracker[P], error) {
	if cfg == nil {
		cfg = DefaultTrackerConfig()
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	base := make([]TrackerOption[P], 0, 2+len(options))
	if cfg.GetScorer() == ScorerKalman {
		base = append(base, WithScorer[P](NewKalmanScorerDefault[P]()))
	}
	if cfg.GetAssociator() == AssociatorHungarian {
		base = append(base, WithAssociator[P](NewHungarianAssociator[P]()))
	}
	base = append(base, options...)
	return NewInstanceTracker[P](cfg.GetMatchThreshold(), cfg.GetInactiveFrameThreshold(), base...), nil
}

// ProcessInstanceViews associates the new detections with existing tracks, or creates new ones,
// and prunes the tracks which have not been updated for too long.
//
// Must be called once per frame with strictly increasing frameIdx. Ordering is the caller's
// responsibility and is not checked.
func (tracker *InstanceTracker[P]) ProcessInstanceViews(frameIdx int, detections []InstanceView[P]) {
	candidates := make([]TrackFrame[P], len(detections))
	for i := range detections {
		candidates[i] = NewTrackFrame(frameIdx, detections[i])
	}

	// Only tracks active before this frame are eligible
	activeTracks := tracker.sortedActiveTracks()
	eligible := make(map[int]*Track[P], len(activeTracks))
	for _, track := range activeTracks {
		eligible[track.GetID()] = track
	}
	assignments := noMatches(len(candidates))
	copy(assignments, tracker.associator.Associate(candidates, activeTracks, tracker.scorer, tracker.matchThreshold))

	var matchedScores []float64
	if tracker.metrics != nil {
		matchedScores = make([]float64, 0, len(candidates))
	}
	extended := make(map[int]struct{}, len(candidates))
	created := 0
	for i, candidate := range candidates {
		trackID := assignments[i]
		track, ok := eligible[trackID]
		if _, dup := extended[trackID]; ok && !dup {
			if matchedScores != nil {
				matchedScores = append(matchedScores, tracker.scorer.Score(candidate, track))
			}
			track.addFrame(candidate)
			extended[trackID] = struct{}{}
			continue
		}
		// Register detection as a new track
		newID := tracker.trackCount
		tracker.trackCount++
		tracker.idToActiveTrack[newID] = newTrack(newID, candidate)
		assignments[i] = newID
		created++
	}
	tracker.lastAssociations = assignments

	pruned := tracker.pruneTracks(frameIdx)
	tracker.metrics.observeFrame(matchedScores, created, pruned, len(tracker.idToActiveTrack))
}

// pruneTracks removes tracks whose last frame is more than inactiveFrameThreshold frames behind.
// Scorer's per-track state is dropped together with the track.
func (tracker *InstanceTracker[P]) pruneTracks(currentFrameIdx int) int {
	pruned := 0
	forgetter, _ := tracker.scorer.(TrackForgetter[P])
	for id, track := range tracker.idToActiveTrack {
		if currentFrameIdx-track.LastFrameIndex() > tracker.inactiveFrameThreshold {
			if forgetter != nil {
				forgetter.ForgetTrack(track)
			}
			delete(tracker.idToActiveTrack, id)
			pruned++
		}
	}
	return pruned
}

func (tracker *InstanceTracker[P]) sortedActiveTracks() []*Track[P] {
	tracks := make([]*Track[P], 0, len(tracker.idToActiveTrack))
	for _, track := range tracker.idToActiveTrack {
		tracks = append(tracks, track)
	}
	sort.Slice(tracks, func(i, j int) bool {
		return tracks[i].GetID() < tracks[j].GetID()
	})
	return tracks
}

// GetTotalTrackCount returns number of tracks ever created, including pruned ones
func (tracker *InstanceTracker[P]) GetTotalTrackCount() int {
	return tracker.trackCount
}

// GetActiveTrackCount returns number of currently active tracks
func (tracker *InstanceTracker[P]) GetActiveTrackCount() int {
	return len(tracker.idToActiveTrack)
}

// HasTrack checks whether a track with given ID is active
func (tracker *InstanceTracker[P]) HasTrack(id int) bool {
	_, ok := tracker.idToActiveTrack[id]
	return ok
}

// GetTrack returns active track by ID. Returns ErrTrackNotFound if there is no such active track
func (tracker *InstanceTracker[P]) GetTrack(id int) (*Track[P], error) {
	track, ok := tracker.idToActiveTrack[id]
	if !ok {
		return nil, errors.Wrapf(ErrTrackNotFound, "track %d is not active", id)
	}
	return track, nil
}

// GetActiveTracks returns copy of active tracks table. Tracks themselves are shared,
// but they expose no mutators.
func (tracker *InstanceTracker[P]) GetActiveTracks() map[int]*Track[P] {
	tracks := make(map[int]*Track[P], len(tracker.idToActiveTrack))
	for id, track := range tracker.idToActiveTrack {
		tracks[id] = track
	}
	return tracks
}

// GetActiveTrackIDs returns IDs of active tracks in ascending order
func (tracker *InstanceTracker[P]) GetActiveTrackIDs() []int {
	ids := make([]int, 0, len(tracker.idToActiveTrack))
	for id := range tracker.idToActiveTrack {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	return ids
}

// GetLastAssociations returns, for every detection of the last processed frame (in the given order),
// the ID of the track it has been added to: either an existing one or a newly created one.
// Combine with Track.CreatedAt to tell new objects from continued ones.
func (tracker *InstanceTracker[P]) GetLastAssociations() []int {
	associations := make([]int, len(tracker.lastAssociations))
	copy(associations, tracker.lastAssociations)
	return associations
}

// GetMatchThreshold returns minimum score to accept a match
func (tracker *InstanceTracker[P]) GetMatchThreshold() float64 {
	return tracker.matchThreshold
}

// GetInactiveFrameThreshold returns max allowed gap in frames before a track is pruned
func (tracker *InstanceTracker[P]) GetInactiveFrameThreshold() int {
	return tracker.inactiveFrameThreshold
}

// GetSessionID returns identifier of this tracker instance
func (tracker *InstanceTracker[P]) GetSessionID() uuid.UUID {
	return tracker.sessionID
}
