package instrec

import (
	"fmt"
	"strings"
)

// Track is an ordered history of observations believed to belong to one physical object.
// Frames are ordered by non-decreasing frame index and could only be appended by InstanceTracker.
type Track[P any] struct {
	id     int
	frames []TrackFrame[P]
}

func newTrack[P any](id int, first TrackFrame[P]) *Track[P] {
	track := Track[P]{
		id:     id,
		frames: make([]TrackFrame[P], 0, 8),
	}
	track.frames = append(track.frames, first)
	return &track
}

// GetID returns track's identifier
func (track *Track[P]) GetID() int {
	return track.id
}

// GetFrames returns copy of track's frames
func (track *Track[P]) GetFrames() []TrackFrame[P] {
	frames := make([]TrackFrame[P], len(track.frames))
	copy(frames, track.frames)
	return frames
}

// NumFrames returns number of observations in track
func (track *Track[P]) NumFrames() int {
	return len(track.frames)
}

// IsEmpty reports whether track has no frames. Never true for tracks created by InstanceTracker
func (track *Track[P]) IsEmpty() bool {
	return len(track.frames) == 0
}

// GetLastFrame returns the most recent observation. Panics for empty track
func (track *Track[P]) GetLastFrame() TrackFrame[P] {
	return track.frames[len(track.frames)-1]
}

// LastFrameIndex returns frame index of the most recent observation
func (track *Track[P]) LastFrameIndex() int {
	return track.GetLastFrame().frameIdx
}

// GetStartTime returns frame index of the first observation
func (track *Track[P]) GetStartTime() int {
	return track.frames[0].frameIdx
}

// GetEndTime is alias for LastFrameIndex
func (track *Track[P]) GetEndTime() int {
	return track.LastFrameIndex()
}

// CreatedAt reports whether track has been started at the given frame.
// Fusion uses it to decide between allocating new volume and continuing the existing one.
func (track *Track[P]) CreatedAt(frameIdx int) bool {
	return !track.IsEmpty() && track.GetStartTime() == frameIdx
}

// GetAsciiArt renders frames presence timeline, e.g. "Object #   2 [  0  1        4]"
func (track *Track[P]) GetAsciiArt() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Object #%4d [", track.id)
	idx := 0
	for _, frame := range track.frames {
		for idx < frame.frameIdx {
			sb.WriteString("   ")
			idx++
		}
		fmt.Fprintf(&sb, "%3d", frame.frameIdx)
		idx = frame.frameIdx + 1
	}
	sb.WriteString("]")
	return sb.String()
}

func (track *Track[P]) addFrame(frame TrackFrame[P]) {
	track.frames = append(track.frames, frame)
}
