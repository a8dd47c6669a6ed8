package instrec

// InstanceView is a single instance detection produced by segmentation for one frame.
// P is an opaque payload (mask, class, probability and so on). Tracker never inspects it
// and just carries it along with bounding box.
type InstanceView[P any] struct {
	BBox    Rectangle
	Payload P
}

// NewInstanceView creates new detection
func NewInstanceView[P any](bbox Rectangle, payload P) InstanceView[P] {
	return InstanceView[P]{
		BBox:    bbox,
		Payload: payload,
	}
}

// TrackFrame is an immutable observation of an instance tagged with the frame index which produced it.
type TrackFrame[P any] struct {
	frameIdx int
	view     InstanceView[P]
}

// NewTrackFrame creates new observation
func NewTrackFrame[P any](frameIdx int, view InstanceView[P]) TrackFrame[P] {
	return TrackFrame[P]{
		frameIdx: frameIdx,
		view:     view,
	}
}

// GetFrameIndex returns index of the frame which produced observation
func (frame TrackFrame[P]) GetFrameIndex() int {
	return frame.frameIdx
}

// GetBBox returns observation's bounding box
func (frame TrackFrame[P]) GetBBox() Rectangle {
	return frame.view.BBox
}

// GetPayload returns opaque payload of observation
func (frame TrackFrame[P]) GetPayload() P {
	return frame.view.Payload
}

// GetInstanceView returns underlying detection
func (frame TrackFrame[P]) GetInstanceView() InstanceView[P] {
	return frame.view
}
