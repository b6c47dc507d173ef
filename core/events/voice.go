package events

const (
	// KindSegmentInterim identifies a segment that is not final yet.
	KindSegmentInterim Kind = "voice.segment_interim"
	// KindSegmentFinal identifies a finalised segment.
	KindSegmentFinal Kind = "voice.segment_final"
	// KindSegmentRejected identifies a segment that failed validation.
	KindSegmentRejected Kind = "voice.segment_rejected"
)

// SegmentInterim carries the plain text of a segment still being recognised.
type SegmentInterim struct {
	Base
	SegmentID string
	Text      string
}

// NewSegmentInterim creates an interim segment event.
func NewSegmentInterim(segmentID, text string) SegmentInterim {
	return SegmentInterim{Base: NewBase(KindSegmentInterim), SegmentID: segmentID, Text: text}
}

// SegmentFinal carries the plain text and final intent label of a segment.
type SegmentFinal struct {
	Base
	SegmentID string
	Text      string
	Intent    string
}

// NewSegmentFinal creates a final segment event.
func NewSegmentFinal(segmentID, text, intent string) SegmentFinal {
	return SegmentFinal{Base: NewBase(KindSegmentFinal), SegmentID: segmentID, Text: text, Intent: intent}
}

// SegmentRejected carries the reason a segment was not dispatched.
type SegmentRejected struct {
	Base
	SegmentID string
	Err       error
}

// NewSegmentRejected creates a rejected segment event.
func NewSegmentRejected(segmentID string, err error) SegmentRejected {
	return SegmentRejected{Base: NewBase(KindSegmentRejected), SegmentID: segmentID, Err: err}
}
