package gesture

import "errors"

var (
	// ErrSourceUnavailable reports that a landmark source cannot produce frames.
	ErrSourceUnavailable = errors.New("gesture: source unavailable")
	// ErrMalformedFrame reports a frame that could not be decoded.
	ErrMalformedFrame = errors.New("gesture: malformed frame")
	// ErrUnknownGesture reports a gesture name outside none, pinch, open and fist.
	ErrUnknownGesture = errors.New("gesture: unknown gesture")
)
