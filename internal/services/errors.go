package services

import "errors"

var (
	// ErrStore wraps any datastore failure. The request fails with a generic reply and no credit is spent.
	ErrStore = errors.New("user store error")
	// ErrTranscriptUnavailable covers every way a video transcript can fail to load.
	ErrTranscriptUnavailable = errors.New("transcript unavailable")
	ErrTranscriptionFailed   = errors.New("transcription failed")
	ErrGenerationFailed      = errors.New("generation failed")
)
