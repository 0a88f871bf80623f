package services

import (
	"context"
	"fmt"
	"strings"

	types "github.com/yungbote/repurpose-bot/internal/domain"
	"github.com/yungbote/repurpose-bot/internal/platform/logger"
)

// TranscriptSource returns caption text for a video URL.
type TranscriptSource interface {
	Fetch(ctx context.Context, videoURL string) (string, error)
}

// FileDownloader fetches transport-hosted files by reference.
type FileDownloader interface {
	DownloadFile(ctx context.Context, fileID string) ([]byte, error)
}

// SpeechProvider is speech-to-text over raw audio.
type SpeechProvider interface {
	Transcribe(ctx context.Context, audio []byte, mimeType string) (string, error)
}

// TranscriptService normalizes every failure to ErrTranscriptUnavailable.
type TranscriptService interface {
	Fetch(ctx context.Context, videoURL string) (string, error)
}

type transcriptService struct {
	log *logger.Logger
	src TranscriptSource
}

func NewTranscriptService(log *logger.Logger, src TranscriptSource) TranscriptService {
	return &transcriptService{log: log.With("service", "TranscriptService"), src: src}
}

func (s *transcriptService) Fetch(ctx context.Context, videoURL string) (string, error) {
	text, err := s.src.Fetch(ctx, videoURL)
	if err != nil {
		s.log.Warn("Transcript fetch failed", "error", err)
		return "", fmt.Errorf("%w: %v", ErrTranscriptUnavailable, err)
	}
	if strings.TrimSpace(text) == "" {
		return "", ErrTranscriptUnavailable
	}
	return text, nil
}

// VoiceTranscriber downloads a voice note and turns it into text.
// Every failure wraps ErrTranscriptionFailed.
type VoiceTranscriber interface {
	Transcribe(ctx context.Context, voice *types.Voice) (string, error)
}

type voiceTranscriber struct {
	log    *logger.Logger
	files  FileDownloader
	speech SpeechProvider
}

func NewVoiceTranscriber(log *logger.Logger, files FileDownloader, speech SpeechProvider) VoiceTranscriber {
	return &voiceTranscriber{log: log.With("service", "VoiceTranscriber"), files: files, speech: speech}
}

func (v *voiceTranscriber) Transcribe(ctx context.Context, voice *types.Voice) (string, error) {
	if voice == nil || voice.FileID == "" {
		return "", fmt.Errorf("%w: no voice reference", ErrTranscriptionFailed)
	}
	audio, err := v.files.DownloadFile(ctx, voice.FileID)
	if err != nil {
		v.log.Warn("Voice download failed", "error", err)
		return "", fmt.Errorf("%w: download: %v", ErrTranscriptionFailed, err)
	}
	mime := voice.MimeType
	if mime == "" {
		mime = "audio/ogg"
	}
	text, err := v.speech.Transcribe(ctx, audio, mime)
	if err != nil {
		v.log.Warn("Speech transcription failed", "error", err, "bytes", len(audio))
		return "", fmt.Errorf("%w: %v", ErrTranscriptionFailed, err)
	}
	if strings.TrimSpace(text) == "" {
		return "", fmt.Errorf("%w: empty transcription", ErrTranscriptionFailed)
	}
	return text, nil
}
