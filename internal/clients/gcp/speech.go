package gcp

import (
	"context"
	"fmt"
	"strings"
	"time"

	speech "cloud.google.com/go/speech/apiv1"
	speechpb "cloud.google.com/go/speech/apiv1/speechpb"

	"github.com/yungbote/repurpose-bot/internal/platform/ctxutil"
	platformgcp "github.com/yungbote/repurpose-bot/internal/platform/gcp"
	"github.com/yungbote/repurpose-bot/internal/platform/logger"
)

type Speech interface {
	Transcribe(ctx context.Context, audio []byte, mimeType string) (string, error)
	Close() error
}

type SpeechConfig struct {
	LanguageCode string
	Model        string
	// Telegram voice notes are 48 kHz Opus.
	SampleRateHertz int
}

type recognizeFunc func(ctx context.Context, req *speechpb.LongRunningRecognizeRequest) (*speechpb.LongRunningRecognizeResponse, error)

type speechService struct {
	log       *logger.Logger
	client    *speech.Client
	cfg       SpeechConfig
	recognize recognizeFunc
}

func NewSpeech(log *logger.Logger, cfg SpeechConfig) (Speech, error) {
	if log == nil {
		return nil, fmt.Errorf("logger required")
	}
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	c, err := speech.NewClient(ctx, platformgcp.ClientOptionsFromEnv()...)
	if err != nil {
		return nil, fmt.Errorf("speech client: %w", err)
	}
	if cfg.LanguageCode == "" {
		cfg.LanguageCode = "en-US"
	}
	if cfg.SampleRateHertz <= 0 {
		cfg.SampleRateHertz = 48000
	}
	svc := &speechService{
		log:    log.With("client", "gcp.Speech"),
		client: c,
		cfg:    cfg,
	}
	svc.recognize = svc.longRunningRecognize
	return svc, nil
}

// longRunningRecognize makes one request and waits for its operation. Errors are not retried.
func (s *speechService) longRunningRecognize(ctx context.Context, req *speechpb.LongRunningRecognizeRequest) (*speechpb.LongRunningRecognizeResponse, error) {
	op, err := s.client.LongRunningRecognize(ctx, req)
	if err != nil {
		return nil, err
	}
	return op.Wait(ctx)
}

func (s *speechService) Close() error {
	if s == nil || s.client == nil {
		return nil
	}
	return s.client.Close()
}

func (s *speechService) Transcribe(ctx context.Context, audio []byte, mimeType string) (string, error) {
	ctx = ctxutil.Default(ctx)
	ctx, cancel := context.WithTimeout(ctx, 3*time.Minute)
	defer cancel()

	if len(audio) == 0 {
		return "", fmt.Errorf("empty audio")
	}
	req := &speechpb.LongRunningRecognizeRequest{
		Config: buildRecognitionConfig(mimeType, s.cfg),
		Audio:  &speechpb.RecognitionAudio{AudioSource: &speechpb.RecognitionAudio_Content{Content: audio}},
	}
	resp, err := s.recognize(ctx, req)
	if err != nil {
		s.log.Warn("Speech recognize failed", "error", err, "bytes", len(audio))
		return "", fmt.Errorf("speech recognize: %w", err)
	}
	return joinTranscript(resp.GetResults()), nil
}

func buildRecognitionConfig(mimeType string, cfg SpeechConfig) *speechpb.RecognitionConfig {
	enc := inferEncoding(mimeType)
	rc := &speechpb.RecognitionConfig{
		LanguageCode:               cfg.LanguageCode,
		Model:                      cfg.Model,
		EnableAutomaticPunctuation: true,
		Encoding:                   enc,
	}
	// Opus needs an explicit rate; FLAC/WAV/MP3 headers carry their own.
	if enc == speechpb.RecognitionConfig_OGG_OPUS || enc == speechpb.RecognitionConfig_WEBM_OPUS {
		rc.SampleRateHertz = int32(cfg.SampleRateHertz)
	}
	return rc
}

func inferEncoding(mimeType string) speechpb.RecognitionConfig_AudioEncoding {
	m := strings.ToLower(strings.TrimSpace(mimeType))
	switch {
	case strings.Contains(m, "ogg"), strings.Contains(m, "opus"), m == "":
		return speechpb.RecognitionConfig_OGG_OPUS
	case strings.Contains(m, "webm"):
		return speechpb.RecognitionConfig_WEBM_OPUS
	case strings.Contains(m, "wav"):
		return speechpb.RecognitionConfig_LINEAR16
	case strings.Contains(m, "flac"):
		return speechpb.RecognitionConfig_FLAC
	case strings.Contains(m, "mp3"), strings.Contains(m, "mpeg"):
		return speechpb.RecognitionConfig_MP3
	default:
		return speechpb.RecognitionConfig_ENCODING_UNSPECIFIED
	}
}

// joinTranscript concatenates the top alternative of each result with single spaces.
func joinTranscript(results []*speechpb.SpeechRecognitionResult) string {
	var b strings.Builder
	for _, r := range results {
		if r == nil || len(r.Alternatives) == 0 || r.Alternatives[0] == nil {
			continue
		}
		txt := strings.TrimSpace(r.Alternatives[0].Transcript)
		if txt == "" {
			continue
		}
		if b.Len() > 0 {
			b.WriteString(" ")
		}
		b.WriteString(txt)
	}
	return b.String()
}
