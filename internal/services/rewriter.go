package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/yungbote/repurpose-bot/internal/platform/ctxutil"
	"github.com/yungbote/repurpose-bot/internal/platform/logger"
)

// TextGenerator is a single-turn chat completion.
type TextGenerator interface {
	GenerateText(ctx context.Context, system string, user string) (string, error)
}

type Rewriter interface {
	// Rewrite turns source into an ad script. An empty completion yields ReplyEmptyCompletion;
	// a failed call yields ErrGenerationFailed.
	Rewrite(ctx context.Context, source string, languageName string, companyDescription *string) (string, error)
}

type rewriter struct {
	log *logger.Logger
	gen TextGenerator
}

func NewRewriter(log *logger.Logger, gen TextGenerator) (Rewriter, error) {
	if log == nil {
		return nil, fmt.Errorf("logger required")
	}
	if gen == nil {
		return nil, fmt.Errorf("text generator required")
	}
	return &rewriter{log: log.With("service", "Rewriter", "prompt_version", PromptVersion), gen: gen}, nil
}

func (r *rewriter) Rewrite(ctx context.Context, source string, languageName string, companyDescription *string) (string, error) {
	ctx = ctxutil.Default(ctx)
	start := time.Now()
	out, err := r.gen.GenerateText(ctx, BuildPrompt(languageName, companyDescription), source)
	if err != nil {
		r.log.Error("Rewrite failed", "error", err, "language", languageName)
		return "", fmt.Errorf("%w: %v", ErrGenerationFailed, err)
	}
	r.log.Debug("Rewrite finished", "language", languageName, "duration_ms", time.Since(start).Milliseconds())
	if strings.TrimSpace(out) == "" {
		return ReplyEmptyCompletion, nil
	}
	return out, nil
}
