package agent

import (
	"context"

	"udla-mentor-be/internal/pkg/logger"
)

// FallbackReply is what the student sees when the agent cannot answer.
const FallbackReply = "Lo siento, desconozco del tema."

// Runner answers a reconstructed conversation transcript.
type Runner interface {
	Run(ctx context.Context, transcript string) (string, error)
}

// RunnerFunc adapts a function to Runner.
type RunnerFunc func(ctx context.Context, transcript string) (string, error)

func (f RunnerFunc) Run(ctx context.Context, transcript string) (string, error) {
	return f(ctx, transcript)
}

type fallback struct {
	next Runner
	log  logger.ILogger
}

// WithFallback logs agent failures and answers FallbackReply instead of failing the turn.
func WithFallback(next Runner, log logger.ILogger) Runner {
	return &fallback{next: next, log: log}
}

func (f *fallback) Run(ctx context.Context, transcript string) (string, error) {
	out, err := f.next.Run(ctx, transcript)
	if err != nil {
		f.log.Error(module, "Agent run failed, answering with fallback", map[string]interface{}{
			"error": err,
		})
		return FallbackReply, nil
	}
	return out, nil
}
