package llm

import (
	"context"
	"errors"
	"time"

	"medboard_backend/pkg/monitoring"
	"medboard_backend/pkg/tracing"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// ObservedProvider records each call as a structured log line, Prometheus
// metrics and a trace span.
type ObservedProvider struct {
	inner Provider
	name  string
	log   *zap.Logger
}

func WithObservation(p Provider, providerName string, log *zap.Logger) Provider {
	if log == nil {
		log = zap.NewNop()
	}
	return &ObservedProvider{inner: p, name: providerName, log: log}
}

func (o *ObservedProvider) Generate(ctx context.Context, req Request) (*Response, error) {
	purpose := PurposeFrom(ctx)
	requestID := uuid.NewString()

	ctx, span := tracing.StartLLMSpan(ctx, tracing.LLMCall{
		Provider:  o.name,
		Model:     o.inner.ModelID(),
		Purpose:   purpose,
		RequestID: requestID,
	})

	start := time.Now()
	resp, err := o.inner.Generate(ctx, req)
	elapsed := time.Since(start)

	outcome := outcomeOf(err)
	monitoring.LLMRequestCounter.WithLabelValues(o.name, purpose, outcome).Inc()
	monitoring.LLMRequestDuration.WithLabelValues(o.name, purpose).Observe(elapsed.Seconds())

	fields := []zap.Field{
		zap.String("request_id", requestID),
		zap.String("provider", o.name),
		zap.String("model", o.inner.ModelID()),
		zap.String("purpose", purpose),
		zap.Duration("latency", elapsed),
	}

	if err != nil {
		tracing.EndLLMSpan(span, 0, 0, outcome, err)
		o.log.Warn("LLM request failed", append(fields, zap.String("outcome", outcome), zap.Error(err))...)
		return nil, err
	}

	monitoring.LLMTokens.WithLabelValues(o.name, "input").Add(float64(resp.Usage.InputTokens))
	monitoring.LLMTokens.WithLabelValues(o.name, "output").Add(float64(resp.Usage.OutputTokens))
	tracing.EndLLMSpan(span, resp.Usage.InputTokens, resp.Usage.OutputTokens, outcome, nil)
	o.log.Info("LLM request completed", append(fields,
		zap.Int("input_tokens", resp.Usage.InputTokens),
		zap.Int("output_tokens", resp.Usage.OutputTokens),
		zap.String("stop_reason", resp.StopReason),
	)...)
	return resp, nil
}

func (o *ObservedProvider) ModelID() string {
	return o.inner.ModelID()
}

func outcomeOf(err error) string {
	if err == nil {
		return "success"
	}
	var (
		rl      *ErrRateLimit
		invalid *ErrInvalidResponse
		maxTok  *ErrMaxTokensExceeded
	)
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return "timeout"
	case errors.Is(err, context.Canceled):
		return "canceled"
	case errors.As(err, &rl):
		return "rate_limited"
	case errors.As(err, &invalid):
		return "invalid_response"
	case errors.As(err, &maxTok):
		return "max_tokens"
	default:
		return "unavailable"
	}
}
