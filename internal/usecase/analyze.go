package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	obsadapter "github.com/4laawi/recruit-assistant/internal/adapter/observability"
	"github.com/4laawi/recruit-assistant/internal/analysis"
	"github.com/4laawi/recruit-assistant/internal/domain"
)

// AnalyzeService scores a resume with the primary inference provider and
// falls back to chat models tried one at a time in Models order.
type AnalyzeService struct {
	Primary   domain.AnalysisProvider
	Secondary domain.CompletionProvider
	Models    []string
	Timeout   time.Duration
}

// NewAnalyzeService constructs an AnalyzeService.
func NewAnalyzeService(primary domain.AnalysisProvider, secondary domain.CompletionProvider, models []string, timeout time.Duration) AnalyzeService {
	return AnalyzeService{Primary: primary, Secondary: secondary, Models: models, Timeout: timeout}
}

// Analyze returns a normalized result tagged with the provider that produced it.
func (s AnalyzeService) Analyze(ctx context.Context, resumeText string, job domain.JobRequirements) (domain.AnalysisResult, error) {
	const capability = domain.CapabilityAnalysis
	if strings.TrimSpace(resumeText) == "" {
		obsadapter.RecordPipelineOutcome(string(capability), outcomeInvalid)
		return domain.AnalysisResult{}, fmt.Errorf("%w: resume text is empty", domain.ErrInvalidArgument)
	}
	ctx, lg := beginCall(ctx, capability)

	lg.Info("trying primary", slog.String("provider", s.Primary.Name()))
	res, primaryErr := s.primary(ctx, resumeText, job)
	if primaryErr == nil {
		obsadapter.RecordPipelineOutcome(string(capability), outcomePrimary)
		obsadapter.ObserveAnalysisScore(string(domain.ProviderPrimary), res.Score)
		return res, nil
	}
	if fatal(ctx, primaryErr) {
		obsadapter.RecordPipelineOutcome(string(capability), fatalOutcome(primaryErr))
		return domain.AnalysisResult{}, fmt.Errorf("op=usecase.Analyze: %w", primaryErr)
	}

	obsadapter.RecordFallback(string(capability))
	lg.Warn("primary failed, trying secondary",
		slog.String("provider", s.Secondary.Name()),
		slog.String("reason", primaryErr.Error()))
	res, secondaryErr := s.secondary(ctx, lg, resumeText, job)
	if secondaryErr == nil {
		obsadapter.RecordPipelineOutcome(string(capability), outcomeSecondary)
		obsadapter.ObserveAnalysisScore(string(domain.ProviderSecondary), res.Score)
		return res, nil
	}
	if fatal(ctx, secondaryErr) {
		obsadapter.RecordPipelineOutcome(string(capability), fatalOutcome(secondaryErr))
		return domain.AnalysisResult{}, fmt.Errorf("op=usecase.Analyze: %w", secondaryErr)
	}

	obsadapter.RecordPipelineOutcome(string(capability), outcomeUnavailable)
	lg.Error("all analysis providers failed",
		slog.String("primary_reason", primaryErr.Error()),
		slog.String("secondary_reason", secondaryErr.Error()))
	return domain.AnalysisResult{}, &domain.BothProvidersUnavailableError{
		Capability: capability,
		Primary:    primaryErr,
		Secondary:  secondaryErr,
	}
}

func (s AnalyzeService) primary(ctx context.Context, resumeText string, job domain.JobRequirements) (domain.AnalysisResult, error) {
	var payload map[string]any
	start := time.Now()
	err := attempt(ctx, domain.CapabilityAnalysis, s.Primary.Name(), s.Timeout, "analyze", func(callCtx context.Context) error {
		p, err := s.Primary.Analyze(callCtx, resumeText, job)
		if err != nil {
			return err
		}
		payload = p
		return nil
	})
	if err != nil {
		if fatal(ctx, err) {
			return domain.AnalysisResult{}, err
		}
		return domain.AnalysisResult{}, providerFailure(domain.CapabilityAnalysis, s.Primary.Name(), err)
	}
	elapsed := time.Since(start).Milliseconds()

	res := analysis.Normalize(payload)
	res.ProviderUsed = domain.ProviderPrimary
	res.ProcessingTimeMs = &elapsed
	return res, nil
}

// secondary walks the model list; the first model that returns content wins,
// even when that content cannot be parsed.
func (s AnalyzeService) secondary(ctx context.Context, lg *slog.Logger, resumeText string, job domain.JobRequirements) (domain.AnalysisResult, error) {
	models := s.Models
	if len(models) == 0 {
		return domain.AnalysisResult{}, domain.NewProviderError(domain.CapabilityAnalysis, s.Secondary.Name(), 0,
			domain.ErrUpstreamProvider, "no models configured")
	}
	prompt := analysis.BuildPrompt(resumeText, job)

	var failures []error
	for i, model := range models {
		var content string
		err := attempt(ctx, domain.CapabilityAnalysis, s.Secondary.Name(), s.Timeout, "chat", func(callCtx context.Context) error {
			c, err := s.Secondary.Complete(callCtx, model, prompt)
			if err != nil {
				return err
			}
			content = c
			return nil
		})
		if err == nil && strings.TrimSpace(content) == "" {
			err = domain.NewProviderError(domain.CapabilityAnalysis, s.Secondary.Name(), 0, domain.ErrEmptyResult, "empty completion")
		}
		if err != nil {
			if fatal(ctx, err) {
				return domain.AnalysisResult{}, err
			}
			lg.Warn("model failed",
				slog.String("provider", s.Secondary.Name()),
				slog.String("model", model),
				slog.Int("model_index", i),
				slog.String("reason", err.Error()))
			failures = append(failures, fmt.Errorf("%s: %w", model, err))
			continue
		}

		res := analysis.MapCompletion(content)
		res.ProviderUsed = domain.ProviderSecondary
		res.Model = model
		return res, nil
	}

	return domain.AnalysisResult{}, domain.NewProviderError(domain.CapabilityAnalysis, s.Secondary.Name(), 0,
		errors.Join(failures...), fmt.Sprintf("all %d models failed; last: %v", len(models), failures[len(failures)-1]))
}
