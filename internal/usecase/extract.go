package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	obsadapter "github.com/4laawi/recruit-assistant/internal/adapter/observability"
	"github.com/4laawi/recruit-assistant/internal/domain"
)

// ExtractService tries the primary OCR provider, then the secondary one.
// Each attempt is bounded by Timeout; stages never overlap.
type ExtractService struct {
	Primary   domain.TextProvider
	Secondary domain.TextProvider
	Timeout   time.Duration
}

// NewExtractService constructs an ExtractService.
func NewExtractService(primary, secondary domain.TextProvider, timeout time.Duration) ExtractService {
	return ExtractService{Primary: primary, Secondary: secondary, Timeout: timeout}
}

// ExtractText returns the first non-blank text. When both providers fail it
// returns *domain.BothProvidersUnavailableError; configuration and input
// errors are returned as is without trying the secondary provider.
func (s ExtractService) ExtractText(ctx context.Context, req domain.ExtractionRequest) (domain.ExtractionResult, error) {
	const capability = domain.CapabilityOCR
	if err := req.Validate(); err != nil {
		obsadapter.RecordPipelineOutcome(string(capability), outcomeInvalid)
		return domain.ExtractionResult{}, err
	}
	ctx, lg := beginCall(ctx, capability)

	lg.Info("trying primary", slog.String("provider", s.Primary.Name()))
	text, primaryErr := s.try(ctx, s.Primary, req)
	if primaryErr == nil {
		obsadapter.RecordPipelineOutcome(string(capability), outcomePrimary)
		return domain.ExtractionResult{Text: text, ProviderUsed: domain.ProviderPrimary}, nil
	}
	if fatal(ctx, primaryErr) {
		obsadapter.RecordPipelineOutcome(string(capability), fatalOutcome(primaryErr))
		return domain.ExtractionResult{}, fmt.Errorf("op=usecase.ExtractText: %w", primaryErr)
	}

	obsadapter.RecordFallback(string(capability))
	lg.Warn("primary failed, trying secondary",
		slog.String("provider", s.Secondary.Name()),
		slog.String("reason", primaryErr.Error()))
	text, secondaryErr := s.try(ctx, s.Secondary, req)
	if secondaryErr == nil {
		obsadapter.RecordPipelineOutcome(string(capability), outcomeSecondary)
		return domain.ExtractionResult{Text: text, ProviderUsed: domain.ProviderSecondary}, nil
	}
	if fatal(ctx, secondaryErr) {
		obsadapter.RecordPipelineOutcome(string(capability), fatalOutcome(secondaryErr))
		return domain.ExtractionResult{}, fmt.Errorf("op=usecase.ExtractText: %w", secondaryErr)
	}

	obsadapter.RecordPipelineOutcome(string(capability), outcomeUnavailable)
	lg.Error("all ocr providers failed",
		slog.String("primary_reason", primaryErr.Error()),
		slog.String("secondary_reason", secondaryErr.Error()))
	return domain.ExtractionResult{}, &domain.BothProvidersUnavailableError{
		Capability: capability,
		Primary:    primaryErr,
		Secondary:  secondaryErr,
	}
}

func (s ExtractService) try(ctx context.Context, p domain.TextProvider, req domain.ExtractionRequest) (string, error) {
	var text string
	err := attempt(ctx, domain.CapabilityOCR, p.Name(), s.Timeout, "extract", func(callCtx context.Context) error {
		t, err := p.ExtractText(callCtx, req)
		if err != nil {
			return err
		}
		if strings.TrimSpace(t) == "" {
			return domain.NewProviderError(domain.CapabilityOCR, p.Name(), 0, domain.ErrEmptyResult, "blank text")
		}
		text = t
		return nil
	})
	if err != nil {
		if fatal(ctx, err) {
			return "", err
		}
		return "", providerFailure(domain.CapabilityOCR, p.Name(), err)
	}
	return text, nil
}
