package usecase_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/4laawi/recruit-assistant/internal/domain"
	"github.com/4laawi/recruit-assistant/internal/usecase"
)

type extractFunc func(context.Context, domain.ExtractionRequest) (domain.ExtractionResult, error)

func (f extractFunc) ExtractText(ctx context.Context, r domain.ExtractionRequest) (domain.ExtractionResult, error) {
	return f(ctx, r)
}

type analyzeFunc func(context.Context, string, domain.JobRequirements) (domain.AnalysisResult, error)

func (f analyzeFunc) Analyze(ctx context.Context, text string, j domain.JobRequirements) (domain.AnalysisResult, error) {
	return f(ctx, text, j)
}

func TestProcess_ExtractThenAnalyze(t *testing.T) {
	var analyzed string
	svc := usecase.NewProcessService(
		extractFunc(func(context.Context, domain.ExtractionRequest) (domain.ExtractionResult, error) {
			return domain.ExtractionResult{Text: "Jane\x00 Doe\n\n\n\nGo", ProviderUsed: domain.ProviderSecondary}, nil
		}),
		analyzeFunc(func(_ context.Context, text string, _ domain.JobRequirements) (domain.AnalysisResult, error) {
			analyzed = text
			return domain.AnalysisResult{Score: 75, ProviderUsed: domain.ProviderPrimary}, nil
		}),
	)

	res, err := svc.Process(context.Background(), usecase.ProcessRequest{Document: doc, Job: job})
	require.NoError(t, err)
	assert.Equal(t, "Jane Doe\n\nGo", analyzed)
	assert.Equal(t, domain.ProviderSecondary, res.OCRUsed)
	assert.Equal(t, domain.ProviderPrimary, res.Analysis.ProviderUsed)
	assert.Equal(t, float64(75), res.Analysis.Score)
}

func TestProcess_BlankTextStops(t *testing.T) {
	called := false
	svc := usecase.NewProcessService(
		extractFunc(func(context.Context, domain.ExtractionRequest) (domain.ExtractionResult, error) {
			return domain.ExtractionResult{Text: "\x01\x02", ProviderUsed: domain.ProviderPrimary}, nil
		}),
		analyzeFunc(func(context.Context, string, domain.JobRequirements) (domain.AnalysisResult, error) {
			called = true
			return domain.AnalysisResult{}, nil
		}),
	)
	_, err := svc.Process(context.Background(), usecase.ProcessRequest{Document: doc, Job: job})
	assert.ErrorIs(t, err, domain.ErrEmptyResult)
	assert.False(t, called)
}

func TestProcess_PropagatesExtractionFailure(t *testing.T) {
	svc := usecase.NewProcessService(
		extractFunc(func(context.Context, domain.ExtractionRequest) (domain.ExtractionResult, error) {
			return domain.ExtractionResult{}, &domain.BothProvidersUnavailableError{Capability: domain.CapabilityOCR}
		}),
		nil,
	)
	_, err := svc.Process(context.Background(), usecase.ProcessRequest{Document: doc, Job: job})
	assert.ErrorIs(t, err, domain.ErrBothProvidersUnavailable)
}

func TestProcess_RequiresJobTitle(t *testing.T) {
	svc := usecase.NewProcessService(nil, nil)
	_, err := svc.Process(context.Background(), usecase.ProcessRequest{Document: doc})
	assert.ErrorIs(t, err, domain.ErrInvalidArgument)
}
