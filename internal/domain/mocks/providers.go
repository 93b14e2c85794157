// Package mocks holds testify mocks of the domain ports.
package mocks

import (
	"github.com/stretchr/testify/mock"

	"github.com/4laawi/recruit-assistant/internal/domain"
)

// MockTextProvider is a mock of domain.TextProvider.
type MockTextProvider struct {
	mock.Mock
}

// Name implements domain.TextProvider.
func (m *MockTextProvider) Name() string {
	args := m.Called()
	return args.String(0)
}

// ExtractText implements domain.TextProvider.
func (m *MockTextProvider) ExtractText(ctx domain.Context, req domain.ExtractionRequest) (string, error) {
	args := m.Called(ctx, req)
	return args.String(0), args.Error(1)
}

// MockAnalysisProvider is a mock of domain.AnalysisProvider.
type MockAnalysisProvider struct {
	mock.Mock
}

// Name implements domain.AnalysisProvider.
func (m *MockAnalysisProvider) Name() string {
	args := m.Called()
	return args.String(0)
}

// Analyze implements domain.AnalysisProvider.
func (m *MockAnalysisProvider) Analyze(ctx domain.Context, resumeText string, job domain.JobRequirements) (map[string]any, error) {
	args := m.Called(ctx, resumeText, job)
	var out map[string]any
	if v := args.Get(0); v != nil {
		out = v.(map[string]any)
	}
	return out, args.Error(1)
}

// MockCompletionProvider is a mock of domain.CompletionProvider.
type MockCompletionProvider struct {
	mock.Mock
}

// Name implements domain.CompletionProvider.
func (m *MockCompletionProvider) Name() string {
	args := m.Called()
	return args.String(0)
}

// Complete implements domain.CompletionProvider.
func (m *MockCompletionProvider) Complete(ctx domain.Context, model, prompt string) (string, error) {
	args := m.Called(ctx, model, prompt)
	return args.String(0), args.Error(1)
}

var (
	_ domain.TextProvider       = (*MockTextProvider)(nil)
	_ domain.AnalysisProvider   = (*MockAnalysisProvider)(nil)
	_ domain.CompletionProvider = (*MockCompletionProvider)(nil)
)
