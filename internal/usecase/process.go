package usecase

import (
	"context"
	"fmt"
	"strings"

	"github.com/4laawi/recruit-assistant/internal/domain"
	"github.com/4laawi/recruit-assistant/pkg/textx"
)

// TextExtractor is the extraction pipeline consumed by ProcessService.
type TextExtractor interface {
	ExtractText(ctx context.Context, req domain.ExtractionRequest) (domain.ExtractionResult, error)
}

// ResumeAnalyzer is the analysis pipeline consumed by ProcessService.
type ResumeAnalyzer interface {
	Analyze(ctx context.Context, resumeText string, job domain.JobRequirements) (domain.AnalysisResult, error)
}

// ProcessRequest is one candidate document and the job it is screened against.
type ProcessRequest struct {
	Document domain.ExtractionRequest `json:"document"`
	Job      domain.JobRequirements   `json:"job_requirements" validate:"required"`
}

// ProcessResult carries both pipeline outcomes.
type ProcessResult struct {
	ResumeText string                `json:"resume_text"`
	OCRUsed    domain.Provider       `json:"ocr_provider_used"`
	Analysis   domain.AnalysisResult `json:"analysis"`
}

// ProcessService extracts a document then analyzes the cleaned text.
type ProcessService struct {
	Extractor TextExtractor
	Analyzer  ResumeAnalyzer
}

// NewProcessService constructs a ProcessService.
func NewProcessService(e TextExtractor, a ResumeAnalyzer) ProcessService {
	return ProcessService{Extractor: e, Analyzer: a}
}

// Process runs extraction then analysis sequentially. OCR output that is
// blank once cleaned stops the flow with domain.ErrEmptyResult.
func (s ProcessService) Process(ctx context.Context, req ProcessRequest) (ProcessResult, error) {
	if strings.TrimSpace(req.Job.Title) == "" {
		return ProcessResult{}, fmt.Errorf("%w: job title is required", domain.ErrInvalidArgument)
	}
	ext, err := s.Extractor.ExtractText(ctx, req.Document)
	if err != nil {
		return ProcessResult{}, err
	}
	text := textx.Clean(ext.Text)
	if text == "" {
		return ProcessResult{}, fmt.Errorf("%w: extracted text is blank", domain.ErrEmptyResult)
	}
	res, err := s.Analyzer.Analyze(ctx, text, req.Job)
	if err != nil {
		return ProcessResult{}, err
	}
	return ProcessResult{ResumeText: text, OCRUsed: ext.ProviderUsed, Analysis: res}, nil
}
