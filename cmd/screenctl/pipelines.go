package main

import (
	"context"
	"encoding/base64"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/4laawi/recruit-assistant/internal/adapter/ai/inference"
	"github.com/4laawi/recruit-assistant/internal/adapter/ai/openrouter"
	"github.com/4laawi/recruit-assistant/internal/adapter/textextractor/gateway"
	"github.com/4laawi/recruit-assistant/internal/adapter/textextractor/huawei"
	"github.com/4laawi/recruit-assistant/internal/adapter/textextractor/ocrspace"
	"github.com/4laawi/recruit-assistant/internal/config"
	"github.com/4laawi/recruit-assistant/internal/domain"
	"github.com/4laawi/recruit-assistant/internal/usecase"
)

var (
	language   string
	direct     bool
	resumeFile string
	jobTitle   string
	jobSkills  string
	jobLevel   string
	jobDesc    string
)

var extractCmd = &cobra.Command{
	Use:   "extract FILE",
	Short: "OCR a document with primary/secondary fallback",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		req, err := documentRequest(args[0])
		if err != nil {
			return err
		}
		res, err := extractService(cfg).ExtractText(cmd.Context(), req)
		if err != nil {
			return err
		}
		return printJSON(cmd.OutOrStdout(), res)
	},
}

var analyzeCmd = &cobra.Command{
	Use:   "analyze",
	Short: "Score resume text against a job with primary/secondary fallback",
	RunE: func(cmd *cobra.Command, _ []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		text, err := os.ReadFile(resumeFile)
		if err != nil {
			return fmt.Errorf("reading resume text: %w", err)
		}
		res, err := analyzeService(cfg).Analyze(cmd.Context(), string(text), jobFromFlags())
		if err != nil {
			return err
		}
		return printJSON(cmd.OutOrStdout(), res)
	},
}

var processCmd = &cobra.Command{
	Use:   "process FILE",
	Short: "OCR a document, then score it against a job",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		doc, err := documentRequest(args[0])
		if err != nil {
			return err
		}
		svc := usecase.NewProcessService(extractService(cfg), analyzeService(cfg))
		res, err := svc.Process(cmd.Context(), usecase.ProcessRequest{Document: doc, Job: jobFromFlags()})
		if err != nil {
			return err
		}
		return printJSON(cmd.OutOrStdout(), res)
	},
}

func init() {
	for _, c := range []*cobra.Command{extractCmd, processCmd} {
		c.Flags().StringVar(&language, "language", "", "OCR language hint (default from OCR_LANGUAGE)")
		c.Flags().BoolVar(&direct, "direct", false, "call the cloud OCR API directly instead of the /v1/ocr gateway")
	}
	analyzeCmd.Flags().StringVar(&resumeFile, "resume", "", "file holding the resume text")
	_ = analyzeCmd.MarkFlagRequired("resume")
	for _, c := range []*cobra.Command{analyzeCmd, processCmd} {
		c.Flags().StringVar(&jobTitle, "title", "", "job title")
		c.Flags().StringVar(&jobSkills, "skills", "", "comma-separated required skills")
		c.Flags().StringVar(&jobLevel, "experience", "", "experience level or years")
		c.Flags().StringVar(&jobDesc, "description", "", "job description")
		_ = c.MarkFlagRequired("title")
	}
}

func documentRequest(path string) (domain.ExtractionRequest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return domain.ExtractionRequest{}, fmt.Errorf("reading document: %w", err)
	}
	return domain.ExtractionRequest{
		DocumentBase64: base64.StdEncoding.EncodeToString(data),
		FilenameHint:   filepath.Base(path),
		Language:       language,
	}, nil
}

func jobFromFlags() domain.JobRequirements {
	return domain.JobRequirements{
		Title:           strings.TrimSpace(jobTitle),
		RequiredSkills:  domain.ParseSkills(jobSkills),
		ExperienceLevel: domain.ExperienceLevel(strings.TrimSpace(jobLevel)),
		Description:     strings.TrimSpace(jobDesc),
	}
}

func extractService(cfg config.Config) usecase.ExtractService {
	var primary domain.TextProvider = gateway.New(cfg)
	if direct {
		primary = directOCR{huawei.New(cfg)}
	}
	return usecase.NewExtractService(primary, ocrspace.New(cfg), cfg.ProviderTimeout)
}

func analyzeService(cfg config.Config) usecase.AnalyzeService {
	return usecase.NewAnalyzeService(inference.New(cfg), openrouter.New(cfg), cfg.Models(), cfg.ProviderTimeout)
}

// directOCR lets the cloud OCR client stand in for the gateway adapter.
type directOCR struct{ c *huawei.Client }

func (d directOCR) Name() string { return huawei.ProviderName }

func (d directOCR) ExtractText(ctx context.Context, req domain.ExtractionRequest) (string, error) {
	res, err := d.c.Recognize(ctx, strings.TrimSpace(req.DocumentBase64))
	if err != nil {
		return "", err
	}
	return res.BestText(), nil
}
