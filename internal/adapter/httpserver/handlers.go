package httpserver

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/gabriel-vasile/mimetype"

	"github.com/4laawi/recruit-assistant/internal/adapter/textextractor/gateway"
	"github.com/4laawi/recruit-assistant/internal/adapter/textextractor/huawei"
	"github.com/4laawi/recruit-assistant/internal/config"
	"github.com/4laawi/recruit-assistant/internal/domain"
	"github.com/4laawi/recruit-assistant/internal/usecase"
)

// HeaderAPIUsed reports which side of a fallback pair served the response.
const HeaderAPIUsed = "x-api-used"

// Recognizer is the signed cloud OCR client behind the /v1/ocr gateway.
type Recognizer interface {
	Recognize(ctx context.Context, imageBase64 string) (huawei.Result, error)
}

// Processor runs extraction then analysis for one document.
type Processor interface {
	Process(ctx context.Context, req usecase.ProcessRequest) (usecase.ProcessResult, error)
}

// Server aggregates handlers dependencies.
type Server struct {
	Cfg       config.Config
	OCR       Recognizer
	Extractor usecase.TextExtractor
	Analyzer  usecase.ResumeAnalyzer
	Processor Processor
}

// NewServer constructs a Server with all pipelines wired.
func NewServer(cfg config.Config, ocr Recognizer, extractor usecase.TextExtractor, analyzer usecase.ResumeAnalyzer, processor Processor) *Server {
	return &Server{Cfg: cfg, OCR: ocr, Extractor: extractor, Analyzer: analyzer, Processor: processor}
}

// screenRequest is the body of POST /v1/screen.
type screenRequest struct {
	ResumeText string                 `json:"resume_text" validate:"required"`
	Job        domain.JobRequirements `json:"job_requirements" validate:"required"`
}

// allowedDocument is the upload allowlist for /v1/extract.
var allowedDocument = map[string]bool{
	"application/pdf": true,
	"image/png":       true,
	"image/jpeg":      true,
	"image/gif":       true,
	"image/bmp":       true,
	"image/tiff":      true,
	"image/webp":      true,
}

func (s *Server) maxBodyBytes() int64 {
	mb := s.Cfg.MaxUploadMB
	if mb <= 0 {
		mb = 10
	}
	// base64 inflates documents by a third
	return mb * 1024 * 1024 * 4 / 3
}

func (s *Server) maxUploadBytes() int64 {
	mb := s.Cfg.MaxUploadMB
	if mb <= 0 {
		mb = 10
	}
	return mb * 1024 * 1024
}

// OCRHandler is the signed-OCR gateway. It keeps the cloud credentials on the
// server side and is what the primary OCR adapter calls.
func (s *Server) OCRHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req gateway.OCRRequest
		if err := decodeJSON(w, r, s.maxBodyBytes(), &req); err != nil {
			writeError(w, r, err, nil)
			return
		}
		if details, err := validate(req); err != nil {
			writeError(w, r, fmt.Errorf("%w: image_base64 is required", domain.ErrInvalidArgument), details)
			return
		}
		res, err := s.OCR.Recognize(r.Context(), req.ImageBase64)
		if err != nil {
			if errors.Is(err, domain.ErrConfigurationMissing) || errors.Is(err, domain.ErrInvalidArgument) {
				writeError(w, r, err, nil)
				return
			}
			// every cloud failure is reported as unavailable
			writeError(w, r, fmt.Errorf("%w: %v", domain.ErrUpstreamProvider, err), nil)
			return
		}
		w.Header().Set(HeaderAPIUsed, string(domain.ProviderPrimary))
		writeJSON(w, http.StatusOK, gateway.OCRResponse{
			Success:        true,
			MarkdownResult: res.BestText(),
			RawResult:      res.Raw,
			UsedProvider:   domain.ProviderPrimary,
		})
	}
}

// ExtractHandler runs the extraction pipeline. It accepts a JSON
// ExtractionRequest or a multipart upload with a "file" part.
func (s *Server) ExtractHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req domain.ExtractionRequest
		if strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/form-data") {
			up, err := s.readUpload(w, r)
			if err != nil {
				writeError(w, r, err, nil)
				return
			}
			req = up
		} else {
			if err := decodeJSON(w, r, s.maxBodyBytes(), &req); err != nil {
				writeError(w, r, err, nil)
				return
			}
			if details, err := validate(req); err != nil {
				writeError(w, r, err, details)
				return
			}
		}
		res, err := s.Extractor.ExtractText(r.Context(), req)
		if err != nil {
			writeError(w, r, err, nil)
			return
		}
		w.Header().Set(HeaderAPIUsed, string(res.ProviderUsed))
		writeJSON(w, http.StatusOK, res)
	}
}

// readUpload turns a multipart "file" part into an ExtractionRequest after
// sniffing its content against the allowlist.
func (s *Server) readUpload(w http.ResponseWriter, r *http.Request) (domain.ExtractionRequest, error) {
	maxBytes := s.maxUploadBytes()
	r.Body = http.MaxBytesReader(w, r.Body, maxBytes+1024*1024)
	if err := r.ParseMultipartForm(maxBytes); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return domain.ExtractionRequest{}, fmt.Errorf("%w: payload too large (max %d MB)", domain.ErrInvalidArgument, s.Cfg.MaxUploadMB)
		}
		return domain.ExtractionRequest{}, fmt.Errorf("%w: %v", domain.ErrInvalidArgument, err)
	}
	f, h, err := r.FormFile("file")
	if err != nil {
		return domain.ExtractionRequest{}, fmt.Errorf("%w: file is required", domain.ErrInvalidArgument)
	}
	defer func() { _ = f.Close() }()
	data, err := io.ReadAll(f)
	if err != nil {
		return domain.ExtractionRequest{}, fmt.Errorf("%w: read file: %v", domain.ErrInvalidArgument, err)
	}
	if len(data) == 0 {
		return domain.ExtractionRequest{}, fmt.Errorf("%w: file is empty", domain.ErrInvalidArgument)
	}
	mt := mimetype.Detect(data)
	if !allowedDocument[mt.String()] {
		return domain.ExtractionRequest{}, fmt.Errorf("%w: unsupported media type %s", domain.ErrInvalidArgument, mt.String())
	}
	return domain.ExtractionRequest{
		DocumentBase64: base64.StdEncoding.EncodeToString(data),
		FilenameHint:   h.Filename,
		Language:       r.FormValue("language"),
	}, nil
}

// ScreenHandler runs the analysis pipeline over already extracted text.
func (s *Server) ScreenHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req screenRequest
		if err := decodeJSON(w, r, s.maxBodyBytes(), &req); err != nil {
			writeError(w, r, err, nil)
			return
		}
		if details, err := validate(req); err != nil {
			writeError(w, r, err, details)
			return
		}
		res, err := s.Analyzer.Analyze(r.Context(), req.ResumeText, req.Job)
		if err != nil {
			writeError(w, r, err, nil)
			return
		}
		w.Header().Set(HeaderAPIUsed, string(res.ProviderUsed))
		writeJSON(w, http.StatusOK, res)
	}
}

// ProcessHandler extracts and analyzes one document.
func (s *Server) ProcessHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req usecase.ProcessRequest
		if err := decodeJSON(w, r, s.maxBodyBytes(), &req); err != nil {
			writeError(w, r, err, nil)
			return
		}
		if details, err := validate(req); err != nil {
			writeError(w, r, err, details)
			return
		}
		res, err := s.Processor.Process(r.Context(), req)
		if err != nil {
			writeError(w, r, err, nil)
			return
		}
		w.Header().Set(HeaderAPIUsed, string(res.Analysis.ProviderUsed))
		writeJSON(w, http.StatusOK, res)
	}
}

// HealthzHandler reports liveness.
func (s *Server) HealthzHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	}
}

// ReadyzHandler reports which provider credentials are configured. Missing
// configuration aborts a pipeline instead of falling back, so the service is
// ready only when every provider is configured.
func (s *Server) ReadyzHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) {
		providers := map[string]bool{
			"ocr_primary":        s.Cfg.RequireHuawei() == nil,
			"ocr_secondary":      s.Cfg.RequireOCRSpace() == nil,
			"analysis_primary":   s.Cfg.RequireInference() == nil,
			"analysis_secondary": s.Cfg.RequireOpenRouter() == nil,
		}
		ready := true
		for _, ok := range providers {
			ready = ready && ok
		}
		status, code := http.StatusOK, "ready"
		if !ready {
			status, code = http.StatusServiceUnavailable, "not_ready"
		}
		writeJSON(w, status, map[string]any{"status": code, "providers": providers})
	}
}
