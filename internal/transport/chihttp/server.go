package chihttp

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/clarusedu/studybuddy/internal/domain"
	healthuc "github.com/clarusedu/studybuddy/internal/usecase/health"
	ingestuc "github.com/clarusedu/studybuddy/internal/usecase/ingest"
)

// maxUploadBytes caps a single multipart upload request.
const maxUploadBytes = 256 << 20

// errorHandler tries to handle a domain error. Returns true if handled.
type errorHandler func(w http.ResponseWriter, err error, msg string) bool

// ChatService answers a conversation.
type ChatService interface {
	Answer(ctx context.Context, messages []domain.Message) (string, error)
}

// IngestService accepts uploaded material.
type IngestService interface {
	IngestPDFs(ctx context.Context, files []ingestuc.File) (int, error)
	IngestImages(ctx context.Context, files []ingestuc.File) (int, error)
	IngestVideos(ctx context.Context, files []ingestuc.File) (int, error)
	IngestYouTube(ctx context.Context, url string) (int, error)
}

// AuthService manages accounts.
type AuthService interface {
	Signup(ctx context.Context, name, email, password string) error
	Login(ctx context.Context, email, password string) (domain.User, error)
}

// HealthService reports component health.
type HealthService interface {
	Check(ctx context.Context) healthuc.Report
}

// Server exposes the HTTP API.
type Server struct {
	chat          ChatService
	ingest        IngestService
	auth          AuthService
	health        HealthService
	logger        *zap.Logger
	errorHandlers []errorHandler
}

// NewServer creates an HTTP API server.
func NewServer(
	chat ChatService,
	ingest IngestService,
	auth AuthService,
	health HealthService,
	logger *zap.Logger,
) *Server {
	s := &Server{
		chat:   chat,
		ingest: ingest,
		auth:   auth,
		health: health,
		logger: logger,
	}
	s.errorHandlers = []errorHandler{
		sentinelHandler(domain.ErrNoMessages, http.StatusBadRequest, codeValidationFailed),
		sentinelHandler(domain.ErrEmailTaken, http.StatusBadRequest, codeEmailTaken),
		sentinelHandler(domain.ErrIncorrectEmail, http.StatusUnauthorized, codeIncorrectEmail),
		sentinelHandler(domain.ErrIncorrectPassword, http.StatusUnauthorized, codeIncorrectPassword),
		sentinelHandler(domain.ErrUnsupportedFormat, http.StatusBadRequest, codeUnsupportedFormat),
		sentinelHandler(domain.ErrEmptyText, http.StatusBadRequest, codeEmptyText),
		sentinelHandler(domain.ErrNotFound, http.StatusNotFound, codeNotFound),
		sentinelHandler(domain.ErrUpstream, http.StatusBadGateway, codeUpstreamError),
	}
	return s
}

// Routes registers all API routes on r.
func (s *Server) Routes(r chi.Router) {
	r.Post("/", s.Chat)
	r.Post("/signup", s.Signup)
	r.Post("/login", s.Login)
	r.Post("/documents", s.UploadDocuments)
	r.Post("/images", s.UploadImages)
	r.Post("/videos", s.UploadVideos)
	r.Post("/youtube", s.UploadYouTube)
	r.Get("/health", s.HealthCheck)
	r.Get("/metrics", s.Metrics)
}

// Chat handles POST /. The body is the conversation so far; the response is
// the same conversation with the assistant's answer appended.
func (s *Server) Chat(w http.ResponseWriter, r *http.Request) {
	var messages []domain.Message
	if err := json.NewDecoder(r.Body).Decode(&messages); err != nil {
		writeError(w, http.StatusBadRequest, codeBadRequest, "Invalid request body: "+err.Error())
		return
	}
	if len(messages) == 0 {
		writeError(w, http.StatusBadRequest, codeValidationFailed, "Messages are required")
		return
	}
	for i, m := range messages {
		if err := m.Validate(); err != nil {
			writeError(w, http.StatusBadRequest, codeValidationFailed,
				fmt.Sprintf("message %d: %s", i, err.Error()))
			return
		}
	}

	answer, err := s.chat.Answer(r.Context(), messages)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}

	messages = append(messages, domain.Message{Role: domain.RoleAssistant, Content: answer})
	writeJSON(w, http.StatusOK, messageResponse{Messages: messages})
}

// Signup handles POST /signup.
func (s *Server) Signup(w http.ResponseWriter, r *http.Request) {
	var req signupRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, codeBadRequest, "Invalid request body: "+err.Error())
		return
	}
	if req.Name == "" || req.Email == "" || req.Password == "" {
		writeError(w, http.StatusBadRequest, codeValidationFailed, "name, email and password are required")
		return
	}

	if err := s.auth.Signup(r.Context(), req.Name, req.Email, req.Password); err != nil {
		s.handleDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, basicResponse{Message: "Signup successful"})
}

// Login handles POST /login.
func (s *Server) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, codeBadRequest, "Invalid request body: "+err.Error())
		return
	}
	if req.Email == "" || req.Password == "" {
		writeError(w, http.StatusBadRequest, codeValidationFailed, "email and password are required")
		return
	}

	if _, err := s.auth.Login(r.Context(), req.Email, req.Password); err != nil {
		s.handleDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, basicResponse{Message: "Login successful"})
}

// UploadDocuments handles POST /documents (multipart, field "files").
func (s *Server) UploadDocuments(w http.ResponseWriter, r *http.Request) {
	s.uploadFiles(w, r, s.ingest.IngestPDFs, "document")
}

// UploadImages handles POST /images.
func (s *Server) UploadImages(w http.ResponseWriter, r *http.Request) {
	s.uploadFiles(w, r, s.ingest.IngestImages, "image")
}

// UploadVideos handles POST /videos.
func (s *Server) UploadVideos(w http.ResponseWriter, r *http.Request) {
	s.uploadFiles(w, r, s.ingest.IngestVideos, "video")
}

// UploadYouTube handles POST /youtube. The URL comes from the "url" query
// parameter or a JSON body.
func (s *Server) UploadYouTube(w http.ResponseWriter, r *http.Request) {
	url := r.URL.Query().Get("url")
	if url == "" {
		var req youtubeRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err == nil {
			url = req.URL
		}
	}
	if url == "" {
		writeError(w, http.StatusBadRequest, codeValidationFailed, "url is required")
		return
	}

	if _, err := s.ingest.IngestYouTube(r.Context(), url); err != nil {
		s.handleDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, basicResponse{Message: url + " uploaded successfully"})
}

// HealthCheck handles GET /health.
func (s *Server) HealthCheck(w http.ResponseWriter, r *http.Request) {
	report := s.health.Check(r.Context())

	httpStatus := http.StatusOK
	if report.Status != healthuc.Healthy {
		httpStatus = http.StatusServiceUnavailable
	}

	writeJSON(w, httpStatus, healthResponse{
		Status: string(report.Status),
		Checks: report.Checks,
	})
}

// Metrics handles GET /metrics.
func (s *Server) Metrics(w http.ResponseWriter, r *http.Request) {
	promhttp.Handler().ServeHTTP(w, r)
}

type ingestFunc func(ctx context.Context, files []ingestuc.File) (int, error)

func (s *Server) uploadFiles(w http.ResponseWriter, r *http.Request, ingest ingestFunc, noun string) {
	files, err := parseUpload(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, codeBadRequest, err.Error())
		return
	}
	if len(files) == 0 {
		writeError(w, http.StatusBadRequest, codeValidationFailed, "at least one file is required")
		return
	}

	if _, err := ingest(r.Context(), files); err != nil {
		s.handleDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, basicResponse{
		Message: fmt.Sprintf("%d %s(s) uploaded successfully", len(files), noun),
	})
}

func parseUpload(r *http.Request) ([]ingestuc.File, error) {
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		return nil, fmt.Errorf("parse multipart form: %w", err)
	}

	headers := r.MultipartForm.File["files"]
	files := make([]ingestuc.File, 0, len(headers))
	for _, fh := range headers {
		f, err := fh.Open()
		if err != nil {
			return nil, fmt.Errorf("open %s: %w", fh.Filename, err)
		}
		data, err := io.ReadAll(f)
		_ = f.Close()
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", fh.Filename, err)
		}
		files = append(files, ingestuc.File{Name: fh.Filename, Data: data})
	}
	return files, nil
}

func (s *Server) handleDomainError(w http.ResponseWriter, err error) {
	s.logger.Warn("domain error", zap.Error(err))
	msg := safeDomainMessage(err)
	for _, h := range s.errorHandlers {
		if h(w, err, msg) {
			return
		}
	}
	s.logger.Error("internal error", zap.Error(err))
	writeError(w, http.StatusInternalServerError, codeInternalError, "internal error")
}
