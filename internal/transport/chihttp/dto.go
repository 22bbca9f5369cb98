package chihttp

import (
	"github.com/clarusedu/studybuddy/internal/domain"
	healthuc "github.com/clarusedu/studybuddy/internal/usecase/health"
)

type messageResponse struct {
	Messages []domain.Message `json:"messages"`
}

type basicResponse struct {
	Message string `json:"message"`
}

type signupRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type youtubeRequest struct {
	URL string `json:"url"`
}

type healthResponse struct {
	Status string                          `json:"status"`
	Checks map[string]healthuc.CheckResult `json:"checks"`
}

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}
