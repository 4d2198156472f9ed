package api

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"frontdesk-backend/internal/directory"
	"frontdesk-backend/pkg/api"
)

type AuthService struct {
	directory *directory.Directory
}

func NewAuthService(dir *directory.Directory) *AuthService {
	return &AuthService{directory: dir}
}

func (s *AuthService) AddRoutes(r chi.Router) {
	WithTimeout(r).Post("/auth/verify", RestHandler(s.Verify))
}

func (s *AuthService) Verify(r *http.Request) (any, error) {
	req, err := ParseRequest[api.VerifyRequest](r)
	if err != nil {
		return nil, err
	}

	result, err := s.directory.Verify(req.Phone, req.Code)
	if err != nil {
		if errors.Is(err, directory.ErrInvalidPhone) || errors.Is(err, directory.ErrInvalidCode) {
			return nil, CodedError(http.StatusBadRequest, err)
		}
		return nil, CodedErrorf(http.StatusInternalServerError, "unable to verify phone number")
	}

	slog.Info("parent verification", "user_type", result.UserType, "matched", result.ChildData != nil)

	return api.VerifyResponse{
		UserType:  result.UserType,
		ChildData: result.ChildData,
		Greeting:  result.Greeting,
	}, nil
}
