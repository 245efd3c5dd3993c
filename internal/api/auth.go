package api

import (
	"errors"
	"log/slog"
	"net/http"

	"jobmatch-backend/internal/database"
	"jobmatch-backend/internal/email"
	"jobmatch-backend/internal/verification"
	"jobmatch-backend/pkg/api"
)

func (s *BackendService) RequestCode(r *http.Request) (any, error) {
	req, err := ParseRequest[api.RequestCodeRequest](r)
	if err != nil {
		return nil, err
	}
	address := database.NormalizeEmail(req.Email)
	if !validEmail(address) {
		return nil, CodedErrorf(http.StatusBadRequest, "invalid email address")
	}

	code, err := s.codes.Issue(address)
	if err != nil {
		slog.Error("error issuing verification code", "error", err)
		return nil, CodedErrorf(http.StatusInternalServerError, "failed to issue verification code")
	}

	if s.mailer != nil {
		subject, body := email.VerificationCodeBody(code)
		if err := s.mailer.Send(r.Context(), address, subject, body); err != nil {
			slog.Error("error sending verification code", "error", err)
			return nil, CodedErrorf(http.StatusBadGateway, "failed to send verification code")
		}
	}

	return nil, nil
}

func (s *BackendService) VerifyCode(r *http.Request) (any, error) {
	req, err := ParseRequest[api.VerifyCodeRequest](r)
	if err != nil {
		return nil, err
	}
	address := database.NormalizeEmail(req.Email)
	if !validEmail(address) || req.Code == "" {
		return nil, CodedErrorf(http.StatusBadRequest, "email and code are required")
	}

	if err := s.codes.Verify(address, req.Code); err != nil {
		if errors.Is(err, verification.ErrCodeExpired) {
			return nil, CodedErrorf(http.StatusUnauthorized, "verification code expired")
		}
		return nil, CodedErrorf(http.StatusUnauthorized, "verification code invalid")
	}

	user, err := database.GetOrCreateUser(r.Context(), s.db, address)
	if err != nil {
		slog.Error("error resolving user after verification", "error", err)
		return nil, CodedErrorf(http.StatusInternalServerError, "failed to resolve user")
	}

	return api.VerifyCodeResponse{UserId: user.Id, Email: user.Email}, nil
}
