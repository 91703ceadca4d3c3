package handlers

import (
	"errors"
	"net/http"

	"go.uber.org/zap"

	"github.com/lee-tech/workforce-admin/internal/apperrors"
	"github.com/lee-tech/workforce-admin/internal/logging"
	"github.com/lee-tech/workforce-admin/internal/service"
	"github.com/lee-tech/workforce-admin/internal/upstream"
	"github.com/lee-tech/workforce-admin/internal/validation"
)

// toAppError maps service, validation and platform failures to the error the
// dashboard renders: field errors inline, everything else as a toast.
func toAppError(err error) *apperrors.Error {
	if appErr, ok := apperrors.As(err); ok {
		return appErr
	}
	if fields, ok := validation.AsFieldErrors(err); ok {
		return apperrors.ValidationError("Please correct the highlighted fields").WithFields(fields)
	}

	switch {
	case errors.Is(err, service.ErrLicenseNotFound):
		return apperrors.NotFound("license")
	case errors.Is(err, service.ErrUserNotFound):
		return apperrors.NotFound("user")
	case errors.Is(err, service.ErrRoleNotFound):
		return apperrors.NotFound("role")
	case errors.Is(err, service.ErrInvalidCredentials):
		return apperrors.Unauthorized("Invalid username or password")
	case errors.Is(err, service.ErrSessionExpired):
		return apperrors.Unauthorized("Session expired")
	case errors.Is(err, service.ErrInvalidToken):
		return apperrors.Unauthorized("Invalid or expired session")
	}

	var apiErr *upstream.APIError
	if errors.As(err, &apiErr) {
		return platformError(apiErr)
	}

	return apperrors.Internal("An unexpected error occurred").WithInternal(err)
}

func platformError(apiErr *upstream.APIError) *apperrors.Error {
	message := apiErr.Message
	switch {
	case apiErr.Status == 0:
		return apperrors.BadGateway("The platform API could not be reached").WithInternal(apiErr)
	case apiErr.Status >= http.StatusInternalServerError:
		return apperrors.BadGateway(message).WithInternal(apiErr)
	case apiErr.Status == http.StatusUnauthorized:
		return apperrors.Unauthorized(message).WithInternal(apiErr)
	case apiErr.Status == http.StatusForbidden:
		return apperrors.Forbidden(message).WithInternal(apiErr)
	case upstream.IsNotFound(apiErr):
		return (&apperrors.Error{Status: http.StatusNotFound, Code: apperrors.CodeNotFound, Message: message}).WithInternal(apiErr)
	case upstream.IsConflict(apiErr):
		return apperrors.Conflict(message).WithInternal(apiErr)
	case upstream.IsRejected(apiErr):
		return apperrors.ValidationError(message).WithInternal(apiErr)
	default:
		return apperrors.BadGateway(message).WithInternal(apiErr)
	}
}

// writeError renders err and logs it when the fault is not the caller's.
func writeError(w http.ResponseWriter, r *http.Request, logger *zap.Logger, err error) {
	appErr := toAppError(err)
	if appErr.Status >= http.StatusInternalServerError && logger != nil {
		logger.Error("request failed",
			zap.String("request_id", logging.RequestID(r.Context())),
			zap.String("path", r.URL.Path),
			zap.Int("status", appErr.Status),
			zap.Error(err),
		)
	}
	appErr.WriteHTTP(w)
}
