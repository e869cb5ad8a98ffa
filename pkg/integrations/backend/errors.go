package backend

import (
	"context"
	"errors"
	"net/http"

	bperrors "github.com/blockprint/blockprint/pkg/errors"
	"github.com/blockprint/blockprint/pkg/integrations"
)

const (
	msgInvalidImage   = "Invalid image. Please upload a PNG, JPG, or WebP under 10MB."
	msgAnalyzeFailed  = "We couldn't analyze this image. Try a clearer photo or different style."
	msgGenerateFailed = "Something went wrong. Please try again."
	msgInvalidRequest = "Invalid request. Check your blueprint and try again."
	msgServerDown     = "Minecraft server is unavailable. Check RCON settings and try again."
	msgBuildFailed    = "Build failed. Please try again."
	msgBackendDown    = "Backend is not available"
)

// blueprintError turns a failed /api/blueprint call into a user-facing error.
func blueprintError(err error) error {
	return classify(err, func(status int) string {
		switch {
		case status == http.StatusBadRequest:
			return msgInvalidImage
		case status == http.StatusInternalServerError:
			return msgAnalyzeFailed
		default:
			return msgGenerateFailed
		}
	})
}

// buildError turns a failed /api/build call into a user-facing error.
func buildError(err error) error {
	return classify(err, func(status int) string {
		switch {
		case status == http.StatusBadRequest:
			return msgInvalidRequest
		case status >= 500:
			return msgServerDown
		default:
			return msgBuildFailed
		}
	})
}

// classify prefers the server's detail message and falls back to the
// status default. Cancellation passes through untouched.
func classify(err error, fallback func(status int) string) error {
	switch {
	case errors.Is(err, context.Canceled):
		return err
	case errors.Is(err, context.DeadlineExceeded):
		return bperrors.Wrap(bperrors.ErrCodeTimeout, err, "%s", msgBackendDown)
	}

	var se *integrations.StatusError
	if !errors.As(err, &se) {
		return bperrors.Wrap(bperrors.ErrCodeNetwork, err, "%s", msgBackendDown)
	}
	msg := se.Detail
	if msg == "" {
		msg = fallback(se.Code)
	}
	return bperrors.Wrap(statusCode(se.Code), err, "%s", msg)
}

func statusCode(status int) bperrors.Code {
	switch {
	case status == http.StatusBadRequest, status == http.StatusUnprocessableEntity:
		return bperrors.ErrCodeInvalidInput
	case status == http.StatusNotFound:
		return bperrors.ErrCodeNotFound
	case status == http.StatusTooManyRequests:
		return bperrors.ErrCodeRateLimited
	case status >= 500:
		return bperrors.ErrCodeNetwork
	default:
		return bperrors.ErrCodeInternal
	}
}

// userError strips the code prefix so trackers show the plain message.
func userError(err error) error {
	if errors.Is(err, context.Canceled) {
		return err
	}
	return errors.New(bperrors.UserMessage(err))
}
