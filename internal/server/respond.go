package server

import (
	"encoding/json"
	"errors"
	"net/http"

	bperrors "github.com/blockprint/blockprint/pkg/errors"
)

type errorResponse struct {
	Detail string `json:"detail"`
	Code   string `json:"code,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeDetail(w http.ResponseWriter, status int, code, detail string) {
	writeJSON(w, status, errorResponse{Detail: detail, Code: code})
}

// writeError answers with the status matching err's code. Internal errors
// are logged and reported without their cause.
func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	code := bperrors.GetCode(err)
	status := statusFor(err)
	detail := bperrors.UserMessage(err)
	if status == http.StatusInternalServerError {
		s.logger.Error("request failed", "path", r.URL.Path, "err", err)
		detail = "internal error"
		if code == "" {
			code = bperrors.ErrCodeInternal
		}
	}
	writeDetail(w, status, string(code), detail)
}

func statusFor(err error) int {
	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		return http.StatusRequestEntityTooLarge
	}
	code := bperrors.GetCode(err)
	switch code {
	case bperrors.ErrCodeRateLimited:
		return http.StatusTooManyRequests
	case bperrors.ErrCodeTimeout:
		return http.StatusGatewayTimeout
	}
	switch code.Class() {
	case bperrors.ClassInvalid:
		return http.StatusBadRequest
	case bperrors.ClassNotFound:
		return http.StatusNotFound
	case bperrors.ClassRemote:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}
