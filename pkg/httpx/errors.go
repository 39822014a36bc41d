package httpx

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/dwikikusuma/cosmo-market/pkg/apperr"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// ErrorRecord is the JSON body of every error response.
type ErrorRecord struct {
	Status  int    `json:"status"`
	Error   string `json:"error"`
	Code    string `json:"code"`
	Message string `json:"message"`
	Path    string `json:"path"`
}

// StatusFromGRPC maps a gRPC status error to an HTTP status, a stable code and a client message.
func StatusFromGRPC(err error) (int, string, string) {
	st, ok := status.FromError(err)
	if !ok {
		return http.StatusInternalServerError, "INTERNAL", "internal error"
	}

	switch st.Code() {
	case codes.InvalidArgument, codes.FailedPrecondition, codes.OutOfRange:
		return http.StatusBadRequest, "INVALID_ARGUMENT", st.Message()
	case codes.NotFound:
		return http.StatusNotFound, "NOT_FOUND", st.Message()
	case codes.AlreadyExists, codes.Aborted:
		return http.StatusConflict, "ALREADY_EXISTS", st.Message()
	case codes.Unauthenticated:
		return http.StatusUnauthorized, "UNAUTHENTICATED", st.Message()
	case codes.PermissionDenied:
		return http.StatusForbidden, "PERMISSION_DENIED", st.Message()
	case codes.Unavailable, codes.DeadlineExceeded:
		return http.StatusServiceUnavailable, "UNAVAILABLE", st.Message()
	default:
		return http.StatusInternalServerError, "INTERNAL", "internal error"
	}
}

// StatusOf translates any error into the HTTP triple. Domain errors keep their
// own kind as code so item-level and parent-level misses stay distinguishable.
func StatusOf(err error) (int, string, string) {
	var ae *apperr.Error
	if errors.As(err, &ae) && ae.Kind != apperr.KindInternal {
		httpStatus, _, msg := StatusFromGRPC(status.Error(apperr.GRPCCode(ae.Kind), ae.Error()))
		return httpStatus, ae.Kind.String(), msg
	}
	return StatusFromGRPC(err)
}

func WriteError(w http.ResponseWriter, r *http.Request, log *slog.Logger, err error) {
	httpStatus, code, msg := StatusOf(err)
	if httpStatus >= http.StatusInternalServerError {
		log.ErrorContext(r.Context(), "request failed",
			slog.String("method", r.Method),
			slog.String("path", r.URL.Path),
			slog.Any("err", err),
		)
	}

	WriteJSON(w, httpStatus, ErrorRecord{
		Status:  httpStatus,
		Error:   http.StatusText(httpStatus),
		Code:    code,
		Message: msg,
		Path:    r.URL.Path,
	})
}
