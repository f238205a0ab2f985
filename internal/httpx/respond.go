package httpx

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/ariefcatur/go-storefront.git/internal/checkout"
	"github.com/ariefcatur/go-storefront.git/internal/notice"
	"github.com/ariefcatur/go-storefront.git/internal/orders"
	"github.com/ariefcatur/go-storefront.git/internal/session"
	"github.com/ariefcatur/go-storefront.git/internal/storage"
	"github.com/pkg/errors"
)

type envelope struct {
	Data    any             `json:"data,omitempty"`
	Error   string          `json:"error,omitempty"`
	Notices []notice.Notice `json:"notices"`
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

var errBadRequest = errors.New("bad request")

func badRequest(msg string) error { return errors.Wrap(errBadRequest, msg) }

func statusFor(err error) int {
	switch {
	case errors.Is(err, errBadRequest), errors.Is(err, orders.ErrUnknownStatus), errors.Is(err, orders.ErrMissingNumber),
		errors.Is(err, session.ErrInvalidID):
		return http.StatusBadRequest
	case errors.Is(err, orders.ErrOrderNotFound):
		return http.StatusNotFound
	case errors.Is(err, orders.ErrInvalidTransition), errors.Is(err, orders.ErrDuplicateNumber), errors.Is(err, checkout.ErrEmptyCart):
		return http.StatusConflict
	case errors.Is(err, checkout.ErrInvalidAddress):
		return http.StatusUnprocessableEntity
	case errors.Is(err, session.ErrUnavailable), errors.Is(err, storage.ErrUnavailable):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

func writeResult(w http.ResponseWriter, logger *slog.Logger, code int, data any, notices []notice.Notice, err error) {
	if notices == nil {
		notices = []notice.Notice{}
	}
	if err == nil {
		writeJSON(w, code, envelope{Data: data, Notices: notices})
		return
	}

	code = statusFor(err)
	msg := err.Error()
	if code == http.StatusInternalServerError {
		logger.Error("request failed", slog.Any("err", err))
		msg = "internal error"
	}
	writeJSON(w, code, envelope{Error: msg, Notices: notices})
}
