package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"mediazip/internal/logger"
	"mediazip/internal/model"
)

const maxRequestSize = 1 << 20

type httpError struct {
	StatusCode int
	StatusMsg  string
}

func (e *httpError) Error() string {
	return fmt.Sprintf("HTTP %d: %s", e.StatusCode, e.StatusMsg)
}

type helper struct {
	ctx context.Context
	log *slog.Logger
	r   *http.Request
	w   http.ResponseWriter
}

func newHelper(w http.ResponseWriter, r *http.Request, op string) *helper {
	ctx := r.Context()
	return &helper{
		ctx: ctx,
		log: logger.FromContext(ctx).With("op", op),
		w:   w,
		r:   r,
	}
}

func (h *helper) Ctx() context.Context {
	return h.ctx
}

func (h *helper) Logger() *slog.Logger {
	return h.log
}

func (h *helper) WriteError(err error) {
	httpErr := h.mapError(err)
	http.Error(h.w, httpErr.StatusMsg, httpErr.StatusCode)
}

func (h *helper) mapError(err error) *httpError {
	var httpErr *httpError
	if errors.As(err, &httpErr) {
		return httpErr
	}

	switch {
	case errors.Is(err, model.ErrTaskNotFound):
		return &httpError{http.StatusNotFound, err.Error()}
	case errors.Is(err, model.ErrMaxFilesExceeded):
		return &httpError{http.StatusConflict, err.Error()}
	case errors.Is(err, model.ErrServerBusy):
		return &httpError{http.StatusServiceUnavailable, err.Error()}
	case errors.Is(err, model.ErrServerCancelled):
		return &httpError{http.StatusServiceUnavailable, err.Error()}
	case errors.Is(err, model.ErrInvalidLink):
		return &httpError{http.StatusBadRequest, err.Error()}
	case errors.Is(err, model.ErrNoMedia):
		return &httpError{http.StatusUnprocessableEntity, err.Error()}
	case errors.Is(err, model.ErrProvider):
		return &httpError{http.StatusBadGateway, err.Error()}
	}

	h.log.Warn("unhandled error has been detected", "error", err)
	return &httpError{500, "internal error"}
}

func (h *helper) WriteResponse(resp any, statusCode int) {
	h.w.Header().Add("content-type", "application/json")
	h.w.WriteHeader(statusCode)
	err := json.NewEncoder(h.w).Encode(resp)
	if err != nil {
		h.log.Error("write response failed", "error", err)
	}
}

func (h *helper) GetID() (int64, error) {
	s := chi.URLParam(h.r, "id")
	if s == "" {
		return 0, &httpError{http.StatusBadRequest, "id is required"}
	}
	v, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 0, &httpError{http.StatusBadRequest, "id must be integer"}
	}
	if v <= 0 {
		return 0, &httpError{http.StatusBadRequest, "id must be > 0"}
	}
	return v, nil
}

func (h *helper) ReadRequest(req any) error {
	return h.readRequest(req, false)
}

// ReadOptionalRequest как ReadRequest, но пустое тело не считается ошибкой.
func (h *helper) ReadOptionalRequest(req any) error {
	return h.readRequest(req, true)
}

func (h *helper) readRequest(req any, optional bool) error {
	body, err := io.ReadAll(http.MaxBytesReader(h.w, h.r.Body, maxRequestSize))
	if err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			return &httpError{http.StatusRequestEntityTooLarge, "request body too large"}
		}
		msg := "can't read request body"
		h.log.Error(msg, "error", err)
		return &httpError{http.StatusInternalServerError, msg}
	}

	if optional && len(bytes.TrimSpace(body)) == 0 {
		return nil
	}

	if err := json.Unmarshal(body, req); err != nil {
		msg := "can't parse request body"
		h.log.Debug(msg, "error", err)
		return &httpError{http.StatusBadRequest, msg}
	}

	return nil
}
