// Package weberrors is the centralized error boundary of the web server: handlers hand it
// an error, it picks the status and renders the error page.
package weberrors

import (
	"errors"
	"fmt"
	"net/http"

	"go.uber.org/zap"

	platformlogging "github.com/zenGate-Global/local-library/platform/go/logging"
)

// HTTPError carries the status a failure should be reported with.
type HTTPError struct {
	Status  int
	Message string
	Err     error
}

func (e *HTTPError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *HTTPError) Unwrap() error {
	return e.Err
}

// NotFound builds a 404 error with a user-facing message.
func NotFound(message string) *HTTPError {
	return &HTTPError{Status: http.StatusNotFound, Message: message}
}

// Status returns the status carried by err, or 500 when it carries none.
func Status(err error) int {
	var httpErr *HTTPError
	if errors.As(err, &httpErr) && httpErr.Status != 0 {
		return httpErr.Status
	}
	return http.StatusInternalServerError
}

// Page is the data bag of the error template.
type Page struct {
	Title   string
	Status  int
	Message string
	Detail  string
}

// PageRenderer renders a named template; satisfied by *render.Renderer.
type PageRenderer interface {
	Render(w http.ResponseWriter, status int, name string, data any) error
}

// Handler renders errors. Detail is only exposed in development.
type Handler struct {
	renderer    PageRenderer
	logger      *zap.Logger
	development bool
}

// NewHandler constructs a Handler.
func NewHandler(renderer PageRenderer, logger *zap.Logger, development bool) *Handler {
	if renderer == nil {
		panic("renderer is required")
	}
	if logger == nil {
		panic("logger is required")
	}
	return &Handler{renderer: renderer, logger: logger, development: development}
}

// Handle logs err and renders the error page.
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request, err error) {
	status := Status(err)
	logger := platformlogging.FromRequest(r, h.logger)

	switch {
	case status >= http.StatusInternalServerError:
		logger.Error("request failed", zap.Int("status", status), zap.Error(err))
	case status == http.StatusNotFound:
		logger.Info("resource not found", zap.Error(err))
	default:
		logger.Warn("request rejected", zap.Int("status", status), zap.Error(err))
	}

	page := Page{
		Title:   http.StatusText(status),
		Status:  status,
		Message: message(err, status),
	}
	if h.development {
		page.Detail = fmt.Sprintf("%+v", err)
	}

	if renderErr := h.renderer.Render(w, status, "error", page); renderErr != nil {
		logger.Error("render error page", zap.Error(renderErr))
		http.Error(w, page.Message, status)
	}
}

// NotFoundHandler renders a 404 for unmatched routes.
func (h *Handler) NotFoundHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		h.Handle(w, r, NotFound("Not Found"))
	}
}

func message(err error, status int) string {
	var httpErr *HTTPError
	if errors.As(err, &httpErr) && httpErr.Message != "" {
		return httpErr.Message
	}
	return http.StatusText(status)
}
