package handler

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/zenGate-Global/local-library/domains/genres/be/service"
	"github.com/zenGate-Global/local-library/platform/go/formflow"
	platformlogging "github.com/zenGate-Global/local-library/platform/go/logging"
	"github.com/zenGate-Global/local-library/platform/go/validation"
	"github.com/zenGate-Global/local-library/platform/go/weberrors"
)

const (
	listPath = "/catalog/genres"

	titleList   = "Genre List"
	titleCreate = "Create Genre"
	titleUpdate = "Update Genre"
	titleDelete = "Delete Genre"

	msgGenreNotFound  = "Genre not found"
	msgNoSuchGenre    = "No such genre found!"
	templateList      = "genre_list"
	templateDetail    = "genre_detail"
	templateForm      = "genre_form"
	templateDelete    = "genre_delete"
	formFieldName     = "name"
	formFieldGenreID  = "genre_id"
	routeParamGenreID = "id"
)

// Renderer writes a named page.
type Renderer interface {
	Render(w http.ResponseWriter, status int, name string, data any) error
}

// ErrorReporter renders failures; satisfied by *weberrors.Handler.
type ErrorReporter interface {
	Handle(w http.ResponseWriter, r *http.Request, err error)
}

// ListPage is the data of the genre list template.
type ListPage struct {
	Title  string
	Genres []service.Genre
}

// DetailPage is shared by the detail and delete templates.
type DetailPage struct {
	Title string
	Genre service.Genre
	Books []service.Book
}

// FormPage is the data of the create and update form.
type FormPage struct {
	Title  string
	Name   string
	Errors validation.Errors
}

// Handler serves the genre pages of the catalog.
type Handler struct {
	svc    service.Service
	pages  Renderer
	errs   ErrorReporter
	logger *zap.Logger
}

// New constructs a Handler instance.
func New(svc service.Service, pages Renderer, errs ErrorReporter, logger *zap.Logger) *Handler {
	if svc == nil {
		panic("genres service is required")
	}
	if pages == nil {
		panic("renderer is required")
	}
	if errs == nil {
		panic("error reporter is required")
	}
	if logger == nil {
		panic("logger is required")
	}
	return &Handler{svc: svc, pages: pages, errs: errs, logger: logger}
}

// Routes mounts the genre pages on a router rooted at /catalog.
func (h *Handler) Routes(r chi.Router) {
	r.Get("/genres", h.List)
	r.Route("/genre", func(r chi.Router) {
		r.Get("/create", h.CreateForm)
		r.Post("/create", h.Create)
		r.Get("/{id}", h.Detail)
		r.Get("/{id}/update", h.UpdateForm)
		r.Post("/{id}/update", h.Update)
		r.Get("/{id}/delete", h.DeleteForm)
		r.Post("/{id}/delete", h.Delete)
	})
}

// List implements GET /catalog/genres
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	genres, err := h.svc.List(r.Context())
	if err != nil {
		h.fail(w, r, err, msgGenreNotFound)
		return
	}
	h.render(w, r, http.StatusOK, templateList, ListPage{Title: titleList, Genres: genres})
}

// Detail implements GET /catalog/genre/{id}
func (h *Handler) Detail(w http.ResponseWriter, r *http.Request) {
	id, ok := routeID(r)
	if !ok {
		h.fail(w, r, service.ErrNotFound, msgGenreNotFound)
		return
	}

	detail, err := h.svc.Detail(r.Context(), id)
	if err != nil {
		h.fail(w, r, err, msgGenreNotFound)
		return
	}

	h.render(w, r, http.StatusOK, templateDetail, DetailPage{
		Title: "Genre Detail",
		Genre: detail.Genre,
		Books: detail.Books,
	})
}

// CreateForm implements GET /catalog/genre/create
func (h *Handler) CreateForm(w http.ResponseWriter, r *http.Request) {
	h.render(w, r, http.StatusOK, templateForm, FormPage{Title: titleCreate})
}

// Create implements POST /catalog/genre/create
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	form, err := parseForm(r)
	if err != nil {
		h.errs.Handle(w, r, err)
		return
	}

	outcome, err := h.svc.Create(r.Context(), form)
	if err != nil {
		h.fail(w, r, err, msgGenreNotFound)
		return
	}
	h.respond(w, r, titleCreate, outcome)
}

// UpdateForm implements GET /catalog/genre/{id}/update
func (h *Handler) UpdateForm(w http.ResponseWriter, r *http.Request) {
	id, ok := routeID(r)
	if !ok {
		h.fail(w, r, service.ErrNotFound, msgNoSuchGenre)
		return
	}

	genre, err := h.svc.Get(r.Context(), id)
	if err != nil {
		h.fail(w, r, err, msgNoSuchGenre)
		return
	}

	h.render(w, r, http.StatusOK, templateForm, FormPage{Title: titleUpdate, Name: genre.Name})
}

// Update implements POST /catalog/genre/{id}/update
func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := routeID(r)
	if !ok {
		h.fail(w, r, service.ErrNotFound, msgNoSuchGenre)
		return
	}

	form, err := parseForm(r)
	if err != nil {
		h.errs.Handle(w, r, err)
		return
	}

	outcome, err := h.svc.Update(r.Context(), id, form)
	if err != nil {
		h.fail(w, r, err, msgNoSuchGenre)
		return
	}
	h.respond(w, r, titleUpdate, outcome)
}

// DeleteForm implements GET /catalog/genre/{id}/delete
func (h *Handler) DeleteForm(w http.ResponseWriter, r *http.Request) {
	id, ok := routeID(r)
	if !ok {
		http.Redirect(w, r, listPath, http.StatusFound)
		return
	}

	detail, err := h.svc.Detail(r.Context(), id)
	if err != nil {
		if errors.Is(err, service.ErrNotFound) {
			http.Redirect(w, r, listPath, http.StatusFound)
			return
		}
		h.fail(w, r, err, msgGenreNotFound)
		return
	}

	h.render(w, r, http.StatusOK, templateDelete, DetailPage{Title: titleDelete, Genre: detail.Genre, Books: detail.Books})
}

// Delete implements POST /catalog/genre/{id}/delete
func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		h.errs.Handle(w, r, badRequest(err))
		return
	}

	id, ok := deleteTarget(r)
	if !ok {
		http.Redirect(w, r, listPath, http.StatusFound)
		return
	}

	result, err := h.svc.Delete(r.Context(), id)
	if err != nil {
		if errors.Is(err, service.ErrNotFound) {
			http.Redirect(w, r, listPath, http.StatusFound)
			return
		}
		h.fail(w, r, err, msgGenreNotFound)
		return
	}

	if !result.Deleted {
		h.render(w, r, http.StatusOK, templateDelete, DetailPage{
			Title: titleDelete,
			Genre: result.Detail.Genre,
			Books: result.Detail.Books,
		})
		return
	}

	loggerFrom(r.Context(), h.logger).Info("genre deleted", zap.String("genre_id", id.String()))
	http.Redirect(w, r, listPath, http.StatusFound)
}

func (h *Handler) respond(w http.ResponseWriter, r *http.Request, title string, outcome formflow.Outcome) {
	switch outcome.State {
	case formflow.Rejected:
		h.render(w, r, http.StatusOK, templateForm, FormPage{
			Title:  title,
			Name:   outcome.Entity.Name,
			Errors: outcome.Errors,
		})
	case formflow.Redirected, formflow.Persisted:
		loggerFrom(r.Context(), h.logger).Debug("genre form submitted",
			zap.Stringer("outcome", outcome.State),
			zap.String("genre_id", outcome.Entity.ID.String()),
		)
		http.Redirect(w, r, outcome.RedirectURL, http.StatusFound)
	default:
		h.errs.Handle(w, r, fmt.Errorf("unexpected form outcome %s", outcome.State))
	}
}

func (h *Handler) render(w http.ResponseWriter, r *http.Request, status int, name string, data any) {
	if err := h.pages.Render(w, status, name, data); err != nil {
		h.errs.Handle(w, r, fmt.Errorf("render %s: %w", name, err))
	}
}

// fail reports err, turning a missing genre into a 404 with notFoundMessage.
func (h *Handler) fail(w http.ResponseWriter, r *http.Request, err error, notFoundMessage string) {
	if errors.Is(err, service.ErrNotFound) {
		err = &weberrors.HTTPError{Status: http.StatusNotFound, Message: notFoundMessage, Err: err}
	}
	h.errs.Handle(w, r, err)
}

func parseForm(r *http.Request) (service.Form, error) {
	if err := r.ParseForm(); err != nil {
		return service.Form{}, badRequest(err)
	}
	return service.Form{Name: r.PostFormValue(formFieldName)}, nil
}

func badRequest(err error) error {
	return &weberrors.HTTPError{Status: http.StatusBadRequest, Message: "Invalid form submission", Err: err}
}

func routeID(r *http.Request) (uuid.UUID, bool) {
	id, err := uuid.Parse(chi.URLParam(r, routeParamGenreID))
	if err != nil {
		return uuid.Nil, false
	}
	return id, true
}

// deleteTarget prefers the hidden genre_id field and falls back to the route id.
func deleteTarget(r *http.Request) (uuid.UUID, bool) {
	if raw := r.PostFormValue(formFieldGenreID); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			return uuid.Nil, false
		}
		return id, true
	}
	return routeID(r)
}

func loggerFrom(ctx context.Context, fallback *zap.Logger) *zap.Logger {
	if logger, ok := platformlogging.FromContext(ctx); ok {
		return logger
	}
	return fallback
}
