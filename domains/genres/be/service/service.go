package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	domainrepo "github.com/zenGate-Global/local-library/domains/genres/be/repo"
	"github.com/zenGate-Global/local-library/platform/go/formflow"
	"github.com/zenGate-Global/local-library/platform/go/persistence"
	"github.com/zenGate-Global/local-library/platform/go/validation"
)

const (
	genreBasePath = "/catalog/genre/"
	bookBasePath  = "/catalog/book/"

	// NameMinLength is the minimum number of characters of a trimmed genre name.
	NameMinLength = 3
	// NameTooShortMessage is reported when a genre name is shorter than NameMinLength.
	NameTooShortMessage = "Genre name must contain at least 3 characters"
	// NameMaxLength caps the trimmed genre name.
	NameMaxLength = 100
	// NameTooLongMessage is reported when a genre name is longer than NameMaxLength.
	NameTooLongMessage = "Genre name must not exceed 100 characters"
)

// Domain-level error sentinel values.
var (
	ErrNotFound = errors.New("genre not found")
)

// Genre represents a genre managed by the domain service.
type Genre struct {
	ID        uuid.UUID
	Name      string
	URL       string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Book is a book listed under a genre.
type Book struct {
	ID      uuid.UUID
	Title   string
	Summary string
	URL     string
}

// Detail bundles a genre with the books that reference it.
type Detail struct {
	Genre Genre
	Books []Book
}

// Counts summarizes the catalog for the home page.
type Counts struct {
	Genres int
	Books  int
}

// DeleteResult reports whether a delete went through. When books still reference the
// genre nothing is deleted and Detail carries them for the confirmation page.
type DeleteResult struct {
	Deleted bool
	Detail  Detail
}

// Form is the typed payload of the genre create and update forms.
type Form struct {
	Name string
}

// Service exposes the genres domain operations.
type Service interface {
	List(ctx context.Context) ([]Genre, error)
	Counts(ctx context.Context) (Counts, error)
	Get(ctx context.Context, id uuid.UUID) (Genre, error)
	Detail(ctx context.Context, id uuid.UUID) (Detail, error)
	Create(ctx context.Context, form Form) (formflow.Outcome, error)
	Update(ctx context.Context, id uuid.UUID, form Form) (formflow.Outcome, error)
	Delete(ctx context.Context, id uuid.UUID) (DeleteResult, error)
}

type service struct {
	repo     domainrepo.Repository
	workflow *formflow.Workflow
}

// New builds a genres Service backed by the provided repository.
func New(repo domainrepo.Repository) Service {
	if repo == nil {
		panic("genres repository is required")
	}
	return &service{
		repo:     repo,
		workflow: formflow.New(workflowStore{repo: repo}, SanitizeName, GenreURL),
	}
}

// GenreURL is the detail page of the genre with the given id.
func GenreURL(id uuid.UUID) string {
	return genreBasePath + id.String()
}

// BookURL is the detail page of the book with the given id.
func BookURL(id uuid.UUID) string {
	return bookBasePath + id.String()
}

var nameRules = []validation.Rule[Form]{
	validation.MinLength("name", NameMinLength, NameTooShortMessage, func(f Form) string { return f.Name }),
	validation.MaxLength("name", NameMaxLength, NameTooLongMessage, func(f Form) string { return f.Name }),
}

// SanitizeName strips control characters, trims, validates and escapes a raw genre name.
// The escaped name is returned even when validation fails so the form can be shown again.
func SanitizeName(raw string) (string, validation.Errors) {
	form := Form{Name: validation.Trim(validation.StripControl(raw))}
	errs := validation.Apply(form, nameRules...)
	return validation.Escape(form.Name), errs
}

func (s *service) List(ctx context.Context) ([]Genre, error) {
	records, err := s.repo.List(ctx)
	if err != nil {
		return nil, err
	}

	genres := make([]Genre, 0, len(records))
	for _, record := range records {
		genres = append(genres, mapGenre(record))
	}

	return genres, nil
}

func (s *service) Counts(ctx context.Context) (Counts, error) {
	var counts Counts

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		n, err := s.repo.Count(gctx)
		if err != nil {
			return fmt.Errorf("count genres: %w", err)
		}
		counts.Genres = n
		return nil
	})
	g.Go(func() error {
		n, err := s.repo.CountBooks(gctx)
		if err != nil {
			return fmt.Errorf("count books: %w", err)
		}
		counts.Books = n
		return nil
	})

	if err := g.Wait(); err != nil {
		return Counts{}, err
	}
	return counts, nil
}

func (s *service) Get(ctx context.Context, id uuid.UUID) (Genre, error) {
	record, err := s.repo.Get(ctx, id)
	if err != nil {
		if errors.Is(err, persistence.ErrGenreNotFound) {
			return Genre{}, ErrNotFound
		}
		return Genre{}, err
	}

	return mapGenre(record), nil
}

// Detail loads the genre and its books concurrently.
func (s *service) Detail(ctx context.Context, id uuid.UUID) (Detail, error) {
	var (
		genre Genre
		books []Book
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		genre, err = s.Get(gctx, id)
		return err
	})
	g.Go(func() error {
		records, err := s.repo.BooksByGenre(gctx, id)
		if err != nil {
			return err
		}
		books = make([]Book, 0, len(records))
		for _, record := range records {
			books = append(books, mapBook(record))
		}
		return nil
	})

	if err := g.Wait(); err != nil {
		return Detail{}, err
	}

	return Detail{Genre: genre, Books: books}, nil
}

func (s *service) Create(ctx context.Context, form Form) (formflow.Outcome, error) {
	return s.workflow.Create(ctx, form.Name)
}

func (s *service) Update(ctx context.Context, id uuid.UUID, form Form) (formflow.Outcome, error) {
	if id == uuid.Nil {
		return formflow.Outcome{}, ErrNotFound
	}
	return s.workflow.Update(ctx, id, form.Name)
}

func (s *service) Delete(ctx context.Context, id uuid.UUID) (DeleteResult, error) {
	detail, err := s.Detail(ctx, id)
	if err != nil {
		return DeleteResult{}, err
	}

	if len(detail.Books) > 0 {
		return DeleteResult{Deleted: false, Detail: detail}, nil
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		if errors.Is(err, persistence.ErrGenreNotFound) {
			return DeleteResult{}, ErrNotFound
		}
		return DeleteResult{}, err
	}

	return DeleteResult{Deleted: true, Detail: detail}, nil
}

// workflowStore adapts the repository to the form workflow's store boundary.
type workflowStore struct {
	repo domainrepo.Repository
}

func (w workflowStore) FindByName(ctx context.Context, name string) (formflow.Ref, bool, error) {
	record, err := w.repo.FindByName(ctx, name)
	if err != nil {
		if errors.Is(err, persistence.ErrGenreNotFound) {
			return formflow.Ref{}, false, nil
		}
		return formflow.Ref{}, false, err
	}
	return formflow.Ref{ID: record.GenreID, Name: record.Name}, true, nil
}

func (w workflowStore) Insert(ctx context.Context, id uuid.UUID, name string) (formflow.Ref, error) {
	record, err := w.repo.Create(ctx, persistence.CreateGenreParams{GenreID: id, Name: name})
	if err != nil {
		if errors.Is(err, persistence.ErrGenreNameConflict) {
			return formflow.Ref{}, formflow.ErrDuplicateName
		}
		return formflow.Ref{}, err
	}
	return formflow.Ref{ID: record.GenreID, Name: record.Name}, nil
}

func (w workflowStore) UpdateName(ctx context.Context, id uuid.UUID, name string) (formflow.Ref, error) {
	record, err := w.repo.UpdateName(ctx, id, name)
	if err != nil {
		switch {
		case errors.Is(err, persistence.ErrGenreNotFound):
			return formflow.Ref{}, ErrNotFound
		case errors.Is(err, persistence.ErrGenreNameConflict):
			return formflow.Ref{}, formflow.ErrDuplicateName
		default:
			return formflow.Ref{}, err
		}
	}
	return formflow.Ref{ID: record.GenreID, Name: record.Name}, nil
}

func mapGenre(record persistence.Genre) Genre {
	return Genre{
		ID:        record.GenreID,
		Name:      record.Name,
		URL:       GenreURL(record.GenreID),
		CreatedAt: record.CreatedAt,
		UpdatedAt: record.UpdatedAt,
	}
}

func mapBook(record persistence.BookSummary) Book {
	return Book{
		ID:      record.BookID,
		Title:   record.Title,
		Summary: record.Summary,
		URL:     BookURL(record.BookID),
	}
}
