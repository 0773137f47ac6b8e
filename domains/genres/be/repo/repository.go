package repo

import (
	"context"

	"github.com/google/uuid"

	"github.com/zenGate-Global/local-library/platform/go/persistence"
)

// Repository exposes persistence operations required by the genres service.
type Repository interface {
	List(ctx context.Context) ([]persistence.Genre, error)
	Count(ctx context.Context) (int, error)
	Get(ctx context.Context, id uuid.UUID) (persistence.Genre, error)
	FindByName(ctx context.Context, name string) (persistence.Genre, error)
	Create(ctx context.Context, params persistence.CreateGenreParams) (persistence.Genre, error)
	UpdateName(ctx context.Context, id uuid.UUID, name string) (persistence.Genre, error)
	Delete(ctx context.Context, id uuid.UUID) error
	BooksByGenre(ctx context.Context, id uuid.UUID) ([]persistence.BookSummary, error)
	CountBooks(ctx context.Context) (int, error)
}

type postgresRepository struct {
	genres *persistence.GenreStore
	books  *persistence.BookStore
}

// NewPostgresRepository builds a Repository backed by the shared persistence layer.
func NewPostgresRepository(genres *persistence.GenreStore, books *persistence.BookStore) Repository {
	if genres == nil {
		panic("genre store is required")
	}
	if books == nil {
		panic("book store is required")
	}
	return &postgresRepository{genres: genres, books: books}
}

func (r *postgresRepository) List(ctx context.Context) ([]persistence.Genre, error) {
	return r.genres.ListGenres(ctx)
}

func (r *postgresRepository) Count(ctx context.Context) (int, error) {
	return r.genres.CountGenres(ctx)
}

func (r *postgresRepository) Get(ctx context.Context, id uuid.UUID) (persistence.Genre, error) {
	return r.genres.GetGenre(ctx, id)
}

func (r *postgresRepository) FindByName(ctx context.Context, name string) (persistence.Genre, error) {
	return r.genres.FindGenreByName(ctx, name)
}

func (r *postgresRepository) Create(ctx context.Context, params persistence.CreateGenreParams) (persistence.Genre, error) {
	return r.genres.CreateGenre(ctx, params)
}

func (r *postgresRepository) UpdateName(ctx context.Context, id uuid.UUID, name string) (persistence.Genre, error) {
	return r.genres.UpdateGenreName(ctx, id, name)
}

func (r *postgresRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.genres.DeleteGenre(ctx, id)
}

func (r *postgresRepository) BooksByGenre(ctx context.Context, id uuid.UUID) ([]persistence.BookSummary, error) {
	return r.books.ListBooksByGenre(ctx, id)
}

func (r *postgresRepository) CountBooks(ctx context.Context) (int, error) {
	return r.books.CountBooks(ctx)
}
