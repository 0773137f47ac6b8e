package persistence

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

// BookSummary is the projection of a book document shown next to its genres.
type BookSummary struct {
	BookID  uuid.UUID `json:"bookId"`
	Title   string    `json:"title"`
	Summary string    `json:"summary"`
}

type bookDocument struct {
	Title   string   `json:"title"`
	Summary string   `json:"summary"`
	ISBN    string   `json:"isbn,omitempty"`
	Genre   []string `json:"genre"`
}

// BookStore reads the books collection. Books are owned elsewhere in the catalog;
// genres only need to know which books reference them.
type BookStore struct {
	pool *pgxpool.Pool
}

func NewBookStore(ctx context.Context, pool *pgxpool.Pool) (*BookStore, error) {
	if pool == nil {
		return nil, errors.New("pool is required")
	}

	return &BookStore{pool: pool}, nil
}

type CreateBookParams struct {
	BookID   uuid.UUID
	Title    string
	Summary  string
	ISBN     string
	GenreIDs []uuid.UUID
}

// CreateBook inserts a book document. Used to seed the collection.
func (s *BookStore) CreateBook(ctx context.Context, params CreateBookParams) (BookSummary, error) {
	if params.BookID == uuid.Nil {
		return BookSummary{}, errors.New("book id is required")
	}
	if strings.TrimSpace(params.Title) == "" {
		return BookSummary{}, errors.New("book title is required")
	}

	genres := make([]string, 0, len(params.GenreIDs))
	for _, id := range params.GenreIDs {
		genres = append(genres, id.String())
	}

	document, err := json.Marshal(bookDocument{
		Title:   params.Title,
		Summary: params.Summary,
		ISBN:    params.ISBN,
		Genre:   genres,
	})
	if err != nil {
		return BookSummary{}, fmt.Errorf("encode book document: %w", err)
	}

	if _, err := s.pool.Exec(ctx, `
		INSERT INTO books (book_id, document, created_at)
		VALUES ($1, $2, NOW())
	`, params.BookID, document); err != nil {
		return BookSummary{}, fmt.Errorf("insert book: %w", err)
	}

	return BookSummary{BookID: params.BookID, Title: params.Title, Summary: params.Summary}, nil
}

// ListBooksByGenre returns title and summary of every book whose genre list contains genreID.
func (s *BookStore) ListBooksByGenre(ctx context.Context, genreID uuid.UUID) ([]BookSummary, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT book_id, document ->> 'title', COALESCE(document ->> 'summary', '')
		FROM books
		WHERE document -> 'genre' ? $1
		ORDER BY document ->> 'title' ASC
	`, genreID.String())
	if err != nil {
		return nil, fmt.Errorf("list books by genre: %w", err)
	}
	defer rows.Close()

	var books []BookSummary
	for rows.Next() {
		var book BookSummary
		if err := rows.Scan(&book.BookID, &book.Title, &book.Summary); err != nil {
			return nil, fmt.Errorf("scan book: %w", err)
		}
		books = append(books, book)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate books: %w", err)
	}

	return books, nil
}

func (s *BookStore) CountBooks(ctx context.Context) (int, error) {
	var count int
	if err := s.pool.QueryRow(ctx, `SELECT COUNT(*) FROM books`).Scan(&count); err != nil {
		return 0, fmt.Errorf("count books: %w", err)
	}
	return count, nil
}
