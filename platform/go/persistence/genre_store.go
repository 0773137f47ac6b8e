package persistence

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

const (
	GenreTable = "genres"

	genreNameConstraint = "genres_name_key"
	pgUniqueViolation   = "23505"
)

var (
	// ErrGenreNotFound indicates the requested genre does not exist.
	ErrGenreNotFound = errors.New("genre not found")
	// ErrGenreNameConflict indicates another genre already uses the name under catalog_name_ci.
	ErrGenreNameConflict = errors.New("genre name conflict")
	// ErrGenreAlreadyExists indicates a genre is being created with an identifier that already exists.
	ErrGenreAlreadyExists = errors.New("genre already exists")
)

// Genre mirrors a row of the genres collection. The name lives inside the JSONB document;
// the table's generated name column only exists for collation-aware lookups and uniqueness.
type Genre struct {
	GenreID   uuid.UUID `json:"genreId"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

type genreDocument struct {
	Name string `json:"name"`
}

// DocumentChecker validates encoded documents before they are written.
type DocumentChecker interface {
	Validate(ctx context.Context, kind DocumentKind, document []byte) error
}

// GenreStore persists genre documents in Postgres.
type GenreStore struct {
	pool      *pgxpool.Pool
	documents DocumentChecker
}

func NewGenreStore(ctx context.Context, pool *pgxpool.Pool, documents DocumentChecker) (*GenreStore, error) {
	if pool == nil {
		return nil, errors.New("pool is required")
	}
	if documents == nil {
		return nil, errors.New("document validator is required")
	}

	return &GenreStore{pool: pool, documents: documents}, nil
}

type CreateGenreParams struct {
	GenreID uuid.UUID
	Name    string
}

func (s *GenreStore) CreateGenre(ctx context.Context, params CreateGenreParams) (Genre, error) {
	if params.GenreID == uuid.Nil {
		return Genre{}, errors.New("genre id is required")
	}

	document, err := s.encode(ctx, params.Name)
	if err != nil {
		return Genre{}, err
	}

	row := s.pool.QueryRow(ctx, `
		INSERT INTO genres (genre_id, document, created_at, updated_at)
		VALUES ($1, $2, NOW(), NOW())
		RETURNING genre_id, document, created_at, updated_at
	`, params.GenreID, document)

	genre, err := scanGenre(row)
	if err != nil {
		return Genre{}, classifyGenreWriteError("insert genre", err)
	}

	return genre, nil
}

func (s *GenreStore) GetGenre(ctx context.Context, genreID uuid.UUID) (Genre, error) {
	row := s.pool.QueryRow(ctx, `
		SELECT genre_id, document, created_at, updated_at
		FROM genres
		WHERE genre_id = $1
	`, genreID)

	genre, err := scanGenre(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Genre{}, ErrGenreNotFound
		}
		return Genre{}, fmt.Errorf("get genre: %w", err)
	}

	return genre, nil
}

// FindGenreByName matches case-insensitively but accent-sensitively (ICU strength 2).
func (s *GenreStore) FindGenreByName(ctx context.Context, name string) (Genre, error) {
	row := s.pool.QueryRow(ctx, `
		SELECT genre_id, document, created_at, updated_at
		FROM genres
		WHERE name = $1 COLLATE catalog_name_ci
		LIMIT 1
	`, name)

	genre, err := scanGenre(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Genre{}, ErrGenreNotFound
		}
		return Genre{}, fmt.Errorf("find genre by name: %w", err)
	}

	return genre, nil
}

func (s *GenreStore) ListGenres(ctx context.Context) ([]Genre, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT genre_id, document, created_at, updated_at
		FROM genres
		ORDER BY name ASC, genre_id ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("list genres: %w", err)
	}
	defer rows.Close()

	var genres []Genre
	for rows.Next() {
		genre, scanErr := scanGenre(rows)
		if scanErr != nil {
			return nil, scanErr
		}
		genres = append(genres, genre)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate genres: %w", err)
	}

	return genres, nil
}

func (s *GenreStore) CountGenres(ctx context.Context) (int, error) {
	var count int
	if err := s.pool.QueryRow(ctx, `SELECT COUNT(*) FROM genres`).Scan(&count); err != nil {
		return 0, fmt.Errorf("count genres: %w", err)
	}
	return count, nil
}

// UpdateGenreName replaces the genre document in place; the id never changes.
func (s *GenreStore) UpdateGenreName(ctx context.Context, genreID uuid.UUID, name string) (Genre, error) {
	if genreID == uuid.Nil {
		return Genre{}, errors.New("genre id is required")
	}

	document, err := s.encode(ctx, name)
	if err != nil {
		return Genre{}, err
	}

	row := s.pool.QueryRow(ctx, `
		UPDATE genres
		SET document = $2,
		    updated_at = NOW()
		WHERE genre_id = $1
		RETURNING genre_id, document, created_at, updated_at
	`, genreID, document)

	genre, err := scanGenre(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Genre{}, ErrGenreNotFound
		}
		return Genre{}, classifyGenreWriteError("update genre", err)
	}

	return genre, nil
}

func (s *GenreStore) DeleteGenre(ctx context.Context, genreID uuid.UUID) error {
	result, err := s.pool.Exec(ctx, `DELETE FROM genres WHERE genre_id = $1`, genreID)
	if err != nil {
		return fmt.Errorf("delete genre: %w", err)
	}

	if result.RowsAffected() == 0 {
		return ErrGenreNotFound
	}

	return nil
}

func (s *GenreStore) encode(ctx context.Context, name string) ([]byte, error) {
	if strings.TrimSpace(name) == "" {
		return nil, errors.New("genre name is required")
	}

	document, err := json.Marshal(genreDocument{Name: name})
	if err != nil {
		return nil, fmt.Errorf("encode genre document: %w", err)
	}

	if err := s.documents.Validate(ctx, DocumentKindGenre, document); err != nil {
		return nil, err
	}

	return document, nil
}

func classifyGenreWriteError(op string, err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation {
		if pgErr.ConstraintName == genreNameConstraint {
			return ErrGenreNameConflict
		}
		return ErrGenreAlreadyExists
	}
	return fmt.Errorf("%s: %w", op, err)
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanGenre(scanner rowScanner) (Genre, error) {
	var (
		genreID   uuid.UUID
		raw       []byte
		createdAt time.Time
		updatedAt time.Time
	)

	if err := scanner.Scan(&genreID, &raw, &createdAt, &updatedAt); err != nil {
		return Genre{}, err
	}

	var document genreDocument
	if err := json.Unmarshal(raw, &document); err != nil {
		return Genre{}, fmt.Errorf("decode genre document %s: %w", genreID, err)
	}

	return Genre{
		GenreID:   genreID,
		Name:      document.Name,
		CreatedAt: createdAt,
		UpdatedAt: updatedAt,
	}, nil
}
