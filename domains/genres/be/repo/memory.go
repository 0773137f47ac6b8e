package repo

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	"github.com/zenGate-Global/local-library/platform/go/persistence"
)

// MemoryRepository is an in-memory implementation suitable for tests and local development.
// Names are compared at secondary strength: case is ignored, accents are not.
type MemoryRepository struct {
	mu    sync.RWMutex
	byID  map[uuid.UUID]persistence.Genre
	books []memoryBook
	now   func() time.Time
	coll  *collate.Collator
}

type memoryBook struct {
	summary persistence.BookSummary
	genres  []uuid.UUID
}

// NewMemoryRepository constructs a MemoryRepository.
func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{
		byID: make(map[uuid.UUID]persistence.Genre),
		now:  time.Now,
		coll: collate.New(language.Und, collate.IgnoreCase),
	}
}

// AddBook registers a book referencing the given genres.
func (r *MemoryRepository) AddBook(book persistence.BookSummary, genres ...uuid.UUID) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.books = append(r.books, memoryBook{summary: book, genres: append([]uuid.UUID(nil), genres...)})
}

func (r *MemoryRepository) List(ctx context.Context) ([]persistence.Genre, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	items := make([]persistence.Genre, 0, len(r.byID))
	for _, g := range r.byID {
		items = append(items, g)
	}

	sort.Slice(items, func(i, j int) bool {
		if c := r.coll.CompareString(items[i].Name, items[j].Name); c != 0 {
			return c < 0
		}
		return items[i].GenreID.String() < items[j].GenreID.String()
	})

	return items, nil
}

func (r *MemoryRepository) Count(ctx context.Context) (int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.byID), nil
}

func (r *MemoryRepository) Get(ctx context.Context, id uuid.UUID) (persistence.Genre, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	g, ok := r.byID[id]
	if !ok {
		return persistence.Genre{}, persistence.ErrGenreNotFound
	}
	return g, nil
}

func (r *MemoryRepository) FindByName(ctx context.Context, name string) (persistence.Genre, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if g, ok := r.findByNameLocked(name); ok {
		return g, nil
	}
	return persistence.Genre{}, persistence.ErrGenreNotFound
}

func (r *MemoryRepository) Create(ctx context.Context, params persistence.CreateGenreParams) (persistence.Genre, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.byID[params.GenreID]; exists {
		return persistence.Genre{}, persistence.ErrGenreAlreadyExists
	}
	if _, exists := r.findByNameLocked(params.Name); exists {
		return persistence.Genre{}, persistence.ErrGenreNameConflict
	}

	now := r.now().UTC()
	g := persistence.Genre{GenreID: params.GenreID, Name: params.Name, CreatedAt: now, UpdatedAt: now}
	r.byID[g.GenreID] = g
	return g, nil
}

func (r *MemoryRepository) UpdateName(ctx context.Context, id uuid.UUID, name string) (persistence.Genre, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	g, ok := r.byID[id]
	if !ok {
		return persistence.Genre{}, persistence.ErrGenreNotFound
	}
	if existing, exists := r.findByNameLocked(name); exists && existing.GenreID != id {
		return persistence.Genre{}, persistence.ErrGenreNameConflict
	}

	g.Name = name
	g.UpdatedAt = r.now().UTC()
	r.byID[id] = g
	return g, nil
}

func (r *MemoryRepository) Delete(ctx context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.byID[id]; !ok {
		return persistence.ErrGenreNotFound
	}
	delete(r.byID, id)
	return nil
}

func (r *MemoryRepository) BooksByGenre(ctx context.Context, id uuid.UUID) ([]persistence.BookSummary, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var books []persistence.BookSummary
	for _, b := range r.books {
		for _, genreID := range b.genres {
			if genreID == id {
				books = append(books, b.summary)
				break
			}
		}
	}

	sort.Slice(books, func(i, j int) bool {
		return r.coll.CompareString(books[i].Title, books[j].Title) < 0
	})
	return books, nil
}

func (r *MemoryRepository) CountBooks(ctx context.Context) (int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.books), nil
}

// findByNameLocked requires r.mu held for writing; the collator is not safe for concurrent use.
func (r *MemoryRepository) findByNameLocked(name string) (persistence.Genre, bool) {
	for _, g := range r.byID {
		if r.coll.CompareString(g.Name, name) == 0 {
			return g, true
		}
	}
	return persistence.Genre{}, false
}
