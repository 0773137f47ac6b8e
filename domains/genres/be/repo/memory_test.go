package repo

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/zenGate-Global/local-library/platform/go/persistence"
)

func TestMemoryRepositoryFindByNameUsesSecondaryStrength(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	r := NewMemoryRepository()

	created, err := r.Create(ctx, persistence.CreateGenreParams{GenreID: uuid.New(), Name: "fantasy"})
	require.NoError(t, err)

	found, err := r.FindByName(ctx, "FANTASY")
	require.NoError(t, err)
	require.Equal(t, created.GenreID, found.GenreID)

	_, err = r.Create(ctx, persistence.CreateGenreParams{GenreID: uuid.New(), Name: "Café"})
	require.NoError(t, err)

	_, err = r.FindByName(ctx, "cafe")
	require.ErrorIs(t, err, persistence.ErrGenreNotFound)

	_, err = r.FindByName(ctx, "CAFÉ")
	require.NoError(t, err)
}

func TestMemoryRepositoryRejectsDuplicates(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	r := NewMemoryRepository()

	id := uuid.New()
	_, err := r.Create(ctx, persistence.CreateGenreParams{GenreID: id, Name: "Poetry"})
	require.NoError(t, err)

	_, err = r.Create(ctx, persistence.CreateGenreParams{GenreID: uuid.New(), Name: "poetry"})
	require.ErrorIs(t, err, persistence.ErrGenreNameConflict)

	_, err = r.Create(ctx, persistence.CreateGenreParams{GenreID: id, Name: "Drama"})
	require.ErrorIs(t, err, persistence.ErrGenreAlreadyExists)

	other, err := r.Create(ctx, persistence.CreateGenreParams{GenreID: uuid.New(), Name: "Drama"})
	require.NoError(t, err)

	_, err = r.UpdateName(ctx, other.GenreID, "POETRY")
	require.ErrorIs(t, err, persistence.ErrGenreNameConflict)

	renamed, err := r.UpdateName(ctx, id, "poetry")
	require.NoError(t, err)
	require.Equal(t, "poetry", renamed.Name)

	count, err := r.Count(ctx)
	require.NoError(t, err)
	require.Equal(t, 2, count)
}

func TestMemoryRepositoryListSortedByName(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	r := NewMemoryRepository()
	for _, name := range []string{"thriller", "Fantasy", "biography"} {
		_, err := r.Create(ctx, persistence.CreateGenreParams{GenreID: uuid.New(), Name: name})
		require.NoError(t, err)
	}

	genres, err := r.List(ctx)
	require.NoError(t, err)
	require.Len(t, genres, 3)
	require.Equal(t, "biography", genres[0].Name)
	require.Equal(t, "Fantasy", genres[1].Name)
	require.Equal(t, "thriller", genres[2].Name)
}

func TestMemoryRepositoryBooksAndDelete(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	r := NewMemoryRepository()

	genre, err := r.Create(ctx, persistence.CreateGenreParams{GenreID: uuid.New(), Name: "Science Fiction"})
	require.NoError(t, err)

	r.AddBook(persistence.BookSummary{BookID: uuid.New(), Title: "The Wise Man's Fear"}, uuid.New())
	r.AddBook(persistence.BookSummary{BookID: uuid.New(), Title: "Dune"}, genre.GenreID)
	r.AddBook(persistence.BookSummary{BookID: uuid.New(), Title: "Apes and Angels"}, uuid.New(), genre.GenreID)

	books, err := r.BooksByGenre(ctx, genre.GenreID)
	require.NoError(t, err)
	require.Len(t, books, 2)
	require.Equal(t, "Apes and Angels", books[0].Title)
	require.Equal(t, "Dune", books[1].Title)

	total, err := r.CountBooks(ctx)
	require.NoError(t, err)
	require.Equal(t, 3, total)

	require.NoError(t, r.Delete(ctx, genre.GenreID))
	require.ErrorIs(t, r.Delete(ctx, genre.GenreID), persistence.ErrGenreNotFound)

	_, err = r.Get(ctx, genre.GenreID)
	require.ErrorIs(t, err, persistence.ErrGenreNotFound)

	_, err = r.UpdateName(ctx, genre.GenreID, "Anything")
	require.ErrorIs(t, err, persistence.ErrGenreNotFound)
}
