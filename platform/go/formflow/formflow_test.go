package formflow

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/zenGate-Global/local-library/platform/go/validation"
)

type nameForm struct {
	Name string
}

var nameRules = []validation.Rule[nameForm]{
	validation.MinLength("name", 3, "Genre name must contain at least 3 characters", func(f nameForm) string { return f.Name }),
}

func sanitizeName(raw string) (string, validation.Errors) {
	form := nameForm{Name: validation.Trim(raw)}
	errs := validation.Apply(form, nameRules...)
	return validation.Escape(form.Name), errs
}

func genreURL(id uuid.UUID) string {
	return "/catalog/genre/" + id.String()
}

// fakeStore enforces name uniqueness under a lock, like a unique index would.
type fakeStore struct {
	mu      sync.Mutex
	records map[uuid.UUID]string
	calls   int

	findErr error
	// missLookups makes the next n FindByName calls report no match.
	missLookups int
}

func newFakeStore() *fakeStore {
	return &fakeStore{records: make(map[uuid.UUID]string)}
}

func (s *fakeStore) seed(name string) uuid.UUID {
	id := uuid.New()
	s.records[id] = name
	return id
}

func (s *fakeStore) FindByName(ctx context.Context, name string) (Ref, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls++
	if s.findErr != nil {
		return Ref{}, false, s.findErr
	}
	if s.missLookups > 0 {
		s.missLookups--
		return Ref{}, false, nil
	}
	return s.lookup(name)
}

func (s *fakeStore) lookup(name string) (Ref, bool, error) {
	for id, existing := range s.records {
		if strings.EqualFold(existing, name) {
			return Ref{ID: id, Name: existing}, true, nil
		}
	}
	return Ref{}, false, nil
}

func (s *fakeStore) Insert(ctx context.Context, id uuid.UUID, name string) (Ref, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls++
	if _, ok, _ := s.lookup(name); ok {
		return Ref{}, ErrDuplicateName
	}
	s.records[id] = name
	return Ref{ID: id, Name: name}, nil
}

func (s *fakeStore) UpdateName(ctx context.Context, id uuid.UUID, name string) (Ref, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls++
	if _, ok := s.records[id]; !ok {
		return Ref{}, errors.New("not found")
	}
	if existing, ok, _ := s.lookup(name); ok && existing.ID != id {
		return Ref{}, ErrDuplicateName
	}
	s.records[id] = name
	return Ref{ID: id, Name: name}, nil
}

func (s *fakeStore) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.records)
}

func newWorkflow(store Store) *Workflow {
	return New(store, sanitizeName, genreURL)
}

func TestCreateRejectsShortNamesWithoutTouchingStore(t *testing.T) {
	t.Parallel()

	for _, raw := range []string{"", "ab", "  ab  ", "\t\n", " x "} {
		raw := raw
		t.Run(raw, func(t *testing.T) {
			t.Parallel()

			store := newFakeStore()
			outcome, err := newWorkflow(store).Create(context.Background(), raw)
			require.NoError(t, err)
			require.Equal(t, Rejected, outcome.State)
			require.Equal(t, []string{"Genre name must contain at least 3 characters"}, outcome.Errors.For("name"))
			require.Equal(t, strings.TrimSpace(raw), outcome.Entity.Name)
			require.NotEqual(t, uuid.Nil, outcome.Entity.ID)
			require.Empty(t, outcome.RedirectURL)
			require.Zero(t, store.calls)
		})
	}
}

func TestCreatePersistsTrimmedName(t *testing.T) {
	t.Parallel()

	store := newFakeStore()
	outcome, err := newWorkflow(store).Create(context.Background(), " fantasy ")
	require.NoError(t, err)

	require.Equal(t, Persisted, outcome.State)
	require.Equal(t, "fantasy", outcome.Entity.Name)
	require.Equal(t, "/catalog/genre/"+outcome.Entity.ID.String(), outcome.RedirectURL)
	require.Equal(t, 1, store.count())
	require.Equal(t, "fantasy", store.records[outcome.Entity.ID])
}

func TestCreateRedirectsToExistingCaseInsensitiveMatch(t *testing.T) {
	t.Parallel()

	store := newFakeStore()
	existing := store.seed("fantasy")

	outcome, err := newWorkflow(store).Create(context.Background(), "Fantasy")
	require.NoError(t, err)

	require.Equal(t, Redirected, outcome.State)
	require.Equal(t, "/catalog/genre/"+existing.String(), outcome.RedirectURL)
	require.Equal(t, existing, outcome.Entity.ID)
	require.Equal(t, 1, store.count())
}

func TestCreateEscapesMarkup(t *testing.T) {
	t.Parallel()

	store := newFakeStore()
	outcome, err := newWorkflow(store).Create(context.Background(), "<i>Noir</i>")
	require.NoError(t, err)
	require.Equal(t, Persisted, outcome.State)
	require.Equal(t, "&lt;i&gt;Noir&lt;&#x2F;i&gt;", outcome.Entity.Name)
}

func TestCreatePropagatesStoreErrors(t *testing.T) {
	t.Parallel()

	storeErr := errors.New("connection refused")
	store := newFakeStore()
	store.findErr = storeErr

	_, err := newWorkflow(store).Create(context.Background(), "Poetry")
	require.ErrorIs(t, err, storeErr)
	require.Zero(t, store.count())
}

func TestCreateRecoversFromLostRace(t *testing.T) {
	t.Parallel()

	store := newFakeStore()
	winner := store.seed("Poetry")
	// The record appears between the conflict check and the insert.
	store.missLookups = 1

	outcome, err := newWorkflow(store).Create(context.Background(), "poetry")
	require.NoError(t, err)
	require.Equal(t, Redirected, outcome.State)
	require.Equal(t, winner, outcome.Entity.ID)
	require.Equal(t, "/catalog/genre/"+winner.String(), outcome.RedirectURL)
	require.Equal(t, 1, store.count())
}

func TestCreateReturnsDuplicateWhenWinnerVanishes(t *testing.T) {
	t.Parallel()

	store := newFakeStore()
	store.seed("Poetry")
	store.missLookups = 2

	_, err := newWorkflow(store).Create(context.Background(), "poetry")
	require.ErrorIs(t, err, ErrDuplicateName)
}

func TestConcurrentCreatesOfSameNameStoreOneRecord(t *testing.T) {
	t.Parallel()

	store := newFakeStore()
	workflow := newWorkflow(store)

	const submissions = 16
	outcomes := make([]Outcome, submissions)
	errs := make([]error, submissions)
	var wg sync.WaitGroup
	for i := 0; i < submissions; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			outcomes[i], errs[i] = workflow.Create(context.Background(), "Mystery")
		}(i)
	}
	wg.Wait()

	for _, err := range errs {
		require.NoError(t, err)
	}

	require.Equal(t, 1, store.count())

	persisted := 0
	var target string
	for _, outcome := range outcomes {
		switch outcome.State {
		case Persisted:
			persisted++
			target = outcome.RedirectURL
		case Redirected:
		default:
			t.Fatalf("unexpected state %s", outcome.State)
		}
	}
	require.Equal(t, 1, persisted)
	for _, outcome := range outcomes {
		require.Equal(t, target, outcome.RedirectURL)
	}
}

func TestUpdateRejectedKeepsTargetID(t *testing.T) {
	t.Parallel()

	store := newFakeStore()
	id := store.seed("Romance")

	outcome, err := newWorkflow(store).Update(context.Background(), id, "ab")
	require.NoError(t, err)
	require.Equal(t, Rejected, outcome.State)
	require.Equal(t, id, outcome.Entity.ID)
	require.Equal(t, "/catalog/genre/"+id.String(), outcome.Entity.URL)
	require.Equal(t, "Romance", store.records[id])
	require.Zero(t, store.calls)
}

func TestUpdateRedirectsToOtherEntityWithoutMutating(t *testing.T) {
	t.Parallel()

	store := newFakeStore()
	target := store.seed("Romance")
	other := store.seed("Thriller")

	outcome, err := newWorkflow(store).Update(context.Background(), target, "THRILLER")
	require.NoError(t, err)
	require.Equal(t, Redirected, outcome.State)
	require.Equal(t, "/catalog/genre/"+other.String(), outcome.RedirectURL)
	require.Equal(t, "Romance", store.records[target])
}

func TestUpdateWithOwnNameRedirectsWithoutWriting(t *testing.T) {
	t.Parallel()

	store := newFakeStore()
	target := store.seed("Romance")

	outcome, err := newWorkflow(store).Update(context.Background(), target, "romance")
	require.NoError(t, err)
	require.Equal(t, Redirected, outcome.State)
	require.Equal(t, target, outcome.Entity.ID)
	require.Equal(t, "Romance", store.records[target])
}

func TestUpdatePersistsNewNameKeepingID(t *testing.T) {
	t.Parallel()

	store := newFakeStore()
	target := store.seed("Romance")
	other := store.seed("Thriller")

	outcome, err := newWorkflow(store).Update(context.Background(), target, "  Historical Romance ")
	require.NoError(t, err)
	require.Equal(t, Persisted, outcome.State)
	require.Equal(t, target, outcome.Entity.ID)
	require.Equal(t, "/catalog/genre/"+target.String(), outcome.RedirectURL)
	require.Equal(t, "Historical Romance", store.records[target])
	require.Equal(t, "Thriller", store.records[other])
	require.Equal(t, 2, store.count())
}

func TestStateString(t *testing.T) {
	t.Parallel()

	require.Equal(t, "rejected", Rejected.String())
	require.Equal(t, "redirected", Redirected.String())
	require.Equal(t, "persisted", Persisted.String())
	require.Equal(t, "state(9)", State(9).String())
}
