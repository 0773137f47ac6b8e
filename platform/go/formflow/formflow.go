// Package formflow runs the create/update submission workflow shared by catalog entities
// that are identified by a unique, human-entered name.
//
// A submission is sanitized, checked against existing names, and then either rejected,
// redirected to the record that already owns the name, or persisted.
package formflow

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/zenGate-Global/local-library/platform/go/validation"
)

// ErrDuplicateName is returned by a Store when a write would give two entities the same name.
var ErrDuplicateName = errors.New("duplicate name")

// Ref identifies a named entity and the page that shows it.
type Ref struct {
	ID   uuid.UUID
	Name string
	URL  string
}

// Store is the persistence boundary the workflow needs.
// FindByName must compare case-insensitively and accent-sensitively.
type Store interface {
	FindByName(ctx context.Context, name string) (Ref, bool, error)
	Insert(ctx context.Context, id uuid.UUID, name string) (Ref, error)
	UpdateName(ctx context.Context, id uuid.UUID, name string) (Ref, error)
}

// Sanitizer turns raw input into a storable name, or reports why it cannot.
// The returned name is meaningful even when errors are reported.
type Sanitizer func(raw string) (string, validation.Errors)

// URLFunc derives the detail page of an entity from its id.
type URLFunc func(id uuid.UUID) string

// State is the terminal state of a submission.
type State int

const (
	// Rejected means sanitization failed; the store was not contacted.
	Rejected State = iota + 1
	// Redirected means an entity with the same name already exists; nothing was written.
	Redirected
	// Persisted means the entity was inserted or updated.
	Persisted
)

func (s State) String() string {
	switch s {
	case Rejected:
		return "rejected"
	case Redirected:
		return "redirected"
	case Persisted:
		return "persisted"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

// Outcome tells the caller what to do next.
type Outcome struct {
	State State
	// Entity holds the submitted values: transient for Rejected, stored for Persisted,
	// and the existing record for Redirected.
	Entity Ref
	// Errors is set only for Rejected.
	Errors validation.Errors
	// RedirectURL is set for Redirected and Persisted.
	RedirectURL string
}

// Workflow orchestrates sanitizer, conflict check and store mutation.
type Workflow struct {
	store    Store
	sanitize Sanitizer
	urlFor   URLFunc
	newID    func() uuid.UUID
}

// New builds a Workflow.
func New(store Store, sanitize Sanitizer, urlFor URLFunc) *Workflow {
	if store == nil {
		panic("formflow store is required")
	}
	if sanitize == nil {
		panic("formflow sanitizer is required")
	}
	if urlFor == nil {
		panic("formflow url func is required")
	}
	return &Workflow{store: store, sanitize: sanitize, urlFor: urlFor, newID: uuid.New}
}

// FindExisting looks up an entity whose name matches name. It never writes.
func (w *Workflow) FindExisting(ctx context.Context, name string) (Ref, bool, error) {
	ref, ok, err := w.store.FindByName(ctx, name)
	if err != nil {
		return Ref{}, false, fmt.Errorf("find existing by name: %w", err)
	}
	if !ok {
		return Ref{}, false, nil
	}
	return w.withURL(ref), true, nil
}

// Create handles a new submission. The transient entity gets a fresh id that becomes
// the stored id when the insert succeeds.
func (w *Workflow) Create(ctx context.Context, rawName string) (Outcome, error) {
	id := w.newID()
	return w.submit(ctx, id, rawName, func(name string) (Ref, error) {
		return w.store.Insert(ctx, id, name)
	})
}

// Update handles an edit of the entity at id. The name lookup is not scoped to exclude id,
// so resubmitting a record's own name redirects to it without writing.
func (w *Workflow) Update(ctx context.Context, id uuid.UUID, rawName string) (Outcome, error) {
	return w.submit(ctx, id, rawName, func(name string) (Ref, error) {
		return w.store.UpdateName(ctx, id, name)
	})
}

func (w *Workflow) submit(ctx context.Context, id uuid.UUID, rawName string, write func(name string) (Ref, error)) (Outcome, error) {
	name, errs := w.sanitize(rawName)
	transient := Ref{ID: id, Name: name, URL: w.urlFor(id)}

	if len(errs) > 0 {
		return Outcome{State: Rejected, Entity: transient, Errors: errs}, nil
	}

	existing, found, err := w.FindExisting(ctx, name)
	if err != nil {
		return Outcome{}, err
	}
	if found {
		return redirectTo(existing), nil
	}

	stored, err := write(name)
	if err != nil {
		if errors.Is(err, ErrDuplicateName) {
			// Lost a race with a concurrent submission of the same name.
			return w.resolveLostRace(ctx, name, err)
		}
		return Outcome{}, err
	}

	stored = w.withURL(stored)
	return Outcome{State: Persisted, Entity: stored, RedirectURL: stored.URL}, nil
}

func (w *Workflow) resolveLostRace(ctx context.Context, name string, writeErr error) (Outcome, error) {
	existing, found, err := w.FindExisting(ctx, name)
	if err != nil {
		return Outcome{}, err
	}
	if !found {
		return Outcome{}, writeErr
	}
	return redirectTo(existing), nil
}

func (w *Workflow) withURL(ref Ref) Ref {
	ref.URL = w.urlFor(ref.ID)
	return ref
}

func redirectTo(existing Ref) Outcome {
	return Outcome{State: Redirected, Entity: existing, RedirectURL: existing.URL}
}
