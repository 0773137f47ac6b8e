package persistence

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v5"

	sqlassets "github.com/zenGate-Global/local-library/database"
)

// DocumentKind names a document collection with a registered JSON Schema.
type DocumentKind string

const (
	DocumentKindGenre DocumentKind = "genre"
)

var documentSchemas = map[DocumentKind][]byte{
	DocumentKindGenre: sqlassets.GenreDocumentSchema,
}

// DocumentValidator validates documents against the embedded collection schemas,
// compiled lazily via santhosh-tekuri/jsonschema and cached per kind.
type DocumentValidator struct {
	mu    sync.RWMutex
	cache map[DocumentKind]*jsonschema.Schema
}

// NewDocumentValidator returns a validator with an empty schema cache.
func NewDocumentValidator() *DocumentValidator {
	return &DocumentValidator{
		cache: make(map[DocumentKind]*jsonschema.Schema),
	}
}

// Validate ensures the encoded document matches the schema registered for kind.
func (v *DocumentValidator) Validate(ctx context.Context, kind DocumentKind, document []byte) error {
	if len(document) == 0 {
		return fmt.Errorf("document is required for validation")
	}

	compiled, err := v.getOrCompile(kind)
	if err != nil {
		return err
	}

	var decoded any
	if err := json.Unmarshal(document, &decoded); err != nil {
		return fmt.Errorf("decode document: %w", err)
	}

	if err := compiled.Validate(decoded); err != nil {
		return fmt.Errorf("%s document validation: %w", kind, err)
	}

	return nil
}

func (v *DocumentValidator) getOrCompile(kind DocumentKind) (*jsonschema.Schema, error) {
	v.mu.RLock()
	compiled, ok := v.cache[kind]
	v.mu.RUnlock()
	if ok {
		return compiled, nil
	}

	definition, ok := documentSchemas[kind]
	if !ok {
		return nil, fmt.Errorf("no schema registered for %q documents", kind)
	}

	v.mu.Lock()
	defer v.mu.Unlock()

	// another goroutine may have populated the cache while we were waiting
	if compiled, ok = v.cache[kind]; ok {
		return compiled, nil
	}

	key := fmt.Sprintf("memory://documents/%s.schema.json", kind)
	compiler := jsonschema.NewCompiler()
	if err := compiler.AddResource(key, bytes.NewReader(definition)); err != nil {
		return nil, fmt.Errorf("register schema %s: %w", key, err)
	}

	newCompiled, err := compiler.Compile(key)
	if err != nil {
		return nil, fmt.Errorf("compile schema %s: %w", key, err)
	}

	v.cache[kind] = newCompiled
	return newCompiled, nil
}
