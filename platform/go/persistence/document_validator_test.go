package persistence

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestDocumentValidatorGenre(t *testing.T) {
	t.Parallel()

	v := NewDocumentValidator()
	ctx := context.Background()

	require.NoError(t, v.Validate(ctx, DocumentKindGenre, []byte(`{"name":"Fantasy"}`)))
	require.Error(t, v.Validate(ctx, DocumentKindGenre, []byte(`{"name":"ab"}`)))
	require.Error(t, v.Validate(ctx, DocumentKindGenre, []byte(`{}`)))
	require.Error(t, v.Validate(ctx, DocumentKindGenre, []byte(`{"name":"Fantasy","extra":true}`)))
	require.Error(t, v.Validate(ctx, DocumentKindGenre, nil))
}

func TestDocumentValidatorUnknownKind(t *testing.T) {
	t.Parallel()

	err := NewDocumentValidator().Validate(context.Background(), DocumentKind("author"), []byte(`{}`))
	require.ErrorContains(t, err, "no schema registered")
}

func TestSplitStatements(t *testing.T) {
	t.Parallel()

	statements := splitStatements("-- comment\nCREATE TABLE a (id INT);\n\n  ;CREATE INDEX b ON a (id);\n")
	require.Len(t, statements, 2)
	require.Contains(t, statements[1], "CREATE INDEX b")
}
