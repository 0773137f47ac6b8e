package sqlassets

import _ "embed"

//go:embed schema/catalog/collations.sql
var CollationsSQL string

//go:embed schema/catalog/genres.sql
var GenresSQL string

//go:embed schema/catalog/books.sql
var BooksSQL string

//go:embed schema/documents/genre.schema.json
var GenreDocumentSchema []byte
