// Package embedding generates the semantic vectors that power job/candidate
// matching. Vectors are produced by an external embedding API and stored
// next to the profiles and postings they describe; the nearest-neighbor
// search itself runs inside the database.
package embedding

import "context"

// Embedder is the text-embedding provider interface.
type Embedder interface {
	// Embed generates an embedding vector for a single text.
	Embed(ctx context.Context, text string) ([]float32, error)

	// Model returns the name of the embedding model being used.
	Model() string
}
