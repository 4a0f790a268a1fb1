package archive

import "github.com/redis/rueidis"

// NewRepoForTest creates a Repo with the provided rueidis client (test-only).
func NewRepoForTest(c rueidis.Client, embedder Embedder, index, prefix string) *Repo {
	return &Repo{
		client:   c,
		embedder: embedder,
		index:    index,
		prefix:   prefix,
	}
}
