package redis

import "github.com/redis/rueidis"

// NewStoreForTest creates a Store around an existing client (for tests with a mock).
func NewStoreForTest(c rueidis.Client) *Store {
	return &Store{client: c}
}
