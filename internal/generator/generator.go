package generator

import (
	"github.com/google/uuid"
)

// Generator produces values of type T on demand. Used for unique
// identifiers, but general enough for any lazily produced sequence.
type Generator[T any] interface {
	Next() (T, error)
}

// UUIDV4Generator produces random UUIDv4 strings. Safe for concurrent use.
type UUIDV4Generator struct{}

func (g *UUIDV4Generator) Next() (string, error) {
	id, err := uuid.NewRandom()
	if err != nil {
		return "", err
	}
	return id.String(), nil
}

var _ Generator[string] = (*UUIDV4Generator)(nil)
