package artsrepo

import (
	"context"
	"errors"
	"testing"

	"github.com/jrazmi/artplanner/sdk/logger"
)

type unreachableStorer struct {
	t *testing.T
}

func (s unreachableStorer) fail(method string) error {
	s.t.Errorf("%s reached the storer", method)
	return errors.New("invalid input syntax for type uuid")
}

func (s unreachableStorer) Create(context.Context, Art) error { return s.fail("Create") }
func (s unreachableStorer) Get(context.Context, string, string) (Art, error) {
	return Art{}, s.fail("Get")
}
func (s unreachableStorer) ListByUser(context.Context, string, *Status) ([]Art, error) {
	return nil, s.fail("ListByUser")
}
func (s unreachableStorer) Complete(context.Context, string, string, Result) (Art, error) {
	return Art{}, s.fail("Complete")
}

func TestRepository_MalformedIDIsNotFound(t *testing.T) {
	repo := NewRepository(logger.NewDiscard(), unreachableStorer{t})
	ctx := context.Background()

	if _, err := repo.Get(ctx, "abc", "u1"); !errors.Is(err, ErrNotFound) {
		t.Errorf("Get: expected ErrNotFound, got %v", err)
	}
	if _, err := repo.Complete(ctx, "abc", "u1", "/results/p.png", "ok"); !errors.Is(err, ErrNotFound) {
		t.Errorf("Complete: expected ErrNotFound, got %v", err)
	}
}
