package taskspgxstore

import (
	"errors"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/jrazmi/artplanner/core/repositories/tasksrepo"
)

func TestNotFound(t *testing.T) {
	for name, in := range map[string]error{
		"no rows":        pgx.ErrNoRows,
		"malformed uuid": &pgconn.PgError{Code: "22P02"},
	} {
		if got := notFound(in); !errors.Is(got, tasksrepo.ErrNotFound) {
			t.Errorf("%s: expected tasksrepo.ErrNotFound, got %v", name, got)
		}
	}

	if got := notFound(&pgconn.PgError{Code: "23505"}); errors.Is(got, tasksrepo.ErrNotFound) {
		t.Errorf("Expected a unique violation to stay distinct, got %v", got)
	}
}
