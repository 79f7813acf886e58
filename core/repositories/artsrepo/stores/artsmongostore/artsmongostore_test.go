package artsmongostore

import (
	"errors"
	"fmt"
	"testing"

	"go.mongodb.org/mongo-driver/mongo"

	"github.com/jrazmi/artplanner/core/repositories/artsrepo"
)

func TestMapErr(t *testing.T) {
	if mapErr(nil) != nil {
		t.Error("Expected nil for nil")
	}
	if got := mapErr(fmt.Errorf("decode: %w", mongo.ErrNoDocuments)); !errors.Is(got, artsrepo.ErrNotFound) {
		t.Errorf("Expected artsrepo.ErrNotFound, got %v", got)
	}

	dup := mongo.WriteException{WriteErrors: mongo.WriteErrors{{Code: 11000}}}
	if got := mapErr(dup); errors.Is(got, artsrepo.ErrNotFound) {
		t.Errorf("Expected a duplicate key to stay distinct, got %v", got)
	}
}
