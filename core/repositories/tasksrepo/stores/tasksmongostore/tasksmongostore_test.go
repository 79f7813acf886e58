package tasksmongostore

import (
	"errors"
	"fmt"
	"testing"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/jrazmi/artplanner/core/repositories/tasksrepo"
)

func TestMapErr(t *testing.T) {
	if mapErr(nil) != nil {
		t.Error("Expected nil for nil")
	}
	if got := mapErr(fmt.Errorf("decode: %w", mongo.ErrNoDocuments)); !errors.Is(got, tasksrepo.ErrNotFound) {
		t.Errorf("Expected tasksrepo.ErrNotFound, got %v", got)
	}

	other := errors.New("server selection timeout")
	if got := mapErr(other); !errors.Is(got, other) || errors.Is(got, tasksrepo.ErrNotFound) {
		t.Errorf("Expected the driver error wrapped, got %v", got)
	}
}

// The filter keys must match the document keys the Task struct encodes to.
func TestOwnedByMatchesDocumentKeys(t *testing.T) {
	raw, err := bson.Marshal(tasksrepo.Task{TaskID: "t1", UserID: "u1", Title: "hands"})
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	var doc bson.M
	if err := bson.Unmarshal(raw, &doc); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}

	for key, want := range ownedBy("t1", "u1") {
		if doc[key] != want {
			t.Errorf("Filter key %q = %v, document has %v", key, want, doc[key])
		}
	}
}
