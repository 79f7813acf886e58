package mongodb_test

import (
	"errors"
	"fmt"
	"testing"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/jrazmi/artplanner/infrastructure/mongodb"
)

func TestHandleError(t *testing.T) {
	if mongodb.HandleError(nil) != nil {
		t.Error("Expected nil for nil")
	}

	if !errors.Is(mongodb.HandleError(fmt.Errorf("find: %w", mongo.ErrNoDocuments)), mongodb.ErrDBNotFound) {
		t.Error("Expected not found mapping")
	}

	dup := mongo.WriteException{WriteErrors: mongo.WriteErrors{{Code: 11000, Message: "E11000 duplicate key"}}}
	if !errors.Is(mongodb.HandleError(dup), mongodb.ErrDBDuplicatedEntry) {
		t.Error("Expected duplicate key mapping")
	}

	other := errors.New("network down")
	if !errors.Is(mongodb.HandleError(other), other) {
		t.Error("Expected passthrough for other errors")
	}
}

func TestActiveJobFilter(t *testing.T) {
	in, ok := mongodb.ActiveJobFilter()["status"].(bson.M)
	if !ok {
		t.Fatal("Expected a status condition")
	}
	statuses, ok := in["$in"].(bson.A)
	if !ok || len(statuses) != 2 || statuses[0] != "queued" || statuses[1] != "processing" {
		t.Errorf("Expected queued and processing, got %v", in["$in"])
	}
}
