package artsrepo

import (
	"fmt"
	"strings"
	"time"
)

// Status is the lifecycle state of an uploaded drawing.
type Status string

const (
	StatusPending   Status = "pending"
	StatusCompleted Status = "completed"
)

func ParseStatus(s string) (Status, error) {
	switch Status(strings.ToLower(strings.TrimSpace(s))) {
	case StatusPending:
		return StatusPending, nil
	case StatusCompleted:
		return StatusCompleted, nil
	}
	return "", fmt.Errorf("invalid art status %q", s)
}

// Art is an uploaded drawing and, once analyzed, its annotated image and
// written feedback.
type Art struct {
	ArtID         string     `db:"art_id" bson:"_id"`
	UserID        string     `db:"user_id" bson:"user_id"`
	OriginalPath  string     `db:"original_path" bson:"original_path"`
	ProcessedPath *string    `db:"processed_path" bson:"processed_path"`
	FeedbackText  *string    `db:"feedback_text" bson:"feedback_text"`
	Status        Status     `db:"status" bson:"status"`
	CreatedAt     time.Time  `db:"created_at" bson:"created_at"`
	CompletedAt   *time.Time `db:"completed_at" bson:"completed_at"`
}

type CreateArt struct {
	UserID       string
	OriginalPath string
}

// Result is what an analysis produced for an art.
type Result struct {
	ProcessedPath string
	FeedbackText  string
	CompletedAt   time.Time
}
