package analysisjobsrepo

import (
	"fmt"
	"strings"
	"time"
)

type Status string

const (
	StatusQueued     Status = "queued"
	StatusProcessing Status = "processing"
	StatusCompleted  Status = "completed"
	StatusFailed     Status = "failed"
)

func ParseStatus(s string) (Status, error) {
	switch st := Status(strings.ToLower(strings.TrimSpace(s))); st {
	case StatusQueued, StatusProcessing, StatusCompleted, StatusFailed:
		return st, nil
	}
	return "", fmt.Errorf("invalid job status %q", s)
}

// Active reports whether the job is still waiting for or undergoing analysis.
func (s Status) Active() bool {
	return s == StatusQueued || s == StatusProcessing
}

// Job is one queued analysis of an art. A failed analysis is recorded here
// and never on the art itself.
type Job struct {
	JobID        string    `db:"job_id" bson:"_id"`
	ArtID        string    `db:"art_id" bson:"art_id"`
	UserID       string    `db:"user_id" bson:"user_id"`
	Prompt       string    `db:"prompt" bson:"prompt"`
	Status       Status    `db:"status" bson:"status"`
	Attempts     int       `db:"attempts" bson:"attempts"`
	ErrorMessage *string   `db:"error_message" bson:"error_message"`
	WorkerID     *string   `db:"worker_id" bson:"worker_id"`
	CreatedAt    time.Time `db:"created_at" bson:"created_at"`
	UpdatedAt    time.Time `db:"updated_at" bson:"updated_at"`
}

// GetID satisfies workers.Task.
func (j Job) GetID() string {
	return j.JobID
}

type CreateJob struct {
	ArtID  string
	UserID string
	Prompt string
}
