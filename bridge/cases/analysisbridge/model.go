package analysisbridge

import (
	"errors"
	"time"

	"github.com/jrazmi/artplanner/core/repositories/analysisjobsrepo"
	"github.com/jrazmi/artplanner/sdk/validation"
)

// ResubmitInput queues another analysis for an already uploaded art.
type ResubmitInput struct {
	UserID     string `json:"userId"`
	ArtID      string `json:"artId"`
	UserPrompt string `json:"userPrompt"`
}

func (in ResubmitInput) Validate() error {
	if validation.Blank(in.ArtID) {
		return errors.New("artId is required")
	}
	return nil
}

type Job struct {
	ID           string  `json:"id"`
	ArtID        string  `json:"artId"`
	UserPrompt   string  `json:"userPrompt"`
	Status       string  `json:"status"`
	Attempts     int     `json:"attempts"`
	ErrorMessage *string `json:"errorMessage"`
	CreatedAt    string  `json:"createdAt"`
	UpdatedAt    string  `json:"updatedAt"`
}

func MarshalJobToBridge(job analysisjobsrepo.Job) Job {
	return Job{
		ID:           job.JobID,
		ArtID:        job.ArtID,
		UserPrompt:   job.Prompt,
		Status:       string(job.Status),
		Attempts:     job.Attempts,
		ErrorMessage: job.ErrorMessage,
		CreatedAt:    job.CreatedAt.UTC().Format(time.RFC3339),
		UpdatedAt:    job.UpdatedAt.UTC().Format(time.RFC3339),
	}
}

func MarshalJobsToBridge(jobs []analysisjobsrepo.Job) []Job {
	out := make([]Job, len(jobs))
	for i, job := range jobs {
		out[i] = MarshalJobToBridge(job)
	}
	return out
}
