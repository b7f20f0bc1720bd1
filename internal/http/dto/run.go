package dto

import (
	"time"

	"hollymart.app/intel/internal/model"
)

type RunResponse struct {
	ID         int64      `json:"id"`
	Job        string     `json:"job"`
	Status     string     `json:"status"`
	Processed  int        `json:"processed"`
	Created    int        `json:"created"`
	Skipped    int        `json:"skipped"`
	Errors     []string   `json:"errors,omitempty"`
	StartedAt  time.Time  `json:"started_at"`
	FinishedAt *time.Time `json:"finished_at,omitempty"`
}

func ToRunResponse(r *model.JobRun) RunResponse {
	return RunResponse{
		ID:         r.ID,
		Job:        string(r.Job),
		Status:     string(r.Status),
		Processed:  r.Summary.Processed,
		Created:    r.Summary.Created,
		Skipped:    r.Summary.Skipped,
		Errors:     r.Summary.Errors,
		StartedAt:  r.StartedAt,
		FinishedAt: r.FinishedAt,
	}
}

func ToRunResponses(runs []model.JobRun) []RunResponse {
	out := make([]RunResponse, len(runs))
	for i := range runs {
		out[i] = ToRunResponse(&runs[i])
	}
	return out
}
