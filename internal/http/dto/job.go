package dto

// TriggerJobRequest is the optional body for POST /api/v1/jobs/:job. Date is
// YYYY-MM-DD in the business timezone; empty means the job's default date.
type TriggerJobRequest struct {
	Date string `json:"date,omitempty"`
}

type TriggerJobResponse struct {
	Job      string `json:"job"`
	Date     string `json:"date,omitempty"`
	Enqueued bool   `json:"enqueued"`
}
