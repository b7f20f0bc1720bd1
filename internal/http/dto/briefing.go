package dto

import (
	"hollymart.app/intel/internal/model"
)

type BriefingResponse struct {
	ID           int64  `json:"id"`
	BriefingDate string `json:"briefing_date"`
	Content      string `json:"content"`
	TopicCount   int    `json:"topic_count"`
	TaskCount    int    `json:"task_count"`
}

func ToBriefingResponse(b *model.Briefing) BriefingResponse {
	return BriefingResponse{
		ID:           b.ID,
		BriefingDate: b.BriefingDate.Format("2006-01-02"),
		Content:      b.Content,
		TopicCount:   b.TopicCount,
		TaskCount:    b.TaskCount,
	}
}
