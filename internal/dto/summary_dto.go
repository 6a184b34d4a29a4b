package dto

import "udla-mentor-be/pkg/summary"

type SummaryRequest struct {
	SessionID    string `json:"session_id"`
	Conversation string `json:"conversation"`
}

type SummaryResponse struct {
	Summary   summary.Summary `json:"summary"`
	Timestamp string          `json:"timestamp"`
	SessionID *string         `json:"session_id"`
	Message   string          `json:"-"`
}
