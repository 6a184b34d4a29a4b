package dto

type AgentRequest struct {
	Prompt        string `json:"prompt" validate:"required"`
	SessionID     string `json:"session_id" validate:"required"`
	FullName      string `json:"fullName"`
	Nickname      string `json:"nickname"`
	IDCard        string `json:"idCard"`
	Career        string `json:"career"`
	Email         string `json:"email"`
	StudentGender string `json:"student_gender"`
	MentorGender  string `json:"mentor_gender"`
}

type AgentResponse struct {
	SessionID string `json:"session_id"`
	Prompt    string `json:"prompt"`
	Response  string `json:"response"`
	Timestamp string `json:"timestamp"`
	Escalated bool   `json:"escalated"`
	// Message is the envelope message; not part of the data payload.
	Message string `json:"-"`
}
