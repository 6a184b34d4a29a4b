package dto

type TranscriptionResponse struct {
	Transcription string `json:"transcription"`
	Timestamp     string `json:"timestamp"`
}
