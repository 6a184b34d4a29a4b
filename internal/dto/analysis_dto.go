package dto

type AnalyzeFileResponse struct {
	Analysis       string `json:"analysis"`
	Summary        string `json:"summary"`
	Certificate    string `json:"certificate"`
	Escalated      string `json:"escalated"`
	FullName       string `json:"fullName"`
	DateInit       string `json:"dateInit"`
	DateEnd        string `json:"dateEnd"`
	Identification string `json:"identification"`
}
