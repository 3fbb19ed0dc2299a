package models

// ParseFailure describes model output that could not be decoded as a JSON object.
type ParseFailure struct {
	Error             string `json:"error"`
	Details           string `json:"details"`
	RawContentPreview string `json:"raw_content_preview"`
}

// UpstreamFailure is the batch body returned when the chat-completion API rejects a call.
type UpstreamFailure struct {
	Error      string `json:"error"`
	StatusCode int    `json:"status_code"`
	Details    string `json:"details"`
}

type HealthResponse struct {
	Status   string `json:"status"`
	Provider string `json:"provider"`
	Model    string `json:"model"`
}
