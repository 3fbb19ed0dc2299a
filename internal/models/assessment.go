package models

const (
	RoleSystem = "system"
	RoleUser   = "user"
)

// ChatMessage is one role-tagged entry of a chat-completion request.
type ChatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// UploadedFile is a résumé already persisted under the upload directory.
type UploadedFile struct {
	OriginalName string
	StoredName   string
	Path         string
	Ext          string
}

// AssessmentInput holds everything a client submits for one analysis request.
type AssessmentInput struct {
	MBTI           string
	City           string
	HollandAnswers map[string]string
	Resume         *UploadedFile
}

type CareerRequest struct {
	AssessmentInput
	CareerID   string
	CareerName string
}
