package models

type AskRequest struct {
	Message        string `form:"message" binding:"required"`
	ConversationID uint   `form:"conversation_id" binding:"required"`
}

type AskResponse struct {
	Text     string `json:"text"`
	AnswerID uint   `json:"answer_id"`
}

type FeedbackRequest struct {
	Approve  string `form:"approve" binding:"required,oneof=0 1"`
	AnswerID uint   `form:"answer_id" binding:"required"`
	Text     string `form:"text"`
}

type GateStatusResponse struct {
	PasswordRequired bool `json:"passwordRequired"`
}

type HealthResponse struct {
	Status    string            `json:"status"`
	Service   string            `json:"service"`
	Timestamp string            `json:"timestamp"`
	Services  map[string]string `json:"services"`
}
