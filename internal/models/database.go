package models

// GORM models

import (
	"time"
)

// Conversation groups the question/answer exchanges of one client session.
// Created once per session, never updated or deleted.
type Conversation struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	CreatedAt time.Time `json:"created_at"`

	// Associations. Answers is declared so the store gets a foreign key on
	// answers.conversation_id; the report graph reaches answers through
	// Questions only.
	Questions []Question `json:"questions" gorm:"foreignKey:ConversationID"`
	Answers   []Answer   `json:"-" gorm:"foreignKey:ConversationID"`
}

// Question is a single user message inside a conversation.
type Question struct {
	ID             uint      `json:"id" gorm:"primaryKey"`
	ConversationID uint      `json:"conversation_id" gorm:"not null;index"`
	Text           string    `json:"text" gorm:"not null"`
	CreatedAt      time.Time `json:"created_at"`

	// Associations
	Answer *Answer `json:"answer" gorm:"foreignKey:QuestionID"`
}

// Answer is the completion backend's reply to one question. A question has
// at most one answer, and an answer only exists when the completion call
// succeeded.
type Answer struct {
	ID             uint      `json:"id" gorm:"primaryKey"`
	ConversationID uint      `json:"conversation_id" gorm:"not null;index"`
	QuestionID     uint      `json:"question_id" gorm:"not null;uniqueIndex"`
	Text           string    `json:"text" gorm:"not null"`
	CreatedAt      time.Time `json:"created_at"`

	// Associations
	Feedback []Feedback `json:"feedback" gorm:"foreignKey:AnswerID"`
}

// Feedback is a user rating attached to one answer. Rows accumulate as
// append-only history; repeated feedback on the same answer is never
// collapsed.
type Feedback struct {
	ID         uint      `json:"id" gorm:"primaryKey"`
	AnswerID   uint      `json:"answer_id" gorm:"not null;index"`
	IsPositive bool      `json:"is_positive" gorm:"not null"`
	Text       string    `json:"text"`
	CreatedAt  time.Time `json:"created_at"`
}

// Database interfaces for repository pattern
type ConversationRepository interface {
	Create(conversation *Conversation) error
	// GetGraph returns every conversation with its questions, each
	// question's answer and that answer's feedback, ordered ascending by
	// primary key at every nesting level.
	GetGraph() ([]Conversation, error)
}

type QuestionRepository interface {
	Create(question *Question) error
}

type AnswerRepository interface {
	Create(answer *Answer) error
}

type FeedbackRepository interface {
	Create(feedback *Feedback) error
}

// TableName methods for custom table names
func (Conversation) TableName() string { return "conversations" }
func (Question) TableName() string     { return "questions" }
func (Answer) TableName() string       { return "answers" }
func (Feedback) TableName() string     { return "feedback" }
