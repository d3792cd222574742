package repository

import (
	"github.com/hochschulassistent/backend/internal/models"
	"gorm.io/gorm"
)

// ConversationRepositoryImpl implements ConversationRepository
type ConversationRepositoryImpl struct {
	db *gorm.DB
}

func NewConversationRepository(db *gorm.DB) models.ConversationRepository {
	return &ConversationRepositoryImpl{db: db}
}

func (r *ConversationRepositoryImpl) Create(conversation *models.Conversation) error {
	return r.db.Create(conversation).Error
}

func (r *ConversationRepositoryImpl) GetGraph() ([]models.Conversation, error) {
	var conversations []models.Conversation
	byID := func(db *gorm.DB) *gorm.DB {
		return db.Order("id ASC")
	}
	err := r.db.Preload("Questions", byID).
		Preload("Questions.Answer").
		Preload("Questions.Answer.Feedback", byID).
		Order("id ASC").
		Find(&conversations).Error
	return conversations, err
}

// QuestionRepositoryImpl implements QuestionRepository
type QuestionRepositoryImpl struct {
	db *gorm.DB
}

func NewQuestionRepository(db *gorm.DB) models.QuestionRepository {
	return &QuestionRepositoryImpl{db: db}
}

func (r *QuestionRepositoryImpl) Create(question *models.Question) error {
	return r.db.Create(question).Error
}

// AnswerRepositoryImpl implements AnswerRepository
type AnswerRepositoryImpl struct {
	db *gorm.DB
}

func NewAnswerRepository(db *gorm.DB) models.AnswerRepository {
	return &AnswerRepositoryImpl{db: db}
}

func (r *AnswerRepositoryImpl) Create(answer *models.Answer) error {
	return r.db.Create(answer).Error
}

// FeedbackRepositoryImpl implements FeedbackRepository
type FeedbackRepositoryImpl struct {
	db *gorm.DB
}

func NewFeedbackRepository(db *gorm.DB) models.FeedbackRepository {
	return &FeedbackRepositoryImpl{db: db}
}

// Create inserts a new feedback row. Feedback is append-only history: a
// second rating for the same answer inserts a second row.
func (r *FeedbackRepositoryImpl) Create(feedback *models.Feedback) error {
	return r.db.Create(feedback).Error
}

// RepositoryManager bundles all repositories
type RepositoryManager struct {
	Conversation models.ConversationRepository
	Question     models.QuestionRepository
	Answer       models.AnswerRepository
	Feedback     models.FeedbackRepository
}

func NewRepositoryManager(db *gorm.DB) *RepositoryManager {
	return &RepositoryManager{
		Conversation: NewConversationRepository(db),
		Question:     NewQuestionRepository(db),
		Answer:       NewAnswerRepository(db),
		Feedback:     NewFeedbackRepository(db),
	}
}
