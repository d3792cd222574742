package services

import (
	"context"
	"fmt"
	"time"

	"github.com/hochschulassistent/backend/internal/database"
	"github.com/hochschulassistent/backend/internal/models"
	"github.com/hochschulassistent/backend/internal/repository"
	"github.com/hochschulassistent/backend/pkg/utils"
	"github.com/sirupsen/logrus"
)

// CompletionGateway produces an answer text for a question text.
type CompletionGateway interface {
	Complete(ctx context.Context, questionText string) (string, error)
}

// DisabledAnswerText is returned and persisted when the assistant is
// switched off.
const DisabledAnswerText = "Der Hochschulassistent ist ausgeschaltet."

const reportCacheTTL = 5 * time.Minute

type ChatService struct {
	repoManager *repository.RepositoryManager
	gateway     CompletionGateway
	cache       *database.Cache
	enabled     bool
	logger      *logrus.Logger
}

func NewChatService(
	repoManager *repository.RepositoryManager,
	gateway CompletionGateway,
	cache *database.Cache,
	enabled bool,
	logger *logrus.Logger,
) *ChatService {
	return &ChatService{
		repoManager: repoManager,
		gateway:     gateway,
		cache:       cache,
		enabled:     enabled,
		logger:      logger,
	}
}

// CreateSession creates a fresh conversation and returns its id. One atomic
// insert per call; concurrent callers each get a distinct id.
func (s *ChatService) CreateSession(ctx context.Context) (uint, error) {
	conversation := &models.Conversation{}
	if err := s.repoManager.Conversation.Create(conversation); err != nil {
		return 0, fmt.Errorf("failed to create conversation: %w", err)
	}

	utils.ContextLogger(ctx, s.logger).WithField("conversation_id", conversation.ID).Info("Session created")
	s.invalidateReport(ctx)

	return conversation.ID, nil
}

// Ask persists the question, obtains an answer from the completion backend
// and persists it. The question is stored before the completion call; when
// the call fails no answer row is written and the question stays unanswered.
func (s *ChatService) Ask(ctx context.Context, conversationID uint, message string) (*models.AskResponse, error) {
	question := &models.Question{
		ConversationID: conversationID,
		Text:           message,
	}
	if err := s.repoManager.Question.Create(question); err != nil {
		return nil, fmt.Errorf("failed to create question: %w", err)
	}

	text := DisabledAnswerText
	if s.enabled {
		var err error
		text, err = s.gateway.Complete(ctx, message)
		if err != nil {
			utils.ContextLogger(ctx, s.logger).WithError(err).WithFields(logrus.Fields{
				"conversation_id": conversationID,
				"question_id":     question.ID,
			}).Error("Completion failed, question stays unanswered")
			return nil, err
		}
	}

	answer := &models.Answer{
		ConversationID: conversationID,
		QuestionID:     question.ID,
		Text:           text,
	}
	if err := s.repoManager.Answer.Create(answer); err != nil {
		return nil, fmt.Errorf("failed to create answer: %w", err)
	}

	utils.ContextLogger(ctx, s.logger).WithFields(logrus.Fields{
		"conversation_id": conversationID,
		"question_id":     question.ID,
		"answer_id":       answer.ID,
	}).Info("Question answered")

	s.invalidateReport(ctx)

	return &models.AskResponse{
		Text:     text,
		AnswerID: answer.ID,
	}, nil
}

// RecordFeedback attaches a rating to an existing answer. Existence of the
// answer is enforced by the store's foreign key; every call inserts a new
// row (append-only history).
func (s *ChatService) RecordFeedback(ctx context.Context, answerID uint, isPositive bool, text string) error {
	feedback := &models.Feedback{
		AnswerID:   answerID,
		IsPositive: isPositive,
		Text:       text,
	}
	if err := s.repoManager.Feedback.Create(feedback); err != nil {
		return fmt.Errorf("failed to create feedback: %w", err)
	}

	utils.ContextLogger(ctx, s.logger).WithFields(logrus.Fields{
		"answer_id":   answerID,
		"is_positive": isPositive,
	}).Info("Feedback recorded")

	s.invalidateReport(ctx)

	return nil
}

// GetReport returns the full conversation graph for the reporting view,
// ordered ascending by id at every nesting level. Cache-first with explicit
// invalidation after writes, so a read immediately after feedback sees the
// new row.
func (s *ChatService) GetReport(ctx context.Context) ([]models.Conversation, error) {
	if s.cache != nil {
		if graph, err := s.cache.GetCachedConversationGraph(ctx); err == nil {
			utils.ContextLogger(ctx, s.logger).Debug("Conversation graph served from cache")
			return graph, nil
		}
	}

	graph, err := s.repoManager.Conversation.GetGraph()
	if err != nil {
		return nil, fmt.Errorf("failed to load conversation graph: %w", err)
	}

	if s.cache != nil {
		if err := s.cache.CacheConversationGraph(ctx, graph, reportCacheTTL); err != nil {
			utils.ContextLogger(ctx, s.logger).WithError(err).Warn("Failed to cache conversation graph")
		}
	}

	return graph, nil
}

func (s *ChatService) invalidateReport(ctx context.Context) {
	if s.cache == nil {
		return
	}
	if err := s.cache.InvalidateConversationGraph(ctx); err != nil {
		utils.ContextLogger(ctx, s.logger).WithError(err).Warn("Failed to invalidate conversation graph cache")
	}
}
