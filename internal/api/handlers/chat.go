package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/hochschulassistent/backend/internal/auth"
	"github.com/hochschulassistent/backend/internal/models"
	"github.com/hochschulassistent/backend/internal/openai"
	"github.com/hochschulassistent/backend/internal/services"
	"github.com/hochschulassistent/backend/pkg/utils"
	"github.com/sirupsen/logrus"
)

type ChatHandler struct {
	chatService *services.ChatService
	gate        *auth.Gate
	logger      *logrus.Logger
}

func NewChatHandler(chatService *services.ChatService, gate *auth.Gate, logger *logrus.Logger) *ChatHandler {
	return &ChatHandler{
		chatService: chatService,
		gate:        gate,
		logger:      logger,
	}
}

// HandleSession creates a new conversation and returns its id as bare text.
func (h *ChatHandler) HandleSession(c *gin.Context) {
	id, err := h.chatService.CreateSession(c.Request.Context())
	if err != nil {
		utils.ContextLogger(c.Request.Context(), h.logger).WithError(err).Error("Failed to create session")
		utils.ErrorResponse(c, http.StatusInternalServerError, utils.MsgInternalError)
		return
	}

	utils.TextResponse(c, http.StatusOK, strconv.FormatUint(uint64(id), 10))
}

// HandleAsk runs the question through the completion backend and returns the
// answer together with its id. The access gate has already passed as
// middleware by the time this runs.
func (h *ChatHandler) HandleAsk(c *gin.Context) {
	log := utils.ContextLogger(c.Request.Context(), h.logger)

	var req models.AskRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		log.WithError(err).Warn("Invalid ask request")
		utils.ErrorResponse(c, http.StatusBadRequest, utils.MsgBadRequest)
		return
	}

	response, err := h.chatService.Ask(c.Request.Context(), req.ConversationID, req.Message)
	if err != nil {
		if errors.Is(err, openai.ErrCompletionBackend) {
			log.WithField("conversation_id", req.ConversationID).Error("Completion backend failure")
		} else {
			log.WithError(err).Error("Ask failed")
		}
		utils.ErrorResponse(c, http.StatusInternalServerError, utils.MsgInternalError)
		return
	}

	c.JSON(http.StatusOK, response)
}

// HandleFeedback attaches a rating to an answer and returns a plain success
// token. Store failures answer with the generic message; the cause is logged
// only.
func (h *ChatHandler) HandleFeedback(c *gin.Context) {
	log := utils.ContextLogger(c.Request.Context(), h.logger)

	var req models.FeedbackRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		log.WithError(err).Warn("Invalid feedback request")
		utils.ErrorResponse(c, http.StatusBadRequest, utils.MsgBadRequest)
		return
	}

	isPositive := req.Approve == "1"
	if err := h.chatService.RecordFeedback(c.Request.Context(), req.AnswerID, isPositive, req.Text); err != nil {
		log.WithError(err).WithField("answer_id", req.AnswerID).Error("Failed to record feedback")
		utils.ErrorResponse(c, http.StatusInternalServerError, utils.MsgInternalError)
		return
	}

	utils.TextResponse(c, http.StatusOK, "ok")
}

// HandleGateStatus tells the client whether it needs to prompt for a secret.
func (h *ChatHandler) HandleGateStatus(c *gin.Context) {
	c.JSON(http.StatusOK, models.GateStatusResponse{
		PasswordRequired: h.gate.Required(),
	})
}
