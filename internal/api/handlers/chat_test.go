package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/hochschulassistent/backend/internal/auth"
	"github.com/hochschulassistent/backend/internal/middleware"
	"github.com/hochschulassistent/backend/internal/models"
	"github.com/hochschulassistent/backend/internal/openai"
	"github.com/hochschulassistent/backend/internal/repository"
	"github.com/hochschulassistent/backend/internal/services"
	"github.com/hochschulassistent/backend/pkg/utils"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file::memory:?_foreign_keys=on"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, db.AutoMigrate(
		&models.Conversation{},
		&models.Question{},
		&models.Answer{},
		&models.Feedback{},
	))

	return db
}

// newTestRouter wires the full handler chain against an in-memory store and
// the given completion backend stub, mirroring the production route setup.
func newTestRouter(t *testing.T, passwordRequired bool, secrets []string, backend http.Handler) (*gin.Engine, *gorm.DB, func()) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	log := logrus.New()
	db := setupTestDB(t)
	repos := repository.NewRepositoryManager(db)

	backendServer := httptest.NewServer(backend)

	client := openai.NewClient(backendServer.URL, "test-key", "", log)
	gateway := openai.NewService(client, "test-model", log)
	gate := auth.NewGate(passwordRequired, secrets)
	chatService := services.NewChatService(repos, gateway, nil, true, log)

	chatHandler := NewChatHandler(chatService, gate, log)
	reportHandler := NewReportHandler(chatService, log)

	router := gin.New()
	router.GET("/session", chatHandler.HandleSession)
	router.GET("/ask", middleware.AccessGate(gate, log), chatHandler.HandleAsk)
	router.GET("/feedback", chatHandler.HandleFeedback)
	router.GET("/set-password-required", chatHandler.HandleGateStatus)
	router.GET("/conversations", reportHandler.HandleConversations)
	router.GET("/sql", reportHandler.HandleReport)

	return router, db, backendServer.Close
}

func answeringBackend(answer string) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(openai.CompletionResponse{
			Choices: []openai.Choice{{Text: answer}},
		})
	})
}

func failingBackend() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		w.Write([]byte("backend detail that must not leak"))
	})
}

func doRequest(router *gin.Engine, method, path string, header http.Header) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, nil)
	if header != nil {
		req.Header = header
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func askPath(message string, conversationID string) string {
	q := url.Values{}
	q.Set("message", message)
	q.Set("conversation_id", conversationID)
	return "/ask?" + q.Encode()
}

func TestSessionAndAsk(t *testing.T) {
	router, _, done := newTestRouter(t, false, nil, answeringBackend("Die Prüfung ist am 15. Februar."))
	defer done()

	w := doRequest(router, "GET", "/session", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "1", w.Body.String())

	w = doRequest(router, "GET", askPath("Wann ist die Prüfung?", "1"), nil)
	require.Equal(t, http.StatusOK, w.Code)

	var response models.AskResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	assert.Equal(t, "Die Prüfung ist am 15. Februar.", response.Text)
	assert.EqualValues(t, 1, response.AnswerID)
}

func TestAsk_GateOffAcceptsAnyCredential(t *testing.T) {
	router, _, done := newTestRouter(t, false, nil, answeringBackend("Antwort"))
	defer done()

	doRequest(router, "GET", "/session", nil)

	// No Authorization header at all.
	w := doRequest(router, "GET", askPath("Frage", "1"), nil)
	assert.Equal(t, http.StatusOK, w.Code)

	// Arbitrary credential.
	header := http.Header{}
	header.Set("Authorization", "Bearer voellig-falsch")
	w = doRequest(router, "GET", askPath("Frage", "1"), header)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestAsk_GateOnRejectsInvalidCredential(t *testing.T) {
	router, db, done := newTestRouter(t, true, []string{"geheim"}, answeringBackend("Antwort"))
	defer done()

	doRequest(router, "GET", "/session", nil)

	header := http.Header{}
	header.Set("Authorization", "Bearer falsch")
	w := doRequest(router, "GET", askPath("Frage", "1"), header)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, utils.MsgUnauthorized, w.Body.String())

	// Nothing was persisted for the rejected request.
	var questionCount int64
	require.NoError(t, db.Model(&models.Question{}).Count(&questionCount).Error)
	assert.EqualValues(t, 0, questionCount)
}

func TestAsk_GateOnAcceptsValidCredential(t *testing.T) {
	router, _, done := newTestRouter(t, true, []string{"geheim"}, answeringBackend("Antwort"))
	defer done()

	doRequest(router, "GET", "/session", nil)

	header := http.Header{}
	header.Set("Authorization", "Bearer geheim")
	w := doRequest(router, "GET", askPath("Frage", "1"), header)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestAsk_BackendFailure(t *testing.T) {
	router, db, done := newTestRouter(t, false, nil, failingBackend())
	defer done()

	doRequest(router, "GET", "/session", nil)

	w := doRequest(router, "GET", askPath("Wann ist die Prüfung?", "1"), nil)
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Equal(t, utils.MsgInternalError, w.Body.String())
	assert.NotContains(t, w.Body.String(), "backend detail")

	// The question survives, no answer is written.
	var questionCount, answerCount int64
	require.NoError(t, db.Model(&models.Question{}).Count(&questionCount).Error)
	require.NoError(t, db.Model(&models.Answer{}).Count(&answerCount).Error)
	assert.EqualValues(t, 1, questionCount)
	assert.EqualValues(t, 0, answerCount)
}

func TestAsk_MalformedInput(t *testing.T) {
	router, db, done := newTestRouter(t, false, nil, answeringBackend("Antwort"))
	defer done()

	// Missing message.
	w := doRequest(router, "GET", "/ask?conversation_id=1", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	// Non-numeric conversation id.
	w = doRequest(router, "GET", askPath("Frage", "abc"), nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	var questionCount int64
	require.NoError(t, db.Model(&models.Question{}).Count(&questionCount).Error)
	assert.EqualValues(t, 0, questionCount)
}

func TestFeedbackFlow(t *testing.T) {
	router, _, done := newTestRouter(t, false, nil, answeringBackend("Antwort"))
	defer done()

	doRequest(router, "GET", "/session", nil)
	w := doRequest(router, "GET", askPath("Frage", "1"), nil)
	require.Equal(t, http.StatusOK, w.Code)

	w = doRequest(router, "GET", "/feedback?approve=1&answer_id=1&text=hilfreich", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "ok", w.Body.String())

	// The aggregate read shows the full chain including the new feedback.
	w = doRequest(router, "GET", "/conversations", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var graph []models.Conversation
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &graph))
	require.Len(t, graph, 1)
	require.Len(t, graph[0].Questions, 1)
	require.NotNil(t, graph[0].Questions[0].Answer)
	require.Len(t, graph[0].Questions[0].Answer.Feedback, 1)
	assert.True(t, graph[0].Questions[0].Answer.Feedback[0].IsPositive)
	assert.Equal(t, "hilfreich", graph[0].Questions[0].Answer.Feedback[0].Text)
}

func TestFeedback_NegativeAndValidation(t *testing.T) {
	router, db, done := newTestRouter(t, false, nil, answeringBackend("Antwort"))
	defer done()

	doRequest(router, "GET", "/session", nil)
	doRequest(router, "GET", askPath("Frage", "1"), nil)

	w := doRequest(router, "GET", "/feedback?approve=0&answer_id=1", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var feedback models.Feedback
	require.NoError(t, db.First(&feedback).Error)
	assert.False(t, feedback.IsPositive)

	// approve must be 0 or 1.
	w = doRequest(router, "GET", "/feedback?approve=ja&answer_id=1", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestFeedback_UnknownAnswerStaysOpaque(t *testing.T) {
	router, _, done := newTestRouter(t, false, nil, answeringBackend("Antwort"))
	defer done()

	w := doRequest(router, "GET", "/feedback?approve=1&answer_id=999", nil)
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	// The constraint violation detail never reaches the client.
	assert.Equal(t, utils.MsgInternalError, w.Body.String())
}

func TestGateStatus(t *testing.T) {
	router, _, done := newTestRouter(t, true, []string{"geheim"}, answeringBackend(""))
	defer done()

	w := doRequest(router, "GET", "/set-password-required", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var status models.GateStatusResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &status))
	assert.True(t, status.PasswordRequired)
}

func TestReportHTML(t *testing.T) {
	router, _, done := newTestRouter(t, false, nil, answeringBackend("<b>Antwort</b>"))
	defer done()

	doRequest(router, "GET", "/session", nil)
	doRequest(router, "GET", askPath("Frage", "1"), nil)
	doRequest(router, "GET", "/feedback?approve=1&answer_id=1", nil)

	w := doRequest(router, "GET", "/sql", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Header().Get("Content-Type"), "text/html")
	assert.Contains(t, w.Body.String(), "Conversation 1")
	// Answer text is escaped, not injected.
	assert.Contains(t, w.Body.String(), "&lt;b&gt;Antwort&lt;/b&gt;")
}
