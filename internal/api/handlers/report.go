package handlers

import (
	"html/template"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/hochschulassistent/backend/internal/models"
	"github.com/hochschulassistent/backend/internal/services"
	"github.com/hochschulassistent/backend/pkg/utils"
	"github.com/sirupsen/logrus"
)

type ReportHandler struct {
	chatService *services.ChatService
	logger      *logrus.Logger
	tmpl        *template.Template
}

func NewReportHandler(chatService *services.ChatService, logger *logrus.Logger) *ReportHandler {
	return &ReportHandler{
		chatService: chatService,
		logger:      logger,
		tmpl:        template.Must(template.New("report").Parse(reportTemplate)),
	}
}

// HandleConversations serves the aggregate conversation graph as JSON for
// the reporting collaborator.
func (h *ReportHandler) HandleConversations(c *gin.Context) {
	graph, err := h.chatService.GetReport(c.Request.Context())
	if err != nil {
		utils.ContextLogger(c.Request.Context(), h.logger).WithError(err).Error("Failed to load conversation graph")
		utils.ErrorResponse(c, http.StatusInternalServerError, utils.MsgInternalError)
		return
	}

	c.JSON(http.StatusOK, graph)
}

// HandleReport renders the conversation graph as an HTML table for human
// inspection.
func (h *ReportHandler) HandleReport(c *gin.Context) {
	log := utils.ContextLogger(c.Request.Context(), h.logger)

	graph, err := h.chatService.GetReport(c.Request.Context())
	if err != nil {
		log.WithError(err).Error("Failed to load conversation graph")
		utils.ErrorResponse(c, http.StatusInternalServerError, utils.MsgInternalError)
		return
	}

	c.Header("Content-Type", "text/html; charset=utf-8")
	c.Status(http.StatusOK)
	if err := h.tmpl.Execute(c.Writer, buildReportView(graph)); err != nil {
		log.WithError(err).Error("Failed to render report")
	}
}

type reportConversation struct {
	ID   uint
	Rows []reportRow
}

type reportRow struct {
	QuestionID   uint
	QuestionText string
	AnswerID     uint
	AnswerText   string
	HasFeedback  bool
	IsPositive   bool
	FeedbackText string
}

// buildReportView flattens the graph into per-conversation table rows. Only
// answered questions appear, mirroring the original reporting view. The most
// recent feedback row decides the row color.
func buildReportView(graph []models.Conversation) []reportConversation {
	view := make([]reportConversation, 0, len(graph))
	for _, conversation := range graph {
		rc := reportConversation{ID: conversation.ID}
		for _, question := range conversation.Questions {
			if question.Answer == nil {
				continue
			}
			row := reportRow{
				QuestionID:   question.ID,
				QuestionText: question.Text,
				AnswerID:     question.Answer.ID,
				AnswerText:   question.Answer.Text,
			}
			if n := len(question.Answer.Feedback); n > 0 {
				latest := question.Answer.Feedback[n-1]
				row.HasFeedback = true
				row.IsPositive = latest.IsPositive
				row.FeedbackText = latest.Text
			}
			rc.Rows = append(rc.Rows, row)
		}
		view = append(view, rc)
	}
	return view
}

const reportTemplate = `<!DOCTYPE html>
<html>
<head>
  <title>Conversation Data</title>
  <style>
    table {
      width: 100%;
      border-collapse: collapse;
      font-family: Arial, sans-serif;
    }
    th, td {
      border: 1px solid #000;
      padding: 8px;
    }
    .table-separator {
      border-top: 2px solid #000;
    }
    .conversation-header {
      background-color: #f2f2f2;
    }
    .positive {
      background-color: #b4e6b4;
      color: black;
    }
    .negative {
      background-color: #ffb3b3;
      color: white;
    }
  </style>
</head>
<body>
<h1>Conversation Data</h1>
<table>
  <tr>
    <th>Conversation ID</th>
    <th>Question ID</th>
    <th>Question Text</th>
    <th>Answer ID</th>
    <th>Answer Text</th>
    <th>Feedback</th>
    <th>Feedback Text</th>
  </tr>
  {{range $i, $conversation := .}}
  {{if $i}}<tr><td colspan="7" class="table-separator"></td></tr>{{end}}
  <tr>
    <td>{{$conversation.ID}}</td>
    <td colspan="6" class="conversation-header"><strong>Conversation {{$conversation.ID}}</strong></td>
  </tr>
  {{range $conversation.Rows}}
  <tr{{if .HasFeedback}}{{if .IsPositive}} class="positive"{{else}} class="negative"{{end}}{{end}}>
    <td></td>
    <td>{{.QuestionID}}</td>
    <td>{{.QuestionText}}</td>
    <td>{{.AnswerID}}</td>
    <td>{{.AnswerText}}</td>
    <td>{{if .HasFeedback}}{{.IsPositive}}{{end}}</td>
    <td>{{.FeedbackText}}</td>
  </tr>
  {{end}}
  {{end}}
</table>
</body>
</html>
`
