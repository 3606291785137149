package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/denizk/yemekoneri/internal/domain"
	"github.com/denizk/yemekoneri/internal/service"
)

// AnswerHandler handles the retrieval-augmented recommendation endpoint.
type AnswerHandler struct {
	ragService *service.RAGService
}

// NewAnswerHandler creates a new answer handler.
// Parameters:
//   - ragService: orchestrator instance.
// Returns:
//   - *AnswerHandler: initialized handler.
func NewAnswerHandler(ragService *service.RAGService) *AnswerHandler {
	return &AnswerHandler{
		ragService: ragService,
	}
}

// answerRequest is the body of POST /api/v1/answer.
type answerRequest struct {
	Query       string              `json:"query" binding:"required"`
	UserContext *domain.UserContext `json:"user_context"`
}

// Answer handles POST /api/v1/answer. The pipeline never fails outward:
// degraded paths return templated answers with confidence metadata, so this
// endpoint only rejects malformed requests.
func (h *AnswerHandler) Answer(c *gin.Context) {
	var req answerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Invalid request: " + err.Error(),
		})
		return
	}

	answer := h.ragService.Answer(c.Request.Context(), req.Query, req.UserContext)
	c.JSON(http.StatusOK, answer)
}
