package handlers

import (
	"net/http"

	"darkops-lab/pkg/models"
	"darkops-lab/pkg/quiz"
	"darkops-lab/server/internal/repository"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type QuizHandler struct {
	log     *zap.Logger
	Catalog *models.Catalog
}

func NewQuizHandler(log *zap.Logger, catalog *models.Catalog) *QuizHandler {
	return &QuizHandler{log: log, Catalog: catalog}
}

// Submit handles POST /api/quiz. The submission is regraded against the
// catalog; the client's score is advisory.
func (h *QuizHandler) Submit(c *gin.Context) {
	var req models.SubmitQuizRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.log.Warn("Failed to bind quiz submission", zap.Error(err))
		abortWithDetail(c, http.StatusBadRequest, "Invalid quiz submission")
		return
	}

	attack, ok := h.Catalog.Get(req.AttackID)
	if !ok {
		abortWithDetail(c, http.StatusNotFound, "Attack not found")
		return
	}
	if attack.QuestionCount() == 0 {
		abortWithDetail(c, http.StatusBadRequest, "Attack has no quiz")
		return
	}
	if _, err := repository.GetSession(c.Request.Context(), req.SessionID); err != nil {
		abortWithDetail(c, statusFor(err), "Session not found")
		return
	}

	selections := make([]int, attack.QuestionCount())
	for i := range selections {
		selections[i] = -1
	}
	for _, a := range req.Answers {
		if a.QuestionIndex < 0 || a.QuestionIndex >= len(selections) {
			abortWithDetail(c, http.StatusBadRequest, "Answer refers to an unknown question")
			return
		}
		selections[a.QuestionIndex] = a.Selected
	}

	graded := quiz.Grade(attack.Quiz, selections)
	if req.Score != graded.Score {
		h.log.Warn("Client quiz score differs from server grading",
			zap.String("sessionID", req.SessionID),
			zap.String("attackID", req.AttackID),
			zap.Int("clientScore", req.Score),
			zap.Int("serverScore", graded.Score),
		)
	}

	result := &models.QuizResult{
		SessionID:      req.SessionID,
		AttackID:       req.AttackID,
		Score:          graded.Score,
		CorrectCount:   graded.Correct,
		TotalQuestions: graded.Total,
		Answers:        graded.Answers,
	}
	if err := repository.SaveQuizResult(c.Request.Context(), result); err != nil {
		h.log.Error("Failed to save quiz result", zap.Error(err), zap.String("sessionID", req.SessionID))
		abortWithDetail(c, http.StatusInternalServerError, "Failed to save quiz result")
		return
	}
	c.JSON(http.StatusOK, result)
}

// Scores handles GET /api/quiz/scores/:sessionId.
func (h *QuizHandler) Scores(c *gin.Context) {
	session := sessionFromContext(c)
	results, err := repository.GetQuizResults(c.Request.Context(), session.ID)
	if err != nil {
		h.log.Error("Failed to load quiz scores", zap.Error(err), zap.String("sessionID", session.ID))
		abortWithDetail(c, http.StatusInternalServerError, "Failed to load quiz scores")
		return
	}
	c.JSON(http.StatusOK, results)
}
