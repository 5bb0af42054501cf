package handlers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"darkops-lab/pkg/models"
	"darkops-lab/server/internal/database"

	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func setup(t *testing.T) (*gin.Engine, *models.Catalog) {
	t.Helper()
	require.NoError(t, database.OpenInMemory(zap.NewNop()))
	t.Cleanup(func() { database.Close() })

	catalog, err := models.LoadCatalog("../../../config/attacks.yaml")
	require.NoError(t, err)

	log := zap.NewNop()
	r := gin.New()
	r.Use(sessions.Sessions("darkops", cookie.NewStore([]byte("test-secret"))))

	sessionHandler := NewSessionHandler(log)
	attackHandler := NewAttackHandler(catalog)
	progressHandler := NewProgressHandler(log, catalog)
	quizHandler := NewQuizHandler(log, catalog)

	r.POST("/sessions", sessionHandler.Create)
	r.GET("/sessions/current", sessionHandler.Current)
	r.GET("/sessions/:id", sessionHandler.Get)
	r.PATCH("/sessions/:id", sessionHandler.UpdateNickname)
	r.GET("/attacks", attackHandler.List)
	r.GET("/attacks/:id", attackHandler.Get)
	r.POST("/progress", progressHandler.Update)
	r.POST("/quiz", quizHandler.Submit)
	return r, catalog
}

func do(r http.Handler, method, path string, body any, cookies ...*http.Cookie) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		_ = json.NewEncoder(&buf).Encode(body)
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	for _, c := range cookies {
		req.AddCookie(c)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &v), w.Body.String())
	return v
}

func createSession(t *testing.T, r http.Handler, body any) models.Session {
	t.Helper()
	w := do(r, http.MethodPost, "/sessions", body)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	return decode[models.Session](t, w)
}

func TestSessionHandler(t *testing.T) {
	r, _ := setup(t)

	t.Run("create without body", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/sessions", nil)
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		require.Equal(t, http.StatusOK, w.Code)
		s := decode[models.Session](t, w)
		assert.Len(t, s.ID, 36)
		assert.Nil(t, s.Nickname)
		assert.Zero(t, s.TotalAttacksCompleted)
	})

	t.Run("create with nickname", func(t *testing.T) {
		s := createSession(t, r, gin.H{"nickname": "  neo  "})
		require.NotNil(t, s.Nickname)
		assert.Equal(t, "neo", *s.Nickname)
	})

	t.Run("invalid nickname", func(t *testing.T) {
		w := do(r, http.MethodPost, "/sessions", gin.H{"nickname": "   "})
		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Contains(t, w.Body.String(), "detail")
	})

	t.Run("get unknown", func(t *testing.T) {
		w := do(r, http.MethodGet, "/sessions/does-not-exist", nil)
		assert.Equal(t, http.StatusNotFound, w.Code)
	})

	t.Run("rename keeps id", func(t *testing.T) {
		s := createSession(t, r, nil)
		w := do(r, http.MethodPatch, "/sessions/"+s.ID, gin.H{"nickname": "trinity"})
		require.Equal(t, http.StatusOK, w.Code)
		renamed := decode[models.Session](t, w)
		assert.Equal(t, s.ID, renamed.ID)
		require.NotNil(t, renamed.Nickname)
		assert.Equal(t, "trinity", *renamed.Nickname)

		w = do(r, http.MethodPatch, "/sessions/nope", gin.H{"nickname": "trinity"})
		assert.Equal(t, http.StatusNotFound, w.Code)
	})

	t.Run("current follows cookie", func(t *testing.T) {
		w := do(r, http.MethodGet, "/sessions/current", nil)
		assert.Equal(t, http.StatusNotFound, w.Code)

		w = do(r, http.MethodPost, "/sessions", nil)
		require.Equal(t, http.StatusOK, w.Code)
		created := decode[models.Session](t, w)
		cookies := w.Result().Cookies()
		require.NotEmpty(t, cookies)

		w = do(r, http.MethodGet, "/sessions/current", nil, cookies...)
		require.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, created.ID, decode[models.Session](t, w).ID)
	})
}

func TestAttackHandler(t *testing.T) {
	r, catalog := setup(t)

	w := do(r, http.MethodGet, "/attacks", nil)
	require.Equal(t, http.StatusOK, w.Code)
	attacks := decode[[]models.Attack](t, w)
	assert.Len(t, attacks, catalog.Len())

	w = do(r, http.MethodGet, "/attacks/ddos_attack", nil)
	require.Equal(t, http.StatusOK, w.Code)
	attack := decode[models.Attack](t, w)
	assert.Equal(t, "Network", attack.Category)
	assert.Len(t, attack.Steps, 4)

	w = do(r, http.MethodGet, "/attacks/nope", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestProgressHandler(t *testing.T) {
	r, _ := setup(t)
	s := createSession(t, r, nil)

	update := func(attackID string, step int) *httptest.ResponseRecorder {
		return do(r, http.MethodPost, "/progress", gin.H{
			"session_id": s.ID, "attack_id": attackID, "current_step": step, "time_spent": 30,
		})
	}

	w := update("ddos_attack", 1)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	p := decode[models.Progress](t, w)
	assert.Equal(t, 1, p.CurrentStep)
	assert.Equal(t, 4, p.TotalSteps)
	assert.False(t, p.IsCompleted)

	w = update("ddos_attack", 3)
	require.Equal(t, http.StatusOK, w.Code)
	p = decode[models.Progress](t, w)
	assert.True(t, p.IsCompleted)
	assert.NotNil(t, p.CompletedAt)

	assert.Equal(t, http.StatusBadRequest, update("ddos_attack", 4).Code)
	assert.Equal(t, http.StatusBadRequest, update("ddos_attack", -1).Code)
	assert.Equal(t, http.StatusNotFound, update("nope", 0).Code)

	w = do(r, http.MethodPost, "/progress", gin.H{"session_id": "ghost", "attack_id": "ddos_attack"})
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = do(r, http.MethodPost, "/progress", gin.H{"attack_id": "ddos_attack"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestQuizHandler(t *testing.T) {
	r, _ := setup(t)
	s := createSession(t, r, nil)

	t.Run("server regrades", func(t *testing.T) {
		w := do(r, http.MethodPost, "/quiz", gin.H{
			"session_id": s.ID,
			"attack_id":  "ddos_attack",
			"score":      100,
			"answers": []gin.H{
				{"question_index": 0, "selected": 1},
				{"question_index": 1, "selected": 0},
			},
		})
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())
		res := decode[models.QuizResult](t, w)
		assert.Equal(t, 50, res.Score)
		assert.Equal(t, 1, res.CorrectCount)
		assert.Equal(t, 2, res.TotalQuestions)
		require.Len(t, res.Answers, 2)
		assert.True(t, res.Answers[0].IsCorrect)
		assert.False(t, res.Answers[1].IsCorrect)
	})

	t.Run("unknown question", func(t *testing.T) {
		w := do(r, http.MethodPost, "/quiz", gin.H{
			"session_id": s.ID,
			"attack_id":  "ddos_attack",
			"answers":    []gin.H{{"question_index": 7, "selected": 0}},
		})
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("unknown attack", func(t *testing.T) {
		w := do(r, http.MethodPost, "/quiz", gin.H{"session_id": s.ID, "attack_id": "nope"})
		assert.Equal(t, http.StatusNotFound, w.Code)
	})

	t.Run("unknown session", func(t *testing.T) {
		w := do(r, http.MethodPost, "/quiz", gin.H{"session_id": "ghost", "attack_id": "ddos_attack"})
		assert.Equal(t, http.StatusNotFound, w.Code)
	})
}
