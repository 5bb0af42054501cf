package client

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"darkops-lab/pkg/models"
	"darkops-lab/pkg/quiz"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
)

const testCatalog = `
attacks:
  - id: phishing
    name: Phishing
    category: Social Engineering
    difficulty: easy
    estimated_time: 5
    description: Lure a user into giving up credentials.
    steps:
      - {id: p1, title: Bait, description: A convincing email arrives.}
      - {id: p2, title: Hook, description: The link opens a cloned login page.}
      - {id: p3, title: Harvest, description: Credentials are captured.}
    defenses:
      - {strategy: Awareness Training, description: Teach users to check senders., effectiveness: High}
    quiz:
      questions:
        - {question: Q1, options: [a, b], correct: 0, explanation: x}
        - {question: Q2, options: [a, b], correct: 1, explanation: x}
        - {question: Q3, options: [a, b], correct: 0, explanation: x}
        - {question: Q4, options: [a, b], correct: 1, explanation: x}
  - id: xss
    name: Cross-Site Scripting
    category: Web/App
    difficulty: medium
    estimated_time: 7
    description: Inject script into a trusted page.
    steps:
      - {id: x1, title: Inject, description: Payload is stored.}
      - {id: x2, title: Execute, description: Victim's browser runs it.}
    defenses:
      - {strategy: Output Encoding, description: Encode untrusted data., effectiveness: High}
`

// fakeBackend is an in-memory stand-in for the REST service.
type fakeBackend struct {
	t       *testing.T
	catalog *models.Catalog

	mu        sync.Mutex
	sessions  map[string]*models.Session
	progress  map[string]*models.Progress
	results   []models.QuizResult
	nextID    int
	progressN int
	// progressDelay, when set, delays progress responses per requested step.
	progressDelay func(step int) time.Duration
	// progressDown makes GET /progress/:id answer 500.
	progressDown bool
}

func newFakeBackend(t *testing.T) (*fakeBackend, *httptest.Server) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	catalog, err := models.ParseCatalog([]byte(testCatalog))
	require.NoError(t, err)

	f := &fakeBackend{
		t:        t,
		catalog:  catalog,
		sessions: make(map[string]*models.Session),
		progress: make(map[string]*models.Progress),
	}

	r := gin.New()
	api := r.Group("/api")
	api.GET("/attacks", func(c *gin.Context) { c.JSON(http.StatusOK, catalog.Attacks) })
	api.GET("/attacks/:id", func(c *gin.Context) {
		a, ok := catalog.Get(c.Param("id"))
		if !ok {
			c.JSON(http.StatusNotFound, gin.H{"detail": "Attack not found"})
			return
		}
		c.JSON(http.StatusOK, a)
	})
	api.POST("/sessions", f.createSession)
	api.GET("/sessions/:id", f.getSession)
	api.PATCH("/sessions/:id", f.renameSession)
	api.GET("/progress/:id", f.listProgress)
	api.POST("/progress", f.updateProgress)
	api.POST("/quiz", f.submitQuiz)
	api.GET("/quiz/scores/:id", f.scores)

	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)
	return f, srv
}

func (f *fakeBackend) createSession(c *gin.Context) {
	var req models.CreateSessionRequest
	_ = c.ShouldBindJSON(&req)
	f.mu.Lock()
	defer f.mu.Unlock()
	f.nextID++
	s := &models.Session{ID: fmt.Sprintf("session-%d", f.nextID), Nickname: req.Nickname, CreatedAt: time.Now()}
	f.sessions[s.ID] = s
	c.JSON(http.StatusOK, s)
}

func (f *fakeBackend) getSession(c *gin.Context) {
	f.mu.Lock()
	defer f.mu.Unlock()
	s, ok := f.sessions[c.Param("id")]
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"detail": "Session not found"})
		return
	}
	c.JSON(http.StatusOK, s)
}

func (f *fakeBackend) renameSession(c *gin.Context) {
	var req models.UpdateSessionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"detail": "Invalid session update"})
		return
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	s, ok := f.sessions[c.Param("id")]
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"detail": "Session not found"})
		return
	}
	s.Nickname = &req.Nickname
	c.JSON(http.StatusOK, s)
}

func (f *fakeBackend) listProgress(c *gin.Context) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.progressDown {
		c.JSON(http.StatusInternalServerError, gin.H{"detail": "progress store unavailable"})
		return
	}
	out := []models.Progress{}
	for _, p := range f.progress {
		if p.SessionID == c.Param("id") {
			out = append(out, *p)
		}
	}
	c.JSON(http.StatusOK, out)
}

func (f *fakeBackend) updateProgress(c *gin.Context) {
	var req models.UpdateProgressRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"detail": "Invalid progress update"})
		return
	}
	attack, ok := f.catalog.Get(req.AttackID)
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"detail": "Attack not found"})
		return
	}
	f.mu.Lock()
	delay := f.progressDelay
	f.mu.Unlock()
	if delay != nil {
		time.Sleep(delay(req.CurrentStep))
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	f.progressN++
	key := req.SessionID + "/" + req.AttackID
	p, ok := f.progress[key]
	if !ok {
		p = &models.Progress{ID: key, SessionID: req.SessionID, AttackID: req.AttackID, TotalSteps: len(attack.Steps)}
		f.progress[key] = p
	}
	if p.CurrentStep != req.CurrentStep || req.TimeSpent > p.TimeSpent || p.Revision == 0 {
		p.Revision++
	}
	p.CurrentStep = req.CurrentStep
	if req.TimeSpent > p.TimeSpent {
		p.TimeSpent = req.TimeSpent
	}
	if req.CurrentStep == attack.LastStep() {
		p.IsCompleted = true
	}
	c.JSON(http.StatusOK, p)
}

func (f *fakeBackend) submitQuiz(c *gin.Context) {
	var req models.SubmitQuizRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"detail": "Invalid quiz submission"})
		return
	}
	attack, ok := f.catalog.Get(req.AttackID)
	if !ok || attack.Quiz == nil {
		c.JSON(http.StatusNotFound, gin.H{"detail": "Attack not found"})
		return
	}
	selections := make([]int, attack.QuestionCount())
	for _, a := range req.Answers {
		selections[a.QuestionIndex] = a.Selected
	}
	graded := quiz.Grade(attack.Quiz, selections)

	f.mu.Lock()
	defer f.mu.Unlock()
	res := models.QuizResult{
		ID:             fmt.Sprintf("result-%d", len(f.results)+1),
		SessionID:      req.SessionID,
		AttackID:       req.AttackID,
		Score:          graded.Score,
		CorrectCount:   graded.Correct,
		TotalQuestions: graded.Total,
		Answers:        graded.Answers,
		CompletedAt:    time.Now(),
	}
	f.results = append(f.results, res)
	c.JSON(http.StatusOK, res)
}

func (f *fakeBackend) scores(c *gin.Context) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := []models.QuizResult{}
	for _, r := range f.results {
		if r.SessionID == c.Param("id") {
			out = append(out, r)
		}
	}
	c.JSON(http.StatusOK, out)
}

func (f *fakeBackend) setProgressDelay(delay func(step int) time.Duration) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.progressDelay = delay
}

func (f *fakeBackend) setProgressDown(down bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.progressDown = down
}

func (f *fakeBackend) forget(id string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.sessions, id)
}

func newTestClient(t *testing.T, srv *httptest.Server, store Store, mode NicknameMode) *Client {
	t.Helper()
	c, err := New(Config{BaseURL: srv.URL + "/api", Timeout: 5 * time.Second, NicknameMode: mode}, store, nil)
	require.NoError(t, err)
	t.Cleanup(func() { c.Close() })
	return c
}
