package router

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"darkops-lab/pkg/client"
	"darkops-lab/pkg/models"
	"darkops-lab/pkg/quiz"
	"darkops-lab/server/internal/config"
	"darkops-lab/server/internal/database"
	"darkops-lab/server/internal/services"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

const threeAttacks = `
attacks:
  - id: phishing
    name: Phishing
    category: Social Engineering
    difficulty: easy
    estimated_time: 5
    description: Lure a user into giving up credentials.
    steps:
      - {id: p1, title: Bait, description: A convincing email arrives.}
      - {id: p2, title: Harvest, description: Credentials are captured.}
    defenses:
      - {strategy: Awareness Training, description: Teach users to check senders., effectiveness: High}
    quiz:
      questions:
        - {question: Q1, options: [a, b], correct: 0, explanation: x}
        - {question: Q2, options: [a, b], correct: 1, explanation: x}
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
  - id: arp_spoofing
    name: ARP Spoofing
    category: Network
    difficulty: hard
    estimated_time: 9
    description: Poison ARP caches to intercept LAN traffic.
    steps:
      - {id: a1, title: Poison, description: Forged replies map the gateway to the attacker.}
      - {id: a2, title: Relay, description: Traffic flows through the attacker.}
      - {id: a3, title: Capture, description: Credentials are sniffed in transit.}
    defenses:
      - {strategy: Dynamic ARP Inspection, description: Switches drop forged replies., effectiveness: High}
`

func setup(t *testing.T) (*gin.Engine, *models.Catalog) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	conf, err := config.Defaults()
	require.NoError(t, err)
	conf.Server.RateLimit.PerMinute = 0
	config.Conf = conf

	require.NoError(t, database.OpenInMemory(zap.NewNop()))
	t.Cleanup(func() { database.Close() })

	catalog, err := models.ParseCatalog([]byte(threeAttacks))
	require.NoError(t, err)
	return Setup(zap.NewNop(), catalog), catalog
}

func newClient(t *testing.T, srv *httptest.Server) *client.Client {
	t.Helper()
	c, err := client.New(client.Config{BaseURL: srv.URL + "/api", Timeout: 5 * time.Second}, client.NewMemoryStore(), nil)
	require.NoError(t, err)
	t.Cleanup(func() { c.Close() })
	return c
}

func TestFreshClientScenario(t *testing.T) {
	r, _ := setup(t)
	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)
	ctx := context.Background()

	c := newClient(t, srv)
	session, err := c.Sessions.GetOrCreateSession(ctx)
	require.NoError(t, err)
	require.NotEmpty(t, session.ID)

	attacks, err := c.Tracker.ListAttacks(ctx)
	require.NoError(t, err)
	assert.Len(t, attacks, 3)

	d, err := c.Tracker.Dashboard(ctx)
	require.NoError(t, err)
	lines := d.Lines()
	assert.Contains(t, lines, "Attacks Completed: 0 of 3")
	assert.Contains(t, lines, "Quiz Average: 0%")
	assert.Contains(t, lines, "Skill Level: Beginner")
}

func TestClientAgainstServer(t *testing.T) {
	r, catalog := setup(t)
	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)
	ctx := context.Background()

	c := newClient(t, srv)
	session, err := c.Sessions.GetOrCreateSession(ctx)
	require.NoError(t, err)

	t.Run("progress", func(t *testing.T) {
		attack, _ := catalog.Get("xss")
		first, err := c.Tracker.RecordStep(ctx, attack, 1, 15)
		require.NoError(t, err)
		second, err := c.Tracker.RecordStep(ctx, attack, 1, 15)
		require.NoError(t, err)
		assert.Equal(t, first.Revision, second.Revision)
		assert.Equal(t, first.CurrentStep, second.CurrentStep)
		assert.True(t, second.IsCompleted)

		_, err = c.Tracker.RecordStep(ctx, attack, 2, 15)
		assert.ErrorIs(t, err, client.ErrStepOutOfRange)
	})

	t.Run("quiz", func(t *testing.T) {
		attack, _ := catalog.Get("phishing")
		saved, err := c.Tracker.SubmitQuiz(ctx, attack.ID, quiz.Grade(attack.Quiz, []int{0, 0}))
		require.NoError(t, err)
		assert.Equal(t, 50, saved.Score)
		_, err = c.Tracker.SubmitQuiz(ctx, attack.ID, quiz.Grade(attack.Quiz, []int{0, 1}))
		require.NoError(t, err)

		d, err := c.Tracker.Dashboard(ctx)
		require.NoError(t, err)
		assert.Equal(t, 1, d.AttacksCompleted)
		assert.Equal(t, "75.0", d.AverageLabel())
		assert.Equal(t, 150, d.TotalScore)
	})

	t.Run("rename keeps id", func(t *testing.T) {
		renamed, err := c.Sessions.SetNickname(ctx, "cereal")
		require.NoError(t, err)
		assert.Equal(t, session.ID, renamed.ID)

		resumed, err := c.Sessions.GetOrCreateSession(ctx)
		require.NoError(t, err)
		assert.Equal(t, "cereal", resumed.DisplayName())
		assert.Equal(t, 1, resumed.TotalAttacksCompleted)
		assert.Equal(t, 150, resumed.TotalQuizScore)
	})

	t.Run("janitor pruning forces a new session", func(t *testing.T) {
		j := services.NewJanitor(zap.NewNop(), config.SessionsConfig{Retention: time.Hour, JanitorInterval: time.Hour})
		removed, err := j.Prune(ctx, time.Now().UTC().Add(48*time.Hour))
		require.NoError(t, err)
		assert.Equal(t, int64(1), removed)

		resp, err := http.Get(srv.URL + "/api/sessions/" + session.ID)
		require.NoError(t, err)
		resp.Body.Close()
		assert.Equal(t, http.StatusNotFound, resp.StatusCode)

		next, err := c.Sessions.GetOrCreateSession(ctx)
		require.NoError(t, err)
		assert.NotEqual(t, session.ID, next.ID)
	})
}

func TestScopedRoutes(t *testing.T) {
	r, _ := setup(t)

	for _, path := range []string{"/api/progress/ghost", "/api/quiz/scores/ghost", "/api/dashboard/ghost", "/api/dashboard/ghost/chart"} {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, path, nil))
		assert.Equal(t, http.StatusNotFound, w.Code, path)
	}

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/api/sessions", nil))
	require.Equal(t, http.StatusOK, w.Code)
	var s models.Session
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &s))

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/dashboard/"+s.ID, nil))
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"average_label":"0"`)

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/dashboard/"+s.ID+"/chart", nil))
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "Quiz Scores Over Time")
}

func TestMiddleware(t *testing.T) {
	r, _ := setup(t)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/health", nil))
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"ok","attacks":3,"sessions":0}`, w.Body.String())
	assert.NotEmpty(t, w.Header().Get(requestIDHeader))
	assert.Equal(t, "nosniff", w.Header().Get("X-Content-Type-Options"))
	assert.Equal(t, "DENY", w.Header().Get("X-Frame-Options"))

	req := httptest.NewRequest(http.MethodGet, "/api/health", nil)
	req.Header.Set(requestIDHeader, "upstream-id")
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, "upstream-id", w.Header().Get(requestIDHeader))

	req = httptest.NewRequest(http.MethodGet, "/api/health", nil)
	req.Header.Set(requestIDHeader, "forged id; admin=1")
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Len(t, w.Header().Get(requestIDHeader), 16)

	req = httptest.NewRequest(http.MethodOptions, "/api/attacks", nil)
	req.Header.Set("Origin", "http://localhost:3000")
	req.Header.Set("Access-Control-Request-Method", "GET")
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))
}

func TestRateLimit(t *testing.T) {
	_, catalog := setup(t)
	config.Conf.Server.RateLimit.PerMinute = 2
	r := Setup(zap.NewNop(), catalog)

	codes := make([]int, 0, 3)
	for i := 0; i < 3; i++ {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/api/sessions", nil))
		codes = append(codes, w.Code)
	}
	assert.Equal(t, []int{http.StatusOK, http.StatusOK, http.StatusTooManyRequests}, codes)

	// Only session creation is limited.
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/attacks", nil))
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestCorsConfig(t *testing.T) {
	conf := corsConfig([]string{"https://darkops.example"})
	assert.False(t, conf.AllowAllOrigins)
	assert.True(t, conf.AllowCredentials)
	assert.Equal(t, []string{"https://darkops.example"}, conf.AllowOrigins)

	conf = corsConfig(nil)
	assert.True(t, conf.AllowAllOrigins)
	assert.True(t, strings.Contains(strings.Join(conf.AllowMethods, ","), "PATCH"))
}
