// server/internal/handlers/dashboard.go
package handlers

import (
	"net/http"

	"darkops-lab/pkg/models"
	"darkops-lab/pkg/stats"
	"darkops-lab/server/internal/repository"

	"github.com/gin-gonic/gin"
	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/opts"
	"go.uber.org/zap"
)

type DashboardHandler struct {
	log     *zap.Logger
	Catalog *models.Catalog
}

func NewDashboardHandler(log *zap.Logger, catalog *models.Catalog) *DashboardHandler {
	return &DashboardHandler{log: log, Catalog: catalog}
}

// DashboardResponse is the body of GET /api/dashboard/:sessionId.
type DashboardResponse struct {
	Session      *models.Session `json:"session"`
	Stats        stats.Dashboard `json:"stats"`
	AverageLabel string          `json:"average_label"`
}

// Show handles GET /api/dashboard/:sessionId.
func (h *DashboardHandler) Show(c *gin.Context) {
	session := sessionFromContext(c)
	ctx := c.Request.Context()

	progress, err := repository.GetProgressForSession(ctx, session.ID)
	if err != nil {
		h.log.Error("Failed to load progress for dashboard", zap.Error(err), zap.String("sessionID", session.ID))
		abortWithDetail(c, http.StatusInternalServerError, "Failed to load dashboard")
		return
	}
	results, err := repository.GetQuizResults(ctx, session.ID)
	if err != nil {
		h.log.Error("Failed to load quiz results for dashboard", zap.Error(err), zap.String("sessionID", session.ID))
		abortWithDetail(c, http.StatusInternalServerError, "Failed to load dashboard")
		return
	}

	d := stats.Compute(h.Catalog.Len(), progress, results)
	c.JSON(http.StatusOK, DashboardResponse{Session: session, Stats: d, AverageLabel: d.AverageLabel()})
}

// Chart handles GET /api/dashboard/:sessionId/chart and returns ECharts
// options plotting quiz scores over time.
func (h *DashboardHandler) Chart(c *gin.Context) {
	session := sessionFromContext(c)
	timeline, err := repository.GetScoreTimeline(c.Request.Context(), session.ID)
	if err != nil {
		h.log.Error("Failed to get score timeline", zap.Error(err), zap.String("sessionID", session.ID))
		abortWithDetail(c, http.StatusInternalServerError, "Failed to load chart data")
		return
	}
	c.JSON(http.StatusOK, generateScoreChart(timeline).JSON())
}

func generateScoreChart(data []repository.TimelineDataPoint) *charts.Line {
	line := charts.NewLine()
	line.SetGlobalOptions(
		charts.WithTitleOpts(opts.Title{
			Title:    "Quiz Scores Over Time",
			Subtitle: "Percent correct per attempt",
		}),
		charts.WithXAxisOpts(opts.XAxis{
			Type: "time",
		}),
		charts.WithYAxisOpts(opts.YAxis{
			Type: "value",
			Min:  0,
			Max:  100,
		}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true), Trigger: "axis"}),
	)

	items := make([]opts.LineData, 0, len(data))
	for _, point := range data {
		items = append(items, opts.LineData{Name: point.AttackID, Value: []interface{}{point.Date, point.Value}})
	}

	line.AddSeries("Score", items).SetSeriesOptions(charts.WithLineStyleOpts(opts.LineStyle{Width: 2}))
	return line
}
