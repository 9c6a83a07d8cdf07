package controllers

import (
	"net/http"
	"time"

	"github.com/expendio/foh-app/services"
	"github.com/expendio/foh-app/utils"
	"github.com/gin-gonic/gin"
)

type ReportController struct {
	Reports  *services.ReportService
	Insights *services.InsightsService
}

func NewReportController(reports *services.ReportService, insights *services.InsightsService) *ReportController {
	return &ReportController{Reports: reports, Insights: insights}
}

// dateRange reads start/end query params (YYYY-MM-DD) and widens them to the
// whole days, the way the reports screen always has.
func dateRange(c *gin.Context) (time.Time, time.Time, bool) {
	startStr := c.Query("start")
	endStr := c.Query("end")
	if startStr == "" || endStr == "" {
		today := time.Now().Format("2006-01-02")
		if startStr == "" {
			startStr = today
		}
		if endStr == "" {
			endStr = today
		}
	}

	start, err := time.ParseInLocation("2006-01-02", startStr, time.Local)
	if err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return time.Time{}, time.Time{}, false
	}
	end, err := time.ParseInLocation("2006-01-02", endStr, time.Local)
	if err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return time.Time{}, time.Time{}, false
	}

	end = end.Add(24*time.Hour - time.Nanosecond)
	return start, end, true
}

// GetVisits -> visits in the date range, most recent first.
func (rc *ReportController) GetVisits(c *gin.Context) {
	start, end, ok := dateRange(c)
	if !ok {
		return
	}

	visits, err := rc.Reports.VisitsByDateRange(start, end)
	if err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Visit report", visits)
}

// ExportCSV -> the same report as a CSV download.
func (rc *ReportController) ExportCSV(c *gin.Context) {
	start, end, ok := dateRange(c)
	if !ok {
		return
	}

	visits, err := rc.Reports.VisitsByDateRange(start, end)
	if err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}

	c.Header("Content-Type", "text/csv; charset=utf-8")
	c.Header("Content-Disposition", `attachment; filename="`+rc.Reports.ExportFilename(start, end)+`"`)
	if err := rc.Reports.WriteCSV(c.Writer, visits); err != nil {
		utils.ErrorLogger.Printf("Error writing CSV export: %v", err)
	}
}

// AskInsights -> natural-language Q&A over the report via the hosted model.
func (rc *ReportController) AskInsights(c *gin.Context) {
	var req struct {
		Question string `json:"question" binding:"required"`
		Start    string `json:"start" binding:"required"` // YYYY-MM-DD
		End      string `json:"end" binding:"required"`   // YYYY-MM-DD
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	start, err := time.ParseInLocation("2006-01-02", req.Start, time.Local)
	if err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}
	end, err := time.ParseInLocation("2006-01-02", req.End, time.Local)
	if err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}
	end = end.Add(24*time.Hour - time.Nanosecond)

	visits, err := rc.Reports.VisitsByDateRange(start, end)
	if err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}

	answer, err := rc.Insights.Ask(c.Request.Context(), visits, req.Question)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	utils.RespondJSON(c, http.StatusOK, "Insights", gin.H{
		"answer": answer,
	})
}
