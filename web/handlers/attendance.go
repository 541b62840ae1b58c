package handlers

import (
	"errors"
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"puntocheck.com/puntocheck/core"
	"puntocheck.com/puntocheck/model"
	"puntocheck.com/puntocheck/utils"
	"puntocheck.com/puntocheck/web/common"
)

// AttendanceHandler exposes check-in recording and the derived day views.
type AttendanceHandler struct {
	service  *core.AttendanceService
	records  core.RecordStore
	issues   *core.IssueAggregator
	absences *core.AbsenceDetector
	stats    core.StatsStore
}

func NewAttendanceHandler(
	service *core.AttendanceService,
	records core.RecordStore,
	issues *core.IssueAggregator,
	absences *core.AbsenceDetector,
	stats core.StatsStore,
) *AttendanceHandler {
	return &AttendanceHandler{
		service:  service,
		records:  records,
		issues:   issues,
		absences: absences,
		stats:    stats,
	}
}

// Record handles POST /api/attendance.
func (h *AttendanceHandler) Record(c *gin.Context) {
	var req RecordEventRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, common.NewErrorResponse(common.FormatBindingError(err)))
		return
	}

	record, err := h.service.RecordEvent(c.Request.Context(), req.toInput())
	if err != nil {
		var rejection *core.AttendanceError
		if errors.As(err, &rejection) {
			c.JSON(rejectionStatus(rejection), common.NewCodedErrorResponse(rejection.Code, rejection.Message))
			return
		}
		log.Printf("record event for %s failed: %v", req.UserID, err)
		c.JSON(http.StatusInternalServerError, common.NewErrorResponse("No se pudo registrar el evento, intente de nuevo"))
		return
	}

	c.JSON(http.StatusCreated, common.NewSuccessResponse(newRecordResponse(record)))
}

// rejectionStatus maps a business rejection to an HTTP status. Conflicts with
// the day's existing events are 409; the rest is about the caller's request.
func rejectionStatus(e *core.AttendanceError) int {
	switch e {
	case core.ErrCheckpointNotFound:
		return http.StatusNotFound
	case core.ErrInvalidEventType:
		return http.StatusBadRequest
	case core.ErrUserNotActive, core.ErrCheckpointInactive, core.ErrAccessDenied:
		return http.StatusForbidden
	case core.ErrInvalidLocation:
		return http.StatusUnprocessableEntity
	default:
		return http.StatusConflict
	}
}

// Day handles GET /api/attendance/:userId, optionally filtered by ?date=.
// Defaults to today.
func (h *AttendanceHandler) Day(c *gin.Context) {
	userID := c.Param("userId")

	date := c.Query("date")
	if date == "" {
		date = utils.DateKey(utils.LocalNow())
	} else if _, err := time.Parse("2006-01-02", date); err != nil {
		c.JSON(http.StatusBadRequest, common.NewErrorResponse("date must be yyyy-MM-dd"))
		return
	}

	records, err := h.records.GetRecordsForUserOnDate(c.Request.Context(), userID, date)
	if err != nil {
		log.Printf("records for %s on %s failed: %v", userID, date, err)
		c.JSON(http.StatusInternalServerError, common.NewErrorResponse("No se pudieron consultar los registros"))
		return
	}

	out := utils.Map(records, func(r model.AttendanceRecord) AttendanceRecordResponse {
		return newRecordResponse(&r)
	})
	c.JSON(http.StatusOK, common.NewSearchResponse(out, int64(len(out))))
}

// Issues handles GET /api/issues/:date.
func (h *AttendanceHandler) Issues(c *gin.Context) {
	date := c.Param("date")
	if _, err := time.Parse("2006-01-02", date); err != nil {
		c.JSON(http.StatusBadRequest, common.NewErrorResponse("date must be yyyy-MM-dd"))
		return
	}

	issues, err := h.issues.Aggregate(c.Request.Context(), date)
	if err != nil {
		log.Printf("aggregate issues for %s failed: %v", date, err)
		c.JSON(http.StatusInternalServerError, common.NewErrorResponse("No se pudieron consultar las incidencias"))
		return
	}

	c.JSON(http.StatusOK, common.NewSearchResponse(issues, int64(len(issues))))
}

// Absences handles POST /api/reports/absences, an on-demand scan of one date.
func (h *AttendanceHandler) Absences(c *gin.Context) {
	var req AbsenceReportRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, common.NewErrorResponse(common.FormatBindingError(err)))
		return
	}

	date := req.Date.Key()
	reports, err := h.absences.Detect(c.Request.Context(), date)
	if err != nil {
		log.Printf("absence scan for %s failed: %v", date, err)
		c.JSON(http.StatusInternalServerError, common.NewErrorResponse("No se pudo generar el reporte de ausencias"))
		return
	}

	c.JSON(http.StatusOK, common.NewSearchResponse(reports, int64(len(reports))))
}

// Stats handles GET /api/stats/:date.
func (h *AttendanceHandler) Stats(c *gin.Context) {
	date := c.Param("date")
	if _, err := time.Parse("2006-01-02", date); err != nil {
		c.JSON(http.StatusBadRequest, common.NewErrorResponse("date must be yyyy-MM-dd"))
		return
	}

	stats, err := h.stats.GetDailyStats(c.Request.Context(), date)
	if err != nil {
		log.Printf("stats for %s failed: %v", date, err)
		c.JSON(http.StatusInternalServerError, common.NewErrorResponse("No se pudieron consultar las estadísticas"))
		return
	}
	if stats == nil {
		c.JSON(http.StatusNotFound, common.NewErrorResponse("Sin estadísticas para esa fecha"))
		return
	}

	c.JSON(http.StatusOK, common.NewSuccessResponse(stats))
}
