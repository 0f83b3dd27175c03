package handlers

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"

	"github.com/civicreach/backend/internal/classify"
	"github.com/civicreach/backend/internal/db"
	"github.com/civicreach/backend/internal/models"
	"github.com/civicreach/backend/internal/queue"
	"github.com/civicreach/backend/internal/routing"
)

type Handler struct {
	Store      *db.Store
	Classifier classify.Classifier
	Routing    *routing.ConfigSource
	Queue      *queue.Engine
	Status     *queue.StatusController
	Validator  *validator.Validate
	Logger     zerolog.Logger
}

func (h *Handler) Healthz(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 3*time.Second)
	defer cancel()
	if err := h.Store.Ping(ctx); err != nil {
		writeError(c, http.StatusServiceUnavailable, "DB_UNAVAILABLE", "Database unavailable", err.Error())
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

type ClassifyRequest struct {
	Description string              `json:"description"`
	Image       string              `json:"image"`
	Location    *models.Coordinates `json:"location"`
}

// @Summary Classify a complaint
// @Description Produce a structured issue analysis with a routing preview for citizen confirmation
// @Tags classify
// @Accept json
// @Produce json
// @Success 200 {object} map[string]any
// @Failure 400 {object} map[string]any
// @Router /api/classify [post]
func (h *Handler) Classify(c *gin.Context) {
	var req ClassifyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, http.StatusBadRequest, "INVALID_REQUEST", "Invalid payload", err.Error())
		return
	}
	if strings.TrimSpace(req.Description) == "" && req.Image == "" {
		writeError(c, http.StatusBadRequest, "VALIDATION_ERROR", "description or image is required", nil)
		return
	}

	result, err := h.Classifier.Classify(c.Request.Context(), classify.Request{
		Description: req.Description,
		Image:       req.Image,
		Location:    req.Location,
	})
	if err != nil {
		h.Logger.Error().Err(err).Msg("classification failed")
		writeError(c, http.StatusBadGateway, "CLASSIFIER_ERROR", "Classification failed", err.Error())
		return
	}

	complaintID := queue.NewComplaintID()
	status, history := classify.BuildTracking(result.Severity, time.Now().UTC())
	decision := h.Routing.Resolve(c.Request.Context(), result.IssueType, result.Severity, req.Location)

	c.JSON(http.StatusOK, gin.H{
		"analysis": models.IssueAnalysis{
			ComplaintID: complaintID,
			IssueType:   result.IssueType,
			Severity:    result.Severity,
			Urgency:     result.Urgency,
			Title:       result.Title,
			Summary:     result.Summary,
			Keywords:    result.Keywords,
			Routing:     decision,
		},
		"complaintId": complaintID,
		"status":      status,
		"history":     history,
	})
}

type SubmitReportRequest struct {
	Analysis  *models.IssueAnalysis `json:"analysis" validate:"required"`
	Location  *models.Coordinates   `json:"location"`
	UserEmail string                `json:"userEmail"`
}

// @Summary Submit a confirmed report
// @Description Persist the issue, compute its routing decision and enqueue it
// @Tags reports
// @Accept json
// @Produce json
// @Success 200 {object} map[string]any
// @Failure 400 {object} map[string]any
// @Router /api/reports [post]
func (h *Handler) SubmitReport(c *gin.Context) {
	var req SubmitReportRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, http.StatusBadRequest, "INVALID_REQUEST", "Invalid payload", err.Error())
		return
	}
	if err := h.Validator.Struct(req); err != nil {
		writeError(c, http.StatusBadRequest, "VALIDATION_ERROR", "Missing analysis data", err.Error())
		return
	}

	ctx := c.Request.Context()
	analysis := *req.Analysis
	if analysis.ComplaintID == "" {
		analysis.ComplaintID = queue.NewComplaintID()
	}

	// Routing is recomputed against the configuration in effect right now;
	// a classify-time preview is not trusted.
	analysis.Routing = h.Routing.Resolve(ctx, analysis.IssueType, analysis.Severity, req.Location)

	now := time.Now().UTC()
	status, history := classify.BuildTracking(analysis.Severity, now)
	issue := models.Issue{
		ComplaintID: analysis.ComplaintID,
		Analysis:    &analysis,
		Location:    req.Location,
		UserEmail:   req.UserEmail,
		Status:      status,
		History:     history,
		SubmittedAt: now,
	}

	if err := h.Store.InsertIssue(ctx, issue); err != nil {
		h.Logger.Error().Err(err).Str("complaint_id", analysis.ComplaintID).Msg("issue insert failed")
		writeError(c, http.StatusInternalServerError, "DB_ERROR", "Failed to submit report", err.Error())
		return
	}

	if _, err := h.Queue.AddToQueue(ctx, analysis, analysis.Routing.Priority, analysis.Routing.Escalated, req.Location); err != nil {
		h.Logger.Error().Err(err).Str("complaint_id", analysis.ComplaintID).Msg("enqueue failed")
		writeError(c, http.StatusInternalServerError, "DB_ERROR", "Failed to submit report", err.Error())
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":     true,
		"complaintId": analysis.ComplaintID,
		"message":     "Report submitted successfully",
		"routing":     analysis.Routing,
	})
}

// @Summary Priority queue listing
// @Description Active queue ordered escalated-first, priority ascending, oldest first
// @Tags queue
// @Produce json
// @Param department query string false "Department filter"
// @Param stats query string false "Include aggregate stats"
// @Success 200 {object} map[string]any
// @Router /api/queue [get]
func (h *Handler) QueueList(c *gin.Context) {
	departmentID := c.Query("department")
	issues := h.Queue.QueuedIssues(c.Request.Context(), departmentID)

	resp := gin.H{
		"issues": issues,
		"count":  len(issues),
	}
	if c.Query("stats") == "true" {
		resp["stats"] = h.Queue.Stats(c.Request.Context(), departmentID)
	}
	c.JSON(http.StatusOK, resp)
}

type QueueUpdateRequest struct {
	ComplaintID string `json:"complaintId" validate:"required"`
	Action      string `json:"action" validate:"required,oneof=start resolve escalate"`
}

// @Summary Update queue status
// @Description Apply a start/resolve/escalate transition to a complaint's queue entry
// @Tags queue
// @Accept json
// @Produce json
// @Success 200 {object} map[string]any
// @Failure 400 {object} map[string]any
// @Router /api/queue/update [post]
func (h *Handler) QueueUpdate(c *gin.Context) {
	var req QueueUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, http.StatusBadRequest, "INVALID_REQUEST", "Invalid payload", err.Error())
		return
	}
	if err := h.Validator.Struct(req); err != nil {
		writeError(c, http.StatusBadRequest, "VALIDATION_ERROR", "complaintId and a valid action are required", err.Error())
		return
	}

	if err := h.Status.Apply(c.Request.Context(), req.ComplaintID, req.Action); err != nil {
		h.Logger.Error().Err(err).Str("complaint_id", req.ComplaintID).Str("action", req.Action).Msg("queue update failed")
		writeError(c, http.StatusInternalServerError, "DB_ERROR", "Failed to update queue", err.Error())
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}

// @Summary Seed routing configuration
// @Description Idempotent merge-upsert of default route templates and severity configs
// @Tags admin
// @Produce json
// @Success 200 {object} map[string]any
// @Router /api/admin/routing/init [post]
func (h *Handler) RoutingInit(c *gin.Context) {
	if err := h.Routing.Initialize(c.Request.Context()); err != nil {
		writeError(c, http.StatusInternalServerError, "DB_ERROR", "Failed to initialize configurations", err.Error())
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"success":   true,
		"message":   "Routing and severity configurations initialized successfully",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}

// @Summary Inspect routing configuration
// @Tags admin
// @Produce json
// @Success 200 {object} map[string]any
// @Router /api/admin/routing [get]
func (h *Handler) RoutingInspect(c *gin.Context) {
	ctx := c.Request.Context()

	severityConfigs := make([]models.SeverityConfig, 0, 3)
	for _, level := range []models.Severity{models.SeverityLow, models.SeverityMedium, models.SeverityHigh} {
		severityConfigs = append(severityConfigs, h.Routing.SeverityConfig(ctx, string(level)))
	}

	c.JSON(http.StatusOK, gin.H{
		"routeConfigs":    h.Routing.RouteTemplates(ctx),
		"severityConfigs": severityConfigs,
		"status":          "initialized",
		"timestamp":       time.Now().UTC().Format(time.RFC3339),
	})
}

func writeError(c *gin.Context, status int, code string, message string, details any) {
	c.JSON(status, gin.H{
		"error": gin.H{
			"code":    code,
			"message": message,
			"details": details,
		},
	})
}
