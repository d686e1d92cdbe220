package server

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/zulandar/groundwork/internal/metrics"
	"github.com/zulandar/groundwork/internal/models"
	"github.com/zulandar/groundwork/internal/phase"
	"github.com/zulandar/groundwork/internal/project"
	"github.com/zulandar/groundwork/internal/schedule"
	"gorm.io/gorm"
)

const orgHeader = "X-Org-ID"

// registerRoutes sets up all API routes on the Gin router.
func registerRoutes(router *gin.Engine, db *gorm.DB) {
	api := router.Group("/api", requireOrg())

	api.GET("/projects", handleProjectList(db))
	api.POST("/projects", handleProjectCreate(db))
	api.GET("/projects/:id", handleProjectDetail(db))
	api.DELETE("/projects/:id", handleProjectDelete(db))
	api.PUT("/projects/:id/baseline", handleBaselineSet(db))
	api.DELETE("/projects/:id/baseline", handleBaselineClear(db))
	api.GET("/projects/:id/summary", handleProjectSummary(db))
	api.GET("/projects/:id/phases", handlePhaseList(db))
	api.POST("/projects/:id/phases", handlePhaseCreate(db))

	api.POST("/phases/:id/tasks", handleTaskCreate(db))
	api.PATCH("/phases/:id", handlePhaseUpdate(db))
	api.DELETE("/phases/:id", handlePhaseDelete(db))
	api.POST("/phases/:id/recalculate", handleRecalculate(db))
}

// requireOrg rejects requests without a tenant header. Tenancy must be
// resolved before any scheduling operation runs.
func requireOrg() gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.GetHeader(orgHeader) == "" {
			c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": orgHeader + " header is required"})
			return
		}
		c.Next()
	}
}

func orgOf(c *gin.Context) string { return c.GetHeader(orgHeader) }

// writeError maps the error taxonomy to HTTP statuses. Missing rows and
// rows owned by another org both read as 404.
func writeError(c *gin.Context, err error) {
	var nf *phase.NotFoundError
	var ve *phase.ValidationError
	var pe *schedule.ParseError
	switch {
	case errors.As(err, &nf):
		c.JSON(http.StatusNotFound, gin.H{"error": nf.Error()})
	case errors.As(err, &ve):
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": "validation failed", "problems": ve.Problems})
	case errors.As(err, &pe):
		c.JSON(http.StatusBadRequest, gin.H{"error": pe.Error()})
	default:
		logrus.WithError(err).Error("server: request failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	}
}

// scopedProject loads a project and hides it when the caller's org does
// not own it.
func scopedProject(db *gorm.DB, c *gin.Context, id string) (*models.Project, error) {
	p, err := project.Get(db, id)
	if err != nil {
		return nil, err
	}
	if p.OrgID != orgOf(c) {
		return nil, &phase.NotFoundError{Kind: "project", ID: id}
	}
	return p, nil
}

// scopedPhase loads a phase or task and hides it when the caller's org
// does not own its project.
func scopedPhase(db *gorm.DB, c *gin.Context, id string) (*models.Phase, error) {
	row, err := phase.Get(db, id)
	if err != nil {
		return nil, err
	}
	if _, err := scopedProject(db, c, row.ProjectID); err != nil {
		return nil, &phase.NotFoundError{Kind: "phase", ID: id}
	}
	return row, nil
}

type createProjectRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

func handleProjectCreate(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req createProjectRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
			return
		}
		p, err := project.Create(db, project.CreateOpts{
			OrgID:       orgOf(c),
			Name:        req.Name,
			Description: req.Description,
		})
		if err != nil {
			writeError(c, err)
			return
		}
		c.JSON(http.StatusCreated, p)
	}
}

func handleProjectList(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		projects, err := project.List(db, orgOf(c))
		if err != nil {
			writeError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"projects": projects})
	}
}

func handleProjectDetail(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		p, err := scopedProject(db, c, c.Param("id"))
		if err != nil {
			writeError(c, err)
			return
		}
		phases, err := phase.ListByProject(db, p.ID)
		if err != nil {
			writeError(c, err)
			return
		}
		dur := metrics.Duration(phases)
		c.JSON(http.StatusOK, gin.H{
			"project":    p,
			"phases":     phases,
			"duration":   dur,
			"completion": metrics.Completion(phases),
			"status":     metrics.Status(p, phases, dur),
		})
	}
}

func handleProjectDelete(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		p, err := scopedProject(db, c, c.Param("id"))
		if err != nil {
			writeError(c, err)
			return
		}
		if err := project.Delete(db, p.ID); err != nil {
			writeError(c, err)
			return
		}
		c.Status(http.StatusNoContent)
	}
}

type baselineRequest struct {
	StartDate    string `json:"start_date"`
	DurationDays int    `json:"duration_days"`
}

func handleBaselineSet(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		p, err := scopedProject(db, c, c.Param("id"))
		if err != nil {
			writeError(c, err)
			return
		}
		var req baselineRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
			return
		}
		start, err := schedule.ParseDate(req.StartDate)
		if err != nil {
			writeError(c, err)
			return
		}
		updated, err := project.SetBaseline(db, p.ID, start, req.DurationDays)
		if err != nil {
			writeError(c, err)
			return
		}
		c.JSON(http.StatusOK, updated)
	}
}

func handleBaselineClear(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		p, err := scopedProject(db, c, c.Param("id"))
		if err != nil {
			writeError(c, err)
			return
		}
		updated, err := project.ClearBaseline(db, p.ID)
		if err != nil {
			writeError(c, err)
			return
		}
		c.JSON(http.StatusOK, updated)
	}
}

func handleProjectSummary(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		p, err := scopedProject(db, c, c.Param("id"))
		if err != nil {
			writeError(c, err)
			return
		}
		row, err := project.Summarize(db, p)
		if err != nil {
			writeError(c, err)
			return
		}
		c.JSON(http.StatusOK, row)
	}
}

func handlePhaseList(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		p, err := scopedProject(db, c, c.Param("id"))
		if err != nil {
			writeError(c, err)
			return
		}
		phases, err := phase.ListByProject(db, p.ID)
		if err != nil {
			writeError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"phases": phases})
	}
}

type createPhaseRequest struct {
	Name                string `json:"name"`
	Description         string `json:"description"`
	SequenceOrder       int    `json:"sequence_order"`
	PlannedStartDate    string `json:"planned_start_date"`
	PlannedDurationDays int    `json:"planned_duration_days"`
	BufferDays          int    `json:"buffer_days"`
	PredecessorPhaseID  string `json:"predecessor_phase_id"`
	Color               string `json:"color"`
	Metadata            string `json:"metadata"`
}

func handlePhaseCreate(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		p, err := scopedProject(db, c, c.Param("id"))
		if err != nil {
			writeError(c, err)
			return
		}
		var req createPhaseRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
			return
		}
		start, err := schedule.ParseDate(req.PlannedStartDate)
		if err != nil {
			writeError(c, err)
			return
		}
		created, err := phase.CreatePhase(db, phase.CreatePhaseOpts{
			ProjectID:           p.ID,
			Name:                req.Name,
			Description:         req.Description,
			SequenceOrder:       req.SequenceOrder,
			PlannedStartDate:    start,
			PlannedDurationDays: req.PlannedDurationDays,
			BufferDays:          req.BufferDays,
			PredecessorPhaseID:  req.PredecessorPhaseID,
			Color:               req.Color,
			Metadata:            req.Metadata,
		})
		if err != nil {
			writeError(c, err)
			return
		}
		c.JSON(http.StatusCreated, created)
	}
}

type createTaskRequest struct {
	Name                string `json:"name"`
	Description         string `json:"description"`
	SequenceOrder       int    `json:"sequence_order"`
	PlannedStartDate    string `json:"planned_start_date"`
	PlannedDurationDays int    `json:"planned_duration_days"`
	BufferDays          int    `json:"buffer_days"`
	Color               string `json:"color"`
	Metadata            string `json:"metadata"`
}

func handleTaskCreate(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		parent, err := scopedPhase(db, c, c.Param("id"))
		if err != nil {
			writeError(c, err)
			return
		}
		var req createTaskRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
			return
		}
		start, err := schedule.ParseDate(req.PlannedStartDate)
		if err != nil {
			writeError(c, err)
			return
		}
		task, outcome, err := phase.CreateTask(db, phase.CreateTaskOpts{
			ParentPhaseID:       parent.ID,
			Name:                req.Name,
			Description:         req.Description,
			SequenceOrder:       req.SequenceOrder,
			PlannedStartDate:    start,
			PlannedDurationDays: req.PlannedDurationDays,
			BufferDays:          req.BufferDays,
			Color:               req.Color,
			Metadata:            req.Metadata,
		})
		if err != nil {
			writeError(c, err)
			return
		}
		c.JSON(http.StatusCreated, gin.H{"task": task, "recalculation": outcome})
	}
}

type updatePhaseRequest struct {
	Name                *string `json:"name"`
	Description         *string `json:"description"`
	SequenceOrder       *int    `json:"sequence_order"`
	PlannedStartDate    *string `json:"planned_start_date"`
	PlannedDurationDays *int    `json:"planned_duration_days"`
	BufferDays          *int    `json:"buffer_days"`
	Status              *string `json:"status"`
	Color               *string `json:"color"`
	DurationMode        *string `json:"duration_mode"`
	Metadata            *string `json:"metadata"`
}

func handlePhaseUpdate(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		row, err := scopedPhase(db, c, c.Param("id"))
		if err != nil {
			writeError(c, err)
			return
		}
		var req updatePhaseRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
			return
		}
		opts := phase.UpdateOpts{
			Name:                req.Name,
			Description:         req.Description,
			SequenceOrder:       req.SequenceOrder,
			PlannedDurationDays: req.PlannedDurationDays,
			BufferDays:          req.BufferDays,
			Status:              req.Status,
			Color:               req.Color,
			DurationMode:        req.DurationMode,
			Metadata:            req.Metadata,
		}
		if req.PlannedStartDate != nil {
			start, err := schedule.ParseDate(*req.PlannedStartDate)
			if err != nil {
				writeError(c, err)
				return
			}
			opts.PlannedStartDate = &start
		}
		updated, outcome, err := phase.Update(db, row.ID, opts)
		if err != nil {
			writeError(c, err)
			return
		}
		key := "phase"
		if updated.IsTask {
			key = "task"
		}
		c.JSON(http.StatusOK, gin.H{key: updated, "recalculation": outcome})
	}
}

func handlePhaseDelete(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		row, err := scopedPhase(db, c, c.Param("id"))
		if err != nil {
			writeError(c, err)
			return
		}
		outcome, err := phase.Delete(db, row.ID)
		if err != nil {
			writeError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"deleted": row.ID, "recalculation": outcome})
	}
}

func handleRecalculate(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		row, err := scopedPhase(db, c, c.Param("id"))
		if err != nil {
			writeError(c, err)
			return
		}
		force := c.Query("force") == "true"
		updated, outcome, err := phase.Recalculate(db, row.ID, force)
		if err != nil {
			writeError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"phase": updated, "recalculation": outcome})
	}
}
