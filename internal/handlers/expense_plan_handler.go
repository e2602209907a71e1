package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	apperrors "fundpool/internal/errors"
	"fundpool/internal/pagination"
	"fundpool/internal/services"
)

// ExpensePlanHandler handles expense plan requests.
type ExpensePlanHandler struct {
	planService services.ExpensePlanServicer
}

// NewExpensePlanHandler creates a new ExpensePlanHandler.
func NewExpensePlanHandler(planService services.ExpensePlanServicer) *ExpensePlanHandler {
	return &ExpensePlanHandler{planService: planService}
}

// CreatePlanRequest represents the payload for creating a plan.
type CreatePlanRequest struct {
	TagID    string    `json:"tag_id" binding:"required,uuid"`
	FromDate time.Time `json:"from_date" binding:"required"`
	ToDate   time.Time `json:"to_date" binding:"required"`
	Value    int64     `json:"value" binding:"required,gt=0"`
}

// UpdatePlanRequest represents a partial plan update.
type UpdatePlanRequest struct {
	TagID    *string    `json:"tag_id" binding:"omitempty,uuid"`
	FromDate *time.Time `json:"from_date"`
	ToDate   *time.Time `json:"to_date"`
	Value    *int64     `json:"value" binding:"omitempty,gt=0"`
}

// planListQuery binds pagination plus the optional plan filters.
type planListQuery struct {
	pagination.PageRequest
	TagID   *string `form:"tag_id" binding:"omitempty,uuid"`
	Keyword string  `form:"keyword"`
}

// CreatePlan creates a spending plan for a tag.
func (h *ExpensePlanHandler) CreatePlan(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req CreatePlanRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	plan, err := h.planService.CreatePlan(userID, req.TagID, req.FromDate, req.ToDate, req.Value)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"plan": plan})
}

// ListPlans returns the user's plans with derived spend, paginated.
func (h *ExpensePlanHandler) ListPlans(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var query planListQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	filter := services.PlanFilter{TagID: query.TagID, Keyword: query.Keyword}
	plans, err := h.planService.ListPlansWithSpent(userID, query.PageRequest, filter)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, plans)
}

// GetPlan returns a single plan by ID.
func (h *ExpensePlanHandler) GetPlan(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	planID, err := pathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	plan, err := h.planService.GetPlanByID(userID, planID)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"plan": plan})
}

// UpdatePlan applies a partial update to a plan.
func (h *ExpensePlanHandler) UpdatePlan(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	planID, err := pathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req UpdatePlanRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	plan, err := h.planService.UpdatePlan(userID, planID, req.TagID, req.FromDate, req.ToDate, req.Value)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"plan": plan})
}

// DeletePlan deletes a plan.
func (h *ExpensePlanHandler) DeletePlan(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	planID, err := pathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	if err := h.planService.DeletePlan(userID, planID); err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Plan deleted successfully"})
}
