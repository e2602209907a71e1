package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	apperrors "fundpool/internal/errors"
	"fundpool/internal/pagination"
	"fundpool/internal/services"
)

// DebtHandler handles debt case requests.
type DebtHandler struct {
	debtService services.DebtServicer
}

// NewDebtHandler creates a new DebtHandler.
func NewDebtHandler(debtService services.DebtServicer) *DebtHandler {
	return &DebtHandler{debtService: debtService}
}

// DebtRequest represents the create/update payload for a debt case.
type DebtRequest struct {
	Description string     `json:"description" binding:"required,min=1,max=500"`
	PromiseDate *time.Time `json:"promise_date"`
}

// LinkTransactionRequest represents the payload for linking a transaction.
type LinkTransactionRequest struct {
	TransactionID string `json:"transaction_id" binding:"required,uuid"`
}

// debtListQuery binds pagination plus the optional keyword search.
type debtListQuery struct {
	pagination.PageRequest
	Keyword string `form:"keyword"`
}

// CreateDebt opens a new debt case.
func (h *DebtHandler) CreateDebt(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req DebtRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	debt, err := h.debtService.CreateDebt(userID, req.Description, req.PromiseDate)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"debt": debt})
}

// ListDebts returns the user's debt cases, paginated.
func (h *DebtHandler) ListDebts(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var query debtListQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	debts, err := h.debtService.ListDebts(userID, query.PageRequest, query.Keyword)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, debts)
}

// Summary returns the user's debt cases with signed net totals and a grand
// total over all of them.
func (h *DebtHandler) Summary(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var query debtListQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	summary, grandTotal, err := h.debtService.SummaryPage(userID, query.PageRequest, query.Keyword)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"debts":       summary,
		"grand_total": grandTotal,
	})
}

// GetDebt returns a single debt case by ID.
func (h *DebtHandler) GetDebt(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	debtID, err := pathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	debt, err := h.debtService.GetDebtByID(userID, debtID)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"debt": debt})
}

// UpdateDebt updates a debt case's description and promise date.
func (h *DebtHandler) UpdateDebt(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	debtID, err := pathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req DebtRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	debt, err := h.debtService.UpdateDebt(userID, debtID, req.Description, req.PromiseDate)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"debt": debt})
}

// DeleteDebt deletes a debt case and its links.
func (h *DebtHandler) DeleteDebt(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	debtID, err := pathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	if err := h.debtService.DeleteDebt(userID, debtID); err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Debt deleted successfully"})
}

// LinkTransaction attaches a transaction to a debt case.
func (h *DebtHandler) LinkTransaction(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	debtID, err := pathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req LinkTransactionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	detail, err := h.debtService.LinkTransaction(userID, debtID, req.TransactionID)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"detail": detail})
}

// UnlinkDetail removes a transaction link from its debt case.
func (h *DebtHandler) UnlinkDetail(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	detailID, err := pathID(c, "detailId")
	if err != nil {
		respondWithError(c, err)
		return
	}

	if err := h.debtService.UnlinkDetail(userID, detailID); err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Transaction unlinked successfully"})
}

// ListDetails returns the transactions linked to a debt case, paginated.
func (h *DebtHandler) ListDetails(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	debtID, err := pathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	var query debtListQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	details, err := h.debtService.DetailPage(userID, debtID, query.PageRequest, query.Keyword)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, details)
}
