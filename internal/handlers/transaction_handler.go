package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	apperrors "fundpool/internal/errors"
	"fundpool/internal/models"
	"fundpool/internal/pagination"
	"fundpool/internal/services"
)

// TransactionHandler handles transaction and balance requests.
type TransactionHandler struct {
	ledger services.LedgerServicer
}

// NewTransactionHandler creates a new TransactionHandler.
func NewTransactionHandler(ledger services.LedgerServicer) *TransactionHandler {
	return &TransactionHandler{ledger: ledger}
}

// CreateTransactionRequest represents the payload for an income or expense.
type CreateTransactionRequest struct {
	Type        models.TransactionType `json:"type" binding:"required,entry_type"`
	Amount      int64                  `json:"amount" binding:"required,gt=0"`
	Description string                 `json:"description" binding:"max=500"`
	Date        *time.Time             `json:"date"`
	FundID      string                 `json:"fund_id" binding:"required,uuid"`
	MemberID    *string                `json:"member_id" binding:"omitempty,uuid"`
	TagID       *string                `json:"tag_id" binding:"omitempty,uuid"`
}

// CreateTransferRequest represents the payload for a fund-to-fund move.
type CreateTransferRequest struct {
	Amount      int64      `json:"amount" binding:"required,gt=0"`
	Description string     `json:"description" binding:"max=500"`
	Date        *time.Time `json:"date"`
	FromFundID  string     `json:"from_fund_id" binding:"required,uuid"`
	ToFundID    string     `json:"to_fund_id" binding:"required,uuid"`
}

// UpdateTransactionRequest represents a partial transaction update.
type UpdateTransactionRequest struct {
	Type        *models.TransactionType `json:"type" binding:"omitempty,entry_type"`
	Amount      *int64                  `json:"amount" binding:"omitempty,gt=0"`
	Description *string                 `json:"description" binding:"omitempty,max=500"`
	Date        *time.Time              `json:"date"`
	FundID      *string                 `json:"fund_id" binding:"omitempty,uuid"`
	MemberID    *string                 `json:"member_id" binding:"omitempty,uuid"`
	TagID       *string                 `json:"tag_id" binding:"omitempty,uuid"`
}

// transactionListQuery binds pagination plus the optional listing filters.
type transactionListQuery struct {
	pagination.PageRequest
	Type    *models.TransactionType `form:"type" binding:"omitempty,transaction_type"`
	TagID   *string                 `form:"tag_id" binding:"omitempty,uuid"`
	FundID  *string                 `form:"fund_id" binding:"omitempty,uuid"`
	Keyword string                  `form:"keyword"`
}

// CreateTransaction records an income or expense against a fund.
func (h *TransactionHandler) CreateTransaction(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	groupID, err := pathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req CreateTransactionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	var date time.Time
	if req.Date != nil {
		date = *req.Date
	}

	transaction, err := h.ledger.CreateTransaction(
		userID, groupID, req.FundID,
		req.MemberID, req.TagID,
		req.Type, req.Amount, req.Description, date,
	)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"transaction": transaction})
}

// CreateTransfer records a move between two funds of the group.
func (h *TransactionHandler) CreateTransfer(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	groupID, err := pathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req CreateTransferRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	var date time.Time
	if req.Date != nil {
		date = *req.Date
	}

	transaction, err := h.ledger.CreateTransfer(
		userID, groupID, req.FromFundID, req.ToFundID,
		req.Amount, req.Description, date,
	)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"transaction": transaction})
}

// ListTransactions returns a group's transactions, filtered and paginated.
func (h *TransactionHandler) ListTransactions(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	groupID, err := pathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	var query transactionListQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	filter := services.TransactionFilter{
		Type:    query.Type,
		TagID:   query.TagID,
		FundID:  query.FundID,
		Keyword: query.Keyword,
	}
	transactions, err := h.ledger.ListTransactions(userID, groupID, query.PageRequest, filter)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, transactions)
}

// GetTransaction returns a single transaction by ID.
func (h *TransactionHandler) GetTransaction(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	transactionID, err := pathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	transaction, err := h.ledger.GetTransactionByID(userID, transactionID)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"transaction": transaction})
}

// UpdateTransaction applies a partial update to a transaction.
func (h *TransactionHandler) UpdateTransaction(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	transactionID, err := pathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req UpdateTransactionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	fields := services.TransactionUpdate{
		Type:        req.Type,
		Amount:      req.Amount,
		Description: req.Description,
		Date:        req.Date,
		FundID:      req.FundID,
		MemberID:    req.MemberID,
		TagID:       req.TagID,
	}
	transaction, err := h.ledger.UpdateTransaction(userID, transactionID, fields)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"transaction": transaction})
}

// DeleteTransaction deletes a transaction.
func (h *TransactionHandler) DeleteTransaction(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	transactionID, err := pathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	if err := h.ledger.DeleteTransaction(userID, transactionID); err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Transaction deleted successfully"})
}

// GetGroupBalance returns the group's net balance.
func (h *TransactionHandler) GetGroupBalance(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	groupID, err := pathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	balance, err := h.ledger.BalanceByGroup(userID, groupID)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"balance": balance})
}
