package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	apperrors "fundpool/internal/errors"
	"fundpool/internal/pagination"
	"fundpool/internal/services"
)

// FundHandler handles fund and fund-membership requests.
type FundHandler struct {
	fundService services.FundServicer
	ledger      services.LedgerServicer
}

// NewFundHandler creates a new FundHandler.
func NewFundHandler(fundService services.FundServicer, ledger services.LedgerServicer) *FundHandler {
	return &FundHandler{fundService: fundService, ledger: ledger}
}

// FundRequest represents the create/update payload for a fund.
type FundRequest struct {
	Name string `json:"name" binding:"required,min=1,max=100"`
}

// FundMemberRequest represents the payload for enrolling a member.
type FundMemberRequest struct {
	MemberID string `json:"member_id" binding:"required,uuid"`
}

// CreateFund creates a fund inside a group.
func (h *FundHandler) CreateFund(c *gin.Context) {
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

	var req FundRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	fund, err := h.fundService.CreateFund(userID, groupID, req.Name)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"fund": fund})
}

// ListFunds returns a group's funds, paginated.
func (h *FundHandler) ListFunds(c *gin.Context) {
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

	var page pagination.PageRequest
	if err := c.ShouldBindQuery(&page); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	funds, err := h.fundService.GetGroupFunds(userID, groupID, page)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, funds)
}

// GetFund returns a single fund with its derived balance.
func (h *FundHandler) GetFund(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	fundID, err := pathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	fund, err := h.fundService.GetFundByID(userID, fundID)
	if err != nil {
		respondWithError(c, err)
		return
	}

	balance, err := h.ledger.BalanceByFund(userID, fundID)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"fund": fund, "balance": balance})
}

// UpdateFund renames a fund.
func (h *FundHandler) UpdateFund(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	fundID, err := pathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req FundRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	fund, err := h.fundService.UpdateFund(userID, fundID, req.Name)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"fund": fund})
}

// DeleteFund deletes a fund with its transactions.
func (h *FundHandler) DeleteFund(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	fundID, err := pathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	if err := h.fundService.DeleteFund(userID, fundID); err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Fund deleted successfully"})
}

// AddFundMember enrolls a member into a fund.
func (h *FundHandler) AddFundMember(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	fundID, err := pathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req FundMemberRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	if err := h.fundService.AddFundMember(userID, fundID, req.MemberID); err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"message": "Member added to fund"})
}

// RemoveFundMember removes a member from a fund.
func (h *FundHandler) RemoveFundMember(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	fundID, err := pathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	memberID, err := pathID(c, "memberId")
	if err != nil {
		respondWithError(c, err)
		return
	}

	if err := h.fundService.RemoveFundMember(userID, fundID, memberID); err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Member removed from fund"})
}

// ListFundMembers returns the members enrolled in a fund with what each has
// paid into it.
func (h *FundHandler) ListFundMembers(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	fundID, err := pathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	fund, err := h.fundService.GetFundByID(userID, fundID)
	if err != nil {
		respondWithError(c, err)
		return
	}

	members, err := h.fundService.GetFundMembers(userID, fundID)
	if err != nil {
		respondWithError(c, err)
		return
	}

	paid, err := h.ledger.PaidAmountByMembers(userID, fund.GroupID, fundID)
	if err != nil {
		respondWithError(c, err)
		return
	}

	type fundMemberView struct {
		ID     string `json:"id"`
		Name   string `json:"name"`
		Role   string `json:"role"`
		PaidIn int64  `json:"paid_in"`
	}
	views := make([]fundMemberView, 0, len(members))
	for _, m := range members {
		views = append(views, fundMemberView{
			ID:     m.ID,
			Name:   m.Name,
			Role:   m.Role,
			PaidIn: paid[m.ID],
		})
	}

	c.JSON(http.StatusOK, gin.H{"members": views})
}
