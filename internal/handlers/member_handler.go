package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	apperrors "fundpool/internal/errors"
	"fundpool/internal/pagination"
	"fundpool/internal/services"
)

// MemberHandler handles member-related requests.
type MemberHandler struct {
	memberService services.MemberServicer
}

// NewMemberHandler creates a new MemberHandler.
func NewMemberHandler(memberService services.MemberServicer) *MemberHandler {
	return &MemberHandler{memberService: memberService}
}

// MemberRequest represents the create/update payload for a member.
type MemberRequest struct {
	Name string `json:"name" binding:"required,min=1,max=100"`
	Role string `json:"role" binding:"max=100"`
}

// memberListQuery binds pagination plus the optional name search.
type memberListQuery struct {
	pagination.PageRequest
	Search string `form:"search"`
}

// CreateMember adds a member to a group.
func (h *MemberHandler) CreateMember(c *gin.Context) {
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

	var req MemberRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	member, err := h.memberService.CreateMember(userID, groupID, req.Name, req.Role)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"member": member})
}

// ListMembers returns a group's members, paginated.
func (h *MemberHandler) ListMembers(c *gin.Context) {
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

	var query memberListQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	members, err := h.memberService.GetGroupMembers(userID, groupID, query.PageRequest, query.Search)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, members)
}

// GetMember returns a single member by ID.
func (h *MemberHandler) GetMember(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	memberID, err := pathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	member, err := h.memberService.GetMemberByID(userID, memberID)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"member": member})
}

// UpdateMember updates a member's name and role.
func (h *MemberHandler) UpdateMember(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	memberID, err := pathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req MemberRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	member, err := h.memberService.UpdateMember(userID, memberID, req.Name, req.Role)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"member": member})
}

// DeleteMember removes a member from their group.
func (h *MemberHandler) DeleteMember(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	memberID, err := pathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	if err := h.memberService.DeleteMember(userID, memberID); err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Member deleted successfully"})
}
