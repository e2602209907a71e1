package services

import (
	"errors"
	"strings"

	"gorm.io/gorm"

	apperrors "fundpool/internal/errors"
	"fundpool/internal/models"
	"fundpool/internal/pagination"
)

// memberService handles member-related business logic.
type memberService struct {
	db           *gorm.DB
	groupService GroupServicer
}

// NewMemberService creates a new MemberServicer.
func NewMemberService(db *gorm.DB, groupService GroupServicer) MemberServicer {
	return &memberService{db: db, groupService: groupService}
}

// CreateMember adds a member to a group.
func (s *memberService) CreateMember(userID, groupID, name, role string) (*models.Member, error) {
	if name == "" {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "member name is required")
	}
	if _, err := s.groupService.GetGroupByID(userID, groupID); err != nil {
		return nil, err
	}

	member := &models.Member{
		GroupID: groupID,
		Name:    name,
		Role:    role,
	}
	if err := s.db.Create(member).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return member, nil
}

// GetMemberByID retrieves a member if its group belongs to the user.
func (s *memberService) GetMemberByID(userID, memberID string) (*models.Member, error) {
	var member models.Member
	err := s.db.
		Joins(`JOIN "groups" ON "groups".id = members.group_id`).
		Where(`members.id = ? AND "groups".user_id = ?`, memberID, userID).
		First(&member).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrMemberNotFound
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return &member, nil
}

// GetGroupMembers returns a paginated list of a group's members, optionally
// narrowed by a name search.
func (s *memberService) GetGroupMembers(userID, groupID string, page pagination.PageRequest, search string) (*pagination.PageResponse[models.Member], error) {
	if _, err := s.groupService.GetGroupByID(userID, groupID); err != nil {
		return nil, err
	}

	page.Defaults()

	base := s.db.Model(&models.Member{}).Where("group_id = ?", groupID)
	if search = strings.TrimSpace(search); search != "" {
		base = base.Where("LOWER(name) LIKE ?", "%"+strings.ToLower(search)+"%")
	}

	var totalItems int64
	if err := base.Count(&totalItems).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	var members []models.Member
	if err := base.Order("created_at DESC").Scopes(pagination.Paginate(page)).Find(&members).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	result := pagination.NewPageResponse(members, page.Page, page.PageSize, totalItems)
	return &result, nil
}

// UpdateMember updates a member's name and role.
func (s *memberService) UpdateMember(userID, memberID, name, role string) (*models.Member, error) {
	member, err := s.GetMemberByID(userID, memberID)
	if err != nil {
		return nil, err
	}

	updates := make(map[string]interface{})
	if name != "" {
		updates["name"] = name
	}
	updates["role"] = role

	if err := s.db.Model(member).Updates(updates).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return member, nil
}

// DeleteMember deletes a member. Its transactions and fund memberships
// cascade away with it.
func (s *memberService) DeleteMember(userID, memberID string) error {
	member, err := s.GetMemberByID(userID, memberID)
	if err != nil {
		return err
	}
	if err := s.db.Delete(member).Error; err != nil {
		return apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return nil
}
