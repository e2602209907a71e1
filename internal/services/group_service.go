package services

import (
	"errors"

	"gorm.io/gorm"

	apperrors "fundpool/internal/errors"
	"fundpool/internal/models"
	"fundpool/internal/pagination"
)

// groupService handles group-related business logic.
type groupService struct {
	db *gorm.DB
}

// NewGroupService creates a new GroupServicer.
func NewGroupService(db *gorm.DB) GroupServicer {
	return &groupService{db: db}
}

// CreateGroup creates a new group owned by the user.
func (s *groupService) CreateGroup(userID, name, description string) (*models.Group, error) {
	if name == "" {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "group name is required")
	}

	group := &models.Group{
		UserID:      userID,
		Name:        name,
		Description: description,
	}
	if err := s.db.Create(group).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return group, nil
}

// GetUserGroups returns a paginated list of the user's groups.
func (s *groupService) GetUserGroups(userID string, page pagination.PageRequest) (*pagination.PageResponse[models.Group], error) {
	page.Defaults()

	base := s.db.Model(&models.Group{}).Where("user_id = ?", userID)

	var totalItems int64
	if err := base.Count(&totalItems).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	var groups []models.Group
	if err := base.Order("created_at DESC").Scopes(pagination.Paginate(page)).Find(&groups).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	result := pagination.NewPageResponse(groups, page.Page, page.PageSize, totalItems)
	return &result, nil
}

// GetGroupByID retrieves a group by ID if it belongs to the user.
func (s *groupService) GetGroupByID(userID, groupID string) (*models.Group, error) {
	var group models.Group
	if err := s.db.Where("id = ? AND user_id = ?", groupID, userID).First(&group).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrGroupNotFound
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return &group, nil
}

// UpdateGroup updates a group's name and description.
func (s *groupService) UpdateGroup(userID, groupID, name, description string) (*models.Group, error) {
	group, err := s.GetGroupByID(userID, groupID)
	if err != nil {
		return nil, err
	}

	updates := make(map[string]interface{})
	if name != "" {
		updates["name"] = name
	}
	updates["description"] = description

	if err := s.db.Model(group).Updates(updates).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return group, nil
}

// DeleteGroup deletes a group. Members, funds, and transactions cascade
// away with it.
func (s *groupService) DeleteGroup(userID, groupID string) error {
	group, err := s.GetGroupByID(userID, groupID)
	if err != nil {
		return err
	}
	if err := s.db.Delete(group).Error; err != nil {
		return apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return nil
}
