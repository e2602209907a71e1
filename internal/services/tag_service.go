package services

import (
	"errors"
	"strings"

	"gorm.io/gorm"

	apperrors "fundpool/internal/errors"
	"fundpool/internal/models"
	"fundpool/internal/pagination"
)

// tagService handles tag business logic. Tags are shared across all users.
type tagService struct {
	db *gorm.DB
}

// NewTagService creates a new TagServicer.
func NewTagService(db *gorm.DB) TagServicer {
	return &tagService{db: db}
}

// CreateTag creates a tag.
func (s *tagService) CreateTag(name string) (*models.Tag, error) {
	if name == "" {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "tag name is required")
	}

	tag := &models.Tag{Name: name}
	if err := s.db.Create(tag).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return tag, nil
}

// GetTagByID retrieves a tag by ID.
func (s *tagService) GetTagByID(tagID string) (*models.Tag, error) {
	var tag models.Tag
	if err := s.db.Where("id = ?", tagID).First(&tag).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrTagNotFound
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return &tag, nil
}

// UpdateTag renames a tag. The seeded system tags cannot be renamed.
func (s *tagService) UpdateTag(tagID, name string) (*models.Tag, error) {
	if name == "" {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "tag name is required")
	}
	tag, err := s.GetTagByID(tagID)
	if err != nil {
		return nil, err
	}
	if tag.Reserved() {
		return nil, apperrors.ErrTagReserved
	}
	if err := s.db.Model(tag).Update("name", name).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return tag, nil
}

// DeleteTag deletes a tag. The seeded system tags cannot be deleted since
// debt totals depend on them.
func (s *tagService) DeleteTag(tagID string) error {
	tag, err := s.GetTagByID(tagID)
	if err != nil {
		return err
	}
	if tag.Reserved() {
		return apperrors.ErrTagReserved
	}
	if err := s.db.Delete(tag).Error; err != nil {
		return apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return nil
}

// ListTags returns a paginated list of tags, optionally narrowed by a name
// search.
func (s *tagService) ListTags(page pagination.PageRequest, search string) (*pagination.PageResponse[models.Tag], error) {
	page.Defaults()

	base := s.db.Model(&models.Tag{})
	if search = strings.TrimSpace(search); search != "" {
		base = base.Where("LOWER(name) LIKE ?", "%"+strings.ToLower(search)+"%")
	}

	var totalItems int64
	if err := base.Count(&totalItems).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	var tags []models.Tag
	if err := base.Order("name ASC").Scopes(pagination.Paginate(page)).Find(&tags).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	result := pagination.NewPageResponse(tags, page.Page, page.PageSize, totalItems)
	return &result, nil
}
