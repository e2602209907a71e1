package services

import (
	"errors"

	"gorm.io/gorm"

	apperrors "fundpool/internal/errors"
	"fundpool/internal/models"
	"fundpool/internal/pagination"
)

// fundService handles fund and fund-membership business logic.
type fundService struct {
	db           *gorm.DB
	groupService GroupServicer
}

// NewFundService creates a new FundServicer.
func NewFundService(db *gorm.DB, groupService GroupServicer) FundServicer {
	return &fundService{db: db, groupService: groupService}
}

// CreateFund creates a fund inside a group.
func (s *fundService) CreateFund(userID, groupID, name string) (*models.Fund, error) {
	if name == "" {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "fund name is required")
	}
	if _, err := s.groupService.GetGroupByID(userID, groupID); err != nil {
		return nil, err
	}

	fund := &models.Fund{
		GroupID: groupID,
		Name:    name,
	}
	if err := s.db.Create(fund).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return fund, nil
}

// GetFundByID retrieves a fund if its group belongs to the user.
func (s *fundService) GetFundByID(userID, fundID string) (*models.Fund, error) {
	var fund models.Fund
	err := s.db.
		Joins(`JOIN "groups" ON "groups".id = funds.group_id`).
		Where(`funds.id = ? AND "groups".user_id = ?`, fundID, userID).
		First(&fund).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrFundNotFound
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return &fund, nil
}

// GetGroupFunds returns a paginated list of a group's funds.
func (s *fundService) GetGroupFunds(userID, groupID string, page pagination.PageRequest) (*pagination.PageResponse[models.Fund], error) {
	if _, err := s.groupService.GetGroupByID(userID, groupID); err != nil {
		return nil, err
	}

	page.Defaults()

	base := s.db.Model(&models.Fund{}).Where("group_id = ?", groupID)

	var totalItems int64
	if err := base.Count(&totalItems).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	var funds []models.Fund
	if err := base.Order("created_at ASC").Scopes(pagination.Paginate(page)).Find(&funds).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	result := pagination.NewPageResponse(funds, page.Page, page.PageSize, totalItems)
	return &result, nil
}

// UpdateFund renames a fund.
func (s *fundService) UpdateFund(userID, fundID, name string) (*models.Fund, error) {
	if name == "" {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "fund name is required")
	}
	fund, err := s.GetFundByID(userID, fundID)
	if err != nil {
		return nil, err
	}
	if err := s.db.Model(fund).Update("name", name).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return fund, nil
}

// DeleteFund deletes a fund with its transactions and memberships.
func (s *fundService) DeleteFund(userID, fundID string) error {
	fund, err := s.GetFundByID(userID, fundID)
	if err != nil {
		return err
	}
	if err := s.db.Delete(fund).Error; err != nil {
		return apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return nil
}

// AddFundMember enrolls a member into a fund. The member must belong to the
// same group as the fund. Re-adding an existing membership is a no-op.
func (s *fundService) AddFundMember(userID, fundID, memberID string) error {
	fund, err := s.GetFundByID(userID, fundID)
	if err != nil {
		return err
	}

	var member models.Member
	if err := s.db.Where("id = ? AND group_id = ?", memberID, fund.GroupID).First(&member).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperrors.ErrMemberNotFound
		}
		return apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	var count int64
	if err := s.db.Model(&models.FundMember{}).
		Where("fund_id = ? AND member_id = ?", fundID, memberID).
		Count(&count).Error; err != nil {
		return apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	if count > 0 {
		return nil
	}

	membership := &models.FundMember{FundID: fundID, MemberID: memberID}
	if err := s.db.Create(membership).Error; err != nil {
		return apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return nil
}

// RemoveFundMember removes a member from a fund.
func (s *fundService) RemoveFundMember(userID, fundID, memberID string) error {
	if _, err := s.GetFundByID(userID, fundID); err != nil {
		return err
	}

	result := s.db.Where("fund_id = ? AND member_id = ?", fundID, memberID).Delete(&models.FundMember{})
	if result.Error != nil {
		return apperrors.Wrap(apperrors.ErrInternalServer, result.Error)
	}
	if result.RowsAffected == 0 {
		return apperrors.ErrMemberNotFound
	}
	return nil
}

// GetFundMembers returns the members enrolled in a fund.
func (s *fundService) GetFundMembers(userID, fundID string) ([]models.Member, error) {
	if _, err := s.GetFundByID(userID, fundID); err != nil {
		return nil, err
	}

	var members []models.Member
	err := s.db.Model(&models.Member{}).
		Joins("JOIN fund_members ON fund_members.member_id = members.id").
		Where("fund_members.fund_id = ?", fundID).
		Order("members.name ASC").
		Find(&members).Error
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	if members == nil {
		members = []models.Member{}
	}
	return members, nil
}
