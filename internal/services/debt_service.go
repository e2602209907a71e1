package services

import (
	"errors"
	"strings"
	"time"

	"gorm.io/gorm"

	apperrors "fundpool/internal/errors"
	"fundpool/internal/models"
	"fundpool/internal/pagination"
)

// debtService handles debt cases and their linked transactions.
type debtService struct {
	db *gorm.DB
}

// NewDebtService creates a new DebtServicer.
func NewDebtService(db *gorm.DB) DebtServicer {
	return &debtService{db: db}
}

// CreateDebt opens a new debt case.
func (s *debtService) CreateDebt(userID, description string, promiseDate *time.Time) (*models.Debt, error) {
	if description == "" {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "debt description is required")
	}

	debt := &models.Debt{
		UserID:      userID,
		Description: description,
		PromiseDate: promiseDate,
	}
	if err := s.db.Create(debt).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return debt, nil
}

// GetDebtByID retrieves a debt case owned by the user.
func (s *debtService) GetDebtByID(userID, debtID string) (*models.Debt, error) {
	var debt models.Debt
	if err := s.db.Where("id = ? AND user_id = ?", debtID, userID).First(&debt).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrDebtNotFound
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return &debt, nil
}

// UpdateDebt updates a debt case's description and promise date.
func (s *debtService) UpdateDebt(userID, debtID, description string, promiseDate *time.Time) (*models.Debt, error) {
	debt, err := s.GetDebtByID(userID, debtID)
	if err != nil {
		return nil, err
	}

	updates := make(map[string]interface{})
	if description != "" {
		updates["description"] = description
	}
	updates["promise_date"] = promiseDate

	if err := s.db.Model(debt).Updates(updates).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return debt, nil
}

// DeleteDebt deletes a debt case, its links, and the linked ledger
// transactions, atomically. Closing a debt case retracts the lending and
// repayment entries it tracked, so the affected fund balances revert.
func (s *debtService) DeleteDebt(userID, debtID string) error {
	debt, err := s.GetDebtByID(userID, debtID)
	if err != nil {
		return err
	}

	return s.db.Transaction(func(tx *gorm.DB) error {
		var transactionIDs []string
		if err := tx.Model(&models.DebtDetail{}).
			Where("debt_id = ?", debtID).
			Pluck("transaction_id", &transactionIDs).Error; err != nil {
			return apperrors.Wrap(apperrors.ErrInternalServer, err)
		}

		if err := tx.Where("debt_id = ?", debtID).Delete(&models.DebtDetail{}).Error; err != nil {
			return apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
		if len(transactionIDs) > 0 {
			if err := tx.Where("id IN ?", transactionIDs).Delete(&models.Transaction{}).Error; err != nil {
				return apperrors.Wrap(apperrors.ErrInternalServer, err)
			}
		}
		if err := tx.Delete(debt).Error; err != nil {
			return apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
		return nil
	})
}

// ListDebts returns a paginated list of the user's debt cases.
func (s *debtService) ListDebts(userID string, page pagination.PageRequest, keyword string) (*pagination.PageResponse[models.Debt], error) {
	page.Defaults()

	base := s.db.Model(&models.Debt{}).Where("user_id = ?", userID)
	if keyword != "" {
		base = base.Where("LOWER(description) LIKE ?", "%"+strings.ToLower(keyword)+"%")
	}

	var totalItems int64
	if err := base.Count(&totalItems).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	var debts []models.Debt
	if err := base.Order("created_at DESC").Scopes(pagination.Paginate(page)).Find(&debts).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	result := pagination.NewPageResponse(debts, page.Page, page.PageSize, totalItems)
	return &result, nil
}

// LinkTransaction attaches a ledger transaction to a debt case. Only income
// and expense rows qualify; moves carry no lending meaning. A transaction
// can only be linked to a given debt once.
func (s *debtService) LinkTransaction(userID, debtID, transactionID string) (*models.DebtDetail, error) {
	if _, err := s.GetDebtByID(userID, debtID); err != nil {
		return nil, err
	}

	var transaction models.Transaction
	err := s.db.
		Joins(`JOIN "groups" ON "groups".id = transactions.group_id`).
		Where(`transactions.id = ? AND "groups".user_id = ?`, transactionID, userID).
		First(&transaction).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrTransactionNotFound
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	if transaction.Type == models.TransactionTypeMove {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidTransactionType, "a move cannot be linked to a debt")
	}

	var count int64
	if err := s.db.Model(&models.DebtDetail{}).
		Where("debt_id = ? AND transaction_id = ?", debtID, transactionID).
		Count(&count).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	if count > 0 {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "transaction is already linked to this debt")
	}

	detail := &models.DebtDetail{
		DebtID:        debtID,
		TransactionID: transactionID,
	}
	if err := s.db.Create(detail).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return detail, nil
}

// UnlinkDetail removes a transaction link from its debt case.
func (s *debtService) UnlinkDetail(userID, detailID string) error {
	var detail models.DebtDetail
	err := s.db.
		Joins("JOIN debts ON debts.id = debt_details.debt_id").
		Where("debt_details.id = ? AND debts.user_id = ?", detailID, userID).
		First(&detail).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperrors.ErrDebtDetailNotFound
		}
		return apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	if err := s.db.Delete(&detail).Error; err != nil {
		return apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return nil
}

// DetailPage returns the transactions linked to a debt case, joined with
// their fund names, newest first.
func (s *debtService) DetailPage(userID, debtID string, page pagination.PageRequest, keyword string) (*pagination.PageResponse[DebtDetailRow], error) {
	if _, err := s.GetDebtByID(userID, debtID); err != nil {
		return nil, err
	}

	page.Defaults()

	base := s.db.Table("debt_details AS dd").
		Joins("JOIN transactions t ON t.id = dd.transaction_id").
		Joins("LEFT JOIN funds f ON f.id = t.fund_id").
		Where("dd.debt_id = ?", debtID)
	if keyword != "" {
		base = base.Where("LOWER(t.description) LIKE ?", "%"+strings.ToLower(keyword)+"%")
	}

	var totalItems int64
	if err := base.Count(&totalItems).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	var rows []DebtDetailRow
	err := base.
		Select(`dd.id AS detail_id, dd.debt_id, dd.transaction_id,
			t.type, t.amount, t.description, t.transaction_date,
			t.fund_id, f.name AS fund_name`).
		Order("t.transaction_date DESC, t.created_at DESC").
		Scopes(pagination.Paginate(page)).
		Scan(&rows).Error
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	result := pagination.NewPageResponse(rows, page.Page, page.PageSize, totalItems)
	return &result, nil
}

// SummaryPage returns the user's debt cases with their signed net totals
// plus the grand total over every matching case. Linked income counts as
// repayment and adds; linked expense counts as lending out and subtracts.
// A negative total means money is still owed to the user.
func (s *debtService) SummaryPage(userID string, page pagination.PageRequest, keyword string) (*pagination.PageResponse[DebtSummary], int64, error) {
	page.Defaults()

	base := s.db.Table("debts AS d").Where("d.user_id = ?", userID)
	if keyword != "" {
		base = base.Where("LOWER(d.description) LIKE ?", "%"+strings.ToLower(keyword)+"%")
	}

	var totalItems int64
	if err := base.Count(&totalItems).Error; err != nil {
		return nil, 0, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	signedSum := `COALESCE(SUM(CASE
		WHEN t.type = 'income' THEN t.amount
		WHEN t.type = 'expense' THEN -t.amount
		ELSE 0
	END), 0)`

	summarized := base.
		Joins("LEFT JOIN debt_details dd ON dd.debt_id = d.id").
		Joins("LEFT JOIN transactions t ON t.id = dd.transaction_id").
		Group("d.id, d.description, d.created_at, d.promise_date")

	var rows []DebtSummary
	err := summarized.
		Select(`d.id AS debt_id, d.description, d.created_at, d.promise_date, ` + signedSum + ` AS total`).
		Order("d.created_at DESC").
		Scopes(pagination.Paginate(page)).
		Scan(&rows).Error
	if err != nil {
		return nil, 0, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	grandQuery := s.db.Table("debts AS d").
		Joins("JOIN debt_details dd ON dd.debt_id = d.id").
		Joins("JOIN transactions t ON t.id = dd.transaction_id").
		Where("d.user_id = ?", userID)
	if keyword != "" {
		grandQuery = grandQuery.Where("LOWER(d.description) LIKE ?", "%"+strings.ToLower(keyword)+"%")
	}

	var grandTotal int64
	if err := grandQuery.Select(signedSum).Scan(&grandTotal).Error; err != nil {
		return nil, 0, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	result := pagination.NewPageResponse(rows, page.Page, page.PageSize, totalItems)
	return &result, grandTotal, nil
}
