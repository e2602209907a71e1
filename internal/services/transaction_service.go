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

// transactionService handles the transaction log and its balance queries.
type transactionService struct {
	db           *gorm.DB
	groupService GroupServicer
}

// NewTransactionService creates a new LedgerServicer.
func NewTransactionService(db *gorm.DB, groupService GroupServicer) LedgerServicer {
	return &transactionService{db: db, groupService: groupService}
}

// fundBalance computes a fund's derived balance inside the given connection.
//
// The sum must branch on type and evaluate fund_id and to_fund_id separately:
// income into the fund adds, expense from it subtracts, a move subtracts when
// the fund is the source and adds when it is the destination. A naive
// income-positive/everything-else-negative sum miscounts the receiving side
// of a move.
func fundBalance(db *gorm.DB, fundID string) (int64, error) {
	var balance int64
	err := db.Raw(`
		SELECT COALESCE(SUM(CASE
			WHEN type = 'income' AND fund_id = ? THEN amount
			WHEN type = 'expense' AND fund_id = ? THEN -amount
			WHEN type = 'move' AND fund_id = ? THEN -amount
			WHEN type = 'move' AND to_fund_id = ? THEN amount
			ELSE 0
		END), 0)
		FROM transactions
		WHERE fund_id = ? OR to_fund_id = ?`,
		fundID, fundID, fundID, fundID, fundID, fundID,
	).Scan(&balance).Error
	if err != nil {
		return 0, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return balance, nil
}

// getFundInGroup loads a fund and verifies it belongs to the given group and
// that the group belongs to the user.
func (s *transactionService) getFundInGroup(userID, groupID, fundID string) (*models.Fund, error) {
	if _, err := s.groupService.GetGroupByID(userID, groupID); err != nil {
		return nil, err
	}
	var fund models.Fund
	if err := s.db.Where("id = ? AND group_id = ?", fundID, groupID).First(&fund).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrFundNotFound
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return &fund, nil
}

// memberInGroup verifies a member belongs to the given group.
func (s *transactionService) memberInGroup(groupID, memberID string) error {
	var count int64
	if err := s.db.Model(&models.Member{}).
		Where("id = ? AND group_id = ?", memberID, groupID).
		Count(&count).Error; err != nil {
		return apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	if count == 0 {
		return apperrors.ErrMemberNotFound
	}
	return nil
}

// tagExists verifies a tag id refers to a real tag. Tags are shared, so no
// ownership scoping applies.
func (s *transactionService) tagExists(tagID string) error {
	var count int64
	if err := s.db.Model(&models.Tag{}).Where("id = ?", tagID).Count(&count).Error; err != nil {
		return apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	if count == 0 {
		return apperrors.ErrTagNotFound
	}
	return nil
}

// CreateTransaction creates an income or expense transaction. Expenses are
// rejected with ErrInsufficientBalance when they would push the fund's
// derived balance negative; the check and the insert share one database
// transaction so no concurrent write can slip between them. Income is not
// balance-checked, and moves go through CreateTransfer.
func (s *transactionService) CreateTransaction(
	userID, groupID, fundID string,
	memberID, tagID *string,
	transactionType models.TransactionType,
	amount int64,
	description string,
	date time.Time,
) (*models.Transaction, error) {
	if amount <= 0 {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "amount must be greater than zero")
	}
	if transactionType != models.TransactionTypeIncome && transactionType != models.TransactionTypeExpense {
		return nil, apperrors.ErrInvalidTransactionType
	}

	if _, err := s.getFundInGroup(userID, groupID, fundID); err != nil {
		return nil, err
	}
	if memberID != nil {
		if err := s.memberInGroup(groupID, *memberID); err != nil {
			return nil, err
		}
	}
	if tagID != nil {
		if err := s.tagExists(*tagID); err != nil {
			return nil, err
		}
	}

	if date.IsZero() {
		date = time.Now()
	}

	transaction := &models.Transaction{
		GroupID:     groupID,
		Type:        transactionType,
		Amount:      amount,
		Description: description,
		Date:        date,
		FundID:      fundID,
		MemberID:    memberID,
		TagID:       tagID,
	}

	err := s.db.Transaction(func(tx *gorm.DB) error {
		if transactionType == models.TransactionTypeExpense {
			balance, balErr := fundBalance(tx, fundID)
			if balErr != nil {
				return balErr
			}
			if amount > balance {
				return apperrors.ErrInsufficientBalance
			}
		}
		if err := tx.Create(transaction).Error; err != nil {
			return apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return transaction, nil
}

// CreateTransfer creates a move transaction between two distinct funds of
// the same group. The source fund may legally be overdrawn by a move; only
// expenses are balance-checked.
func (s *transactionService) CreateTransfer(
	userID, groupID, fromFundID, toFundID string,
	amount int64,
	description string,
	date time.Time,
) (*models.Transaction, error) {
	if amount <= 0 {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "amount must be greater than zero")
	}
	if fromFundID == toFundID {
		return nil, apperrors.ErrSameFundTransfer
	}

	if _, err := s.getFundInGroup(userID, groupID, fromFundID); err != nil {
		return nil, err
	}
	if _, err := s.getFundInGroup(userID, groupID, toFundID); err != nil {
		return nil, err
	}

	if date.IsZero() {
		date = time.Now()
	}

	transaction := &models.Transaction{
		GroupID:     groupID,
		Type:        models.TransactionTypeMove,
		Amount:      amount,
		Description: description,
		Date:        date,
		FundID:      fromFundID,
		ToFundID:    &toFundID,
	}

	if err := s.db.Create(transaction).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return transaction, nil
}

// GetTransactionByID retrieves a transaction owned by the user.
func (s *transactionService) GetTransactionByID(userID, transactionID string) (*models.Transaction, error) {
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
	return &transaction, nil
}

// UpdateTransaction applies a full-row update by id. The amount is not
// re-checked against the fund balance, so an edit can overdraw a fund.
func (s *transactionService) UpdateTransaction(userID, transactionID string, fields TransactionUpdate) (*models.Transaction, error) {
	transaction, err := s.GetTransactionByID(userID, transactionID)
	if err != nil {
		return nil, err
	}

	updates := make(map[string]interface{})
	if fields.Type != nil {
		if *fields.Type != models.TransactionTypeIncome && *fields.Type != models.TransactionTypeExpense {
			return nil, apperrors.ErrInvalidTransactionType
		}
		if transaction.Type == models.TransactionTypeMove {
			return nil, apperrors.WithMessage(apperrors.ErrInvalidTransactionType, "a move cannot change type")
		}
		updates["type"] = *fields.Type
	}
	if fields.Amount != nil {
		if *fields.Amount <= 0 {
			return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "amount must be greater than zero")
		}
		updates["amount"] = *fields.Amount
	}
	if fields.Description != nil {
		updates["description"] = *fields.Description
	}
	if fields.Date != nil {
		updates["transaction_date"] = *fields.Date
	}
	if fields.FundID != nil {
		// The replacement fund must live in the transaction's own group;
		// otherwise group_id and fund_id would disagree and per-fund and
		// per-group balances would drift apart.
		if _, err := s.getFundInGroup(userID, transaction.GroupID, *fields.FundID); err != nil {
			return nil, err
		}
		updates["fund_id"] = *fields.FundID
	}
	if fields.MemberID != nil {
		if err := s.memberInGroup(transaction.GroupID, *fields.MemberID); err != nil {
			return nil, err
		}
		updates["member_id"] = *fields.MemberID
	}
	if fields.TagID != nil && *fields.TagID != "" {
		if err := s.tagExists(*fields.TagID); err != nil {
			return nil, err
		}
		updates["tag_id"] = *fields.TagID
	}

	if len(updates) > 0 {
		if err := s.db.Model(transaction).Updates(updates).Error; err != nil {
			return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
		if err := s.db.Where("id = ?", transaction.ID).First(transaction).Error; err != nil {
			return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
	}

	return transaction, nil
}

// DeleteTransaction hard-deletes a transaction by id.
func (s *transactionService) DeleteTransaction(userID, transactionID string) error {
	transaction, err := s.GetTransactionByID(userID, transactionID)
	if err != nil {
		return err
	}
	if err := s.db.Delete(transaction).Error; err != nil {
		return apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return nil
}

// ListTransactions retrieves a paginated, filtered page of a group's
// transactions joined with fund, member, and tag names, newest first.
func (s *transactionService) ListTransactions(
	userID, groupID string,
	page pagination.PageRequest,
	filter TransactionFilter,
) (*pagination.PageResponse[TransactionRow], error) {
	if _, err := s.groupService.GetGroupByID(userID, groupID); err != nil {
		return nil, err
	}

	page.Defaults()

	base := s.db.Table("transactions AS t").
		Joins("JOIN funds f ON f.id = t.fund_id").
		Joins("LEFT JOIN funds tf ON tf.id = t.to_fund_id").
		Joins("LEFT JOIN members m ON m.id = t.member_id").
		Joins("LEFT JOIN tags tg ON tg.id = t.tag_id").
		Where("t.group_id = ?", groupID)
	base = applyTransactionFilters(base, filter)

	var totalItems int64
	if err := base.Count(&totalItems).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	var rows []TransactionRow
	err := base.
		Select(`t.id, t.group_id, t.type, t.amount, t.description, t.transaction_date,
			t.fund_id, t.to_fund_id, t.member_id, t.tag_id, t.created_at,
			f.name AS fund_name, tf.name AS to_fund_name, m.name AS member_name, tg.name AS tag_name`).
		Order("t.transaction_date DESC, t.created_at DESC").
		Scopes(pagination.Paginate(page)).
		Scan(&rows).Error
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	result := pagination.NewPageResponse(rows, page.Page, page.PageSize, totalItems)
	return &result, nil
}

func applyTransactionFilters(q *gorm.DB, f TransactionFilter) *gorm.DB {
	if f.Type != nil {
		q = q.Where("t.type = ?", *f.Type)
	}
	if f.TagID != nil {
		q = q.Where("t.tag_id = ?", *f.TagID)
	}
	if f.FundID != nil {
		// A fund detail view shows every transaction touching the fund,
		// including moves arriving into it.
		q = q.Where("t.fund_id = ? OR t.to_fund_id = ?", *f.FundID, *f.FundID)
	}
	if f.Keyword != "" {
		kw := "%" + strings.ToLower(f.Keyword) + "%"
		q = q.Where("LOWER(t.description) LIKE ? OR LOWER(m.name) LIKE ? OR LOWER(f.name) LIKE ?", kw, kw, kw)
	}
	return q
}

// BalanceByFund returns the derived balance of a single fund.
func (s *transactionService) BalanceByFund(userID, fundID string) (int64, error) {
	var fund models.Fund
	err := s.db.
		Joins(`JOIN "groups" ON "groups".id = funds.group_id`).
		Where(`funds.id = ? AND "groups".user_id = ?`, fundID, userID).
		First(&fund).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return 0, apperrors.ErrFundNotFound
		}
		return 0, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return fundBalance(s.db, fundID)
}

// BalanceByFunds returns the derived balance of each listed fund in one
// query. Every requested fund id is present in the result; funds with no
// transactions map to zero, never to a missing key.
func (s *transactionService) BalanceByFunds(userID, groupID string, fundIDs []string) (map[string]int64, error) {
	if _, err := s.groupService.GetGroupByID(userID, groupID); err != nil {
		return nil, err
	}

	result := make(map[string]int64, len(fundIDs))
	for _, id := range fundIDs {
		result[id] = 0
	}
	if len(fundIDs) == 0 {
		return result, nil
	}

	// Each move is decomposed into two signed legs so a single GROUP BY can
	// attribute it to both funds.
	type fundTotal struct {
		FundID  string
		Balance int64
	}
	var totals []fundTotal
	err := s.db.Raw(`
		SELECT fund_id, SUM(delta) AS balance FROM (
			SELECT fund_id, CASE WHEN type = 'income' THEN amount ELSE -amount END AS delta
			FROM transactions
			WHERE group_id = ? AND fund_id IN ?
			UNION ALL
			SELECT to_fund_id AS fund_id, amount AS delta
			FROM transactions
			WHERE group_id = ? AND type = 'move' AND to_fund_id IN ?
		) legs
		GROUP BY fund_id`,
		groupID, fundIDs, groupID, fundIDs,
	).Scan(&totals).Error
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	for _, t := range totals {
		result[t.FundID] = t.Balance
	}
	return result, nil
}

// BalanceByGroup returns the group's net worth. Moves shuffle money between
// funds the group already owns, so only income and expense count.
func (s *transactionService) BalanceByGroup(userID, groupID string) (int64, error) {
	if _, err := s.groupService.GetGroupByID(userID, groupID); err != nil {
		return 0, err
	}

	var balance int64
	err := s.db.Model(&models.Transaction{}).
		Select(`COALESCE(SUM(CASE
			WHEN type = 'income' THEN amount
			WHEN type = 'expense' THEN -amount
			ELSE 0
		END), 0)`).
		Where("group_id = ?", groupID).
		Scan(&balance).Error
	if err != nil {
		return 0, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return balance, nil
}

// PaidAmountByMembers returns, per member, the summed income that member
// contributed to the fund.
func (s *transactionService) PaidAmountByMembers(userID, groupID, fundID string) (map[string]int64, error) {
	if _, err := s.getFundInGroup(userID, groupID, fundID); err != nil {
		return nil, err
	}

	type memberTotal struct {
		MemberID  string
		TotalPaid int64
	}
	var totals []memberTotal
	err := s.db.Model(&models.Transaction{}).
		Select("member_id, COALESCE(SUM(amount), 0) AS total_paid").
		Where("group_id = ? AND fund_id = ? AND type = ? AND member_id IS NOT NULL",
			groupID, fundID, models.TransactionTypeIncome).
		Group("member_id").
		Scan(&totals).Error
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	result := make(map[string]int64, len(totals))
	for _, t := range totals {
		result[t.MemberID] = t.TotalPaid
	}
	return result, nil
}

// TotalByType sums a group's transactions of one type, optionally narrowed
// by the same keyword match the listing uses.
func (s *transactionService) TotalByType(userID, groupID string, transactionType models.TransactionType, keyword string) (int64, error) {
	if _, err := s.groupService.GetGroupByID(userID, groupID); err != nil {
		return 0, err
	}

	q := s.db.Table("transactions AS t").
		Joins("JOIN funds f ON f.id = t.fund_id").
		Joins("LEFT JOIN members m ON m.id = t.member_id").
		Where("t.group_id = ? AND t.type = ?", groupID, transactionType)
	if keyword != "" {
		kw := "%" + strings.ToLower(keyword) + "%"
		q = q.Where("LOWER(t.description) LIKE ? OR LOWER(m.name) LIKE ? OR LOWER(f.name) LIKE ?", kw, kw, kw)
	}

	var total int64
	if err := q.Select("COALESCE(SUM(t.amount), 0)").Scan(&total).Error; err != nil {
		return 0, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return total, nil
}
