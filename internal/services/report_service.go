package services

import (
	"gorm.io/gorm"

	apperrors "fundpool/internal/errors"
	"fundpool/internal/models"
	"fundpool/internal/pagination"
)

// pageAll is the page request reports use to pull a whole listing at once.
func pageAll() pagination.PageRequest {
	return pagination.PageRequest{Page: 1, PageSize: 10000}
}

// reportService composes ledger queries into read-only report views.
type reportService struct {
	db           *gorm.DB
	groupService GroupServicer
	ledger       LedgerServicer
}

// NewReportService creates a new ReportServicer.
func NewReportService(db *gorm.DB, groupService GroupServicer, ledger LedgerServicer) ReportServicer {
	return &reportService{db: db, groupService: groupService, ledger: ledger}
}

// FundsReport returns every fund of the group with its derived balance,
// resolved in a single batch query.
func (s *reportService) FundsReport(userID, groupID string) ([]FundReport, error) {
	if _, err := s.groupService.GetGroupByID(userID, groupID); err != nil {
		return nil, err
	}

	var funds []models.Fund
	if err := s.db.Where("group_id = ?", groupID).Order("created_at ASC").Find(&funds).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	fundIDs := make([]string, 0, len(funds))
	for _, f := range funds {
		fundIDs = append(fundIDs, f.ID)
	}

	balances, err := s.ledger.BalanceByFunds(userID, groupID, fundIDs)
	if err != nil {
		return nil, err
	}

	reports := make([]FundReport, 0, len(funds))
	for _, f := range funds {
		reports = append(reports, FundReport{
			FundID:  f.ID,
			Name:    f.Name,
			Balance: balances[f.ID],
		})
	}
	return reports, nil
}

// MembersFundReport returns, per group member, the income that member paid
// into each fund they are enrolled in. Members without any payments still
// appear with zeroed fund entries so the client can render a full grid.
func (s *reportService) MembersFundReport(userID, groupID string) ([]MemberFundReport, error) {
	if _, err := s.groupService.GetGroupByID(userID, groupID); err != nil {
		return nil, err
	}

	var members []models.Member
	if err := s.db.Where("group_id = ?", groupID).Order("name ASC").Find(&members).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	type membershipRow struct {
		MemberID string
		FundID   string
	}
	var memberships []membershipRow
	err := s.db.Table("fund_members").
		Select("fund_members.member_id, fund_members.fund_id").
		Joins("JOIN funds ON funds.id = fund_members.fund_id").
		Where("funds.group_id = ?", groupID).
		Scan(&memberships).Error
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	type paidRow struct {
		MemberID  string
		FundID    string
		TotalPaid int64
	}
	var paid []paidRow
	err = s.db.Model(&models.Transaction{}).
		Select("member_id, fund_id, COALESCE(SUM(amount), 0) AS total_paid").
		Where("group_id = ? AND type = ? AND member_id IS NOT NULL",
			groupID, models.TransactionTypeIncome).
		Group("member_id, fund_id").
		Scan(&paid).Error
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	byMember := make(map[string]map[string]int64, len(members))
	for _, m := range memberships {
		if byMember[m.MemberID] == nil {
			byMember[m.MemberID] = make(map[string]int64)
		}
		byMember[m.MemberID][m.FundID] = 0
	}
	for _, p := range paid {
		if byMember[p.MemberID] == nil {
			byMember[p.MemberID] = make(map[string]int64)
		}
		byMember[p.MemberID][p.FundID] = p.TotalPaid
	}

	reports := make([]MemberFundReport, 0, len(members))
	for _, m := range members {
		paidByFund := byMember[m.ID]
		if paidByFund == nil {
			paidByFund = make(map[string]int64)
		}
		reports = append(reports, MemberFundReport{
			MemberID:   m.ID,
			MemberName: m.Name,
			PaidByFund: paidByFund,
		})
	}
	return reports, nil
}

// TransactionsReport returns the group's full transaction listing together
// with its income and expense totals. Moves appear in the listing but are
// left out of totals since they do not change what the group owns.
func (s *reportService) TransactionsReport(userID, groupID string) (*TransactionSummary, error) {
	page, err := s.ledger.ListTransactions(userID, groupID,
		pageAll(), TransactionFilter{})
	if err != nil {
		return nil, err
	}

	var totalIncome, totalExpense int64
	for _, row := range page.Data {
		switch row.Type {
		case models.TransactionTypeIncome:
			totalIncome += row.Amount
		case models.TransactionTypeExpense:
			totalExpense += row.Amount
		}
	}

	return &TransactionSummary{
		Transactions: page.Data,
		TotalIncome:  totalIncome,
		TotalExpense: totalExpense,
		Balance:      totalIncome - totalExpense,
	}, nil
}

// GroupOverview returns the group's income, expense, and net totals.
func (s *reportService) GroupOverview(userID, groupID string) (*GroupOverview, error) {
	income, err := s.ledger.TotalByType(userID, groupID, models.TransactionTypeIncome, "")
	if err != nil {
		return nil, err
	}
	expense, err := s.ledger.TotalByType(userID, groupID, models.TransactionTypeExpense, "")
	if err != nil {
		return nil, err
	}

	return &GroupOverview{
		Income:  income,
		Expense: expense,
		Balance: income - expense,
	}, nil
}
