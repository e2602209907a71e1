package services

import (
	"time"

	"fundpool/internal/models"
	"fundpool/internal/pagination"
)

// UserServicer defines the contract for user-related business logic.
type UserServicer interface {
	CreateUser(email, password, displayName string) (*models.User, error)
	GetUserByEmail(email string) (*models.User, error)
	GetUserByID(id string) (*models.User, error)
	VerifyPassword(user *models.User, password string) bool
	AttemptLogin(email, password string) (*models.User, error)
}

// GroupServicer defines the contract for group-related business logic.
type GroupServicer interface {
	CreateGroup(userID, name, description string) (*models.Group, error)
	GetUserGroups(userID string, page pagination.PageRequest) (*pagination.PageResponse[models.Group], error)
	GetGroupByID(userID, groupID string) (*models.Group, error)
	UpdateGroup(userID, groupID, name, description string) (*models.Group, error)
	DeleteGroup(userID, groupID string) error
}

// MemberServicer defines the contract for member-related business logic.
type MemberServicer interface {
	CreateMember(userID, groupID, name, role string) (*models.Member, error)
	GetMemberByID(userID, memberID string) (*models.Member, error)
	GetGroupMembers(userID, groupID string, page pagination.PageRequest, search string) (*pagination.PageResponse[models.Member], error)
	UpdateMember(userID, memberID, name, role string) (*models.Member, error)
	DeleteMember(userID, memberID string) error
}

// FundServicer defines the contract for fund and fund-membership logic.
type FundServicer interface {
	CreateFund(userID, groupID, name string) (*models.Fund, error)
	GetFundByID(userID, fundID string) (*models.Fund, error)
	GetGroupFunds(userID, groupID string, page pagination.PageRequest) (*pagination.PageResponse[models.Fund], error)
	UpdateFund(userID, fundID, name string) (*models.Fund, error)
	DeleteFund(userID, fundID string) error
	AddFundMember(userID, fundID, memberID string) error
	RemoveFundMember(userID, fundID, memberID string) error
	GetFundMembers(userID, fundID string) ([]models.Member, error)
}

// TransactionFilter holds optional filter parameters for listing transactions.
// FundID matches transactions that touch the fund on either side of a move.
type TransactionFilter struct {
	Type    *models.TransactionType
	TagID   *string
	FundID  *string
	Keyword string
}

// TransactionUpdate holds the fields of a full-row transaction update.
// A nil pointer leaves the column unchanged.
type TransactionUpdate struct {
	Type        *models.TransactionType
	Amount      *int64
	Description *string
	Date        *time.Time
	FundID      *string
	MemberID    *string
	TagID       *string
}

// TransactionRow is a transaction joined with display names for listings.
type TransactionRow struct {
	ID          string                 `json:"id"`
	GroupID     string                 `json:"group_id"`
	Type        models.TransactionType `json:"type"`
	Amount      int64                  `json:"amount"`
	Description string                 `json:"description"`
	Date        time.Time              `gorm:"column:transaction_date" json:"transaction_date"`
	FundID      string                 `json:"fund_id"`
	ToFundID    *string                `json:"to_fund_id,omitempty"`
	MemberID    *string                `json:"member_id,omitempty"`
	TagID       *string                `json:"tag_id,omitempty"`
	CreatedAt   time.Time              `json:"created_at"`
	FundName    string                 `json:"fund_name"`
	ToFundName  *string                `json:"to_fund_name,omitempty"`
	MemberName  *string                `json:"member_name,omitempty"`
	TagName     *string                `json:"tag_name,omitempty"`
}

// LedgerServicer owns the signed-sum semantics of the transaction log.
// Every balance it reports follows the three-case model: income adds to the
// fund, expense subtracts, and a move subtracts from the source fund while
// adding to the destination fund.
type LedgerServicer interface {
	CreateTransaction(userID, groupID, fundID string, memberID, tagID *string, transactionType models.TransactionType, amount int64, description string, date time.Time) (*models.Transaction, error)
	CreateTransfer(userID, groupID, fromFundID, toFundID string, amount int64, description string, date time.Time) (*models.Transaction, error)
	GetTransactionByID(userID, transactionID string) (*models.Transaction, error)
	UpdateTransaction(userID, transactionID string, fields TransactionUpdate) (*models.Transaction, error)
	DeleteTransaction(userID, transactionID string) error
	ListTransactions(userID, groupID string, page pagination.PageRequest, filter TransactionFilter) (*pagination.PageResponse[TransactionRow], error)
	BalanceByFund(userID, fundID string) (int64, error)
	BalanceByFunds(userID, groupID string, fundIDs []string) (map[string]int64, error)
	BalanceByGroup(userID, groupID string) (int64, error)
	PaidAmountByMembers(userID, groupID, fundID string) (map[string]int64, error)
	TotalByType(userID, groupID string, transactionType models.TransactionType, keyword string) (int64, error)
}

// FundReport is one fund's derived balance for the group report.
type FundReport struct {
	FundID  string `json:"fund_id"`
	Name    string `json:"name"`
	Balance int64  `json:"balance"`
}

// MemberFundReport is one member's paid totals across the funds they belong to.
type MemberFundReport struct {
	MemberID   string           `json:"member_id"`
	MemberName string           `json:"member_name"`
	PaidByFund map[string]int64 `json:"paid_by_fund"`
}

// TransactionSummary is the full transaction listing of a group plus running
// totals. Moves appear in the listing but are excluded from the totals.
type TransactionSummary struct {
	Transactions []TransactionRow `json:"transactions"`
	TotalIncome  int64            `json:"total_income"`
	TotalExpense int64            `json:"total_expense"`
	Balance      int64            `json:"balance"`
}

// GroupOverview is the group's income/expense/net rollup.
type GroupOverview struct {
	Income  int64 `json:"income"`
	Expense int64 `json:"expense"`
	Balance int64 `json:"balance"`
}

// ReportServicer composes ledger queries into higher-level views without
// storing any state of its own.
type ReportServicer interface {
	FundsReport(userID, groupID string) ([]FundReport, error)
	MembersFundReport(userID, groupID string) ([]MemberFundReport, error)
	TransactionsReport(userID, groupID string) (*TransactionSummary, error)
	GroupOverview(userID, groupID string) (*GroupOverview, error)
}

// PlanFilter holds optional filter parameters for listing expense plans.
type PlanFilter struct {
	TagID   *string
	Keyword string
}

// PlanWithSpent is an expense plan with its derived actual spend for the
// plan's month, the percentage of budget used, and a traffic-light status.
type PlanWithSpent struct {
	models.ExpensePlan
	TagName    string            `json:"tag_name"`
	TotalSpent int64             `json:"total_spent"`
	Percent    float64           `json:"percent"`
	Status     models.PlanStatus `json:"status"`
}

// ExpensePlanServicer defines the contract for expense plan logic.
type ExpensePlanServicer interface {
	CreatePlan(userID, tagID string, fromDate, toDate time.Time, value int64) (*models.ExpensePlan, error)
	GetPlanByID(userID, planID string) (*models.ExpensePlan, error)
	UpdatePlan(userID, planID string, tagID *string, fromDate, toDate *time.Time, value *int64) (*models.ExpensePlan, error)
	DeletePlan(userID, planID string) error
	ListPlansWithSpent(userID string, page pagination.PageRequest, filter PlanFilter) (*pagination.PageResponse[PlanWithSpent], error)
}

// DebtSummary is one debt case with its signed net total. Linked income
// counts as repayment (positive), linked expense as lending out (negative).
type DebtSummary struct {
	DebtID      string     `json:"debt_id"`
	Description string     `json:"description"`
	CreatedAt   time.Time  `json:"created_at"`
	PromiseDate *time.Time `json:"promise_date,omitempty"`
	Total       int64      `json:"total"`
}

// DebtDetailRow is a debt-linked transaction joined with its fund name.
type DebtDetailRow struct {
	DetailID      string                 `json:"detail_id"`
	DebtID        string                 `json:"debt_id"`
	TransactionID string                 `json:"transaction_id"`
	Type          models.TransactionType `json:"type"`
	Amount        int64                  `json:"amount"`
	Description   string                 `json:"description"`
	Date          time.Time              `gorm:"column:transaction_date" json:"transaction_date"`
	FundID        string                 `json:"fund_id"`
	FundName      *string                `json:"fund_name,omitempty"`
}

// DebtServicer defines the contract for debt cases and their linked
// transactions.
type DebtServicer interface {
	CreateDebt(userID, description string, promiseDate *time.Time) (*models.Debt, error)
	GetDebtByID(userID, debtID string) (*models.Debt, error)
	UpdateDebt(userID, debtID, description string, promiseDate *time.Time) (*models.Debt, error)
	DeleteDebt(userID, debtID string) error
	ListDebts(userID string, page pagination.PageRequest, keyword string) (*pagination.PageResponse[models.Debt], error)
	LinkTransaction(userID, debtID, transactionID string) (*models.DebtDetail, error)
	UnlinkDetail(userID, detailID string) error
	DetailPage(userID, debtID string, page pagination.PageRequest, keyword string) (*pagination.PageResponse[DebtDetailRow], error)
	SummaryPage(userID string, page pagination.PageRequest, keyword string) (*pagination.PageResponse[DebtSummary], int64, error)
}

// SnapshotServicer captures and queries point-in-time fund balances.
type SnapshotServicer interface {
	CreateSnapshot(userID, groupID string) (*models.Snapshot, error)
	SnapshotAndClean(userID, groupID string) (*models.Snapshot, error)
	ListSnapshots(userID, groupID string, page pagination.PageRequest) (*pagination.PageResponse[models.Snapshot], error)
	FundSnapshots(userID, snapshotID string) ([]models.FundSnapshot, error)
	DeleteSnapshot(userID, snapshotID string) error
}

// TagServicer defines the contract for tag logic.
type TagServicer interface {
	CreateTag(name string) (*models.Tag, error)
	GetTagByID(tagID string) (*models.Tag, error)
	UpdateTag(tagID, name string) (*models.Tag, error)
	DeleteTag(tagID string) error
	ListTags(page pagination.PageRequest, search string) (*pagination.PageResponse[models.Tag], error)
}
