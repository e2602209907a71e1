package testutil

import (
	"fmt"
	"sync/atomic"
	"testing"
	"time"

	"fundpool/internal/models"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// counter provides unique values across fixtures within a test run.
var counter atomic.Int64

func nextID() int64 {
	return counter.Add(1)
}

// CreateTestUser creates a user with a hashed password and unique email.
func CreateTestUser(t *testing.T, db *gorm.DB) *models.User {
	t.Helper()
	email := fmt.Sprintf("user%d@test.com", nextID())
	return CreateTestUserWithEmail(t, db, email)
}

// CreateTestUserWithEmail creates a user with the given email.
func CreateTestUserWithEmail(t *testing.T, db *gorm.DB, email string) *models.User {
	t.Helper()

	hash, err := bcrypt.GenerateFromPassword([]byte("password123"), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("failed to hash password: %v", err)
	}

	user := &models.User{
		Email:       email,
		Password:    string(hash),
		DisplayName: fmt.Sprintf("Test User %d", nextID()),
		IsActive:    true,
	}
	if err := db.Create(user).Error; err != nil {
		t.Fatalf("failed to create test user: %v", err)
	}
	return user
}

// CreateTestGroup creates a group owned by the user.
func CreateTestGroup(t *testing.T, db *gorm.DB, userID string) *models.Group {
	t.Helper()

	group := &models.Group{
		UserID: userID,
		Name:   fmt.Sprintf("Test Group %d", nextID()),
	}
	if err := db.Create(group).Error; err != nil {
		t.Fatalf("failed to create test group: %v", err)
	}
	return group
}

// CreateTestMember creates a member in the group.
func CreateTestMember(t *testing.T, db *gorm.DB, groupID string) *models.Member {
	t.Helper()

	member := &models.Member{
		GroupID: groupID,
		Name:    fmt.Sprintf("Test Member %d", nextID()),
	}
	if err := db.Create(member).Error; err != nil {
		t.Fatalf("failed to create test member: %v", err)
	}
	return member
}

// CreateTestFund creates a fund in the group.
func CreateTestFund(t *testing.T, db *gorm.DB, groupID string) *models.Fund {
	t.Helper()

	fund := &models.Fund{
		GroupID: groupID,
		Name:    fmt.Sprintf("Test Fund %d", nextID()),
	}
	if err := db.Create(fund).Error; err != nil {
		t.Fatalf("failed to create test fund: %v", err)
	}
	return fund
}

// CreateTestFundMember enrolls a member into a fund.
func CreateTestFundMember(t *testing.T, db *gorm.DB, fundID, memberID string) *models.FundMember {
	t.Helper()

	membership := &models.FundMember{FundID: fundID, MemberID: memberID}
	if err := db.Create(membership).Error; err != nil {
		t.Fatalf("failed to create test fund membership: %v", err)
	}
	return membership
}

// CreateTestTag creates a tag with a unique name.
func CreateTestTag(t *testing.T, db *gorm.DB) *models.Tag {
	t.Helper()

	tag := &models.Tag{Name: fmt.Sprintf("Test Tag %d", nextID())}
	if err := db.Create(tag).Error; err != nil {
		t.Fatalf("failed to create test tag: %v", err)
	}
	return tag
}

// CreateTestTransaction creates an income or expense transaction of the
// given amount (in cents).
func CreateTestTransaction(t *testing.T, db *gorm.DB, groupID, fundID string, txType models.TransactionType, amount int64) *models.Transaction {
	t.Helper()

	tx := &models.Transaction{
		GroupID: groupID,
		FundID:  fundID,
		Type:    txType,
		Amount:  amount,
		Date:    time.Now(),
	}
	if err := db.Create(tx).Error; err != nil {
		t.Fatalf("failed to create test transaction: %v", err)
	}
	return tx
}

// CreateTestMove creates a move transaction between two funds.
func CreateTestMove(t *testing.T, db *gorm.DB, groupID, fromFundID, toFundID string, amount int64) *models.Transaction {
	t.Helper()

	tx := &models.Transaction{
		GroupID:  groupID,
		FundID:   fromFundID,
		ToFundID: &toFundID,
		Type:     models.TransactionTypeMove,
		Amount:   amount,
		Date:     time.Now(),
	}
	if err := db.Create(tx).Error; err != nil {
		t.Fatalf("failed to create test move: %v", err)
	}
	return tx
}

// CreateTestExpensePlan creates a plan for the tag in the current month.
func CreateTestExpensePlan(t *testing.T, db *gorm.DB, userID, tagID string, value int64) *models.ExpensePlan {
	t.Helper()

	now := time.Now()
	start := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())
	plan := &models.ExpensePlan{
		UserID:   userID,
		TagID:    tagID,
		FromDate: start,
		ToDate:   start.AddDate(0, 1, 0).Add(-time.Second),
		Value:    value,
	}
	if err := db.Create(plan).Error; err != nil {
		t.Fatalf("failed to create test expense plan: %v", err)
	}
	return plan
}

// CreateTestDebt creates a debt case for the user.
func CreateTestDebt(t *testing.T, db *gorm.DB, userID string) *models.Debt {
	t.Helper()

	debt := &models.Debt{
		UserID:      userID,
		Description: fmt.Sprintf("Test Debt %d", nextID()),
	}
	if err := db.Create(debt).Error; err != nil {
		t.Fatalf("failed to create test debt: %v", err)
	}
	return debt
}

// CreateTestDebtDetail links a transaction to a debt case.
func CreateTestDebtDetail(t *testing.T, db *gorm.DB, debtID, transactionID string) *models.DebtDetail {
	t.Helper()

	detail := &models.DebtDetail{
		DebtID:        debtID,
		TransactionID: transactionID,
	}
	if err := db.Create(detail).Error; err != nil {
		t.Fatalf("failed to create test debt detail: %v", err)
	}
	return detail
}
