package services

import (
	"testing"
	"time"

	"fundpool/internal/models"
	"fundpool/internal/pagination"
	"fundpool/internal/testutil"
)

func TestCreateTransaction(t *testing.T) {
	t.Run("income_increases_balance", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		groupSvc := NewGroupService(db)
		ledger := NewTransactionService(db, groupSvc)
		user := testutil.CreateTestUser(t, db)
		group := testutil.CreateTestGroup(t, db, user.ID)
		fund := testutil.CreateTestFund(t, db, group.ID)

		tx, err := ledger.CreateTransaction(user.ID, group.ID, fund.ID, nil, nil, models.TransactionTypeIncome, 5000, "Salary", time.Now())
		testutil.AssertNoError(t, err)

		if tx.ID == "" {
			t.Fatal("expected non-empty transaction ID")
		}
		if tx.Amount != 5000 {
			t.Errorf("expected amount 5000, got %d", tx.Amount)
		}

		balance, err := ledger.BalanceByFund(user.ID, fund.ID)
		testutil.AssertNoError(t, err)
		if balance != 5000 {
			t.Errorf("expected balance 5000, got %d", balance)
		}
	})

	t.Run("expense_decreases_balance", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		groupSvc := NewGroupService(db)
		ledger := NewTransactionService(db, groupSvc)
		user := testutil.CreateTestUser(t, db)
		group := testutil.CreateTestGroup(t, db, user.ID)
		fund := testutil.CreateTestFund(t, db, group.ID)
		testutil.CreateTestTransaction(t, db, group.ID, fund.ID, models.TransactionTypeIncome, 10000)

		_, err := ledger.CreateTransaction(user.ID, group.ID, fund.ID, nil, nil, models.TransactionTypeExpense, 3000, "Lunch", time.Now())
		testutil.AssertNoError(t, err)

		balance, err := ledger.BalanceByFund(user.ID, fund.ID)
		testutil.AssertNoError(t, err)
		if balance != 7000 {
			t.Errorf("expected balance 7000, got %d", balance)
		}
	})

	t.Run("expense_exceeding_balance_rejected", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		groupSvc := NewGroupService(db)
		ledger := NewTransactionService(db, groupSvc)
		user := testutil.CreateTestUser(t, db)
		group := testutil.CreateTestGroup(t, db, user.ID)
		fund := testutil.CreateTestFund(t, db, group.ID)
		testutil.CreateTestTransaction(t, db, group.ID, fund.ID, models.TransactionTypeIncome, 1000)

		_, err := ledger.CreateTransaction(user.ID, group.ID, fund.ID, nil, nil, models.TransactionTypeExpense, 1001, "", time.Now())
		testutil.AssertAppError(t, err, "INSUFFICIENT_BALANCE")

		// The rejected expense must leave no row behind.
		var count int64
		db.Model(&models.Transaction{}).Where("group_id = ?", group.ID).Count(&count)
		if count != 1 {
			t.Errorf("expected 1 transaction after rejected expense, got %d", count)
		}
	})

	t.Run("expense_equal_to_balance_allowed", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		groupSvc := NewGroupService(db)
		ledger := NewTransactionService(db, groupSvc)
		user := testutil.CreateTestUser(t, db)
		group := testutil.CreateTestGroup(t, db, user.ID)
		fund := testutil.CreateTestFund(t, db, group.ID)
		testutil.CreateTestTransaction(t, db, group.ID, fund.ID, models.TransactionTypeIncome, 1000)

		_, err := ledger.CreateTransaction(user.ID, group.ID, fund.ID, nil, nil, models.TransactionTypeExpense, 1000, "", time.Now())
		testutil.AssertNoError(t, err)

		balance, err := ledger.BalanceByFund(user.ID, fund.ID)
		testutil.AssertNoError(t, err)
		if balance != 0 {
			t.Errorf("expected balance 0, got %d", balance)
		}
	})

	t.Run("zero_amount", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		groupSvc := NewGroupService(db)
		ledger := NewTransactionService(db, groupSvc)
		user := testutil.CreateTestUser(t, db)
		group := testutil.CreateTestGroup(t, db, user.ID)
		fund := testutil.CreateTestFund(t, db, group.ID)

		_, err := ledger.CreateTransaction(user.ID, group.ID, fund.ID, nil, nil, models.TransactionTypeIncome, 0, "", time.Now())
		testutil.AssertAppError(t, err, "INVALID_INPUT")
	})

	t.Run("move_type_rejected", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		groupSvc := NewGroupService(db)
		ledger := NewTransactionService(db, groupSvc)
		user := testutil.CreateTestUser(t, db)
		group := testutil.CreateTestGroup(t, db, user.ID)
		fund := testutil.CreateTestFund(t, db, group.ID)

		_, err := ledger.CreateTransaction(user.ID, group.ID, fund.ID, nil, nil, models.TransactionTypeMove, 1000, "", time.Now())
		testutil.AssertAppError(t, err, "INVALID_TRANSACTION_TYPE")
	})

	t.Run("wrong_user_group", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		groupSvc := NewGroupService(db)
		ledger := NewTransactionService(db, groupSvc)
		user1 := testutil.CreateTestUser(t, db)
		user2 := testutil.CreateTestUser(t, db)
		group := testutil.CreateTestGroup(t, db, user1.ID)
		fund := testutil.CreateTestFund(t, db, group.ID)

		_, err := ledger.CreateTransaction(user2.ID, group.ID, fund.ID, nil, nil, models.TransactionTypeIncome, 1000, "", time.Now())
		testutil.AssertAppError(t, err, "GROUP_NOT_FOUND")
	})

	t.Run("fund_from_other_group", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		groupSvc := NewGroupService(db)
		ledger := NewTransactionService(db, groupSvc)
		user := testutil.CreateTestUser(t, db)
		group1 := testutil.CreateTestGroup(t, db, user.ID)
		group2 := testutil.CreateTestGroup(t, db, user.ID)
		fund := testutil.CreateTestFund(t, db, group2.ID)

		_, err := ledger.CreateTransaction(user.ID, group1.ID, fund.ID, nil, nil, models.TransactionTypeIncome, 1000, "", time.Now())
		testutil.AssertAppError(t, err, "FUND_NOT_FOUND")
	})

	t.Run("member_from_other_group_rejected", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		groupSvc := NewGroupService(db)
		ledger := NewTransactionService(db, groupSvc)
		user := testutil.CreateTestUser(t, db)
		group1 := testutil.CreateTestGroup(t, db, user.ID)
		group2 := testutil.CreateTestGroup(t, db, user.ID)
		fund := testutil.CreateTestFund(t, db, group1.ID)
		stranger := testutil.CreateTestMember(t, db, group2.ID)

		_, err := ledger.CreateTransaction(user.ID, group1.ID, fund.ID, &stranger.ID, nil, models.TransactionTypeIncome, 1000, "", time.Now())
		testutil.AssertAppError(t, err, "MEMBER_NOT_FOUND")
	})

	t.Run("unknown_tag_rejected", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		groupSvc := NewGroupService(db)
		ledger := NewTransactionService(db, groupSvc)
		user := testutil.CreateTestUser(t, db)
		group := testutil.CreateTestGroup(t, db, user.ID)
		fund := testutil.CreateTestFund(t, db, group.ID)

		missing := "0198c0de-0000-7000-8000-00000000dead"
		_, err := ledger.CreateTransaction(user.ID, group.ID, fund.ID, nil, &missing, models.TransactionTypeIncome, 1000, "", time.Now())
		testutil.AssertAppError(t, err, "TAG_NOT_FOUND")
	})
}

func TestCreateTransfer(t *testing.T) {
	t.Run("moves_money_between_funds", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		groupSvc := NewGroupService(db)
		ledger := NewTransactionService(db, groupSvc)
		user := testutil.CreateTestUser(t, db)
		group := testutil.CreateTestGroup(t, db, user.ID)
		source := testutil.CreateTestFund(t, db, group.ID)
		dest := testutil.CreateTestFund(t, db, group.ID)
		testutil.CreateTestTransaction(t, db, group.ID, source.ID, models.TransactionTypeIncome, 1000)

		_, err := ledger.CreateTransfer(user.ID, group.ID, source.ID, dest.ID, 400, "rebalance", time.Now())
		testutil.AssertNoError(t, err)

		sourceBalance, err := ledger.BalanceByFund(user.ID, source.ID)
		testutil.AssertNoError(t, err)
		destBalance, err := ledger.BalanceByFund(user.ID, dest.ID)
		testutil.AssertNoError(t, err)

		if sourceBalance != 600 {
			t.Errorf("expected source balance 600, got %d", sourceBalance)
		}
		if destBalance != 400 {
			t.Errorf("expected destination balance 400, got %d", destBalance)
		}

		// A move never changes what the group owns in total.
		groupBalance, err := ledger.BalanceByGroup(user.ID, group.ID)
		testutil.AssertNoError(t, err)
		if groupBalance != 1000 {
			t.Errorf("expected group balance 1000, got %d", groupBalance)
		}
	})

	t.Run("same_fund_rejected", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		groupSvc := NewGroupService(db)
		ledger := NewTransactionService(db, groupSvc)
		user := testutil.CreateTestUser(t, db)
		group := testutil.CreateTestGroup(t, db, user.ID)
		fund := testutil.CreateTestFund(t, db, group.ID)

		_, err := ledger.CreateTransfer(user.ID, group.ID, fund.ID, fund.ID, 100, "", time.Now())
		testutil.AssertAppError(t, err, "SAME_FUND_TRANSFER")
	})

	t.Run("move_may_overdraw_source", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		groupSvc := NewGroupService(db)
		ledger := NewTransactionService(db, groupSvc)
		user := testutil.CreateTestUser(t, db)
		group := testutil.CreateTestGroup(t, db, user.ID)
		source := testutil.CreateTestFund(t, db, group.ID)
		dest := testutil.CreateTestFund(t, db, group.ID)

		_, err := ledger.CreateTransfer(user.ID, group.ID, source.ID, dest.ID, 500, "", time.Now())
		testutil.AssertNoError(t, err)

		sourceBalance, err := ledger.BalanceByFund(user.ID, source.ID)
		testutil.AssertNoError(t, err)
		if sourceBalance != -500 {
			t.Errorf("expected source balance -500, got %d", sourceBalance)
		}
	})

	t.Run("destination_from_other_group", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		groupSvc := NewGroupService(db)
		ledger := NewTransactionService(db, groupSvc)
		user := testutil.CreateTestUser(t, db)
		group1 := testutil.CreateTestGroup(t, db, user.ID)
		group2 := testutil.CreateTestGroup(t, db, user.ID)
		source := testutil.CreateTestFund(t, db, group1.ID)
		dest := testutil.CreateTestFund(t, db, group2.ID)

		_, err := ledger.CreateTransfer(user.ID, group1.ID, source.ID, dest.ID, 100, "", time.Now())
		testutil.AssertAppError(t, err, "FUND_NOT_FOUND")
	})
}

func TestFundBalance(t *testing.T) {
	t.Run("empty_fund_is_zero", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		groupSvc := NewGroupService(db)
		ledger := NewTransactionService(db, groupSvc)
		user := testutil.CreateTestUser(t, db)
		group := testutil.CreateTestGroup(t, db, user.ID)
		fund := testutil.CreateTestFund(t, db, group.ID)

		balance, err := ledger.BalanceByFund(user.ID, fund.ID)
		testutil.AssertNoError(t, err)
		if balance != 0 {
			t.Errorf("expected balance 0, got %d", balance)
		}
	})

	t.Run("mixed_history", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		groupSvc := NewGroupService(db)
		ledger := NewTransactionService(db, groupSvc)
		user := testutil.CreateTestUser(t, db)
		group := testutil.CreateTestGroup(t, db, user.ID)
		fund := testutil.CreateTestFund(t, db, group.ID)
		other := testutil.CreateTestFund(t, db, group.ID)

		testutil.CreateTestTransaction(t, db, group.ID, fund.ID, models.TransactionTypeIncome, 1000)
		testutil.CreateTestTransaction(t, db, group.ID, fund.ID, models.TransactionTypeExpense, 400)
		testutil.CreateTestMove(t, db, group.ID, fund.ID, other.ID, 100)
		testutil.CreateTestMove(t, db, group.ID, other.ID, fund.ID, 50)

		balance, err := ledger.BalanceByFund(user.ID, fund.ID)
		testutil.AssertNoError(t, err)
		if balance != 550 {
			t.Errorf("expected balance 550, got %d", balance)
		}

		otherBalance, err := ledger.BalanceByFund(user.ID, other.ID)
		testutil.AssertNoError(t, err)
		if otherBalance != 50 {
			t.Errorf("expected other fund balance 50, got %d", otherBalance)
		}
	})

	t.Run("unknown_fund", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		groupSvc := NewGroupService(db)
		ledger := NewTransactionService(db, groupSvc)
		user := testutil.CreateTestUser(t, db)

		_, err := ledger.BalanceByFund(user.ID, "00000000-0000-7000-8000-00000000ffff")
		testutil.AssertAppError(t, err, "FUND_NOT_FOUND")
	})
}

func TestBalanceByFunds(t *testing.T) {
	t.Run("batch_matches_single", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		groupSvc := NewGroupService(db)
		ledger := NewTransactionService(db, groupSvc)
		user := testutil.CreateTestUser(t, db)
		group := testutil.CreateTestGroup(t, db, user.ID)
		fundA := testutil.CreateTestFund(t, db, group.ID)
		fundB := testutil.CreateTestFund(t, db, group.ID)
		fundC := testutil.CreateTestFund(t, db, group.ID)

		testutil.CreateTestTransaction(t, db, group.ID, fundA.ID, models.TransactionTypeIncome, 2000)
		testutil.CreateTestTransaction(t, db, group.ID, fundA.ID, models.TransactionTypeExpense, 300)
		testutil.CreateTestMove(t, db, group.ID, fundA.ID, fundB.ID, 700)

		balances, err := ledger.BalanceByFunds(user.ID, group.ID, []string{fundA.ID, fundB.ID, fundC.ID})
		testutil.AssertNoError(t, err)

		if balances[fundA.ID] != 1000 {
			t.Errorf("expected fund A balance 1000, got %d", balances[fundA.ID])
		}
		if balances[fundB.ID] != 700 {
			t.Errorf("expected fund B balance 700, got %d", balances[fundB.ID])
		}
		if balances[fundC.ID] != 0 {
			t.Errorf("expected untouched fund C balance 0, got %d", balances[fundC.ID])
		}
	})

	t.Run("empty_id_list", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		groupSvc := NewGroupService(db)
		ledger := NewTransactionService(db, groupSvc)
		user := testutil.CreateTestUser(t, db)
		group := testutil.CreateTestGroup(t, db, user.ID)

		balances, err := ledger.BalanceByFunds(user.ID, group.ID, nil)
		testutil.AssertNoError(t, err)
		if len(balances) != 0 {
			t.Errorf("expected empty map, got %d entries", len(balances))
		}
	})
}

func TestBalanceByGroup(t *testing.T) {
	t.Run("excludes_moves", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		groupSvc := NewGroupService(db)
		ledger := NewTransactionService(db, groupSvc)
		user := testutil.CreateTestUser(t, db)
		group := testutil.CreateTestGroup(t, db, user.ID)
		fundA := testutil.CreateTestFund(t, db, group.ID)
		fundB := testutil.CreateTestFund(t, db, group.ID)

		testutil.CreateTestTransaction(t, db, group.ID, fundA.ID, models.TransactionTypeIncome, 5000)
		testutil.CreateTestTransaction(t, db, group.ID, fundA.ID, models.TransactionTypeExpense, 1200)
		testutil.CreateTestMove(t, db, group.ID, fundA.ID, fundB.ID, 2000)

		balance, err := ledger.BalanceByGroup(user.ID, group.ID)
		testutil.AssertNoError(t, err)
		if balance != 3800 {
			t.Errorf("expected group balance 3800, got %d", balance)
		}
	})
}

func TestListTransactions(t *testing.T) {
	t.Run("pagination_pages_are_disjoint", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		groupSvc := NewGroupService(db)
		ledger := NewTransactionService(db, groupSvc)
		user := testutil.CreateTestUser(t, db)
		group := testutil.CreateTestGroup(t, db, user.ID)
		fund := testutil.CreateTestFund(t, db, group.ID)

		for i := 0; i < 5; i++ {
			testutil.CreateTestTransaction(t, db, group.ID, fund.ID, models.TransactionTypeIncome, int64(100*(i+1)))
		}

		page1, err := ledger.ListTransactions(user.ID, group.ID, pagination.PageRequest{Page: 1, PageSize: 3}, TransactionFilter{})
		testutil.AssertNoError(t, err)
		page2, err := ledger.ListTransactions(user.ID, group.ID, pagination.PageRequest{Page: 2, PageSize: 3}, TransactionFilter{})
		testutil.AssertNoError(t, err)

		if page1.TotalItems != 5 {
			t.Errorf("expected 5 total items, got %d", page1.TotalItems)
		}
		if len(page1.Data) != 3 || len(page2.Data) != 2 {
			t.Fatalf("expected pages of 3 and 2, got %d and %d", len(page1.Data), len(page2.Data))
		}

		seen := make(map[string]bool)
		for _, row := range page1.Data {
			seen[row.ID] = true
		}
		for _, row := range page2.Data {
			if seen[row.ID] {
				t.Errorf("transaction %s appears on both pages", row.ID)
			}
		}
	})

	t.Run("fund_filter_includes_incoming_moves", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		groupSvc := NewGroupService(db)
		ledger := NewTransactionService(db, groupSvc)
		user := testutil.CreateTestUser(t, db)
		group := testutil.CreateTestGroup(t, db, user.ID)
		fundA := testutil.CreateTestFund(t, db, group.ID)
		fundB := testutil.CreateTestFund(t, db, group.ID)

		testutil.CreateTestTransaction(t, db, group.ID, fundA.ID, models.TransactionTypeIncome, 1000)
		testutil.CreateTestMove(t, db, group.ID, fundA.ID, fundB.ID, 200)
		testutil.CreateTestTransaction(t, db, group.ID, fundB.ID, models.TransactionTypeExpense, 50)

		page, err := ledger.ListTransactions(user.ID, group.ID, pagination.PageRequest{}, TransactionFilter{FundID: &fundB.ID})
		testutil.AssertNoError(t, err)
		if page.TotalItems != 2 {
			t.Errorf("expected 2 transactions touching fund B, got %d", page.TotalItems)
		}
	})

	t.Run("keyword_matches_description", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		groupSvc := NewGroupService(db)
		ledger := NewTransactionService(db, groupSvc)
		user := testutil.CreateTestUser(t, db)
		group := testutil.CreateTestGroup(t, db, user.ID)
		fund := testutil.CreateTestFund(t, db, group.ID)

		_, err := ledger.CreateTransaction(user.ID, group.ID, fund.ID, nil, nil, models.TransactionTypeIncome, 1000, "Grocery refund", time.Now())
		testutil.AssertNoError(t, err)
		_, err = ledger.CreateTransaction(user.ID, group.ID, fund.ID, nil, nil, models.TransactionTypeIncome, 500, "Salary", time.Now())
		testutil.AssertNoError(t, err)

		page, err := ledger.ListTransactions(user.ID, group.ID, pagination.PageRequest{}, TransactionFilter{Keyword: "grocery"})
		testutil.AssertNoError(t, err)
		if page.TotalItems != 1 {
			t.Fatalf("expected 1 match, got %d", page.TotalItems)
		}
		if page.Data[0].Description != "Grocery refund" {
			t.Errorf("unexpected match: %s", page.Data[0].Description)
		}
	})

	t.Run("type_filter", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		groupSvc := NewGroupService(db)
		ledger := NewTransactionService(db, groupSvc)
		user := testutil.CreateTestUser(t, db)
		group := testutil.CreateTestGroup(t, db, user.ID)
		fund := testutil.CreateTestFund(t, db, group.ID)

		testutil.CreateTestTransaction(t, db, group.ID, fund.ID, models.TransactionTypeIncome, 1000)
		testutil.CreateTestTransaction(t, db, group.ID, fund.ID, models.TransactionTypeExpense, 200)

		expenseType := models.TransactionTypeExpense
		page, err := ledger.ListTransactions(user.ID, group.ID, pagination.PageRequest{}, TransactionFilter{Type: &expenseType})
		testutil.AssertNoError(t, err)
		if page.TotalItems != 1 {
			t.Errorf("expected 1 expense, got %d", page.TotalItems)
		}
	})
}

func TestUpdateTransaction(t *testing.T) {
	t.Run("partial_update", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		groupSvc := NewGroupService(db)
		ledger := NewTransactionService(db, groupSvc)
		user := testutil.CreateTestUser(t, db)
		group := testutil.CreateTestGroup(t, db, user.ID)
		fund := testutil.CreateTestFund(t, db, group.ID)
		tx := testutil.CreateTestTransaction(t, db, group.ID, fund.ID, models.TransactionTypeIncome, 1000)

		newAmount := int64(2500)
		updated, err := ledger.UpdateTransaction(user.ID, tx.ID, TransactionUpdate{Amount: &newAmount})
		testutil.AssertNoError(t, err)
		if updated.Amount != 2500 {
			t.Errorf("expected amount 2500, got %d", updated.Amount)
		}
		if updated.Type != models.TransactionTypeIncome {
			t.Errorf("type changed unexpectedly to %s", updated.Type)
		}
	})

	t.Run("wrong_user", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		groupSvc := NewGroupService(db)
		ledger := NewTransactionService(db, groupSvc)
		user1 := testutil.CreateTestUser(t, db)
		user2 := testutil.CreateTestUser(t, db)
		group := testutil.CreateTestGroup(t, db, user1.ID)
		fund := testutil.CreateTestFund(t, db, group.ID)
		tx := testutil.CreateTestTransaction(t, db, group.ID, fund.ID, models.TransactionTypeIncome, 1000)

		newAmount := int64(1)
		_, err := ledger.UpdateTransaction(user2.ID, tx.ID, TransactionUpdate{Amount: &newAmount})
		testutil.AssertAppError(t, err, "TRANSACTION_NOT_FOUND")
	})

	t.Run("fund_from_another_users_group_rejected", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		groupSvc := NewGroupService(db)
		ledger := NewTransactionService(db, groupSvc)
		attacker := testutil.CreateTestUser(t, db)
		victim := testutil.CreateTestUser(t, db)
		attackerGroup := testutil.CreateTestGroup(t, db, attacker.ID)
		attackerFund := testutil.CreateTestFund(t, db, attackerGroup.ID)
		victimGroup := testutil.CreateTestGroup(t, db, victim.ID)
		victimFund := testutil.CreateTestFund(t, db, victimGroup.ID)
		tx := testutil.CreateTestTransaction(t, db, attackerGroup.ID, attackerFund.ID, models.TransactionTypeIncome, 9999)

		_, err := ledger.UpdateTransaction(attacker.ID, tx.ID, TransactionUpdate{FundID: &victimFund.ID})
		testutil.AssertAppError(t, err, "FUND_NOT_FOUND")

		balance, err := ledger.BalanceByFund(victim.ID, victimFund.ID)
		testutil.AssertNoError(t, err)
		if balance != 0 {
			t.Errorf("expected victim fund balance 0, got %d", balance)
		}
	})

	t.Run("fund_from_another_own_group_rejected", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		groupSvc := NewGroupService(db)
		ledger := NewTransactionService(db, groupSvc)
		user := testutil.CreateTestUser(t, db)
		group1 := testutil.CreateTestGroup(t, db, user.ID)
		group2 := testutil.CreateTestGroup(t, db, user.ID)
		fund1 := testutil.CreateTestFund(t, db, group1.ID)
		fund2 := testutil.CreateTestFund(t, db, group2.ID)
		tx := testutil.CreateTestTransaction(t, db, group1.ID, fund1.ID, models.TransactionTypeIncome, 1000)

		// Moving the row to a fund of a sibling group would leave group_id
		// pointing at one group and fund_id at another.
		_, err := ledger.UpdateTransaction(user.ID, tx.ID, TransactionUpdate{FundID: &fund2.ID})
		testutil.AssertAppError(t, err, "FUND_NOT_FOUND")
	})

	t.Run("member_from_other_group_rejected", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		groupSvc := NewGroupService(db)
		ledger := NewTransactionService(db, groupSvc)
		user := testutil.CreateTestUser(t, db)
		group1 := testutil.CreateTestGroup(t, db, user.ID)
		group2 := testutil.CreateTestGroup(t, db, user.ID)
		fund := testutil.CreateTestFund(t, db, group1.ID)
		stranger := testutil.CreateTestMember(t, db, group2.ID)
		tx := testutil.CreateTestTransaction(t, db, group1.ID, fund.ID, models.TransactionTypeIncome, 1000)

		_, err := ledger.UpdateTransaction(user.ID, tx.ID, TransactionUpdate{MemberID: &stranger.ID})
		testutil.AssertAppError(t, err, "MEMBER_NOT_FOUND")
	})

	t.Run("unknown_tag_rejected", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		groupSvc := NewGroupService(db)
		ledger := NewTransactionService(db, groupSvc)
		user := testutil.CreateTestUser(t, db)
		group := testutil.CreateTestGroup(t, db, user.ID)
		fund := testutil.CreateTestFund(t, db, group.ID)
		tx := testutil.CreateTestTransaction(t, db, group.ID, fund.ID, models.TransactionTypeExpense, 100)

		missing := "0198c0de-0000-7000-8000-00000000dead"
		_, err := ledger.UpdateTransaction(user.ID, tx.ID, TransactionUpdate{TagID: &missing})
		testutil.AssertAppError(t, err, "TAG_NOT_FOUND")
	})
}

func TestDeleteTransaction(t *testing.T) {
	t.Run("restores_balance", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		groupSvc := NewGroupService(db)
		ledger := NewTransactionService(db, groupSvc)
		user := testutil.CreateTestUser(t, db)
		group := testutil.CreateTestGroup(t, db, user.ID)
		fund := testutil.CreateTestFund(t, db, group.ID)
		testutil.CreateTestTransaction(t, db, group.ID, fund.ID, models.TransactionTypeIncome, 1000)
		expense := testutil.CreateTestTransaction(t, db, group.ID, fund.ID, models.TransactionTypeExpense, 400)

		err := ledger.DeleteTransaction(user.ID, expense.ID)
		testutil.AssertNoError(t, err)

		balance, err := ledger.BalanceByFund(user.ID, fund.ID)
		testutil.AssertNoError(t, err)
		if balance != 1000 {
			t.Errorf("expected balance 1000 after delete, got %d", balance)
		}
	})
}

func TestPaidAmountByMembers(t *testing.T) {
	t.Run("sums_income_per_member", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		groupSvc := NewGroupService(db)
		ledger := NewTransactionService(db, groupSvc)
		user := testutil.CreateTestUser(t, db)
		group := testutil.CreateTestGroup(t, db, user.ID)
		fund := testutil.CreateTestFund(t, db, group.ID)
		alice := testutil.CreateTestMember(t, db, group.ID)
		bob := testutil.CreateTestMember(t, db, group.ID)

		_, err := ledger.CreateTransaction(user.ID, group.ID, fund.ID, &alice.ID, nil, models.TransactionTypeIncome, 700, "", time.Now())
		testutil.AssertNoError(t, err)
		_, err = ledger.CreateTransaction(user.ID, group.ID, fund.ID, &alice.ID, nil, models.TransactionTypeIncome, 300, "", time.Now())
		testutil.AssertNoError(t, err)
		_, err = ledger.CreateTransaction(user.ID, group.ID, fund.ID, &bob.ID, nil, models.TransactionTypeIncome, 500, "", time.Now())
		testutil.AssertNoError(t, err)
		// An expense by a member does not count as paying in.
		_, err = ledger.CreateTransaction(user.ID, group.ID, fund.ID, &bob.ID, nil, models.TransactionTypeExpense, 200, "", time.Now())
		testutil.AssertNoError(t, err)

		paid, err := ledger.PaidAmountByMembers(user.ID, group.ID, fund.ID)
		testutil.AssertNoError(t, err)
		if paid[alice.ID] != 1000 {
			t.Errorf("expected alice paid 1000, got %d", paid[alice.ID])
		}
		if paid[bob.ID] != 500 {
			t.Errorf("expected bob paid 500, got %d", paid[bob.ID])
		}
	})
}
