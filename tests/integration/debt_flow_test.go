package integration

import (
	"fmt"
	"net/http"
	"testing"
)

// createDebt creates a debt case and returns its ID.
func (app *testApp) createDebt(t *testing.T, token, description string) string {
	t.Helper()
	rec := app.request("POST", "/api/v1/debts", fmt.Sprintf(`{"description":%q}`, description), token)
	if rec.Code != http.StatusCreated {
		t.Fatalf("create debt failed: %d %s", rec.Code, rec.Body.String())
	}
	debt := parseJSON(t, rec)["debt"].(map[string]interface{})
	return debt["id"].(string)
}

func TestDebtFlow_LendAndRepay(t *testing.T) {
	app := setupApp(t)
	token, _ := app.registerUser(t, "lender@test.com", "password123")

	groupID := app.createGroup(t, token, "Loans")
	fundID := app.createFund(t, token, groupID, "Wallet")
	app.createTransaction(t, token, groupID, fundID, "income", 10000)

	debtID := app.createDebt(t, token, "lent to cousin")

	// Lending out: an expense linked to the debt
	lendID := app.createTransaction(t, token, groupID, fundID, "expense", 2000)
	rec := app.request("POST", "/api/v1/debts/"+debtID+"/details",
		fmt.Sprintf(`{"transaction_id":%q}`, lendID), token)
	if rec.Code != http.StatusCreated {
		t.Fatalf("link expense failed: %d %s", rec.Code, rec.Body.String())
	}

	// Partial repayment: an income linked to the same debt
	repayID := app.createTransaction(t, token, groupID, fundID, "income", 500)
	rec = app.request("POST", "/api/v1/debts/"+debtID+"/details",
		fmt.Sprintf(`{"transaction_id":%q}`, repayID), token)
	if rec.Code != http.StatusCreated {
		t.Fatalf("link income failed: %d %s", rec.Code, rec.Body.String())
	}

	// Net: -2000 + 500 = -1500 still owed to the user
	rec = app.request("GET", "/api/v1/debts/summary", "", token)
	result := parseJSON(t, rec)
	if grand := result["grand_total"].(float64); grand != -1500 {
		t.Errorf("expected grand total -1500, got %.0f", grand)
	}
	rows := result["debts"].(map[string]interface{})["data"].([]interface{})
	if len(rows) != 1 {
		t.Fatalf("expected 1 debt row, got %d", len(rows))
	}
	if total := rows[0].(map[string]interface{})["total"].(float64); total != -1500 {
		t.Errorf("expected debt total -1500, got %.0f", total)
	}

	// Details are joined with the fund name
	rec = app.request("GET", "/api/v1/debts/"+debtID+"/details", "", token)
	details := parseJSON(t, rec)
	if total := details["total_items"].(float64); total != 2 {
		t.Fatalf("expected 2 details, got %.0f", total)
	}
	first := details["data"].([]interface{})[0].(map[string]interface{})
	if first["fund_name"].(string) != "Wallet" {
		t.Errorf("expected fund name Wallet, got %v", first["fund_name"])
	}
}

func TestDebtFlow_MoveCannotBeLinked(t *testing.T) {
	app := setupApp(t)
	token, _ := app.registerUser(t, "mover@test.com", "password123")

	groupID := app.createGroup(t, token, "Moves")
	sourceID := app.createFund(t, token, groupID, "A")
	destID := app.createFund(t, token, groupID, "B")
	app.createTransaction(t, token, groupID, sourceID, "income", 1000)

	body := fmt.Sprintf(`{"amount":300,"description":"shift","from_fund_id":%q,"to_fund_id":%q}`,
		sourceID, destID)
	rec := app.request("POST", "/api/v1/groups/"+groupID+"/transfers", body, token)
	moveID := parseJSON(t, rec)["transaction"].(map[string]interface{})["id"].(string)

	debtID := app.createDebt(t, token, "no moves here")
	rec = app.request("POST", "/api/v1/debts/"+debtID+"/details",
		fmt.Sprintf(`{"transaction_id":%q}`, moveID), token)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d: %s", rec.Code, rec.Body.String())
	}
	errObj := parseJSON(t, rec)["error"].(map[string]interface{})
	if errObj["code"].(string) != "INVALID_TRANSACTION_TYPE" {
		t.Errorf("expected INVALID_TRANSACTION_TYPE, got %v", errObj["code"])
	}
}

func TestDebtFlow_DeleteRetractsLinkedEntries(t *testing.T) {
	app := setupApp(t)
	token, _ := app.registerUser(t, "closer@test.com", "password123")

	groupID := app.createGroup(t, token, "Closed Case")
	fundID := app.createFund(t, token, groupID, "Wallet")
	app.createTransaction(t, token, groupID, fundID, "income", 10000)
	lendID := app.createTransaction(t, token, groupID, fundID, "expense", 2000)

	debtID := app.createDebt(t, token, "written off")
	rec := app.request("POST", "/api/v1/debts/"+debtID+"/details",
		fmt.Sprintf(`{"transaction_id":%q}`, lendID), token)
	if rec.Code != http.StatusCreated {
		t.Fatalf("link failed: %d %s", rec.Code, rec.Body.String())
	}

	rec = app.request("DELETE", "/api/v1/debts/"+debtID, "", token)
	if rec.Code != http.StatusOK {
		t.Fatalf("delete debt failed: %d %s", rec.Code, rec.Body.String())
	}

	// The lending expense goes with the debt; the fund reverts to 10000.
	rec = app.request("GET", "/api/v1/transactions/"+lendID, "", token)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected linked transaction to be deleted, got %d", rec.Code)
	}
	rec = app.request("GET", "/api/v1/funds/"+fundID, "", token)
	if balance := parseJSON(t, rec)["balance"].(float64); balance != 10000 {
		t.Errorf("expected balance 10000 after debt delete, got %.0f", balance)
	}
}

func TestDebtFlow_UnlinkKeepsTransaction(t *testing.T) {
	app := setupApp(t)
	token, _ := app.registerUser(t, "unlink@test.com", "password123")

	groupID := app.createGroup(t, token, "Unlink")
	fundID := app.createFund(t, token, groupID, "Wallet")
	app.createTransaction(t, token, groupID, fundID, "income", 5000)
	txID := app.createTransaction(t, token, groupID, fundID, "expense", 1000)

	debtID := app.createDebt(t, token, "short loan")
	rec := app.request("POST", "/api/v1/debts/"+debtID+"/details",
		fmt.Sprintf(`{"transaction_id":%q}`, txID), token)
	detailID := parseJSON(t, rec)["detail"].(map[string]interface{})["id"].(string)

	rec = app.request("DELETE", "/api/v1/debts/"+debtID+"/details/"+detailID, "", token)
	if rec.Code != http.StatusOK {
		t.Fatalf("unlink failed: %d %s", rec.Code, rec.Body.String())
	}

	// The transaction itself still exists and the ledger is unchanged.
	rec = app.request("GET", "/api/v1/transactions/"+txID, "", token)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected transaction to survive unlink, got %d", rec.Code)
	}
	rec = app.request("GET", "/api/v1/debts/"+debtID+"/details", "", token)
	if total := parseJSON(t, rec)["total_items"].(float64); total != 0 {
		t.Errorf("expected 0 details after unlink, got %.0f", total)
	}
}
