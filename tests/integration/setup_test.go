package integration

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"

	"fundpool/internal/handlers"
	"fundpool/internal/logger"
	"fundpool/internal/middleware"
	"fundpool/internal/models"
	"fundpool/internal/services"
	"fundpool/internal/validator"

	"github.com/gin-gonic/gin"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

// testApp holds the components needed for integration testing.
type testApp struct {
	DB     *gorm.DB
	Router *gin.Engine
}

var dbCounter atomic.Int64

func init() {
	gin.SetMode(gin.TestMode)
	logger.Init("test")
	validator.Register()
}

// setupIsolatedDB creates a uniquely-named in-memory database so parallel
// tests do not share state through SQLite's shared cache.
func setupIsolatedDB(t *testing.T) *gorm.DB {
	t.Helper()

	n := dbCounter.Add(1)
	dsn := fmt.Sprintf("file:testdb%d?mode=memory&cache=shared&_foreign_keys=on", n)
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}

	if err := db.AutoMigrate(
		&models.User{},
		&models.Group{},
		&models.Member{},
		&models.Fund{},
		&models.FundMember{},
		&models.Tag{},
		&models.Transaction{},
		&models.ExpensePlan{},
		&models.Debt{},
		&models.DebtDetail{},
		&models.Snapshot{},
		&models.FundSnapshot{},
	); err != nil {
		t.Fatalf("failed to migrate test database: %v", err)
	}

	for id, name := range map[string]string{
		models.TagIDLent:   "lent",
		models.TagIDRepaid: "repaid",
	} {
		tag := &models.Tag{Name: name}
		tag.ID = id
		if err := db.Create(tag).Error; err != nil {
			t.Fatalf("failed to seed system tag: %v", err)
		}
	}

	t.Cleanup(func() {
		sqlDB, err := db.DB()
		if err == nil {
			sqlDB.Close()
		}
	})

	return db
}

// setupApp creates a full application stack with an isolated database.
func setupApp(t *testing.T) *testApp {
	t.Helper()

	db := setupIsolatedDB(t)

	userService := services.NewUserService(db)
	groupService := services.NewGroupService(db)
	memberService := services.NewMemberService(db, groupService)
	fundService := services.NewFundService(db, groupService)
	ledger := services.NewTransactionService(db, groupService)
	reportService := services.NewReportService(db, groupService, ledger)
	planService := services.NewExpensePlanService(db)
	debtService := services.NewDebtService(db)
	snapshotService := services.NewSnapshotService(db, groupService)
	tagService := services.NewTagService(db)

	authHandler := handlers.NewAuthHandler(userService)
	groupHandler := handlers.NewGroupHandler(groupService)
	memberHandler := handlers.NewMemberHandler(memberService)
	fundHandler := handlers.NewFundHandler(fundService, ledger)
	transactionHandler := handlers.NewTransactionHandler(ledger)
	reportHandler := handlers.NewReportHandler(reportService)
	planHandler := handlers.NewExpensePlanHandler(planService)
	debtHandler := handlers.NewDebtHandler(debtService)
	snapshotHandler := handlers.NewSnapshotHandler(snapshotService)
	tagHandler := handlers.NewTagHandler(tagService)

	router := gin.New()
	router.Use(middleware.ErrorHandler())

	v1 := router.Group("/api/v1")

	// Public routes
	auth := v1.Group("/auth")
	auth.POST("/register", authHandler.Register)
	auth.POST("/login", authHandler.Login)

	// Protected routes
	protected := v1.Group("/")
	protected.Use(middleware.AuthMiddleware())

	protected.GET("/profile", authHandler.GetProfile)

	groups := protected.Group("/groups")
	groups.POST("", groupHandler.CreateGroup)
	groups.GET("", groupHandler.ListGroups)
	groups.GET("/:id", groupHandler.GetGroup)
	groups.PUT("/:id", groupHandler.UpdateGroup)
	groups.DELETE("/:id", groupHandler.DeleteGroup)
	groups.GET("/:id/balance", transactionHandler.GetGroupBalance)
	groups.POST("/:id/members", memberHandler.CreateMember)
	groups.GET("/:id/members", memberHandler.ListMembers)
	groups.POST("/:id/funds", fundHandler.CreateFund)
	groups.GET("/:id/funds", fundHandler.ListFunds)
	groups.POST("/:id/transactions", transactionHandler.CreateTransaction)
	groups.GET("/:id/transactions", transactionHandler.ListTransactions)
	groups.POST("/:id/transfers", transactionHandler.CreateTransfer)
	groups.POST("/:id/snapshots", snapshotHandler.CreateSnapshot)
	groups.GET("/:id/snapshots", snapshotHandler.ListSnapshots)
	groups.GET("/:id/reports/funds", reportHandler.FundsReport)
	groups.GET("/:id/reports/members", reportHandler.MembersReport)
	groups.GET("/:id/reports/transactions", reportHandler.TransactionsReport)
	groups.GET("/:id/reports/overview", reportHandler.Overview)

	members := protected.Group("/members")
	members.GET("/:id", memberHandler.GetMember)
	members.PUT("/:id", memberHandler.UpdateMember)
	members.DELETE("/:id", memberHandler.DeleteMember)

	funds := protected.Group("/funds")
	funds.GET("/:id", fundHandler.GetFund)
	funds.PUT("/:id", fundHandler.UpdateFund)
	funds.DELETE("/:id", fundHandler.DeleteFund)
	funds.GET("/:id/members", fundHandler.ListFundMembers)
	funds.POST("/:id/members", fundHandler.AddFundMember)
	funds.DELETE("/:id/members/:memberId", fundHandler.RemoveFundMember)

	transactions := protected.Group("/transactions")
	transactions.GET("/:id", transactionHandler.GetTransaction)
	transactions.PUT("/:id", transactionHandler.UpdateTransaction)
	transactions.DELETE("/:id", transactionHandler.DeleteTransaction)

	tags := protected.Group("/tags")
	tags.POST("", tagHandler.CreateTag)
	tags.GET("", tagHandler.ListTags)
	tags.GET("/:id", tagHandler.GetTag)
	tags.PUT("/:id", tagHandler.UpdateTag)
	tags.DELETE("/:id", tagHandler.DeleteTag)

	plans := protected.Group("/plans")
	plans.POST("", planHandler.CreatePlan)
	plans.GET("", planHandler.ListPlans)
	plans.GET("/:id", planHandler.GetPlan)
	plans.PUT("/:id", planHandler.UpdatePlan)
	plans.DELETE("/:id", planHandler.DeletePlan)

	debts := protected.Group("/debts")
	debts.POST("", debtHandler.CreateDebt)
	debts.GET("", debtHandler.ListDebts)
	debts.GET("/summary", debtHandler.Summary)
	debts.GET("/:id", debtHandler.GetDebt)
	debts.PUT("/:id", debtHandler.UpdateDebt)
	debts.DELETE("/:id", debtHandler.DeleteDebt)
	debts.POST("/:id/details", debtHandler.LinkTransaction)
	debts.GET("/:id/details", debtHandler.ListDetails)
	debts.DELETE("/:id/details/:detailId", debtHandler.UnlinkDetail)

	snapshots := protected.Group("/snapshots")
	snapshots.GET("/:id/funds", snapshotHandler.GetSnapshotFunds)
	snapshots.DELETE("/:id", snapshotHandler.DeleteSnapshot)

	return &testApp{DB: db, Router: router}
}

// request makes an HTTP request to the test router and returns the recorder.
func (app *testApp) request(method, path, body, token string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	app.Router.ServeHTTP(rec, req)
	return rec
}

// parseJSON parses the response body into a map.
func parseJSON(t *testing.T, rec *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var result map[string]interface{}
	if err := json.Unmarshal(rec.Body.Bytes(), &result); err != nil {
		t.Fatalf("failed to parse JSON: %v\nbody: %s", err, rec.Body.String())
	}
	return result
}

// registerUser registers a new user and returns the token and user ID.
func (app *testApp) registerUser(t *testing.T, email, password string) (token, userID string) {
	t.Helper()
	body := fmt.Sprintf(`{"email":%q,"password":%q,"display_name":"Test User"}`, email, password)
	rec := app.request("POST", "/api/v1/auth/register", body, "")
	if rec.Code != http.StatusCreated {
		t.Fatalf("register failed: %d %s", rec.Code, rec.Body.String())
	}
	result := parseJSON(t, rec)
	user := result["user"].(map[string]interface{})
	return result["token"].(string), user["id"].(string)
}

// loginUser logs in and returns the token.
func (app *testApp) loginUser(t *testing.T, email, password string) string {
	t.Helper()
	body := fmt.Sprintf(`{"email":%q,"password":%q}`, email, password)
	rec := app.request("POST", "/api/v1/auth/login", body, "")
	if rec.Code != http.StatusOK {
		t.Fatalf("login failed: %d %s", rec.Code, rec.Body.String())
	}
	return parseJSON(t, rec)["token"].(string)
}

// createGroup creates a group and returns its ID.
func (app *testApp) createGroup(t *testing.T, token, name string) string {
	t.Helper()
	rec := app.request("POST", "/api/v1/groups", fmt.Sprintf(`{"name":%q}`, name), token)
	if rec.Code != http.StatusCreated {
		t.Fatalf("create group failed: %d %s", rec.Code, rec.Body.String())
	}
	group := parseJSON(t, rec)["group"].(map[string]interface{})
	return group["id"].(string)
}

// createFund creates a fund in a group and returns its ID.
func (app *testApp) createFund(t *testing.T, token, groupID, name string) string {
	t.Helper()
	rec := app.request("POST", "/api/v1/groups/"+groupID+"/funds",
		fmt.Sprintf(`{"name":%q}`, name), token)
	if rec.Code != http.StatusCreated {
		t.Fatalf("create fund failed: %d %s", rec.Code, rec.Body.String())
	}
	fund := parseJSON(t, rec)["fund"].(map[string]interface{})
	return fund["id"].(string)
}

// createTransaction records an income or expense and returns its ID.
func (app *testApp) createTransaction(t *testing.T, token, groupID, fundID, txType string, amount int64) string {
	t.Helper()
	body := fmt.Sprintf(`{"type":%q,"amount":%d,"description":"test entry","fund_id":%q}`,
		txType, amount, fundID)
	rec := app.request("POST", "/api/v1/groups/"+groupID+"/transactions", body, token)
	if rec.Code != http.StatusCreated {
		t.Fatalf("create transaction failed: %d %s", rec.Code, rec.Body.String())
	}
	tx := parseJSON(t, rec)["transaction"].(map[string]interface{})
	return tx["id"].(string)
}
