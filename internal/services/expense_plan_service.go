package services

import (
	"errors"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	apperrors "fundpool/internal/errors"
	"fundpool/internal/models"
	"fundpool/internal/pagination"
)

// expensePlanService handles expense plan CRUD and the plan-vs-actual view.
type expensePlanService struct {
	db *gorm.DB
}

// NewExpensePlanService creates a new ExpensePlanServicer.
func NewExpensePlanService(db *gorm.DB) ExpensePlanServicer {
	return &expensePlanService{db: db}
}

// CreatePlan creates a spending plan for a tag.
func (s *expensePlanService) CreatePlan(userID, tagID string, fromDate, toDate time.Time, value int64) (*models.ExpensePlan, error) {
	if value <= 0 {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "plan value must be greater than zero")
	}
	if toDate.Before(fromDate) {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "to_date must not precede from_date")
	}

	var tag models.Tag
	if err := s.db.Where("id = ?", tagID).First(&tag).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrTagNotFound
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	plan := &models.ExpensePlan{
		UserID:   userID,
		TagID:    tagID,
		FromDate: fromDate,
		ToDate:   toDate,
		Value:    value,
	}
	if err := s.db.Create(plan).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return plan, nil
}

// GetPlanByID retrieves a plan owned by the user.
func (s *expensePlanService) GetPlanByID(userID, planID string) (*models.ExpensePlan, error) {
	var plan models.ExpensePlan
	if err := s.db.Where("id = ? AND user_id = ?", planID, userID).First(&plan).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrPlanNotFound
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return &plan, nil
}

// UpdatePlan applies a partial update. A nil field leaves the column
// unchanged.
func (s *expensePlanService) UpdatePlan(userID, planID string, tagID *string, fromDate, toDate *time.Time, value *int64) (*models.ExpensePlan, error) {
	plan, err := s.GetPlanByID(userID, planID)
	if err != nil {
		return nil, err
	}

	updates := make(map[string]interface{})
	if tagID != nil {
		var tag models.Tag
		if err := s.db.Where("id = ?", *tagID).First(&tag).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, apperrors.ErrTagNotFound
			}
			return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
		updates["tag_id"] = *tagID
	}
	if fromDate != nil {
		updates["from_date"] = *fromDate
	}
	if toDate != nil {
		updates["to_date"] = *toDate
	}
	if value != nil {
		if *value <= 0 {
			return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "plan value must be greater than zero")
		}
		updates["value"] = *value
	}

	if len(updates) > 0 {
		if err := s.db.Model(plan).Updates(updates).Error; err != nil {
			return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
		if err := s.db.Where("id = ?", plan.ID).First(plan).Error; err != nil {
			return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
	}
	return plan, nil
}

// DeletePlan deletes a plan. The transactions it measured are untouched.
func (s *expensePlanService) DeletePlan(userID, planID string) error {
	plan, err := s.GetPlanByID(userID, planID)
	if err != nil {
		return err
	}
	if err := s.db.Delete(plan).Error; err != nil {
		return apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return nil
}

// monthWindow returns the half-open [start, end) range of the calendar month
// containing t, in t's location.
func monthWindow(t time.Time) (time.Time, time.Time) {
	start := time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, t.Location())
	return start, start.AddDate(0, 1, 0)
}

// classifySpend derives the used percentage and traffic-light status of a
// plan. Division runs through decimals so 1/3-style budgets round sanely
// instead of accumulating float drift.
func classifySpend(spent, value int64) (float64, models.PlanStatus) {
	pct := decimal.NewFromInt(spent).
		Div(decimal.NewFromInt(value)).
		Mul(decimal.NewFromInt(100))

	// Classification uses the exact ratio; rounding is display only, so a
	// spend of 50.001% still warns.
	percent, _ := pct.Round(2).Float64()
	switch {
	case pct.GreaterThan(decimal.NewFromInt(90)):
		return percent, models.PlanStatusOver
	case pct.GreaterThan(decimal.NewFromInt(50)):
		return percent, models.PlanStatusWarn
	default:
		return percent, models.PlanStatusOK
	}
}

// ListPlansWithSpent returns the user's plans paged, each with the actual
// spend for the plan's month. Spend is the sum of expense transactions
// carrying the plan's tag across all of the user's groups, scoped to the
// calendar month of the plan's from date.
func (s *expensePlanService) ListPlansWithSpent(userID string, page pagination.PageRequest, filter PlanFilter) (*pagination.PageResponse[PlanWithSpent], error) {
	page.Defaults()

	base := s.db.Table("expense_plans AS p").
		Joins("JOIN tags ON tags.id = p.tag_id").
		Where("p.user_id = ?", userID)
	if filter.TagID != nil {
		base = base.Where("p.tag_id = ?", *filter.TagID)
	}
	if filter.Keyword != "" {
		base = base.Where("LOWER(tags.name) LIKE ?", "%"+strings.ToLower(filter.Keyword)+"%")
	}

	var totalItems int64
	if err := base.Count(&totalItems).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	type planRow struct {
		models.ExpensePlan
		TagName string
	}
	var rows []planRow
	err := base.
		Select("p.*, tags.name AS tag_name").
		Order("p.from_date DESC, p.created_at DESC").
		Scopes(pagination.Paginate(page)).
		Scan(&rows).Error
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	plans := make([]PlanWithSpent, 0, len(rows))
	for _, row := range rows {
		start, end := monthWindow(row.FromDate)

		var spent int64
		err := s.db.Model(&models.Transaction{}).
			Joins(`JOIN "groups" ON "groups".id = transactions.group_id`).
			Select("COALESCE(SUM(transactions.amount), 0)").
			Where(`"groups".user_id = ? AND transactions.tag_id = ? AND transactions.type = ?`,
				userID, row.TagID, models.TransactionTypeExpense).
			Where("transactions.transaction_date >= ? AND transactions.transaction_date < ?", start, end).
			Scan(&spent).Error
		if err != nil {
			return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
		}

		percent, status := classifySpend(spent, row.Value)
		plans = append(plans, PlanWithSpent{
			ExpensePlan: row.ExpensePlan,
			TagName:     row.TagName,
			TotalSpent:  spent,
			Percent:     percent,
			Status:      status,
		})
	}

	result := pagination.NewPageResponse(plans, page.Page, page.PageSize, totalItems)
	return &result, nil
}
