package services

import (
	"errors"

	"gorm.io/gorm"

	apperrors "fundpool/internal/errors"
	"fundpool/internal/models"
	"fundpool/internal/pagination"
)

// snapshotService captures and queries point-in-time fund balances.
type snapshotService struct {
	db           *gorm.DB
	groupService GroupServicer
}

// NewSnapshotService creates a new SnapshotServicer.
func NewSnapshotService(db *gorm.DB, groupService GroupServicer) SnapshotServicer {
	return &snapshotService{db: db, groupService: groupService}
}

// captureSnapshot computes every fund balance of the group inside the given
// connection and inserts the snapshot with its per-fund children. A group
// with no funds cannot be snapshotted.
func captureSnapshot(tx *gorm.DB, groupID string) (*models.Snapshot, error) {
	var funds []models.Fund
	if err := tx.Where("group_id = ?", groupID).Order("created_at ASC").Find(&funds).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	if len(funds) == 0 {
		return nil, apperrors.ErrSnapshotEmptyGroup
	}

	snapshot := &models.Snapshot{GroupID: groupID}
	var total int64
	children := make([]models.FundSnapshot, 0, len(funds))
	for _, fund := range funds {
		balance, err := fundBalance(tx, fund.ID)
		if err != nil {
			return nil, err
		}
		total += balance
		children = append(children, models.FundSnapshot{
			FundID:  fund.ID,
			Balance: balance,
		})
	}
	snapshot.Balance = total

	if err := tx.Create(snapshot).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	for i := range children {
		children[i].SnapshotID = snapshot.ID
	}
	if err := tx.Create(&children).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	snapshot.Funds = children
	return snapshot, nil
}

// CreateSnapshot captures the current balance of every fund in the group.
func (s *snapshotService) CreateSnapshot(userID, groupID string) (*models.Snapshot, error) {
	if _, err := s.groupService.GetGroupByID(userID, groupID); err != nil {
		return nil, err
	}

	var snapshot *models.Snapshot
	err := s.db.Transaction(func(tx *gorm.DB) error {
		var txErr error
		snapshot, txErr = captureSnapshot(tx, groupID)
		return txErr
	})
	if err != nil {
		return nil, err
	}
	return snapshot, nil
}

// SnapshotAndClean captures the group's balances, purges its transaction
// log, and reseeds each fund with a single opening entry matching its
// captured balance. Capture, purge, and reseed share one database
// transaction, so a failure at any step leaves the ledger untouched.
func (s *snapshotService) SnapshotAndClean(userID, groupID string) (*models.Snapshot, error) {
	if _, err := s.groupService.GetGroupByID(userID, groupID); err != nil {
		return nil, err
	}

	var snapshot *models.Snapshot
	err := s.db.Transaction(func(tx *gorm.DB) error {
		captured, txErr := captureSnapshot(tx, groupID)
		if txErr != nil {
			return txErr
		}

		if err := tx.Where("group_id = ?", groupID).Delete(&models.Transaction{}).Error; err != nil {
			return apperrors.Wrap(apperrors.ErrInternalServer, err)
		}

		// Amounts stay non-negative: a fund that was overdrawn reopens
		// with an expense of the absolute value instead of a negative
		// income.
		for _, child := range captured.Funds {
			if child.Balance == 0 {
				continue
			}
			opening := models.Transaction{
				GroupID:     groupID,
				FundID:      child.FundID,
				Description: "opening balance",
				Date:        captured.CreatedAt,
			}
			if child.Balance > 0 {
				opening.Type = models.TransactionTypeIncome
				opening.Amount = child.Balance
			} else {
				opening.Type = models.TransactionTypeExpense
				opening.Amount = -child.Balance
			}
			if err := tx.Create(&opening).Error; err != nil {
				return apperrors.Wrap(apperrors.ErrInternalServer, err)
			}
		}

		snapshot = captured
		return nil
	})
	if err != nil {
		return nil, err
	}
	return snapshot, nil
}

// ListSnapshots returns a paginated list of the group's snapshots, newest
// first.
func (s *snapshotService) ListSnapshots(userID, groupID string, page pagination.PageRequest) (*pagination.PageResponse[models.Snapshot], error) {
	if _, err := s.groupService.GetGroupByID(userID, groupID); err != nil {
		return nil, err
	}

	page.Defaults()

	base := s.db.Model(&models.Snapshot{}).Where("group_id = ?", groupID)

	var totalItems int64
	if err := base.Count(&totalItems).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	var snapshots []models.Snapshot
	if err := base.Order("created_at DESC").Scopes(pagination.Paginate(page)).Find(&snapshots).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	result := pagination.NewPageResponse(snapshots, page.Page, page.PageSize, totalItems)
	return &result, nil
}

// getSnapshotByID retrieves a snapshot if its group belongs to the user.
func (s *snapshotService) getSnapshotByID(userID, snapshotID string) (*models.Snapshot, error) {
	var snapshot models.Snapshot
	err := s.db.
		Joins(`JOIN "groups" ON "groups".id = snapshots.group_id`).
		Where(`snapshots.id = ? AND "groups".user_id = ?`, snapshotID, userID).
		First(&snapshot).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrSnapshotNotFound
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return &snapshot, nil
}

// FundSnapshots returns a snapshot's per-fund balances joined with current
// fund names.
func (s *snapshotService) FundSnapshots(userID, snapshotID string) ([]models.FundSnapshot, error) {
	if _, err := s.getSnapshotByID(userID, snapshotID); err != nil {
		return nil, err
	}

	type childRow struct {
		ID         string
		SnapshotID string
		FundID     string
		Balance    int64
		FundName   string
	}
	var rows []childRow
	err := s.db.Table("fund_snapshots AS fs").
		Select("fs.id, fs.snapshot_id, fs.fund_id, fs.balance, f.name AS fund_name").
		Joins("LEFT JOIN funds f ON f.id = fs.fund_id").
		Where("fs.snapshot_id = ?", snapshotID).
		Order("f.name ASC").
		Scan(&rows).Error
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	children := make([]models.FundSnapshot, 0, len(rows))
	for _, row := range rows {
		children = append(children, models.FundSnapshot{
			ID:         row.ID,
			SnapshotID: row.SnapshotID,
			FundID:     row.FundID,
			Balance:    row.Balance,
			FundName:   row.FundName,
		})
	}
	return children, nil
}

// DeleteSnapshot deletes a snapshot with its per-fund children. The live
// ledger is not affected.
func (s *snapshotService) DeleteSnapshot(userID, snapshotID string) error {
	snapshot, err := s.getSnapshotByID(userID, snapshotID)
	if err != nil {
		return err
	}

	return s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("snapshot_id = ?", snapshotID).Delete(&models.FundSnapshot{}).Error; err != nil {
			return apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
		if err := tx.Delete(snapshot).Error; err != nil {
			return apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
		return nil
	})
}
