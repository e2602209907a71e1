package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	apperrors "fundpool/internal/errors"
	"fundpool/internal/pagination"
	"fundpool/internal/services"
)

// SnapshotHandler handles snapshot requests.
type SnapshotHandler struct {
	snapshotService services.SnapshotServicer
}

// NewSnapshotHandler creates a new SnapshotHandler.
func NewSnapshotHandler(snapshotService services.SnapshotServicer) *SnapshotHandler {
	return &SnapshotHandler{snapshotService: snapshotService}
}

// CreateSnapshotRequest represents the payload for capturing a snapshot.
type CreateSnapshotRequest struct {
	// Clean purges the transaction log after capture and reseeds each fund
	// with a single opening entry.
	Clean bool `json:"clean"`
}

// CreateSnapshot captures the group's fund balances, optionally resetting
// the ledger afterwards.
func (h *SnapshotHandler) CreateSnapshot(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	groupID, err := pathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req CreateSnapshotRequest
	if err := c.ShouldBindJSON(&req); err != nil && err.Error() != "EOF" {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	var snapshot interface{}
	if req.Clean {
		snapshot, err = h.snapshotService.SnapshotAndClean(userID, groupID)
	} else {
		snapshot, err = h.snapshotService.CreateSnapshot(userID, groupID)
	}
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"snapshot": snapshot})
}

// ListSnapshots returns the group's snapshots, paginated.
func (h *SnapshotHandler) ListSnapshots(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	groupID, err := pathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	var page pagination.PageRequest
	if err := c.ShouldBindQuery(&page); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	snapshots, err := h.snapshotService.ListSnapshots(userID, groupID, page)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, snapshots)
}

// GetSnapshotFunds returns a snapshot's per-fund balances.
func (h *SnapshotHandler) GetSnapshotFunds(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	snapshotID, err := pathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	funds, err := h.snapshotService.FundSnapshots(userID, snapshotID)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"funds": funds})
}

// DeleteSnapshot deletes a snapshot.
func (h *SnapshotHandler) DeleteSnapshot(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	snapshotID, err := pathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	if err := h.snapshotService.DeleteSnapshot(userID, snapshotID); err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Snapshot deleted successfully"})
}
