package controllers

import (
	"database/sql"
	"fmt"
	"log"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"optimarket/database"
	"optimarket/middlewares"
	"optimarket/models"
	"optimarket/services"
)

func CreateRedemption(c *gin.Context) {
	defer func() {
		ok := c.Writer.Status() >= 200 && c.Writer.Status() < 300
		middlewares.RecordRedemptionOperation("create", ok)
	}()
	opticianID, ok := callerID(c)
	if !ok {
		return
	}

	var req models.CreateRedemptionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	redemption, err := services.CreateRedemption(database.DB, opticianID, req.Items)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, redemption)

	publishNotification(models.NotificationEvent{
		Type:       "redemption_created",
		EntityID:   redemption.ID,
		OpticianID: redemption.OpticianID,
		Detail:     strconv.Itoa(redemption.TotalPoints),
		Occurred:   time.Now(),
	}, 5)
}

func ListMyRedemptions(c *gin.Context) {
	defer func() {
		ok := c.Writer.Status() >= 200 && c.Writer.Status() < 300
		middlewares.RecordRedemptionOperation("list", ok)
	}()
	opticianID, ok := callerID(c)
	if !ok {
		return
	}
	listRedemptions(c, "WHERE r.optician_id = ?", opticianID)
}

func ListRedemptions(c *gin.Context) {
	defer func() {
		ok := c.Writer.Status() >= 200 && c.Writer.Status() < 300
		middlewares.RecordRedemptionOperation("admin_list", ok)
	}()
	if status := c.Query("status"); status != "" {
		listRedemptions(c, "WHERE r.status = ?", status)
		return
	}
	listRedemptions(c, "")
}

func listRedemptions(c *gin.Context, where string, args ...any) {
	query := `SELECT r.id, r.optician_id, r.total_points, r.status, r.approved_at, r.approved_by, r.rejected_at, r.rejection_reason, r.created_at,
		i.id, i.loyalty_product_id, i.product_name, i.image_url, i.quantity, i.points_cost, i.total_points
		FROM loyalty_redemptions r
		JOIN loyalty_redemption_items i ON r.id = i.redemption_id ` + where + `
		ORDER BY r.created_at DESC, i.id ASC`

	rows, err := database.DB.Query(query, args...)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error"})
		return
	}
	defer rows.Close()

	byID := make(map[int64]*models.LoyaltyRedemption)
	var ordered []int64
	for rows.Next() {
		var (
			r          models.LoyaltyRedemption
			item       models.LoyaltyRedemptionItem
			approvedAt sql.NullTime
			approvedBy sql.NullInt64
			rejectedAt sql.NullTime
		)
		if err := rows.Scan(
			&r.ID, &r.OpticianID, &r.TotalPoints, &r.Status, &approvedAt, &approvedBy, &rejectedAt, &r.RejectionReason, &r.CreatedAt,
			&item.ID, &item.LoyaltyProductID, &item.ProductName, &item.ImageURL, &item.Quantity, &item.PointsCost, &item.TotalPoints,
		); err != nil {
			log.Printf("Error scanning redemption row: %v", err)
			continue
		}
		if approvedAt.Valid {
			r.ApprovedAt = &approvedAt.Time
		}
		if approvedBy.Valid {
			r.ApprovedBy = &approvedBy.Int64
		}
		if rejectedAt.Valid {
			r.RejectedAt = &rejectedAt.Time
		}

		existing, seen := byID[r.ID]
		if !seen {
			redemption := r
			byID[r.ID] = &redemption
			ordered = append(ordered, r.ID)
			existing = &redemption
		}
		item.RedemptionID = r.ID
		existing.Items = append(existing.Items, item)
	}

	redemptions := make([]models.LoyaltyRedemption, 0, len(ordered))
	for _, id := range ordered {
		redemptions = append(redemptions, *byID[id])
	}
	c.JSON(http.StatusOK, redemptions)
}

func ApproveRedemption(c *gin.Context) {
	defer func() {
		ok := c.Writer.Status() >= 200 && c.Writer.Status() < 300
		middlewares.RecordRedemptionOperation("approve", ok)
	}()
	adminID, ok := callerID(c)
	if !ok {
		return
	}

	redemptionID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid redemption ID"})
		return
	}

	redemption, err := services.ApproveRedemption(database.DB, redemptionID, adminID)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, redemption)

	publishNotification(models.NotificationEvent{
		Type:       "redemption_approved",
		EntityID:   redemption.ID,
		OpticianID: redemption.OpticianID,
		Detail:     fmt.Sprintf("%d points deducted", redemption.TotalPoints),
		Occurred:   time.Now(),
	}, 5)
}

// ApproveRedemptionItem approves via a single item. The whole parent
// redemption is finalized, matching the one-item-per-redemption shape
// most accounts actually use.
func ApproveRedemptionItem(c *gin.Context) {
	defer func() {
		ok := c.Writer.Status() >= 200 && c.Writer.Status() < 300
		middlewares.RecordRedemptionOperation("approve_item", ok)
	}()
	adminID, ok := callerID(c)
	if !ok {
		return
	}

	itemID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid item ID"})
		return
	}

	redemption, err := services.ApproveRedemptionItem(database.DB, itemID, adminID)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, redemption)

	publishNotification(models.NotificationEvent{
		Type:       "redemption_approved",
		EntityID:   redemption.ID,
		OpticianID: redemption.OpticianID,
		Detail:     fmt.Sprintf("%d points deducted", redemption.TotalPoints),
		Occurred:   time.Now(),
	}, 5)
}

func RejectRedemption(c *gin.Context) {
	defer func() {
		ok := c.Writer.Status() >= 200 && c.Writer.Status() < 300
		middlewares.RecordRedemptionOperation("reject", ok)
	}()
	adminID, ok := callerID(c)
	if !ok {
		return
	}

	redemptionID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid redemption ID"})
		return
	}

	// Body is optional; an absent reason falls back to a generic message.
	var req models.RejectRedemptionRequest
	_ = c.ShouldBindJSON(&req)

	redemption, err := services.RejectRedemption(database.DB, redemptionID, adminID, req.Reason)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, redemption)

	publishNotification(models.NotificationEvent{
		Type:       "redemption_rejected",
		EntityID:   redemption.ID,
		OpticianID: redemption.OpticianID,
		Detail:     redemption.RejectionReason,
		Occurred:   time.Now(),
	}, 5)
}
