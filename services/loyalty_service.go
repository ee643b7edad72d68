package services

import (
	"database/sql"
	"errors"
	"time"

	"optimarket/models"
)

// CreateRedemption validates and persists a PENDING redemption for the
// optician. Item costs and the redemption total are recomputed from the
// live loyalty products; a client-claimed total is never trusted. Points
// are not deducted here - that happens at approval.
func CreateRedemption(db *sql.DB, opticianID int64, lines []models.RedemptionLine) (*models.LoyaltyRedemption, error) {
	if len(lines) == 0 {
		return nil, &ValidationError{Field: "items", Message: "at least one item is required"}
	}
	for _, line := range lines {
		if line.Quantity <= 0 {
			return nil, &ValidationError{Field: "quantity", Message: "must be a positive integer"}
		}
	}

	tx, err := db.Begin()
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	var balance int
	err = tx.QueryRow("SELECT loyalty_points FROM opticians WHERE id = ?", opticianID).Scan(&balance)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrOpticianNotFound
		}
		return nil, err
	}

	now := time.Now()
	redemption := &models.LoyaltyRedemption{
		OpticianID: opticianID,
		Status:     models.RedemptionPending,
		CreatedAt:  now,
	}

	for _, line := range lines {
		var (
			lp      models.LoyaltyProduct
			prodID  sql.NullInt64
			inStock sql.NullBool
		)
		err = tx.QueryRow(
			"SELECT lp.id, lp.name, lp.image_url, lp.points_cost, lp.is_active, lp.product_id, p.in_stock FROM loyalty_products lp LEFT JOIN products p ON lp.product_id = p.id WHERE lp.id = ?",
			line.LoyaltyProductID,
		).Scan(&lp.ID, &lp.Name, &lp.ImageURL, &lp.PointsCost, &lp.IsActive, &prodID, &inStock)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return nil, ErrLoyaltyProductNotFound
			}
			return nil, err
		}

		var backing *models.Product
		if prodID.Valid {
			lp.ProductID = &prodID.Int64
			backing = &models.Product{ID: prodID.Int64, InStock: inStock.Valid && inStock.Bool}
		}
		if !IsRedeemable(&lp, backing) {
			return nil, ErrProductUnavailable
		}

		redemption.Items = append(redemption.Items, models.LoyaltyRedemptionItem{
			LoyaltyProductID: lp.ID,
			ProductName:      lp.Name,
			ImageURL:         lp.ImageURL,
			Quantity:         line.Quantity,
			PointsCost:       lp.PointsCost,
			TotalPoints:      lp.PointsCost * line.Quantity,
		})
		redemption.TotalPoints += lp.PointsCost * line.Quantity
	}

	if !CanAffordRedemption(balance, redemption.TotalPoints) {
		return nil, ErrInsufficientPoints
	}

	result, err := tx.Exec(
		"INSERT INTO loyalty_redemptions (optician_id, total_points, status, created_at) VALUES (?, ?, ?, ?)",
		redemption.OpticianID, redemption.TotalPoints, redemption.Status, redemption.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	redemption.ID, err = result.LastInsertId()
	if err != nil {
		return nil, err
	}

	for i := range redemption.Items {
		item := &redemption.Items[i]
		item.RedemptionID = redemption.ID
		if _, err := tx.Exec(
			"INSERT INTO loyalty_redemption_items (redemption_id, loyalty_product_id, product_name, image_url, quantity, points_cost, total_points) VALUES (?, ?, ?, ?, ?, ?, ?)",
			item.RedemptionID, item.LoyaltyProductID, item.ProductName, item.ImageURL, item.Quantity, item.PointsCost, item.TotalPoints,
		); err != nil {
			return nil, err
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, err
	}
	return redemption, nil
}

// ApproveRedemption finalizes a PENDING redemption: re-checks stock for
// every stock-backed item against the live product rows, deducts the
// optician's points and flips the status, all in one transaction. The
// balance guard lives in the UPDATE predicate so a balance that shrank
// since creation fails the approval rather than clamping at zero.
func ApproveRedemption(db *sql.DB, redemptionID, adminID int64) (*models.LoyaltyRedemption, error) {
	tx, err := db.Begin()
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	redemption := &models.LoyaltyRedemption{ID: redemptionID}
	err = tx.QueryRow(
		"SELECT optician_id, total_points, status FROM loyalty_redemptions WHERE id = ? FOR UPDATE",
		redemptionID,
	).Scan(&redemption.OpticianID, &redemption.TotalPoints, &redemption.Status)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrRedemptionNotFound
		}
		return nil, err
	}
	if redemption.Status != models.RedemptionPending {
		return nil, ErrAlreadyProcessed
	}

	// Live stock re-check: the snapshot is irrelevant here, stock may
	// have been consumed since the request was created.
	rows, err := tx.Query(
		"SELECT ri.quantity, lp.is_active, lp.product_id, p.stock_qty FROM loyalty_redemption_items ri JOIN loyalty_products lp ON ri.loyalty_product_id = lp.id LEFT JOIN products p ON lp.product_id = p.id WHERE ri.redemption_id = ? FOR UPDATE",
		redemptionID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var (
			quantity int
			isActive bool
			prodID   sql.NullInt64
			stockQty sql.NullInt64
		)
		if err := rows.Scan(&quantity, &isActive, &prodID, &stockQty); err != nil {
			return nil, err
		}
		if !isActive {
			return nil, ErrProductUnavailable
		}
		if prodID.Valid && stockQty.Valid && !CanFulfillOrderItem(int(stockQty.Int64), quantity) {
			return nil, &InsufficientStockError{
				ProductID: prodID.Int64,
				Available: int(stockQty.Int64),
				Requested: quantity,
			}
		}
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	result, err := tx.Exec(
		"UPDATE opticians SET loyalty_points = loyalty_points - ? WHERE id = ? AND loyalty_points >= ?",
		redemption.TotalPoints, redemption.OpticianID, redemption.TotalPoints,
	)
	if err != nil {
		return nil, err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return nil, err
	}
	if affected == 0 {
		return nil, ErrInsufficientPoints
	}

	now := time.Now()
	result, err = tx.Exec(
		"UPDATE loyalty_redemptions SET status = ?, approved_at = ?, approved_by = ? WHERE id = ? AND status = ?",
		models.RedemptionApproved, now, adminID, redemptionID, models.RedemptionPending,
	)
	if err != nil {
		return nil, err
	}
	affected, err = result.RowsAffected()
	if err != nil {
		return nil, err
	}
	if affected == 0 {
		return nil, ErrAlreadyProcessed
	}

	if err := tx.Commit(); err != nil {
		return nil, err
	}

	redemption.Status = models.RedemptionApproved
	redemption.ApprovedAt = &now
	redemption.ApprovedBy = &adminID
	return redemption, nil
}

// ApproveRedemptionItem resolves the parent redemption of an item and
// approves it. Approving any single item finalizes the whole redemption;
// true per-item approval is a known limitation of the current model.
func ApproveRedemptionItem(db *sql.DB, itemID, adminID int64) (*models.LoyaltyRedemption, error) {
	var redemptionID int64
	err := db.QueryRow("SELECT redemption_id FROM loyalty_redemption_items WHERE id = ?", itemID).Scan(&redemptionID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrRedemptionNotFound
		}
		return nil, err
	}
	return ApproveRedemption(db, redemptionID, adminID)
}

// RejectRedemption terminally rejects a PENDING redemption. Points are
// never touched on rejection.
func RejectRedemption(db *sql.DB, redemptionID, adminID int64, reason string) (*models.LoyaltyRedemption, error) {
	if reason == "" {
		reason = "Rejected by administrator"
	}

	tx, err := db.Begin()
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	redemption := &models.LoyaltyRedemption{ID: redemptionID}
	err = tx.QueryRow(
		"SELECT optician_id, total_points, status FROM loyalty_redemptions WHERE id = ? FOR UPDATE",
		redemptionID,
	).Scan(&redemption.OpticianID, &redemption.TotalPoints, &redemption.Status)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrRedemptionNotFound
		}
		return nil, err
	}
	if redemption.Status != models.RedemptionPending {
		return nil, ErrAlreadyProcessed
	}

	now := time.Now()
	result, err := tx.Exec(
		"UPDATE loyalty_redemptions SET status = ?, rejected_at = ?, approved_by = ?, rejection_reason = ? WHERE id = ? AND status = ?",
		models.RedemptionRejected, now, adminID, reason, redemptionID, models.RedemptionPending,
	)
	if err != nil {
		return nil, err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return nil, err
	}
	if affected == 0 {
		return nil, ErrAlreadyProcessed
	}

	if err := tx.Commit(); err != nil {
		return nil, err
	}

	redemption.Status = models.RedemptionRejected
	redemption.RejectedAt = &now
	redemption.RejectionReason = reason
	return redemption, nil
}
