package services

import (
	"database/sql"
	"errors"
	"time"

	"optimarket/models"
)

// CreateOrder persists an optician-submitted order. Items start PENDING
// and stock is untouched until an admin confirms each item.
func CreateOrder(db *sql.DB, opticianID int64, lines []models.OrderLine) (*models.Order, error) {
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

	order := &models.Order{
		OpticianID: opticianID,
		Status:     "PENDING",
		Source:     models.SourceOptician,
		CreatedAt:  time.Now(),
	}

	for _, line := range lines {
		item, err := snapshotOrderItem(tx, line)
		if err != nil {
			return nil, err
		}
		order.Items = append(order.Items, *item)
		order.TotalAmount += item.LineTotal
	}

	if err := insertOrder(tx, order); err != nil {
		return nil, err
	}
	if err := tx.Commit(); err != nil {
		return nil, err
	}
	return order, nil
}

// CreateManualOrder creates an admin-entered order on behalf of an
// optician. Every line is validated against live stock before anything
// is written; one failing line rejects the whole request. The order is
// committed APPROVED with CONFIRMED items and stock already decremented,
// bypassing the pending-review flow.
func CreateManualOrder(db *sql.DB, adminID, opticianID int64, lines []models.OrderLine) (*models.Order, error) {
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

	var exists int64
	err = tx.QueryRow("SELECT id FROM opticians WHERE id = ?", opticianID).Scan(&exists)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrOpticianNotFound
		}
		return nil, err
	}

	now := time.Now()
	order := &models.Order{
		OpticianID: opticianID,
		Status:     "APPROVED",
		Source:     models.SourceManual,
		CreatedBy:  &adminID,
		CreatedAt:  now,
	}

	// Validate every line before mutating anything: the row locks taken
	// here hold until commit, so the stock checks cannot go stale.
	type lockedLine struct {
		item     *models.OrderItem
		newStock int
	}
	var locked []lockedLine
	for _, line := range lines {
		var (
			item  models.OrderItem
			stock int
		)
		var (
			price      float64
			salePrice  float64
			saleActive bool
		)
		err = tx.QueryRow(
			"SELECT id, name, reference, price, sale_price, sale_active, stock_qty FROM products WHERE id = ? FOR UPDATE",
			line.ProductID,
		).Scan(&item.ProductID, &item.ProductName, &item.Reference, &price, &salePrice, &saleActive, &stock)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return nil, ErrProductNotFound
			}
			return nil, err
		}
		if !CanFulfillOrderItem(stock, line.Quantity) {
			return nil, &InsufficientStockError{ProductID: line.ProductID, Available: stock, Requested: line.Quantity}
		}

		product := models.Product{Price: price, SalePrice: salePrice, SaleActive: saleActive}
		item.UnitPrice = product.UnitPrice()
		item.SalePrice = salePrice
		item.Discount = price - item.UnitPrice
		item.Quantity = line.Quantity
		item.LineTotal = item.UnitPrice * float64(line.Quantity)
		item.Status = models.OrderItemConfirmed
		item.ConfirmedAt = &now
		item.ConfirmedBy = &adminID
		order.TotalAmount += item.LineTotal

		locked = append(locked, lockedLine{item: &item, newStock: stock - line.Quantity})
	}

	for _, l := range locked {
		if _, err := tx.Exec(
			"UPDATE products SET stock_qty = ?, in_stock = ? WHERE id = ?",
			l.newStock, l.newStock > 0, l.item.ProductID,
		); err != nil {
			return nil, err
		}
		order.Items = append(order.Items, *l.item)
	}

	if err := insertOrder(tx, order); err != nil {
		return nil, err
	}
	if err := tx.Commit(); err != nil {
		return nil, err
	}
	return order, nil
}

// ConfirmOrderItem transitions one PENDING item to CONFIRMED, taking its
// quantity out of live stock in the same transaction. The stock check
// runs against the current product row, never the order-time snapshot.
func ConfirmOrderItem(db *sql.DB, itemID, adminID int64) (*models.OrderItem, error) {
	tx, err := db.Begin()
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	item := &models.OrderItem{ID: itemID}
	err = tx.QueryRow(
		"SELECT order_id, product_id, quantity, status FROM order_items WHERE id = ? FOR UPDATE",
		itemID,
	).Scan(&item.OrderID, &item.ProductID, &item.Quantity, &item.Status)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrOrderItemNotFound
		}
		return nil, err
	}
	if item.Status != models.OrderItemPending {
		return nil, ErrAlreadyProcessed
	}

	var stock int
	err = tx.QueryRow("SELECT stock_qty FROM products WHERE id = ? FOR UPDATE", item.ProductID).Scan(&stock)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrProductNotFound
		}
		return nil, err
	}
	if !CanFulfillOrderItem(stock, item.Quantity) {
		return nil, &InsufficientStockError{ProductID: item.ProductID, Available: stock, Requested: item.Quantity}
	}

	newStock := stock - item.Quantity
	if _, err := tx.Exec(
		"UPDATE products SET stock_qty = ?, in_stock = ? WHERE id = ?",
		newStock, newStock > 0, item.ProductID,
	); err != nil {
		return nil, err
	}

	now := time.Now()
	result, err := tx.Exec(
		"UPDATE order_items SET status = ?, confirmed_at = ?, confirmed_by = ? WHERE id = ? AND status = ?",
		models.OrderItemConfirmed, now, adminID, itemID, models.OrderItemPending,
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

	item.Status = models.OrderItemConfirmed
	item.ConfirmedAt = &now
	item.ConfirmedBy = &adminID
	return item, nil
}

// CancelOrderItem transitions one PENDING item to CANCELLED. Nothing was
// reserved at order time, so stock is untouched.
func CancelOrderItem(db *sql.DB, itemID, adminID int64) (*models.OrderItem, error) {
	tx, err := db.Begin()
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	item := &models.OrderItem{ID: itemID}
	err = tx.QueryRow(
		"SELECT order_id, product_id, quantity, status FROM order_items WHERE id = ? FOR UPDATE",
		itemID,
	).Scan(&item.OrderID, &item.ProductID, &item.Quantity, &item.Status)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrOrderItemNotFound
		}
		return nil, err
	}
	if item.Status != models.OrderItemPending {
		return nil, ErrAlreadyProcessed
	}

	now := time.Now()
	result, err := tx.Exec(
		"UPDATE order_items SET status = ?, cancelled_at = ?, cancelled_by = ? WHERE id = ? AND status = ?",
		models.OrderItemCancelled, now, adminID, itemID, models.OrderItemPending,
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

	item.Status = models.OrderItemCancelled
	item.CancelledAt = &now
	item.CancelledBy = &adminID
	return item, nil
}

// snapshotOrderItem loads the live product and builds a priced PENDING
// item from it. Pricing is copied so later catalog edits do not alter
// the order.
func snapshotOrderItem(tx *sql.Tx, line models.OrderLine) (*models.OrderItem, error) {
	var (
		item       models.OrderItem
		price      float64
		salePrice  float64
		saleActive bool
	)
	err := tx.QueryRow(
		"SELECT id, name, reference, price, sale_price, sale_active FROM products WHERE id = ?",
		line.ProductID,
	).Scan(&item.ProductID, &item.ProductName, &item.Reference, &price, &salePrice, &saleActive)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrProductNotFound
		}
		return nil, err
	}

	product := models.Product{Price: price, SalePrice: salePrice, SaleActive: saleActive}
	item.UnitPrice = product.UnitPrice()
	item.SalePrice = salePrice
	item.Discount = price - item.UnitPrice
	item.Quantity = line.Quantity
	item.LineTotal = item.UnitPrice * float64(line.Quantity)
	item.Status = models.OrderItemPending
	return &item, nil
}

func insertOrder(tx *sql.Tx, order *models.Order) error {
	result, err := tx.Exec(
		"INSERT INTO orders (optician_id, total_amount, status, source, created_by, created_at) VALUES (?, ?, ?, ?, ?, ?)",
		order.OpticianID, order.TotalAmount, order.Status, order.Source, order.CreatedBy, order.CreatedAt,
	)
	if err != nil {
		return err
	}
	order.ID, err = result.LastInsertId()
	if err != nil {
		return err
	}

	for i := range order.Items {
		item := &order.Items[i]
		item.OrderID = order.ID
		result, err := tx.Exec(
			"INSERT INTO order_items (order_id, product_id, product_name, reference, unit_price, sale_price, discount, quantity, line_total, status, confirmed_at, confirmed_by) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)",
			item.OrderID, item.ProductID, item.ProductName, item.Reference, item.UnitPrice, item.SalePrice, item.Discount, item.Quantity, item.LineTotal, item.Status, item.ConfirmedAt, item.ConfirmedBy,
		)
		if err != nil {
			return err
		}
		item.ID, err = result.LastInsertId()
		if err != nil {
			return err
		}
	}
	return nil
}
