package controllers

import (
	"database/sql"
	"errors"
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

func CreateOrder(c *gin.Context) {
	defer func() {
		ok := c.Writer.Status() >= 200 && c.Writer.Status() < 300
		middlewares.RecordOrderOperation("create", ok)
	}()
	opticianID, ok := callerID(c)
	if !ok {
		return
	}

	var req models.CreateOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	order, err := services.CreateOrder(database.DB, opticianID, req.Items)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, order)

	publishNotification(models.NotificationEvent{
		Type:       "order_created",
		EntityID:   order.ID,
		OpticianID: order.OpticianID,
		Detail:     fmt.Sprintf("Total %.2f", order.TotalAmount),
		Occurred:   time.Now(),
	}, 5)
}

func CreateManualOrder(c *gin.Context) {
	defer func() {
		ok := c.Writer.Status() >= 200 && c.Writer.Status() < 300
		middlewares.RecordOrderOperation("create_manual", ok)
	}()
	adminID, ok := callerID(c)
	if !ok {
		return
	}

	var req models.CreateManualOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	order, err := services.CreateManualOrder(database.DB, adminID, req.OpticianID, req.Items)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, order)
}

func ConfirmOrderItem(c *gin.Context) {
	defer func() {
		ok := c.Writer.Status() >= 200 && c.Writer.Status() < 300
		middlewares.RecordOrderOperation("confirm_item", ok)
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

	item, err := services.ConfirmOrderItem(database.DB, itemID, adminID)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, item)
}

func CancelOrderItem(c *gin.Context) {
	defer func() {
		ok := c.Writer.Status() >= 200 && c.Writer.Status() < 300
		middlewares.RecordOrderOperation("cancel_item", ok)
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

	item, err := services.CancelOrderItem(database.DB, itemID, adminID)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, item)
}

func ListMyOrders(c *gin.Context) {
	defer func() {
		ok := c.Writer.Status() >= 200 && c.Writer.Status() < 300
		middlewares.RecordOrderOperation("list", ok)
	}()
	opticianID, ok := callerID(c)
	if !ok {
		return
	}

	rows, err := database.DB.Query(`
		SELECT o.id, o.total_amount, o.status, o.source, o.created_at,
		       oi.id, oi.product_id, oi.product_name, oi.reference, oi.unit_price, oi.discount, oi.quantity, oi.line_total, oi.status
		FROM orders o
		JOIN order_items oi ON o.id = oi.order_id
		WHERE o.optician_id = ?
		ORDER BY o.created_at DESC, oi.id ASC
	`, opticianID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error"})
		return
	}
	defer rows.Close()

	byID := make(map[int64]*models.Order)
	var ordered []int64
	for rows.Next() {
		var (
			o    models.Order
			item models.OrderItem
		)
		if err := rows.Scan(
			&o.ID, &o.TotalAmount, &o.Status, &o.Source, &o.CreatedAt,
			&item.ID, &item.ProductID, &item.ProductName, &item.Reference, &item.UnitPrice, &item.Discount, &item.Quantity, &item.LineTotal, &item.Status,
		); err != nil {
			log.Printf("Error scanning order row: %v", err)
			continue
		}

		existing, seen := byID[o.ID]
		if !seen {
			o.OpticianID = opticianID
			order := o
			byID[o.ID] = &order
			ordered = append(ordered, o.ID)
			existing = &order
		}
		item.OrderID = o.ID
		existing.Items = append(existing.Items, item)
	}

	orders := make([]models.Order, 0, len(ordered))
	for _, id := range ordered {
		orders = append(orders, *byID[id])
	}
	c.JSON(http.StatusOK, orders)
}

func GetOrderDetails(c *gin.Context) {
	defer func() {
		ok := c.Writer.Status() >= 200 && c.Writer.Status() < 300
		middlewares.RecordOrderOperation("details", ok)
	}()
	opticianID, ok := callerID(c)
	if !ok {
		return
	}

	orderID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid order ID"})
		return
	}

	var order models.Order
	err = database.DB.QueryRow(`
		SELECT id, optician_id, total_amount, status, source, created_at
		FROM orders
		WHERE id = ? AND optician_id = ?
	`, orderID, opticianID).Scan(
		&order.ID, &order.OpticianID, &order.TotalAmount, &order.Status, &order.Source, &order.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Order not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error"})
		return
	}

	rows, err := database.DB.Query(`
		SELECT id, product_id, product_name, reference, unit_price, discount, quantity, line_total, status
		FROM order_items
		WHERE order_id = ?
	`, orderID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to get order items"})
		return
	}
	defer rows.Close()

	for rows.Next() {
		var item models.OrderItem
		if err := rows.Scan(&item.ID, &item.ProductID, &item.ProductName, &item.Reference, &item.UnitPrice, &item.Discount, &item.Quantity, &item.LineTotal, &item.Status); err != nil {
			log.Printf("Error scanning order item: %v", err)
			continue
		}
		item.OrderID = orderID
		order.Items = append(order.Items, item)
	}

	c.JSON(http.StatusOK, order)
}
