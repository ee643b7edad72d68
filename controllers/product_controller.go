package controllers

import (
	"log"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"optimarket/database"
	"optimarket/models"
)

func ListProducts(c *gin.Context) {
	rows, err := database.DB.Query(
		"SELECT id, name, reference, description, price, sale_price, sale_active, stock_qty, in_stock, image_url, active, created_at, updated_at FROM products WHERE active = 1 ORDER BY name ASC",
	)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error"})
		return
	}
	defer rows.Close()

	products := make([]models.Product, 0)
	for rows.Next() {
		var p models.Product
		if err := rows.Scan(
			&p.ID, &p.Name, &p.Reference, &p.Description, &p.Price, &p.SalePrice, &p.SaleActive,
			&p.StockQty, &p.InStock, &p.ImageURL, &p.Active, &p.CreatedAt, &p.UpdatedAt,
		); err != nil {
			log.Printf("Error scanning product: %v", err)
			continue
		}
		products = append(products, p)
	}
	c.JSON(http.StatusOK, products)
}

func CreateProduct(c *gin.Context) {
	var req models.CreateProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	result, err := database.DB.Exec(
		"INSERT INTO products (name, reference, description, price, sale_price, sale_active, stock_qty, in_stock, image_url, active, created_at) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, 1, ?)",
		req.Name, req.Reference, req.Description, req.Price, req.SalePrice, req.SaleActive, req.StockQty, req.StockQty > 0, req.ImageURL, time.Now(),
	)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create product"})
		return
	}
	id, err := result.LastInsertId()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error"})
		return
	}
	c.JSON(http.StatusCreated, gin.H{"product_id": id})
}

// UpdateStock is the direct admin stock edit. in_stock is recomputed in
// the same statement so the derived flag never drifts.
func UpdateStock(c *gin.Context) {
	productID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid product ID"})
		return
	}

	var req models.UpdateStockRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	result, err := database.DB.Exec(
		"UPDATE products SET stock_qty = ?, in_stock = ? WHERE id = ?",
		req.StockQty, req.StockQty > 0, productID,
	)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error"})
		return
	}
	affected, _ := result.RowsAffected()
	if affected == 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": "Product not found"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"product_id": productID, "stock_qty": req.StockQty})
}

func ListLoyaltyProducts(c *gin.Context) {
	rows, err := database.DB.Query(
		"SELECT lp.id, lp.name, lp.description, lp.points_cost, lp.image_url, lp.is_active, lp.product_id, lp.created_at, lp.updated_at FROM loyalty_products lp WHERE lp.is_active = 1 ORDER BY lp.points_cost ASC",
	)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error"})
		return
	}
	defer rows.Close()

	products := make([]models.LoyaltyProduct, 0)
	for rows.Next() {
		var (
			lp     models.LoyaltyProduct
			prodID *int64
		)
		if err := rows.Scan(&lp.ID, &lp.Name, &lp.Description, &lp.PointsCost, &lp.ImageURL, &lp.IsActive, &prodID, &lp.CreatedAt, &lp.UpdatedAt); err != nil {
			log.Printf("Error scanning loyalty product: %v", err)
			continue
		}
		lp.ProductID = prodID
		products = append(products, lp)
	}
	c.JSON(http.StatusOK, products)
}

func CreateLoyaltyProduct(c *gin.Context) {
	var req models.CreateLoyaltyProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	result, err := database.DB.Exec(
		"INSERT INTO loyalty_products (name, description, points_cost, image_url, is_active, product_id, created_at) VALUES (?, ?, ?, ?, 1, ?, ?)",
		req.Name, req.Description, req.PointsCost, req.ImageURL, req.ProductID, time.Now(),
	)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create loyalty product"})
		return
	}
	id, err := result.LastInsertId()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error"})
		return
	}
	c.JSON(http.StatusCreated, gin.H{"loyalty_product_id": id})
}

// DeactivateLoyaltyProduct hides a reward from the catalog. Historical
// redemption items carry snapshots, so past records are unaffected.
func DeactivateLoyaltyProduct(c *gin.Context) {
	productID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid loyalty product ID"})
		return
	}

	result, err := database.DB.Exec("UPDATE loyalty_products SET is_active = 0 WHERE id = ?", productID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error"})
		return
	}
	affected, _ := result.RowsAffected()
	if affected == 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": "Loyalty product not found"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"loyalty_product_id": productID, "is_active": false})
}
