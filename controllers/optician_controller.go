package controllers

import (
	"database/sql"
	"errors"
	"log"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/crypto/bcrypt"

	"optimarket/database"
	"optimarket/geocoder"
	"optimarket/models"
	"optimarket/services"
	"optimarket/utils"
)

type loginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

func Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var (
		id           int64
		passwordHash string
		status       models.AccountStatus
	)
	err := database.DB.QueryRow(
		"SELECT id, password_hash, status FROM opticians WHERE email = ?",
		req.Email,
	).Scan(&id, &passwordHash, &status)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid credentials"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error"})
		return
	}

	if bcrypt.CompareHashAndPassword([]byte(passwordHash), []byte(req.Password)) != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid credentials"})
		return
	}
	if status != models.AccountApproved {
		c.JSON(http.StatusForbidden, gin.H{"error": "Account pending approval"})
		return
	}

	token, err := utils.GenerateToken(id, utils.RoleOptician)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to issue token"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"token": token})
}

// RegisterOptician creates a PENDING account. The address is geocoded
// best effort; unknown coordinates just leave the account out of
// proximity search.
func RegisterOptician(c *gin.Context) {
	var req models.RegisterOpticianRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to process password"})
		return
	}

	var lat, lon *float64
	if geo != nil {
		coords, err := geo.Geocode(geocoder.Address{
			PlusCode: req.PlusCode,
			Street:   req.Address,
			City:     req.City,
			Country:  req.Country,
		})
		if err != nil {
			log.Printf("Geocoding failed for %q: %v", req.City, err)
		} else if coords != nil {
			lat, lon = &coords.Latitude, &coords.Longitude
		}
	}

	result, err := database.DB.Exec(
		"INSERT INTO opticians (name, email, password_hash, phone, company, address, city, country, plus_code, latitude, longitude, status, loyalty_points, created_at) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, 0, ?)",
		req.Name, req.Email, string(hash), req.Phone, req.Company, req.Address, req.City, req.Country, req.PlusCode, lat, lon, models.AccountPending, time.Now(),
	)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Email already registered"})
		return
	}
	id, err := result.LastInsertId()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error"})
		return
	}

	c.JSON(http.StatusCreated, gin.H{"optician_id": id, "status": models.AccountPending})

	publishNotification(models.NotificationEvent{
		Type:     "optician_registered",
		EntityID: id,
		Detail:   req.Company,
		Occurred: time.Now(),
	}, 5)
}

func ApproveOptician(c *gin.Context) {
	reviewOptician(c, models.AccountApproved)
}

func RejectOptician(c *gin.Context) {
	reviewOptician(c, models.AccountRejected)
}

// reviewOptician finalizes a PENDING account. The status predicate in
// the UPDATE keeps two concurrent reviews from both succeeding.
func reviewOptician(c *gin.Context, to models.AccountStatus) {
	if _, ok := callerID(c); !ok {
		return
	}

	opticianID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid optician ID"})
		return
	}

	result, err := database.DB.Exec(
		"UPDATE opticians SET status = ? WHERE id = ? AND status = ?",
		to, opticianID, models.AccountPending,
	)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error"})
		return
	}
	affected, err := result.RowsAffected()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error"})
		return
	}
	if affected == 0 {
		var status models.AccountStatus
		err := database.DB.QueryRow("SELECT status FROM opticians WHERE id = ?", opticianID).Scan(&status)
		if errors.Is(err, sql.ErrNoRows) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Optician not found"})
			return
		}
		c.JSON(http.StatusBadRequest, gin.H{"error": "Account already reviewed"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"optician_id": opticianID, "status": to})
}

func ListOpticians(c *gin.Context) {
	rows, err := database.DB.Query(
		"SELECT id, name, email, phone, company, address, city, country, plus_code, latitude, longitude, status, loyalty_points, created_at, updated_at FROM opticians ORDER BY created_at DESC",
	)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error"})
		return
	}
	defer rows.Close()

	opticians := make([]models.Optician, 0)
	for rows.Next() {
		o, err := scanOptician(rows)
		if err != nil {
			log.Printf("Error scanning optician: %v", err)
			continue
		}
		opticians = append(opticians, *o)
	}
	c.JSON(http.StatusOK, opticians)
}

// NearbyOpticians ranks approved opticians by distance from the given
// coordinate. Accounts without resolved coordinates are excluded.
func NearbyOpticians(c *gin.Context) {
	lat, err := strconv.ParseFloat(c.Query("lat"), 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid lat parameter"})
		return
	}
	lon, err := strconv.ParseFloat(c.Query("lng"), 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid lng parameter"})
		return
	}
	limit := 10
	if raw := c.Query("limit"); raw != "" {
		limit, err = strconv.Atoi(raw)
		if err != nil || limit <= 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid limit parameter"})
			return
		}
	}

	rows, err := database.DB.Query(
		"SELECT id, name, email, phone, company, address, city, country, plus_code, latitude, longitude, status, loyalty_points, created_at, updated_at FROM opticians WHERE status = ?",
		models.AccountApproved,
	)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error"})
		return
	}
	defer rows.Close()

	var candidates []models.Optician
	for rows.Next() {
		o, err := scanOptician(rows)
		if err != nil {
			log.Printf("Error scanning optician: %v", err)
			continue
		}
		candidates = append(candidates, *o)
	}

	c.JSON(http.StatusOK, services.Nearest(lat, lon, candidates, limit))
}

func scanOptician(rows *sql.Rows) (*models.Optician, error) {
	var (
		o        models.Optician
		lat, lon sql.NullFloat64
	)
	if err := rows.Scan(
		&o.ID, &o.Name, &o.Email, &o.Phone, &o.Company, &o.Address, &o.City, &o.Country, &o.PlusCode,
		&lat, &lon, &o.Status, &o.LoyaltyPoints, &o.CreatedAt, &o.UpdatedAt,
	); err != nil {
		return nil, err
	}
	if lat.Valid {
		o.Latitude = &lat.Float64
	}
	if lon.Valid {
		o.Longitude = &lon.Float64
	}
	return &o, nil
}
