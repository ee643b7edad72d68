package controllers

import (
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"optimarket/database"
	"optimarket/middlewares"
	"optimarket/models"
)

// CreateCampaign stores a broadcast and enqueues one delivery per
// approved optician with contact info. Enqueue failures are logged per
// recipient; the campaign itself is already committed.
func CreateCampaign(c *gin.Context) {
	adminID, ok := callerID(c)
	if !ok {
		return
	}

	var req models.CreateCampaignRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	channel := models.CampaignChannel(req.Channel)

	rows, err := database.DB.Query(
		"SELECT id, email, phone FROM opticians WHERE status = ?",
		models.AccountApproved,
	)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error"})
		return
	}
	defer rows.Close()

	type recipient struct {
		email string
		phone string
	}
	var recipients []recipient
	for rows.Next() {
		var (
			id int64
			r  recipient
		)
		if err := rows.Scan(&id, &r.email, &r.phone); err != nil {
			log.Printf("Error scanning recipient: %v", err)
			continue
		}
		if r.email == "" && r.phone == "" {
			continue
		}
		recipients = append(recipients, r)
	}

	result, err := database.DB.Exec(
		"INSERT INTO campaigns (subject, body, channel, created_by, recipient_count, created_at) VALUES (?, ?, ?, ?, ?, ?)",
		req.Subject, req.Body, channel, adminID, len(recipients), time.Now(),
	)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create campaign"})
		return
	}
	campaignID, err := result.LastInsertId()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error"})
		return
	}

	enqueued := 0
	if rabbitMQ != nil {
		for _, r := range recipients {
			msg := models.CampaignMessage{
				MessageID:  uuid.NewString(),
				CampaignID: campaignID,
				Channel:    channel,
				Email:      r.email,
				Phone:      r.phone,
				Subject:    req.Subject,
				Body:       req.Body,
			}
			if err := rabbitMQ.PublishCampaignMessage(msg); err != nil {
				log.Printf("Campaign %d: failed to enqueue delivery for %s: %v", campaignID, r.email, err)
				continue
			}
			middlewares.RecordCampaignMessage(string(channel))
			enqueued++
		}
	}

	c.JSON(http.StatusCreated, gin.H{
		"campaign_id": campaignID,
		"recipients":  len(recipients),
		"enqueued":    enqueued,
	})
}
