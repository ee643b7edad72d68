package controllers

import (
	"errors"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"optimarket/geocoder"
	"optimarket/models"
	"optimarket/rabbitmq"
	"optimarket/services"
)

var (
	rabbitMQ *rabbitmq.RabbitMQ
	geo      *geocoder.Client
)

func SetRabbitMQ(rmq *rabbitmq.RabbitMQ) {
	rabbitMQ = rmq
}

func SetGeocoder(client *geocoder.Client) {
	geo = client
}

// publishNotification is fire-and-forget: a broker failure is logged and
// never surfaces to the request that triggered it.
func publishNotification(event models.NotificationEvent, priority int) {
	if rabbitMQ == nil {
		return
	}
	if err := rabbitMQ.PublishNotification(event, priority); err != nil {
		log.Printf("Failed to publish %s notification: %v", event.Type, err)
	}
}

// handleServiceError maps the service error taxonomy onto HTTP codes.
// Business-rule violations and malformed input are 400, unknown ids are
// 404, everything else is a logged 500 with a generic message.
func handleServiceError(c *gin.Context, err error) {
	var validationErr *services.ValidationError
	if errors.As(err, &validationErr) {
		c.JSON(http.StatusBadRequest, gin.H{"error": validationErr.Error()})
		return
	}

	var stockErr *services.InsufficientStockError
	if errors.As(err, &stockErr) {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":     stockErr.Error(),
			"available": stockErr.Available,
			"requested": stockErr.Requested,
		})
		return
	}

	switch {
	case errors.Is(err, services.ErrInsufficientPoints),
		errors.Is(err, services.ErrProductUnavailable),
		errors.Is(err, services.ErrAlreadyProcessed):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, services.ErrOpticianNotFound),
		errors.Is(err, services.ErrProductNotFound),
		errors.Is(err, services.ErrLoyaltyProductNotFound),
		errors.Is(err, services.ErrRedemptionNotFound),
		errors.Is(err, services.ErrOrderItemNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	default:
		log.Printf("Unexpected service error: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
	}
}

func callerID(c *gin.Context) (int64, bool) {
	v, exists := c.Get("userID")
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return 0, false
	}
	return v.(int64), true
}
