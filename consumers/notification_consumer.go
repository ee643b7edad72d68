package consumers

import (
	"encoding/json"
	"fmt"
	"log"

	amqp "github.com/rabbitmq/amqp091-go"

	"optimarket/config"
	"optimarket/models"
	"optimarket/notifier"
)

// StartNotificationConsumer drains the notification queue and turns
// state-transition events into admin emails. Delivery failures are
// logged and the message is dead-lettered; nothing is retried in-line.
func StartNotificationConsumer(ch *amqp.Channel, cfg *config.Config, email notifier.EmailSender) {
	msgs, err := ch.Consume(
		cfg.NotificationQueue,
		"optimarket-notifications", // consumer tag
		false,                      // auto-ack
		false,                      // exclusive
		false,                      // no-local
		false,                      // no-wait
		nil,
	)
	if err != nil {
		log.Fatalf("Failed to register notification consumer: %v", err)
	}

	go func() {
		for msg := range msgs {
			processNotification(msg, cfg, email)
		}
	}()

	dlqMsgs, err := ch.Consume(
		cfg.DeadLetterQueue,
		"optimarket-dlq", // consumer tag
		false,            // auto-ack
		false,            // exclusive
		false,            // no-local
		false,            // no-wait
		nil,
	)
	if err != nil {
		log.Printf("Failed to register DLQ consumer: %v", err)
		return
	}

	go func() {
		for msg := range dlqMsgs {
			log.Printf("Received dead letter: %s", msg.Body)
			if err := msg.Ack(false); err != nil {
				return
			}
		}
	}()
}

func processNotification(msg amqp.Delivery, cfg *config.Config, email notifier.EmailSender) {
	defer func() {
		if r := recover(); r != nil {
			log.Printf("Recovered from panic in notification processing: %v", r)
		}
	}()

	var event models.NotificationEvent
	if err := json.Unmarshal(msg.Body, &event); err != nil {
		log.Printf("Invalid notification payload: %s", msg.Body)
		if err := msg.Nack(false, false); err != nil {
			return
		}
		return
	}

	subject, body := renderNotification(event)
	if subject != "" {
		if err := email.SendEmail(cfg.AdminEmail, subject, body); err != nil {
			log.Printf("Failed to deliver notification %s for entity %d: %v", event.Type, event.EntityID, err)
		}
	}

	if err := msg.Ack(false); err != nil {
		return
	}
}

func renderNotification(event models.NotificationEvent) (subject, body string) {
	switch event.Type {
	case "redemption_created":
		return fmt.Sprintf("New loyalty redemption #%d awaiting review", event.EntityID),
			fmt.Sprintf("Optician %d submitted a redemption for %s points.", event.OpticianID, event.Detail)
	case "redemption_approved":
		return fmt.Sprintf("Loyalty redemption #%d approved", event.EntityID), event.Detail
	case "redemption_rejected":
		return fmt.Sprintf("Loyalty redemption #%d rejected", event.EntityID), event.Detail
	case "order_created":
		return fmt.Sprintf("New order #%d awaiting review", event.EntityID),
			fmt.Sprintf("Optician %d submitted an order. %s", event.OpticianID, event.Detail)
	case "optician_registered":
		return fmt.Sprintf("New optician account #%d awaiting approval", event.EntityID), event.Detail
	default:
		log.Printf("Unknown notification type: %s", event.Type)
		return "", ""
	}
}
