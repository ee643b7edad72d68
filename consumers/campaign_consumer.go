package consumers

import (
	"encoding/json"
	"log"

	amqp "github.com/rabbitmq/amqp091-go"

	"optimarket/config"
	"optimarket/models"
	"optimarket/notifier"
)

// StartCampaignConsumer drains the campaign queue, one delivery per
// message. A failed send is nacked without requeue so it lands in the
// dead-letter queue instead of blocking the broadcast.
func StartCampaignConsumer(ch *amqp.Channel, cfg *config.Config, email notifier.EmailSender, whatsapp notifier.WhatsAppSender) {
	msgs, err := ch.Consume(
		cfg.CampaignQueue,
		"optimarket-campaigns", // consumer tag
		false,                  // auto-ack
		false,                  // exclusive
		false,                  // no-local
		false,                  // no-wait
		nil,
	)
	if err != nil {
		log.Fatalf("Failed to register campaign consumer: %v", err)
	}

	go func() {
		for msg := range msgs {
			processCampaignMessage(msg, email, whatsapp)
		}
	}()
}

func processCampaignMessage(msg amqp.Delivery, email notifier.EmailSender, whatsapp notifier.WhatsAppSender) {
	defer func() {
		if r := recover(); r != nil {
			log.Printf("Recovered from panic in campaign processing: %v", r)
		}
	}()

	var cm models.CampaignMessage
	if err := json.Unmarshal(msg.Body, &cm); err != nil {
		log.Printf("Invalid campaign payload: %s", msg.Body)
		if err := msg.Nack(false, false); err != nil {
			return
		}
		return
	}

	var delivered bool
	if (cm.Channel == models.ChannelEmail || cm.Channel == models.ChannelBoth) && cm.Email != "" {
		if err := email.SendEmail(cm.Email, cm.Subject, cm.Body); err != nil {
			log.Printf("Campaign %d: email to %s failed: %v", cm.CampaignID, cm.Email, err)
		} else {
			delivered = true
		}
	}
	if (cm.Channel == models.ChannelWhatsApp || cm.Channel == models.ChannelBoth) && cm.Phone != "" {
		if err := whatsapp.SendWhatsApp(cm.Phone, cm.Body); err != nil {
			log.Printf("Campaign %d: whatsapp to %s failed: %v", cm.CampaignID, cm.Phone, err)
		} else {
			delivered = true
		}
	}

	if !delivered {
		if err := msg.Nack(false, false); err != nil {
			return
		}
		return
	}
	if err := msg.Ack(false); err != nil {
		return
	}
}
