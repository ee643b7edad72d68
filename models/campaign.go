package models

import "time"

type CampaignChannel string

const (
	ChannelEmail    CampaignChannel = "EMAIL"
	ChannelWhatsApp CampaignChannel = "WHATSAPP"
	ChannelBoth     CampaignChannel = "BOTH"
)

type Campaign struct {
	ID             int64           `json:"id"`
	Subject        string          `json:"subject"`
	Body           string          `json:"body"`
	Channel        CampaignChannel `json:"channel"`
	CreatedBy      int64           `json:"created_by"`
	RecipientCount int             `json:"recipient_count"`
	CreatedAt      time.Time       `json:"created_at"`
}

type CreateCampaignRequest struct {
	Subject string `json:"subject" binding:"required"`
	Body    string `json:"body" binding:"required"`
	Channel string `json:"channel" binding:"required,oneof=EMAIL WHATSAPP BOTH"`
}

// CampaignMessage is one queued delivery to a single recipient.
type CampaignMessage struct {
	MessageID  string          `json:"message_id"`
	CampaignID int64           `json:"campaign_id"`
	Channel    CampaignChannel `json:"channel"`
	Email      string          `json:"email,omitempty"`
	Phone      string          `json:"phone,omitempty"`
	Subject    string          `json:"subject"`
	Body       string          `json:"body"`
}

// NotificationEvent is published after a state transition commits.
// Delivery is best effort and never rolls the transition back.
type NotificationEvent struct {
	Type       string    `json:"type"`
	EntityID   int64     `json:"entity_id"`
	OpticianID int64     `json:"optician_id,omitempty"`
	Detail     string    `json:"detail,omitempty"`
	Occurred   time.Time `json:"occurred"`
}
