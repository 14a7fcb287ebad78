package models

import (
	"time"

	"github.com/google/uuid"
)

// EventType представляет тип доменного события
type EventType string

const (
	EventTypeOrderCreated       EventType = "order.created"
	EventTypeOrderStatusChanged EventType = "order.status_changed"
	EventTypeCouponRedeemed     EventType = "coupon.redeemed"
	EventTypeOfferApplied       EventType = "offer.applied"
)

// Event представляет доменное событие, публикуемое в Kafka
type Event struct {
	ID        uuid.UUID              `json:"id"`
	Type      EventType              `json:"type"`
	Timestamp time.Time              `json:"timestamp"`
	Data      map[string]interface{} `json:"data,omitempty"`
}
