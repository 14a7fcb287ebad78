package kafka

import (
	"encoding/json"
	"fmt"
	"time"

	"rozes-gallery/internal/config"
	"rozes-gallery/internal/logger"
	"rozes-gallery/internal/models"

	"github.com/IBM/sarama"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Producer публикует доменные события магазина в Kafka
type Producer struct {
	producer sarama.SyncProducer
	log      *logger.Logger
	topics   *config.Topics
}

// NewProducer создает синхронный продюсер Kafka
func NewProducer(cfg *config.KafkaConfig, log *logger.Logger) (*Producer, error) {
	saramaConfig := sarama.NewConfig()
	saramaConfig.Producer.RequiredAcks = sarama.WaitForAll
	saramaConfig.Producer.Retry.Max = 3
	saramaConfig.Producer.Return.Successes = true

	producer, err := sarama.NewSyncProducer(cfg.Brokers, saramaConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create Kafka producer: %w", err)
	}

	log.Info("Successfully connected to Kafka")

	return &Producer{
		producer: producer,
		log:      log,
		topics:   &cfg.Topics,
	}, nil
}

// Close закрывает продюсер
func (p *Producer) Close() error {
	if p == nil || p.producer == nil {
		return nil
	}
	return p.producer.Close()
}

// publishEvent сериализует событие и отправляет его в указанный топик
func (p *Producer) publishEvent(topic string, event models.Event) error {
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now()
	}

	data, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}

	msg := &sarama.ProducerMessage{
		Topic: topic,
		Key:   sarama.StringEncoder(event.ID.String()),
		Value: sarama.ByteEncoder(data),
	}

	partition, offset, err := p.producer.SendMessage(msg)
	if err != nil {
		return fmt.Errorf("failed to send message to topic %s: %w", topic, err)
	}

	p.log.WithFields(map[string]interface{}{
		"topic":     topic,
		"partition": partition,
		"offset":    offset,
		"type":      event.Type,
	}).Debug("Event published to Kafka")

	return nil
}

// PublishOrderCreated публикует событие создания заказа
func (p *Producer) PublishOrderCreated(order *models.Order) error {
	event := models.Event{
		ID:   uuid.New(),
		Type: models.EventTypeOrderCreated,
		Data: map[string]interface{}{
			"order_id":      order.ID.String(),
			"customer_name": order.CustomerName,
			"total":         order.Total.String(),
			"item_count":    len(order.Items),
		},
	}
	if order.CouponCode != nil {
		event.Data["coupon_code"] = *order.CouponCode
	}
	return p.publishEvent(p.topics.Orders, event)
}

// PublishOrderStatusChanged публикует событие смены статуса заказа
func (p *Producer) PublishOrderStatusChanged(orderID uuid.UUID, oldStatus, newStatus models.OrderStatus) error {
	event := models.Event{
		ID:   uuid.New(),
		Type: models.EventTypeOrderStatusChanged,
		Data: map[string]interface{}{
			"order_id":   orderID.String(),
			"old_status": string(oldStatus),
			"new_status": string(newStatus),
		},
	}
	return p.publishEvent(p.topics.Orders, event)
}

// PublishCouponRedeemed публикует событие списания купона
func (p *Producer) PublishCouponRedeemed(code string, orderID uuid.UUID, discount decimal.Decimal) error {
	event := models.Event{
		ID:   uuid.New(),
		Type: models.EventTypeCouponRedeemed,
		Data: map[string]interface{}{
			"code":     code,
			"order_id": orderID.String(),
			"discount": discount.String(),
		},
	}
	return p.publishEvent(p.topics.Coupons, event)
}

// PublishOfferApplied публикует событие применения акции к корзине
func (p *Producer) PublishOfferApplied(offerID uuid.UUID, sessionID string, itemCount int) error {
	event := models.Event{
		ID:   uuid.New(),
		Type: models.EventTypeOfferApplied,
		Data: map[string]interface{}{
			"offer_id":   offerID.String(),
			"session_id": sessionID,
			"item_count": itemCount,
		},
	}
	return p.publishEvent(p.topics.Offers, event)
}
