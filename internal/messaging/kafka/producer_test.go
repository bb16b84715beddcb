package kafka

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/IBM/sarama"
	"github.com/IBM/sarama/mocks"
	log "github.com/sirupsen/logrus"
)

func TestProducer_PublishOrderEvent(t *testing.T) {
	mockProducer := mocks.NewSyncProducer(t, nil)

	producer := &Producer{
		producer: mockProducer,
		logger:   log.WithField("component", "kafka-producer-test"),
	}

	mockProducer.ExpectSendMessageWithCheckerFunctionAndSucceed(func(value []byte) error {
		var event OrderEvent
		if err := json.Unmarshal(value, &event); err != nil {
			return err
		}
		if event.EventType != EventTypeOrderCreated {
			t.Errorf("unexpected event type: %s", event.EventType)
		}
		if event.OrderID != "ORD-12345" {
			t.Errorf("unexpected order id: %s", event.OrderID)
		}
		return nil
	})

	event := NewOrderEvent(
		EventTypeOrderCreated,
		"ORD-12345",
		"user-1",
		"pending",
		map[string]interface{}{
			"total_minor": 15900,
		},
	)

	if err := producer.PublishOrderEvent(TopicOrderEvents, event); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	if err := mockProducer.Close(); err != nil {
		t.Fatal(err)
	}
}

func TestProducer_PublishOrderEvent_Invalid(t *testing.T) {
	producer := &Producer{
		producer: mocks.NewSyncProducer(t, nil),
		logger:   log.WithField("component", "kafka-producer-test"),
	}

	if err := producer.PublishOrderEvent(TopicOrderEvents, nil); err == nil {
		t.Fatal("expected error for nil event")
	}

	event := NewOrderEvent(EventTypeOrderCreated, "", "user-1", "pending", nil)
	if err := producer.PublishOrderEvent(TopicOrderEvents, event); err == nil {
		t.Fatal("expected error for empty order id")
	}
}

func TestProducer_Publish_Error(t *testing.T) {
	mockProducer := mocks.NewSyncProducer(t, nil)

	producer := &Producer{
		producer: mockProducer,
		logger:   log.WithField("component", "kafka-producer-test"),
	}

	mockProducer.ExpectSendMessageAndFail(sarama.ErrOutOfBrokers)

	err := producer.Publish(TopicOrderEvents, "ORD-12345", string(EventTypeOrderCreated), []byte(`{}`))
	if err == nil {
		t.Fatal("expected error, got nil")
	}

	if err := mockProducer.Close(); err != nil {
		t.Fatal(err)
	}
}

func TestNewOrderEvent(t *testing.T) {
	orderID := "ORD-12345"
	userID := "user-1"
	status := "shipped"
	metadata := map[string]interface{}{
		"location": "Mumbai hub",
	}

	event := NewOrderEvent(EventTypeOrderStatusChanged, orderID, userID, status, metadata)

	if event.EventType != EventTypeOrderStatusChanged {
		t.Errorf("expected event type %s, got %s", EventTypeOrderStatusChanged, event.EventType)
	}

	if event.OrderID != orderID {
		t.Errorf("expected order id %s, got %s", orderID, event.OrderID)
	}

	if event.UserID != userID {
		t.Errorf("expected user id %s, got %s", userID, event.UserID)
	}

	if event.Status != status {
		t.Errorf("expected status %s, got %s", status, event.Status)
	}

	if event.Metadata["location"] != "Mumbai hub" {
		t.Error("metadata not set correctly")
	}

	// Проверяем, что timestamp установлен
	if event.Timestamp.IsZero() {
		t.Error("timestamp should not be zero")
	}

	if time.Since(event.Timestamp) > time.Second {
		t.Error("timestamp should be close to current time")
	}
}
