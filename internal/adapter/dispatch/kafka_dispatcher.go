package dispatch

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/confluentinc/confluent-kafka-go/v2/kafka"
	"github.com/sirupsen/logrus"

	"github.com/practika/practika/internal/domain"
	"github.com/practika/practika/internal/ports"
)

// RoutingTable maps workflow types to execution topics. Unmapped types
// route to the default topic instead of failing the trigger; the
// fallback is logged so registry drift stays visible.
type RoutingTable struct {
	topics       map[domain.WorkflowType]string
	defaultTopic string
}

// NewRoutingTable builds a routing table from configuration
func NewRoutingTable(topics map[string]string, defaultTopic string) RoutingTable {
	mapped := make(map[domain.WorkflowType]string, len(topics))
	for workflowType, topic := range topics {
		mapped[domain.WorkflowType(workflowType)] = topic
	}
	return RoutingTable{topics: mapped, defaultTopic: defaultTopic}
}

// Resolve returns the topic for a workflow type and whether the default
// fallback was used
func (t RoutingTable) Resolve(workflowType domain.WorkflowType) (topic string, fallback bool) {
	if topic, ok := t.topics[workflowType]; ok {
		return topic, false
	}
	return t.defaultTopic, true
}

// KafkaDispatcher publishes dispatch payloads to Kafka execution topics
type KafkaDispatcher struct {
	producer        *kafka.Producer
	routing         RoutingTable
	deliveryTimeout time.Duration
	log             *logrus.Logger
}

// NewKafkaDispatcher creates a dispatcher backed by a Kafka producer
func NewKafkaDispatcher(bootstrapServers string, routing RoutingTable, deliveryTimeout time.Duration, log *logrus.Logger) (*KafkaDispatcher, error) {
	producer, err := kafka.NewProducer(&kafka.ConfigMap{"bootstrap.servers": bootstrapServers})
	if err != nil {
		return nil, fmt.Errorf("failed to create kafka producer: %w", err)
	}

	log.WithField("bootstrap_servers", bootstrapServers).Info("dispatch producer created")

	return &KafkaDispatcher{
		producer:        producer,
		routing:         routing,
		deliveryTimeout: deliveryTimeout,
		log:             log,
	}, nil
}

// Dispatch publishes the payload to the topic for the workflow type and
// waits for the broker's delivery report before acknowledging
func (d *KafkaDispatcher) Dispatch(ctx context.Context, workflowType domain.WorkflowType, payload ports.DispatchPayload) (*ports.DispatchAck, error) {
	topic, fallback := d.routing.Resolve(workflowType)
	if fallback {
		d.log.WithFields(logrus.Fields{
			"workflow_type": workflowType,
			"topic":         topic,
		}).Warn("no topic mapped for workflow type, using default")
	}

	value, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal dispatch payload: %w", err)
	}

	// not closed: on timeout or cancellation the late delivery report
	// still lands in the buffer and the channel is collected with it
	deliveryChan := make(chan kafka.Event, 1)

	err = d.producer.Produce(&kafka.Message{
		TopicPartition: kafka.TopicPartition{Topic: &topic, Partition: kafka.PartitionAny},
		Key:            []byte(payload.RunID),
		Value:          value,
	}, deliveryChan)
	if err != nil {
		return nil, fmt.Errorf("failed to produce dispatch message: %w", err)
	}

	select {
	case e := <-deliveryChan:
		msg, ok := e.(*kafka.Message)
		if !ok {
			return nil, fmt.Errorf("unexpected delivery event type: %T", e)
		}
		if msg.TopicPartition.Error != nil {
			return nil, fmt.Errorf("delivery failed: %w", msg.TopicPartition.Error)
		}
		return &ports.DispatchAck{Topic: topic}, nil
	case <-time.After(d.deliveryTimeout):
		return nil, fmt.Errorf("delivery timeout after %s", d.deliveryTimeout)
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// Close flushes outstanding messages and shuts the producer down
func (d *KafkaDispatcher) Close() {
	d.log.Info("closing dispatch producer")
	d.producer.Flush(15 * 1000)
	d.producer.Close()
}
