// Package kafka publica las violaciones de cumplimiento para consumidores externos (alertas, BI).
package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/segmentio/kafka-go"

	"github.com/jhoicas/Catalogo-api/internal/application/compliance"
	"github.com/jhoicas/Catalogo-api/internal/domain/entity"
)

var _ compliance.ViolationPublisher = (*ViolationPublisher)(nil)

// MessageWriter subconjunto de *kafka.Writer usado por el publicador.
type MessageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// ViolationEvent cuerpo JSON del mensaje.
type ViolationEvent struct {
	ID             string    `json:"id"`
	OccurredAt     time.Time `json:"occurred_at"`
	Classification string    `json:"classification"`
	Severity       string    `json:"severity"`
	BusinessID     string    `json:"business_id"`
	ProductID      string    `json:"product_id"`
	Blocked        bool      `json:"blocked"`
	Reason         string    `json:"reason"`
}

// ViolationPublisher escribe una violación por mensaje, con clave = negocio para conservar
// el orden por negocio dentro de la partición.
type ViolationPublisher struct {
	writer MessageWriter
	topic  string
}

// NewWriter crea el writer de kafka-go hacia brokers. El tópico viaja en cada mensaje.
func NewWriter(brokers []string) *kafka.Writer {
	return &kafka.Writer{
		Addr:                   kafka.TCP(brokers...),
		Balancer:               &kafka.Hash{},
		AllowAutoTopicCreation: true,
		RequiredAcks:           kafka.RequireAll,
		MaxAttempts:            5,
		WriteBackoffMin:        100 * time.Millisecond,
		WriteBackoffMax:        time.Second,
	}
}

// NewViolationPublisher construye el publicador sobre topic.
func NewViolationPublisher(w MessageWriter, topic string) *ViolationPublisher {
	return &ViolationPublisher{writer: w, topic: topic}
}

func (p *ViolationPublisher) PublishViolation(ctx context.Context, v *entity.ComplianceViolation) error {
	data, err := json.Marshal(ViolationEvent{
		ID:             v.ID,
		OccurredAt:     v.Timestamp,
		Classification: string(v.Classification),
		Severity:       string(v.Severity),
		BusinessID:     v.BusinessID,
		ProductID:      v.ProductID,
		Blocked:        v.Blocked,
		Reason:         v.Reason,
	})
	if err != nil {
		return fmt.Errorf("marshal violation: %w", err)
	}
	msg := kafka.Message{
		Topic: p.topic,
		Key:   []byte(v.BusinessID),
		Value: data,
		Headers: []kafka.Header{
			{Key: "classification", Value: []byte(v.Classification)},
			{Key: "severity", Value: []byte(v.Severity)},
		},
	}
	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		return fmt.Errorf("kafka write violation %s: %w", v.ID, err)
	}
	return nil
}

// Close libera el writer.
func (p *ViolationPublisher) Close() error { return p.writer.Close() }
