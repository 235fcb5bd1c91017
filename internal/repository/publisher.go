package repository

import (
	"context"
	"errors"

	"PredBoard/internal/domain/models"
	domrepo "PredBoard/internal/domain/repository"
)

// Producer is the subset of pkg/kafka.Producer the publisher needs.
type Producer interface {
	Publish(ctx context.Context, topic string, key []byte, value interface{}) error
	Close() error
}

// KafkaPublisher writes refresh events to a topic keyed by view name.
type KafkaPublisher struct {
	producer Producer
	topic    string
}

// NewKafkaPublisher creates Kafka publisher.
func NewKafkaPublisher(producer Producer, topic string) *KafkaPublisher {
	return &KafkaPublisher{producer: producer, topic: topic}
}

func (p *KafkaPublisher) PublishRefresh(ctx context.Context, ev models.RefreshEvent) error {
	return p.producer.Publish(ctx, p.topic, []byte(ev.View), ev)
}

func (p *KafkaPublisher) Close() error {
	if p.producer != nil {
		return p.producer.Close()
	}
	return nil
}

// MultiPublisher delivers each event to every publisher and joins the errors.
type MultiPublisher struct {
	pubs []domrepo.EventPublisher
}

// NewMultiPublisher skips nil entries.
func NewMultiPublisher(pubs ...domrepo.EventPublisher) *MultiPublisher {
	m := &MultiPublisher{}
	for _, p := range pubs {
		if p != nil {
			m.pubs = append(m.pubs, p)
		}
	}
	return m
}

func (m *MultiPublisher) PublishRefresh(ctx context.Context, ev models.RefreshEvent) error {
	var errs []error
	for _, p := range m.pubs {
		if err := p.PublishRefresh(ctx, ev); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (m *MultiPublisher) Close() error {
	var errs []error
	for _, p := range m.pubs {
		if err := p.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Len reports how many sinks are attached.
func (m *MultiPublisher) Len() int { return len(m.pubs) }
