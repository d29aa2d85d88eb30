package kafka

import "github.com/segmentio/kafka-go"

// Publisher mengadaptasi Producer ke interface event domain (topic +
// event type per publish, header konsisten dengan envelope).
type Publisher struct{ P *Producer }

func (p *Publisher) Publish(topic, eventType string, key, value []byte) {
	p.P.Publish(topic, key, value,
		kafka.Header{Key: "x-event-type", Value: []byte(eventType)},
		kafka.Header{Key: "x-event-version", Value: []byte("1")},
	)
}
