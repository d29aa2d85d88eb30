package kafka

import (
	"context"
	"time"

	"github.com/segmentio/kafka-go"
	"github.com/sirupsen/logrus"
)

type Producer struct {
	w       *kafka.Writer
	log     *logrus.Logger
	inbox   chan kafka.Message
	closeCh chan struct{}
}

// NewProducer membuat writer tanpa topic tetap; topic ditentukan per message
// karena API shop publish ke beberapa topic lifecycle order.
func NewProducer(brokers []string, log *logrus.Logger, buf int) *Producer {
	return &Producer{
		w: &kafka.Writer{
			Addr:         kafka.TCP(brokers...),
			Balancer:     &kafka.Hash{},
			RequiredAcks: kafka.RequireAll,
			Async:        true,
		},
		log:     log,
		inbox:   make(chan kafka.Message, buf),
		closeCh: make(chan struct{}),
	}
}

func (p *Producer) Start(ctx context.Context) {
	go func() {
		for {
			select {
			case <-ctx.Done():
				close(p.inbox)
				for m := range p.inbox {
					p.write(m)
				}
				_ = p.w.Close()
				close(p.closeCh)
				return
			case m, ok := <-p.inbox:
				if !ok {
					_ = p.w.Close()
					close(p.closeCh)
					return
				}
				p.write(m)
			}
		}
	}()
}

func (p *Producer) write(m kafka.Message) {
	if err := p.w.WriteMessages(context.Background(), m); err != nil {
		p.log.WithError(err).WithField("topic", m.Topic).Warn("kafka publish failed")
	}
}

func (p *Producer) Publish(topic string, key, value []byte, headers ...kafka.Header) {
	p.inbox <- kafka.Message{
		Topic:   topic,
		Key:     key,
		Value:   value,
		Time:    time.Now(),
		Headers: headers,
	}
}

// Tutup inbox supaya goroutine flush sisa pesan lalu exit rapi.
func (p *Producer) Close()      { close(p.inbox) }
func (p *Producer) WaitClosed() { <-p.closeCh }
