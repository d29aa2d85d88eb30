package kafka

import (
	"context"
	"time"

	"github.com/segmentio/kafka-go"
	"github.com/sirupsen/logrus"
)

// Handler harus return nil hanya jika proses sukses & boleh commit offset.
type Handler func(ctx context.Context, m kafka.Message) error

type Consumer struct {
	r       *kafka.Reader
	log     *logrus.Logger
	workers int
}

func NewConsumer(brokers []string, group string, topics []string, log *logrus.Logger, workers int) *Consumer {
	r := kafka.NewReader(kafka.ReaderConfig{
		Brokers:        brokers,
		GroupID:        group,
		GroupTopics:    topics,
		MinBytes:       1,
		MaxBytes:       10e6,
		CommitInterval: 0, // manual commit
	})
	if workers <= 0 {
		workers = 1
	}
	return &Consumer{r: r, log: log, workers: workers}
}

func (c *Consumer) Start(ctx context.Context, h Handler) error {
	defer c.r.Close()

	jobs := make(chan kafka.Message, 1024)
	errs := make(chan error, c.workers)

	for i := 0; i < c.workers; i++ {
		go func() {
			for m := range jobs {
				if err := h(ctx, m); err != nil {
					errs <- err
					continue
				}
				if err := c.r.CommitMessages(ctx, m); err != nil {
					errs <- err
				}
			}
		}()
	}

	for {
		// FetchMessage, bukan ReadMessage: offset di-commit worker setelah
		// handler sukses.
		m, err := c.r.FetchMessage(ctx)
		if err != nil {
			close(jobs)
			select {
			case <-ctx.Done():
				return nil
			default:
				return err
			}
		}
		select {
		case jobs <- m:
		case <-ctx.Done():
			close(jobs)
			return nil
		}

		// drain error non-blocking biar dispatcher tidak deadlock
		select {
		case e := <-errs:
			c.log.WithError(e).Warn("consumer worker error")
			time.Sleep(200 * time.Millisecond)
		default:
		}
	}
}
