package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	kafkago "github.com/segmentio/kafka-go"
	"github.com/sirupsen/logrus"

	"github.com/paskalshop/paskal-shop/internal/config"
	kafkax "github.com/paskalshop/paskal-shop/internal/kafka"
	"github.com/paskalshop/paskal-shop/internal/mail"
	"github.com/paskalshop/paskal-shop/internal/shop"
)

// notifier: consume event lifecycle order lalu kirim email ke pelanggan.
// Email gagal tetap di-commit; retry pengiriman bukan tanggung jawab
// pipeline order.
func main() {
	_ = godotenv.Load()

	log := logrus.New()
	log.SetFormatter(&logrus.JSONFormatter{})

	cfg, err := config.Load()
	if err != nil {
		log.WithError(err).Fatal("load config")
	}
	if lvl, err := logrus.ParseLevel(cfg.LogLevel); err == nil {
		log.SetLevel(lvl)
	}

	mailer := mail.New(log, cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUser, cfg.SMTPPass, cfg.MailFrom)

	topics := []string{
		shop.TopicOrderCreated,
		shop.TopicPaymentConfirmed,
		shop.TopicPaymentRejected,
	}
	consumer := kafkax.NewConsumer(cfg.KafkaBrokers, "shop-notifier", topics, log, 4)

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		sig := make(chan os.Signal, 1)
		signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
		<-sig
		log.Info("shutting down...")
		cancel()
	}()

	handler := func(ctx context.Context, m kafkago.Message) error {
		var ev shop.Envelope
		if err := kafkax.UnmarshalEnvelope(m.Value, &ev); err != nil {
			log.WithError(err).WithField("topic", m.Topic).Warn("bad envelope, skipping")
			return nil
		}

		entry := log.WithFields(logrus.Fields{"event": ev.EventType, "order_id": ev.CorrelationID})

		switch ev.EventType {
		case shop.EventOrderCreated:
			p, err := kafkax.UnwrapPayload[shop.OrderCreatedPayload](ev.Payload)
			if err != nil {
				entry.WithError(err).Warn("bad payload, skipping")
				return nil
			}
			if err := mailer.SendOrderCreated(p); err != nil {
				entry.WithError(err).Warn("send order email failed")
			}
		case shop.EventPaymentConfirmed:
			p, err := kafkax.UnwrapPayload[shop.PaymentReviewedPayload](ev.Payload)
			if err != nil {
				entry.WithError(err).Warn("bad payload, skipping")
				return nil
			}
			if err := mailer.SendPaymentConfirmed(p); err != nil {
				entry.WithError(err).Warn("send confirmation email failed")
			}
		case shop.EventPaymentRejected:
			p, err := kafkax.UnwrapPayload[shop.PaymentReviewedPayload](ev.Payload)
			if err != nil {
				entry.WithError(err).Warn("bad payload, skipping")
				return nil
			}
			if err := mailer.SendPaymentRejected(p); err != nil {
				entry.WithError(err).Warn("send rejection email failed")
			}
		default:
			entry.Debug("ignoring event")
		}
		return nil
	}

	if err := consumer.Start(ctx, handler); err != nil {
		log.WithError(err).Fatal("consumer stopped")
	}
}
