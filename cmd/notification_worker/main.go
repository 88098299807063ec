package main

import (
	"context"
	"encoding/json"
	"errors"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/qms-core/config"
	"github.com/oksasatya/qms-core/pkg/helpers"
	"github.com/oksasatya/qms-core/pkg/mailer"
	mailtpl "github.com/oksasatya/qms-core/pkg/mailer/templates"
)

type sender interface {
	Send(ctx context.Context, to, subject, text, html string) error
}

type outcome int

const (
	ack outcome = iota
	drop
	requeue
)

var errEmptyJob = errors.New("job has neither template nor subject with body")

func main() {
	_ = godotenv.Load()
	cfg := config.Load()
	logger := helpers.NewLogger(cfg.AppName+"-notifier", cfg.Env)

	if !cfg.NotifySendEnabled {
		logger.Info("NOTIFY_SEND_ENABLED=false; notification worker disabled")
		return
	}
	if cfg.RabbitMQURL == "" || cfg.RabbitMQNotifyQueue == "" {
		logger.Fatal("RabbitMQ not configured")
	}
	if cfg.MailgunDomain == "" || cfg.MailgunAPIKey == "" || cfg.MailgunSender == "" {
		logger.Fatal("Mailgun not configured")
	}

	conn, err := amqp.Dial(cfg.RabbitMQURL)
	if err != nil {
		logger.WithError(err).Fatal("amqp dial")
	}
	defer func() { _ = conn.Close() }()

	ch, err := conn.Channel()
	if err != nil {
		logger.WithError(err).Fatal("amqp channel")
	}
	defer func() { _ = ch.Close() }()

	// prefetch for fair dispatch across workers
	if err := ch.Qos(16, 0, false); err != nil {
		logger.WithError(err).Fatal("qos")
	}
	if err := helpers.DeclareQueue(ch, cfg.RabbitMQNotifyQueue); err != nil {
		logger.WithError(err).Fatal("queue declare")
	}
	msgs, err := ch.Consume(cfg.RabbitMQNotifyQueue, "", false, false, false, false, nil)
	if err != nil {
		logger.WithError(err).Fatal("consume")
	}

	mg := mailer.NewMailgun(cfg.MailgunDomain, cfg.MailgunAPIKey, cfg.MailgunSender)
	loc := cfg.NotifyLocation()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	done := make(chan struct{})

	go func() {
		defer close(done)
		for msg := range msgs {
			switch handle(ctx, msg.Body, mg, loc, logger) {
			case ack:
				_ = msg.Ack(false)
			case drop:
				_ = msg.Nack(false, false)
			case requeue:
				_ = msg.Nack(false, true)
			}
		}
	}()

	logger.WithField("queue", cfg.RabbitMQNotifyQueue).Info("notification worker listening")
	<-ctx.Done()
	logger.Info("shutting down")
	_ = ch.Close()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
	}
}

// handle renders and sends one queued job. Undecodable or unrenderable jobs are dropped;
// send failures are requeued.
func handle(ctx context.Context, body []byte, s sender, loc *time.Location, logger *logrus.Logger) outcome {
	var job mailer.NotificationJob
	if err := json.Unmarshal(body, &job); err != nil {
		logger.WithError(err).Warn("bad message")
		return drop
	}
	log := logger.WithFields(logrus.Fields{"to": job.To, "template": job.Template})
	if job.To == "" {
		log.Warn("message without recipient")
		return drop
	}

	subject, text, html, err := render(&job, loc)
	if err != nil {
		log.WithError(err).Warn("render failed")
		return drop
	}

	c, cancel := context.WithTimeout(ctx, 15*time.Second)
	defer cancel()
	if err := s.Send(c, job.To, subject, text, html); err != nil {
		log.WithError(err).Error("send failed")
		return requeue
	}
	log.Info("notification sent")
	return ack
}

func render(job *mailer.NotificationJob, loc *time.Location) (subject, text, html string, err error) {
	helpers.EnsureRecipient(job)
	helpers.LocalizeTimes(job.Data, loc)

	if job.Template != "" {
		return mailtpl.Render(job.Template, job.Data)
	}
	if job.Text == "" && job.HTML == "" {
		return "", "", "", errEmptyJob
	}
	subject = job.Subject
	if subject == "" {
		subject = helpers.FallbackSubject(job.Data)
	}
	return subject, job.Text, job.HTML, nil
}
