// Command notifier consumes plan_notification_queue and emails each
// notification, adapting cmd/mail's RabbitMQ-consumer-plus-SMTP-client
// pattern to this domain's two notification types.
package main

import (
	"context"
	"encoding/json"
	"html/template"
	"log/slog"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/wneessen/go-mail"

	"github.com/wfplan-dev/wfplan-core/internal/config"
	"github.com/wfplan-dev/wfplan-core/internal/domain"
	"github.com/wfplan-dev/wfplan-core/internal/notify"
)

const queueName = "plan_notification_queue"

func main() {
	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	cfg, err := config.LoadConfig()
	if err != nil {
		logger.Error("failed to load configuration", "error", err)
		return
	}

	client, err := mail.NewClient(cfg.Email.SMTP.Host,
		mail.WithSMTPAuth(mail.SMTPAuthPlain),
		mail.WithSSL(),
		mail.WithPort(cfg.Email.SMTP.Port),
		mail.WithUsername(cfg.Email.SMTP.Username),
		mail.WithPassword(cfg.Email.SMTP.Password),
	)
	if err != nil {
		logger.Error("failed to create mail client", "error", err)
		return
	}
	defer client.Close()

	dialCtx, cancel := context.WithTimeout(context.Background(), time.Duration(cfg.Email.SMTP.DialTimeout)*time.Second)
	defer cancel()
	if err := client.DialWithContext(dialCtx); err != nil {
		logger.Error("failed to connect to mail server", "error", err)
		return
	}

	templates, err := loadTemplates()
	if err != nil {
		logger.Error("failed to load notification templates", "error", err)
		return
	}
	mailer := notify.NewMailer(client, cfg.Email.SMTP.Username, templates)

	conn, err := amqp.Dial(cfg.RabbitMQ.DSN)
	if err != nil {
		logger.Error("failed to connect to rabbitmq", "error", err)
		return
	}
	defer conn.Close()

	ch, err := conn.Channel()
	if err != nil {
		logger.Error("failed to open channel", "error", err)
		return
	}
	defer ch.Close()

	q, err := ch.QueueDeclare(queueName, true, false, false, false, nil)
	if err != nil {
		logger.Error("failed to declare queue", "error", err)
		return
	}

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	msgs, err := ch.Consume(q.Name, "", false, false, false, false, nil)
	if err != nil {
		logger.Error("failed to start consuming", "error", err)
		os.Exit(1)
	}

	ctx, cancelConsume := context.WithCancel(context.Background())
	wg := sync.WaitGroup{}

	wg.Add(1)
	go func() {
		defer wg.Done()
		for {
			select {
			case <-ctx.Done():
				return
			case msg, ok := <-msgs:
				if !ok {
					return
				}
				handleDelivery(logger, mailer, msg)
			}
		}
	}()

	logger.Info("waiting for notifications (ctrl+c to exit)")
	<-sigChan

	logger.Info("shutting down notifier")
	cancelConsume()
	wg.Wait()
	logger.Info("notifier shut down cleanly")
}

func handleDelivery(logger *slog.Logger, mailer *notify.Mailer, msg amqp.Delivery) {
	var n domain.Notification
	if err := json.Unmarshal(msg.Body, &n); err != nil {
		logger.Error("failed to decode notification", "error", err)
		_ = msg.Nack(false, false)
		return
	}

	if err := mailer.Send(n); err != nil {
		logger.Error("failed to send notification", "type", n.Type, "to", n.To, "error", err)
		_ = msg.Nack(false, true)
		return
	}

	_ = msg.Ack(false)
}

func loadTemplates() (map[string]*template.Template, error) {
	completed, err := template.ParseFiles("./templates/plan_completed_email.html")
	if err != nil {
		return nil, err
	}
	failed, err := template.ParseFiles("./templates/plan_failed_email.html")
	if err != nil {
		return nil, err
	}
	return map[string]*template.Template{
		domain.NotificationPlanCompleted: completed,
		domain.NotificationPlanFailed:    failed,
	}, nil
}
