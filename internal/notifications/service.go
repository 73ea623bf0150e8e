package notifications

import (
	"context"
	"fmt"

	"go.uber.org/multierr"

	"github.com/mmfactory/pizzeria-backend/pkg/config"
	"github.com/mmfactory/pizzeria-backend/pkg/db/models"
	"github.com/mmfactory/pizzeria-backend/pkg/enums"
	"github.com/mmfactory/pizzeria-backend/pkg/logger"
	"github.com/mmfactory/pizzeria-backend/pkg/mailer"
	"github.com/mmfactory/pizzeria-backend/pkg/metrics"
)

// Service renders and delivers the transactional order emails. Dispatch is
// fire-and-forget: delivery failures are logged and counted, never surfaced
// to the caller, so a mail outage cannot fail an order write.
type Service struct {
	sender  mailer.Sender
	cfg     config.MailerConfig
	metrics *metrics.OrderMetrics
	logger  *logger.Logger
}

// ServiceParams holds the dependencies for NewService.
type ServiceParams struct {
	Sender  mailer.Sender
	Mailer  config.MailerConfig
	Metrics *metrics.OrderMetrics
	Logger  *logger.Logger
}

func NewService(params ServiceParams) (*Service, error) {
	if params.Sender == nil {
		return nil, fmt.Errorf("notifications service requires a mail sender")
	}
	if params.Logger == nil {
		return nil, fmt.Errorf("notifications service requires a logger")
	}

	return &Service{
		sender:  params.Sender,
		cfg:     params.Mailer,
		metrics: params.Metrics,
		logger:  params.Logger,
	}, nil
}

// Dispatch sends the email for one order event. Customer-facing kinds are
// skipped silently when the order carries no email address; the admin alert
// is skipped when no admin address is configured.
func (s *Service) Dispatch(ctx context.Context, kind enums.EventKind, order *models.Order) {
	if order == nil {
		return
	}
	ctx = s.logger.WithOrderNumber(ctx, order.OrderNumber)

	toName, toEmail := s.recipient(kind, order)
	if toEmail == "" {
		return
	}

	if err := s.deliver(ctx, kind, order, toName, toEmail); err != nil {
		s.metrics.IncNotificationFailure(string(kind))
		s.logger.Error(s.logger.WithField(ctx, "event_kind", string(kind)), "order notification failed", multierr.Append(
			fmt.Errorf("dispatching %s email", kind), err,
		))
	}
}

func (s *Service) recipient(kind enums.EventKind, order *models.Order) (name, email string) {
	if kind == enums.EventAdminNewOrder {
		return "", s.cfg.AdminEmail
	}
	if order.CustomerEmail == nil {
		return "", ""
	}
	return order.CustomerName, *order.CustomerEmail
}

func (s *Service) deliver(ctx context.Context, kind enums.EventKind, order *models.Order, toName, toEmail string) error {
	subject, body, err := render(kind, order, s.cfg.CallbackNum)
	if err != nil {
		return err
	}

	return s.sender.Send(ctx, mailer.Message{
		ToName:  toName,
		ToEmail: toEmail,
		Subject: subject,
		HTML:    body,
	})
}
