package mailer

import (
	"context"
	"fmt"
	"log/slog"

	"gopkg.in/gomail.v2"

	"staybook/internal/app/handlers/reservations"
	"staybook/internal/domain/shared/daterange"
	domainuser "staybook/internal/domain/user"
)

const dateLayout = "2006-01-02"

// SMTPNotifier emails the advert owner when a reservation lands on their
// advert. Delivery is best effort; the reserve handler logs failures and
// keeps the reservation.
type SMTPNotifier struct {
	dialer *gomail.Dialer
	from   string
	logger *slog.Logger
}

func NewSMTPNotifier(host string, port int, username, password, from string, logger *slog.Logger) *SMTPNotifier {
	return &SMTPNotifier{
		dialer: gomail.NewDialer(host, port, username, password),
		from:   from,
		logger: logger,
	}
}

func (n *SMTPNotifier) ReservationCreated(ctx context.Context, owner domainuser.Contact, advertTitle string, stay daterange.DateRange) error {
	if owner.Email == "" {
		return nil
	}

	m := gomail.NewMessage()
	m.SetHeader("From", n.from)
	m.SetHeader("To", owner.Email)
	m.SetHeader("Subject", "New reservation for "+advertTitle)
	m.SetBody("text/plain", fmt.Sprintf(
		"Hi %s,\n\nYour advert %q has a new reservation from %s to %s.\n",
		owner.Username, advertTitle, stay.Start.Format(dateLayout), stay.End.Format(dateLayout),
	))

	if err := n.dialer.DialAndSend(m); err != nil {
		return fmt.Errorf("mailer: send reservation notice: %w", err)
	}
	if n.logger != nil {
		n.logger.Info("owner notified", "to", owner.Email, "advert", advertTitle)
	}
	return nil
}

// NoopNotifier is the dev-mode stand-in when SMTP is not configured.
type NoopNotifier struct{}

func (NoopNotifier) ReservationCreated(context.Context, domainuser.Contact, string, daterange.DateRange) error {
	return nil
}

var (
	_ reservations.OwnerNotifier = (*SMTPNotifier)(nil)
	_ reservations.OwnerNotifier = NoopNotifier{}
)
