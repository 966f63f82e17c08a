package registration

import (
	"fmt"
	"net/mail"

	"github.com/wayteam/way-backend/core"
	"github.com/wayteam/way-backend/core/schedule"
	"github.com/wayteam/way-backend/core/user"
)

// Mailer implements Notifier and schedule.CancellationNotifier on top of the
// email service. Template names map to files in assets/templates/email.
type Mailer struct {
	mailSvc core.EmailService
}

func NewMailer(mailSvc core.EmailService) *Mailer {
	return &Mailer{mailSvc: mailSvc}
}

var _ Notifier = (*Mailer)(nil)
var _ schedule.CancellationNotifier = (*Mailer)(nil)

type sessionEmailData struct {
	FullName      string
	ScheduleTitle string
	SessionDate   string
	SessionTime   string
	Message       string
	PaymentLink   string
	UserEmail     string
}

func sessionData(usr user.User, sch schedule.Schedule, sess schedule.Session) sessionEmailData {
	return sessionEmailData{
		FullName:      usr.FullName,
		ScheduleTitle: sch.Title,
		SessionDate:   sess.StartDate.Format("Mon, 02 Jan 2006"),
		SessionTime:   sess.Time,
		UserEmail:     usr.Email,
	}
}

func adminAddress() mail.Address {
	return mail.Address{Name: "Admin", Address: core.Conf.AdminEmail}
}

func (m *Mailer) RegistrationReceived(usr user.User, sch schedule.Schedule, sess schedule.Session) {
	data := sessionData(usr, sch, sess)
	m.mailSvc.SendMessages(
		&core.EmailMessage{
			To:           []mail.Address{{Name: usr.FullName, Address: usr.Email}},
			Subject:      fmt.Sprintf("We received your registration for %s", sch.Title),
			TemplateName: "registration-received",
			TemplateData: data,
		},
		&core.EmailMessage{
			To:           []mail.Address{adminAddress()},
			Subject:      fmt.Sprintf("New registration: %s", sch.Title),
			TemplateName: "registration-admin-notice",
			TemplateData: data,
		},
	)
}

func (m *Mailer) FullClassRequested(usr user.User, sch schedule.Schedule, sess schedule.Session, message string) {
	data := sessionData(usr, sch, sess)
	data.Message = message
	m.mailSvc.SendMessages(&core.EmailMessage{
		To:           []mail.Address{adminAddress()},
		Subject:      fmt.Sprintf("Full class request: %s", sch.Title),
		TemplateName: "full-class-request",
		TemplateData: data,
	})
}

func (m *Mailer) RegistrationApproved(usr user.User, sch schedule.Schedule, sess schedule.Session) error {
	return m.mailSvc.SendMessage(&core.EmailMessage{
		To:           []mail.Address{{Name: usr.FullName, Address: usr.Email}},
		Subject:      fmt.Sprintf("Your registration for %s is confirmed", sch.Title),
		TemplateName: "registration-approved",
		TemplateData: sessionData(usr, sch, sess),
	})
}

func (m *Mailer) PaymentLinkSent(usr user.User, sch schedule.Schedule, link string) error {
	data := sessionEmailData{
		FullName:      usr.FullName,
		ScheduleTitle: sch.Title,
		PaymentLink:   link,
	}
	return m.mailSvc.SendMessage(&core.EmailMessage{
		To:           []mail.Address{{Name: usr.FullName, Address: usr.Email}},
		Subject:      fmt.Sprintf("Payment link for %s", sch.Title),
		TemplateName: "payment-link",
		TemplateData: data,
	})
}

func (m *Mailer) AdminMessage(usr user.User, subject, text string) error {
	if subject == "" {
		subject = fmt.Sprintf("A message from %s", core.Conf.AppName)
	}
	return m.mailSvc.SendMessage(&core.EmailMessage{
		To:      []mail.Address{{Name: usr.FullName, Address: usr.Email}},
		Subject: subject,
		BodyStr: text,
	})
}

func (m *Mailer) NotifyScheduleCancelled(sch schedule.Schedule, recipients []schedule.Registrant) {
	messages := make([]*core.EmailMessage, 0, len(recipients))
	for _, rcpt := range recipients {
		messages = append(messages, &core.EmailMessage{
			To:           []mail.Address{{Name: rcpt.FullName, Address: rcpt.Email}},
			Subject:      fmt.Sprintf("%s has been cancelled", sch.Title),
			TemplateName: "schedule-cancelled",
			TemplateData: sessionEmailData{FullName: rcpt.FullName, ScheduleTitle: sch.Title},
		})
	}
	if len(messages) > 0 {
		m.mailSvc.SendMessages(messages...)
	}
}
