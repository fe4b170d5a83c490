package mailer

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/firmdirectory/internal/db"
)

// Recorder counts delivery outcomes per template. EmailQueued covers senders
// that only hand the message to a background worker.
type Recorder interface {
	EmailResult(template string, err error)
	EmailQueued(template string, err error)
}

// Deferrer is implemented by senders whose Send only schedules delivery.
type Deferrer interface {
	Deferred() bool
}

// SiteInfo 提供邮件中使用的站点名称与通知地址。
type SiteInfo interface {
	SiteName() string
	AdminAddress() string
}

// Notifier builds the notification emails for nominations and leads.
type Notifier struct {
	sender  Sender
	site    SiteInfo
	baseURL string
	metrics Recorder
}

// NewNotifier creates a Notifier. metrics may be nil.
func NewNotifier(sender Sender, site SiteInfo, baseURL string, metrics Recorder) *Notifier {
	return &Notifier{
		sender:  sender,
		site:    site,
		baseURL: strings.TrimRight(strings.TrimSpace(baseURL), "/"),
		metrics: metrics,
	}
}

// NominationReceived sends the nominator confirmation and the admin alert.
// Both are attempted; the returned error joins every failure.
func (n *Notifier) NominationReceived(ctx context.Context, nomination *db.Nomination) error {
	base := n.baseData()
	data := merge(base, map[string]string{
		"FirmName":       nomination.FirmName,
		"FirmWebsite":    nomination.FirmWebsite,
		"Location":       location(nomination.City, nomination.StateCode),
		"PracticeArea":   nomination.PracticeArea,
		"NominatorName":  nomination.NominatorName,
		"NominatorEmail": nomination.NominatorEmail,
		"Relationship":   nomination.Relationship,
		"Reason":         nomination.Reason,
	})
	if n.baseURL != "" {
		data["ReviewURL"] = n.baseURL + "/admin/nominations"
	}

	var errs []error
	errs = append(errs, n.deliver(ctx, Message{
		To:       nomination.NominatorEmail,
		Subject:  fmt.Sprintf("Thanks for nominating %s", nomination.FirmName),
		Template: TemplateNominationReceived,
		Data:     data,
	}))

	if admin := n.site.AdminAddress(); admin != "" {
		errs = append(errs, n.deliver(ctx, Message{
			To:       admin,
			ReplyTo:  nomination.NominatorEmail,
			Subject:  fmt.Sprintf("New nomination: %s", nomination.FirmName),
			Template: TemplateNominationAlert,
			Data:     data,
		}))
	}
	return errors.Join(errs...)
}

// LeadReceived alerts the firm (when it has an email) and the admin.
func (n *Notifier) LeadReceived(ctx context.Context, lead *db.Lead) error {
	data := merge(n.baseData(), map[string]string{
		"Name":         lead.Name,
		"Email":        lead.Email,
		"Phone":        lead.Phone,
		"PracticeArea": lead.PracticeArea,
		"Location":     location(lead.City, lead.StateCode),
		"Message":      lead.Message,
	})

	subject := "New enquiry from " + lead.Name
	var errs []error
	if lead.Firm != nil {
		data["FirmName"] = lead.Firm.Name
		subject = fmt.Sprintf("New enquiry for %s from %s", lead.Firm.Name, lead.Name)
		if email := strings.TrimSpace(lead.Firm.Email); email != "" {
			errs = append(errs, n.deliver(ctx, Message{
				To: email, ReplyTo: lead.Email, Subject: subject, Template: TemplateLeadAlert, Data: data,
			}))
		}
	}

	if admin := n.site.AdminAddress(); admin != "" {
		errs = append(errs, n.deliver(ctx, Message{
			To: admin, ReplyTo: lead.Email, Subject: subject, Template: TemplateLeadAlert, Data: data,
		}))
	}
	return errors.Join(errs...)
}

func (n *Notifier) deliver(ctx context.Context, msg Message) error {
	err := n.sender.Send(ctx, msg)
	if n.metrics != nil {
		// 入队成功不代表已送达，送达结果由 worker 记录
		if d, ok := n.sender.(Deferrer); ok && d.Deferred() {
			n.metrics.EmailQueued(string(msg.Template), err)
		} else {
			n.metrics.EmailResult(string(msg.Template), err)
		}
	}
	if err != nil {
		return fmt.Errorf("%s to %s: %w", msg.Template, msg.To, err)
	}
	return nil
}

func (n *Notifier) baseData() map[string]string {
	return map[string]string{
		"SiteName": n.site.SiteName(),
		"SiteURL":  n.baseURL,
	}
}

func merge(base, extra map[string]string) map[string]string {
	out := make(map[string]string, len(base)+len(extra))
	for k, v := range base {
		out[k] = v
	}
	for k, v := range extra {
		out[k] = v
	}
	return out
}

func location(city, state string) string {
	city = strings.TrimSpace(city)
	state = strings.TrimSpace(state)
	switch {
	case city != "" && state != "":
		return city + ", " + state
	case city != "":
		return city
	default:
		return state
	}
}
