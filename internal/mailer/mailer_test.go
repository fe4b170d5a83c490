package mailer

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"sync"
	"testing"

	"github.com/firmdirectory/internal/db"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingSender struct {
	mu   sync.Mutex
	sent []Message
	fail map[Template]error
}

func (s *recordingSender) Send(_ context.Context, msg Message) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sent = append(s.sent, msg)
	return s.fail[msg.Template]
}

type staticSite struct{ name, admin string }

func (s staticSite) SiteName() string     { return s.name }
func (s staticSite) AdminAddress() string { return s.admin }

type countingRecorder struct {
	ok, failed map[string]int
	queued     map[string]int
}

func newCountingRecorder() *countingRecorder {
	return &countingRecorder{ok: map[string]int{}, failed: map[string]int{}, queued: map[string]int{}}
}

func (r *countingRecorder) EmailResult(template string, err error) {
	if err != nil {
		r.failed[template]++
		return
	}
	r.ok[template]++
}

func (r *countingRecorder) EmailQueued(template string, err error) {
	if err != nil {
		r.failed[template]++
		return
	}
	r.queued[template]++
}

type queueingSender struct {
	recordingSender
}

func (q *queueingSender) Deferred() bool { return true }

func TestRenderTemplates(t *testing.T) {
	body, err := Render(TemplateNominationReceived, map[string]string{
		"SiteName":      "Counsel Finder",
		"NominatorName": "Jo",
		"FirmName":      "Harbor <Vine>",
		"Reason":        "Great",
	})
	require.NoError(t, err)
	assert.Contains(t, body, "Hi Jo,")
	assert.Contains(t, body, "Harbor &lt;Vine&gt;", "firm name must be escaped")
	assert.Contains(t, body, "Counsel Finder")

	for _, name := range []Template{TemplateNominationAlert, TemplateLeadAlert} {
		_, err := Render(name, map[string]string{})
		require.NoError(t, err, name)
	}

	_, err = Render("missing", nil)
	require.Error(t, err)
}

func TestNominationReceivedSendsTwoEmails(t *testing.T) {
	sender := &recordingSender{}
	rec := newCountingRecorder()
	n := NewNotifier(sender, staticSite{"Directory", "admin@example.com"}, "https://dir.example/", rec)

	nomination := &db.Nomination{
		FirmName:       "Harbor & Vine",
		City:           "Portland",
		StateCode:      "OR",
		NominatorName:  "Jo",
		NominatorEmail: "jo@example.com",
		Reason:         "Great",
	}
	require.NoError(t, n.NominationReceived(context.Background(), nomination))

	require.Len(t, sender.sent, 2)
	assert.Equal(t, "jo@example.com", sender.sent[0].To)
	assert.Equal(t, TemplateNominationReceived, sender.sent[0].Template)
	assert.Equal(t, "admin@example.com", sender.sent[1].To)
	assert.Equal(t, "jo@example.com", sender.sent[1].ReplyTo)
	assert.Equal(t, "Portland, OR", sender.sent[1].Data["Location"])
	assert.Equal(t, "https://dir.example/admin/nominations", sender.sent[1].Data["ReviewURL"])
	assert.Equal(t, 1, rec.ok[string(TemplateNominationAlert)])
}

func TestNominationReceivedAttemptsBothOnFailure(t *testing.T) {
	boom := errors.New("provider down")
	sender := &recordingSender{fail: map[Template]error{TemplateNominationReceived: boom}}
	rec := newCountingRecorder()
	n := NewNotifier(sender, staticSite{"Directory", "admin@example.com"}, "", rec)

	err := n.NominationReceived(context.Background(), &db.Nomination{
		FirmName: "X", NominatorName: "Jo", NominatorEmail: "jo@example.com", Reason: "r",
	})
	require.ErrorIs(t, err, boom)
	assert.Len(t, sender.sent, 2, "admin alert must still be attempted")
	assert.Equal(t, 1, rec.failed[string(TemplateNominationReceived)])
	assert.Equal(t, 1, rec.ok[string(TemplateNominationAlert)])
}

func TestQueuedDeliveryIsNotCountedAsSent(t *testing.T) {
	sender := &queueingSender{}
	rec := newCountingRecorder()
	n := NewNotifier(sender, staticSite{"Directory", "admin@example.com"}, "", rec)

	require.NoError(t, n.NominationReceived(context.Background(), &db.Nomination{
		FirmName: "X", NominatorName: "Jo", NominatorEmail: "jo@example.com", Reason: "r",
	}))
	assert.Len(t, sender.sent, 2)
	assert.Equal(t, 1, rec.queued[string(TemplateNominationReceived)])
	assert.Equal(t, 1, rec.queued[string(TemplateNominationAlert)])
	assert.Empty(t, rec.ok, "enqueue must not count as a sent email")
}

func TestLeadReceivedRecipients(t *testing.T) {
	cases := []struct {
		name  string
		lead  *db.Lead
		admin string
		want  []string
	}{
		{
			name:  "firm with email and admin",
			lead:  &db.Lead{Name: "Pat", Email: "pat@example.com", Firm: &db.Firm{Name: "Open Doors", Email: "intake@od.example"}},
			admin: "admin@example.com",
			want:  []string{"intake@od.example", "admin@example.com"},
		},
		{
			name:  "firm without email",
			lead:  &db.Lead{Name: "Pat", Email: "pat@example.com", Firm: &db.Firm{Name: "Open Doors"}},
			admin: "admin@example.com",
			want:  []string{"admin@example.com"},
		},
		{
			name: "general enquiry without admin",
			lead: &db.Lead{Name: "Pat", Email: "pat@example.com"},
			want: nil,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			sender := &recordingSender{}
			n := NewNotifier(sender, staticSite{"Directory", tc.admin}, "", nil)
			require.NoError(t, n.LeadReceived(context.Background(), tc.lead))

			var got []string
			for _, msg := range sender.sent {
				got = append(got, msg.To)
				assert.Equal(t, "pat@example.com", msg.ReplyTo)
			}
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestLogSender(t *testing.T) {
	var buf bytes.Buffer
	sender := NewLogSender(zerolog.New(&buf))

	require.NoError(t, sender.Send(context.Background(), Message{
		To: "a@example.com", Subject: "Hi", Template: TemplateLeadAlert, Data: map[string]string{"Name": "A"},
	}))
	assert.True(t, strings.Contains(buf.String(), `"template":"lead_alert"`), buf.String())

	require.Error(t, sender.Send(context.Background(), Message{Subject: "Hi", Template: TemplateLeadAlert}))
}
