package email

import (
	"context"
	"net/mail"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMessageRender(t *testing.T) {
	msg := &Message{
		Template: TemplateApplicationReceived,
		To:       mail.Address{Name: "Ada Obi", Address: "ada@example.com"},
		Data: map[string]string{
			"name":              "Ada Obi",
			"session":           "2025/2026",
			"applicationNumber": "ACE-2025-ABC123",
		},
	}
	require.NoError(t, msg.Render())

	assert.Equal(t, "Application received", msg.Subject)
	assert.Contains(t, msg.TextContent, "ACE-2025-ABC123")
	assert.Contains(t, msg.HTMLContent, "<strong>ACE-2025-ABC123</strong>")
	assert.Contains(t, msg.HTMLContent, "ACE-SPED Admissions")
}

func TestMessageRender_EscapesHTML(t *testing.T) {
	msg := &Message{
		Template: TemplateApplicationApproved,
		Data:     map[string]string{"name": "<script>x</script>", "applicationNumber": "N"},
	}
	require.NoError(t, msg.Render())
	assert.NotContains(t, msg.HTMLContent, "<script>")
}

func TestMessageRender_UnknownTemplate(t *testing.T) {
	msg := &Message{Template: "nope"}
	assert.Error(t, msg.Render())
}

func TestMessageRender_AllTemplates(t *testing.T) {
	for tmpl := range subjects {
		msg := &Message{Template: tmpl, Data: map[string]string{"name": "X"}}
		assert.NoError(t, msg.Render(), tmpl)
	}
}

func TestDispatcher_DeliversAsync(t *testing.T) {
	rec := &Recorder{}
	d := NewDispatcher(rec, time.Second, zerolog.Nop())

	d.Notify(TemplateApplicationRejected, mail.Address{Address: "a@example.com"}, map[string]string{"name": "A", "applicationNumber": "N1"})
	d.Notify(TemplateApplicationRejected, mail.Address{Address: "b@example.com"}, map[string]string{"name": "B", "applicationNumber": "N2"})
	d.Wait()

	assert.Equal(t, 2, rec.Count(TemplateApplicationRejected))
}

func TestDispatcher_FailureIsSwallowed(t *testing.T) {
	rec := &Recorder{Fail: true}
	d := NewDispatcher(rec, time.Second, zerolog.Nop())

	assert.NotPanics(t, func() {
		d.Notify(TemplateStudentCredentials, mail.Address{Address: "a@example.com"}, nil)
		d.Wait()
	})
	assert.Empty(t, rec.Sent())
}

func TestDispatcher_Shutdown(t *testing.T) {
	d := NewDispatcher(&Recorder{}, time.Second, zerolog.Nop())
	d.Notify(TemplateApplicationReceived, mail.Address{Address: "a@example.com"}, nil)

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	assert.NoError(t, d.Shutdown(ctx))
}
