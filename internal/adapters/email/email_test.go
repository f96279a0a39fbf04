package email

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"campusevents/internal/domain"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/ses"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testLogger = slog.New(slog.NewTextHandler(io.Discard, nil))

func TestTemplateRenderer_BookingTemplates(t *testing.T) {
	r := NewTemplateRenderer()
	data := &domain.BookingEmailData{
		Email:     "admin@campus.edu",
		Name:      "Dana",
		VenueName: "Main <Auditorium>",
		EventName: "Tech Talk",
		Date:      "01/06/2025",
		StartTime: "10:00 AM",
	}

	subject, html, text, err := r.Render("booking_confirmed", data)
	require.NoError(t, err)
	assert.Equal(t, "Booking confirmed: Main <Auditorium> on 01/06/2025", subject)
	assert.Contains(t, html, "Main &lt;Auditorium&gt;")
	assert.Contains(t, text, "End:   two hours after start")
	assert.Contains(t, text, "Hi Dana,")

	data.EndTime = "12:00 PM"
	_, _, text, err = r.Render("booking_confirmed", data)
	require.NoError(t, err)
	assert.Contains(t, text, "End:   12:00 PM")

	subject, _, text, err = r.Render("booking_cancelled", data)
	require.NoError(t, err)
	assert.Equal(t, "Booking cancelled: Main <Auditorium> on 01/06/2025", subject)
	assert.Contains(t, text, "was cancelled")

	_, _, _, err = r.Render("welcome", data)
	require.Error(t, err)
}

type fakeSES struct {
	input *ses.SendEmailInput
	err   error
}

func (f *fakeSES) SendEmail(ctx context.Context, params *ses.SendEmailInput, optFns ...func(*ses.Options)) (*ses.SendEmailOutput, error) {
	f.input = params
	if f.err != nil {
		return nil, f.err
	}
	return &ses.SendEmailOutput{MessageId: aws.String("msg-1")}, nil
}

func TestSESMailer_Send(t *testing.T) {
	client := &fakeSES{}
	m := &sesMailer{client: client, fromAddress: "no-reply@campus.edu", fromName: "Campus Events", logger: testLogger}

	require.NoError(t, m.Send(context.Background(), "admin@campus.edu", "Hello", "<p>hi</p>", ""))
	assert.Equal(t, "Campus Events <no-reply@campus.edu>", aws.ToString(client.input.Source))
	assert.Equal(t, []string{"admin@campus.edu"}, client.input.Destination.ToAddresses)
	assert.Equal(t, "<p>hi</p>", aws.ToString(client.input.Message.Body.Html.Data))
	assert.Nil(t, client.input.Message.Body.Text)

	client.err = errors.New("throttled")
	require.ErrorContains(t, m.Send(context.Background(), "admin@campus.edu", "Hello", "", "hi"), "throttled")
}

func TestNewMailer(t *testing.T) {
	m, err := NewMailer(MailerConfig{Provider: "noop"}, testLogger)
	require.NoError(t, err)
	assert.IsType(t, &noopMailer{}, m)
	require.NoError(t, m.Send(context.Background(), "a@b.co", "s", "", ""))

	m, err = NewMailer(MailerConfig{Provider: "carrier-pigeon"}, testLogger)
	require.NoError(t, err)
	assert.IsType(t, &noopMailer{}, m)

	_, err = NewMailer(MailerConfig{Provider: "ses"}, testLogger)
	require.Error(t, err)

	m, err = NewMailer(MailerConfig{Provider: "ses", FromAddress: "no-reply@campus.edu", SES: SESConfig{Region: "us-east-1"}}, testLogger)
	require.NoError(t, err)
	assert.IsType(t, &sesMailer{}, m)
}
