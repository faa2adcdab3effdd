package email

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/gomail.v2"

	"github.com/jwalitptl/care-portal/internal/model"
)

type fakeDialer struct {
	sent []*gomail.Message
	err  error
}

func (d *fakeDialer) DialAndSend(m ...*gomail.Message) error {
	if d.err != nil {
		return d.err
	}
	d.sent = append(d.sent, m...)
	return nil
}

func booked() model.AppointmentBookedPayload {
	return model.AppointmentBookedPayload{
		AppointmentID: uuid.New(),
		ClinicianName: "Grace Hopper",
		PatientName:   "Ada Lovelace",
		PatientEmail:  "ada@example.com",
		Date:          model.Date{Year: 2024, Month: 5, Day: 1},
		Time:          "14:00",
		Reason:        "checkup",
	}
}

func TestSendAppointmentConfirmation(t *testing.T) {
	d := &fakeDialer{}
	svc := NewService(d, "clinic@example.com")

	require.NoError(t, svc.SendAppointmentConfirmation(context.Background(), booked()))
	require.Len(t, d.sent, 1)

	m := d.sent[0]
	assert.Equal(t, []string{"clinic@example.com"}, m.GetHeader("From"))
	assert.Equal(t, []string{"Appointment confirmed for 2024-05-01 at 14:00"}, m.GetHeader("Subject"))
	require.Len(t, m.GetHeader("To"), 1)
	assert.Contains(t, m.GetHeader("To")[0], "ada@example.com")

	var buf bytes.Buffer
	_, err := m.WriteTo(&buf)
	require.NoError(t, err)
	assert.Contains(t, buf.String(), "Grace Hopper")
}

func TestSendAppointmentConfirmation_Errors(t *testing.T) {
	t.Run("missing recipient", func(t *testing.T) {
		b := booked()
		b.PatientEmail = ""
		err := NewService(&fakeDialer{}, "clinic@example.com").SendAppointmentConfirmation(context.Background(), b)
		assert.Error(t, err)
	})

	t.Run("smtp failure", func(t *testing.T) {
		smtpErr := errors.New("connection refused")
		err := NewService(&fakeDialer{err: smtpErr}, "clinic@example.com").SendAppointmentConfirmation(context.Background(), booked())
		assert.ErrorIs(t, err, smtpErr)
	})
}
