package validator

import (
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jwalitptl/care-portal/internal/model"
)

func newValidate(t *testing.T) *validator.Validate {
	t.Helper()
	v := validator.New()
	v.SetTagName("binding")
	require.NoError(t, Configure(v))
	return v
}

func TestConfigure_BookingRequest(t *testing.T) {
	v := newValidate(t)

	ok := model.BookAppointmentRequest{Date: "2024-05-01", Time: "2:00 PM"}
	assert.NoError(t, v.Struct(ok))

	tests := []struct {
		name string
		req  model.BookAppointmentRequest
		want string
	}{
		{"missing date", model.BookAppointmentRequest{Time: "14:00"}, "date is required"},
		{"bad date", model.BookAppointmentRequest{Date: "2024-02-30", Time: "14:00"}, "date must be a date in YYYY-MM-DD form"},
		{"off template", model.BookAppointmentRequest{Date: "2024-05-01", Time: "09:00"}, "time must be one of"},
		{"bad clinician", model.BookAppointmentRequest{ClinicianID: "nope", Date: "2024-05-01", Time: "14:00"}, "clinician_id must be a valid id"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := v.Struct(tt.req)
			require.Error(t, err)
			assert.Contains(t, Describe(err), tt.want)
		})
	}
}

func TestDescribe_NonValidationError(t *testing.T) {
	assert.Equal(t, "invalid request body", Describe(assert.AnError))
}
