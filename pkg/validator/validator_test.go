package validator

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type contactForm struct {
	Name    *string `json:"name" validate:"required,notblank,min=3,max=10"`
	Contact *string `json:"contact" validate:"omitempty,contact"`
}

type eventForm struct {
	Date *time.Time `json:"date" validate:"required,future"`
}

func ptr[T any](v T) *T { return &v }

func TestIsContact(t *testing.T) {
	accepted := []string{"joanesilva@email.com", "(11) 98888-7777", "11988887777", "  a.b+c@d.io  ", "(21)3333-4444"}
	for _, s := range accepted {
		assert.True(t, IsContact(s), s)
	}

	rejected := []string{"invalid-email", "contato-invalido", "", "1234", "a@b", "(11) 988-77"}
	for _, s := range rejected {
		assert.False(t, IsContact(s), s)
	}
}

func TestFormatValidationErrorsUsesJSONNames(t *testing.T) {
	cv := NewValidator()

	err := cv.Validate(contactForm{Name: ptr("ab"), Contact: ptr("nope")})
	require.Error(t, err)

	errs := cv.FormatValidationErrors(err)
	assert.Equal(t, []string{"name must be at least 3 characters."}, errs["name"])
	assert.Equal(t, []string{"contact must be a valid email address or phone number."}, errs["contact"])
}

func TestRequiredAndBlank(t *testing.T) {
	cv := NewValidator()

	errs := cv.FormatValidationErrors(cv.Validate(contactForm{}))
	assert.Equal(t, []string{"name is required."}, errs["name"])
	assert.NotContains(t, errs, "contact")

	errs = cv.FormatValidationErrors(cv.Validate(contactForm{Name: ptr("   ")}))
	assert.Equal(t, []string{"name may not be blank."}, errs["name"])
}

func TestFutureUsesInjectedClock(t *testing.T) {
	now := time.Date(2030, 1, 1, 12, 0, 0, 0, time.UTC)
	cv := NewValidatorWithClock(func() time.Time { return now })

	assert.NoError(t, cv.Validate(eventForm{Date: ptr(now.Add(24 * time.Hour))}))

	errs := cv.FormatValidationErrors(cv.Validate(eventForm{Date: ptr(now.Add(-24 * time.Hour))}))
	assert.Equal(t, []string{"date must be in the future."}, errs["date"])

	errs = cv.FormatValidationErrors(cv.Validate(eventForm{Date: ptr(now)}))
	assert.Contains(t, errs, "date")
}
