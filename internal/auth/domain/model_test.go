package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidateEmail(t *testing.T) {
	valid := []string{
		"anna@innovo-consulting.de",
		"Anna.Berg@Innovo-Consulting.DE",
		"ops@aiio.de",
		"donotreply@aiio.de",
		"DoNotReply@AIIO.de",
	}
	for _, e := range valid {
		assert.NoError(t, ValidateEmail(e), e)
	}

	invalid := []string{
		"",
		"anna",
		"anna@innovo-consulting",
		"anna @innovo-consulting.de",
		"anna@@aiio.de",
		"anna@gmail.com",
		"anna@notaiio.de",
		"anna@aiio.de.evil.com",
		"donotreply@aiio.com",
		"a\vb@aiio.de",
		"a\u00a0b@aiio.de",
		"anna@aiio\u2003.de",
		"\ufeffanna@aiio.de",
	}
	for _, e := range invalid {
		assert.ErrorIs(t, ValidateEmail(e), ErrEmailNotAllowed, e)
	}
}

func TestValidatePassword(t *testing.T) {
	assert.ErrorIs(t, ValidatePassword(""), ErrPasswordTooShort)
	assert.ErrorIs(t, ValidatePassword("12345"), ErrPasswordTooShort)
	assert.NoError(t, ValidatePassword("123456"))
	assert.ErrorIs(t, ValidatePassword("äöüäö"), ErrPasswordTooShort)
	assert.NoError(t, ValidatePassword("äöüäöß"))
}

func TestCredentialsValidate_EmailFirst(t *testing.T) {
	err := Credentials{Email: "x@gmail.com", Password: "1"}.Validate()
	assert.ErrorIs(t, err, ErrEmailNotAllowed)

	err = Credentials{Email: "x@aiio.de", Password: "1"}.Validate()
	assert.ErrorIs(t, err, ErrPasswordTooShort)

	assert.NoError(t, Credentials{Email: "x@aiio.de", Password: "secret1"}.Validate())
}

func TestNormalizeEmail(t *testing.T) {
	assert.Equal(t, "anna@aiio.de", NormalizeEmail("  Anna@AIIO.de "))
}
