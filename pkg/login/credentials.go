package login

import (
	"strings"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap/zapcore"
)

var validate = validator.New()

// Credentials are the account email and password. They are passed into a
// single Login call and never logged or serialized.
type Credentials struct {
	Email    string `json:"-" yaml:"-" validate:"required,email"`
	Password string `json:"-" yaml:"-" validate:"required"`
}

// Validate checks that both fields are usable.
func (c Credentials) Validate() error {
	return validate.Struct(c)
}

// redactedEmail keeps only the domain part.
func (c Credentials) redactedEmail() string {
	if _, domain, ok := strings.Cut(c.Email, "@"); ok {
		return "***@" + domain
	}
	if c.Email == "" {
		return ""
	}
	return "***"
}

// String implements fmt.Stringer without exposing secrets.
func (c Credentials) String() string {
	return "Credentials{Email: " + c.redactedEmail() + ", Password: [redacted]}"
}

// GoString implements fmt.GoStringer without exposing secrets.
func (c Credentials) GoString() string {
	return c.String()
}

// MarshalLogObject implements zapcore.ObjectMarshaler.
func (c Credentials) MarshalLogObject(enc zapcore.ObjectEncoder) error {
	enc.AddString("email", c.redactedEmail())
	return nil
}
