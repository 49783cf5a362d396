package login

import (
	"encoding/json"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap/zapcore"
)

func TestCredentials_Validate(t *testing.T) {
	tests := []struct {
		name  string
		creds Credentials
		ok    bool
	}{
		{"valid", Credentials{Email: "a@gmail.com", Password: "pw"}, true},
		{"missing email", Credentials{Password: "pw"}, false},
		{"bad email", Credentials{Email: "not-an-email", Password: "pw"}, false},
		{"missing password", Credentials{Email: "a@gmail.com"}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.creds.Validate()
			if tt.ok {
				assert.NoError(t, err)
			} else {
				assert.Error(t, err)
			}
		})
	}
}

func TestCredentials_Redaction(t *testing.T) {
	c := Credentials{Email: "someone@gmail.com", Password: "hunter2"}

	for _, s := range []string{c.String(), fmt.Sprintf("%v", c), fmt.Sprintf("%+v", c), fmt.Sprintf("%#v", c)} {
		assert.NotContains(t, s, "hunter2")
		assert.NotContains(t, s, "someone")
		assert.Contains(t, s, "***@gmail.com")
	}

	data, err := json.Marshal(c)
	assert.NoError(t, err)
	assert.Equal(t, "{}", string(data))

	enc := zapcore.NewMapObjectEncoder()
	assert.NoError(t, c.MarshalLogObject(enc))
	assert.Equal(t, map[string]interface{}{"email": "***@gmail.com"}, enc.Fields)
}

func TestCredentials_RedactionWithoutDomain(t *testing.T) {
	assert.Contains(t, Credentials{Email: "plain"}.String(), "Email: ***,")
	assert.Contains(t, Credentials{}.String(), "Email: ,")
}
