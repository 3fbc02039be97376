package validation

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidatePost(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name string
		text string
		want Errors
	}{
		{"Valid", "hello world", Errors{}},
		{"Exactly Min Length", strings.Repeat("a", 10), Errors{}},
		{"Exactly Max Length", strings.Repeat("a", 300), Errors{}},
		{"Empty", "", Errors{"text": "Text field is required"}},
		{"Whitespace Only", "    ", Errors{"text": "Text field is required"}},
		{"Too Short", "short", Errors{"text": "Post must be between 10 and 300 characters"}},
		{"Too Long", strings.Repeat("a", 301), Errors{"text": "Post must be between 10 and 300 characters"}},
		{"Counts Characters Not Bytes", strings.Repeat("é", 10), Errors{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ValidatePost(tt.text))
		})
	}
}

func TestValidateRegister(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name                        string
		uname, email, pass, confirm string
		wantFields                  []string
	}{
		{"Valid", "Jane", "jane@example.com", "secret1", "secret1", nil},
		{"Missing Everything", "", "", "", "", []string{"name", "email", "password", "password2"}},
		{"Bad Email", "Jane", "not-an-email", "secret1", "secret1", []string{"email"}},
		{"Short Password", "Jane", "jane@example.com", "abc", "abc", []string{"password"}},
		{"Mismatch", "Jane", "jane@example.com", "secret1", "secret2", []string{"password2"}},
		{"Long Name", strings.Repeat("n", 31), "jane@example.com", "secret1", "secret1", []string{"name"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			errs := ValidateRegister(tt.uname, tt.email, tt.pass, tt.confirm)
			assert.Len(t, errs, len(tt.wantFields))
			for _, f := range tt.wantFields {
				assert.Contains(t, errs, f)
			}
		})
	}

	assert.Equal(t, "Passwords must match", ValidateRegister("Jane", "jane@example.com", "secret1", "other12")["password2"])
}

func TestValidateLogin(t *testing.T) {
	t.Parallel()
	assert.Empty(t, ValidateLogin("jane@example.com", "secret1"))
	assert.Equal(t, Errors{
		"email":    "Email field is required",
		"password": "Password field is required",
	}, ValidateLogin("", ""))
	assert.Equal(t, Errors{"email": "Email is invalid"}, ValidateLogin("jane", "x"))
}

func TestValidateProfile(t *testing.T) {
	t.Parallel()
	valid := ProfileInput{Handle: "gopher", Status: "Developer", Skills: "go,sql"}
	assert.Empty(t, ValidateProfile(valid))

	withURL := valid
	withURL.Website = "https://example.com"
	withURL.Twitter = "https://twitter.com/gopher"
	assert.Empty(t, ValidateProfile(withURL))

	bad := ProfileInput{Handle: "g", Website: "nope", LinkedIn: "also nope"}
	errs := ValidateProfile(bad)
	assert.Equal(t, "Handle needs to be between 2 and 40 characters", errs["handle"])
	assert.Equal(t, "Status field is required", errs["status"])
	assert.Equal(t, "Skills field is required", errs["skills"])
	assert.Equal(t, "Not a valid URL", errs["website"])
	assert.Equal(t, "Not a valid URL", errs["linkedin"])
	assert.NotContains(t, errs, "youtube")
}
