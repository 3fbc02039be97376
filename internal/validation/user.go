package validation

type registerInput struct {
	Name      string `validate:"required,min=2,max=30"`
	Email     string `validate:"required,email"`
	Password  string `validate:"required,min=6,max=30"`
	Password2 string `validate:"required,eqfield=Password"`
}

var registerMessages = map[string]rule{
	"Name.required":      {"name", "Name field is required"},
	"Name.min":           {"name", "Name must be between 2 and 30 characters"},
	"Name.max":           {"name", "Name must be between 2 and 30 characters"},
	"Email.required":     {"email", "Email field is required"},
	"Email.email":        {"email", "Email is invalid"},
	"Password.required":  {"password", "Password field is required"},
	"Password.min":       {"password", "Password must be at least 6 characters"},
	"Password.max":       {"password", "Password must be at most 30 characters"},
	"Password2.required": {"password2", "Confirm password field is required"},
	"Password2.eqfield":  {"password2", "Passwords must match"},
}

// ValidateRegister checks a registration payload.
func ValidateRegister(name, email, password, password2 string) Errors {
	return check(registerInput{
		Name:      trimmed(name),
		Email:     trimmed(email),
		Password:  password,
		Password2: password2,
	}, registerMessages)
}

type loginInput struct {
	Email    string `validate:"required,email"`
	Password string `validate:"required"`
}

var loginMessages = map[string]rule{
	"Email.required":    {"email", "Email field is required"},
	"Email.email":       {"email", "Email is invalid"},
	"Password.required": {"password", "Password field is required"},
}

// ValidateLogin checks a login payload.
func ValidateLogin(email, password string) Errors {
	return check(loginInput{Email: trimmed(email), Password: password}, loginMessages)
}
