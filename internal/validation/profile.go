package validation

// ProfileInput is the form accepted when creating or editing a profile.
type ProfileInput struct {
	Handle    string `validate:"required,min=2,max=40"`
	Status    string `validate:"required"`
	Skills    string `validate:"required"`
	Website   string `validate:"omitempty,url"`
	YouTube   string `validate:"omitempty,url"`
	Twitter   string `validate:"omitempty,url"`
	Facebook  string `validate:"omitempty,url"`
	LinkedIn  string `validate:"omitempty,url"`
	Instagram string `validate:"omitempty,url"`
}

var profileMessages = map[string]rule{
	"Handle.required": {"handle", "Profile handle is required"},
	"Handle.min":      {"handle", "Handle needs to be between 2 and 40 characters"},
	"Handle.max":      {"handle", "Handle needs to be between 2 and 40 characters"},
	"Status.required": {"status", "Status field is required"},
	"Skills.required": {"skills", "Skills field is required"},
	"Website.url":     {"website", "Not a valid URL"},
	"YouTube.url":     {"youtube", "Not a valid URL"},
	"Twitter.url":     {"twitter", "Not a valid URL"},
	"Facebook.url":    {"facebook", "Not a valid URL"},
	"LinkedIn.url":    {"linkedin", "Not a valid URL"},
	"Instagram.url":   {"instagram", "Not a valid URL"},
}

// ValidateProfile checks a profile form.
func ValidateProfile(in ProfileInput) Errors {
	in.Handle = trimmed(in.Handle)
	in.Status = trimmed(in.Status)
	in.Skills = trimmed(in.Skills)
	return check(in, profileMessages)
}
