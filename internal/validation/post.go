package validation

type postInput struct {
	Text string `validate:"required,min=10,max=300"`
}

var postMessages = map[string]rule{
	"Text.required": {"text", "Text field is required"},
	"Text.min":      {"text", "Post must be between 10 and 300 characters"},
	"Text.max":      {"text", "Post must be between 10 and 300 characters"},
}

// ValidatePost checks the text of a post or comment.
func ValidatePost(text string) Errors {
	return check(postInput{Text: trimmed(text)}, postMessages)
}
