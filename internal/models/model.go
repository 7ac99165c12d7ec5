package models

// ModelDescriptor pairs a display name with the API identifier used for
// completion calls.
type ModelDescriptor struct {
	Name string `json:"name"`
	ID   string `json:"id"`
}

// DefaultModels returns the built-in model catalog. Reset restores this set.
func DefaultModels() []ModelDescriptor {
	return []ModelDescriptor{
		{Name: "Gemini 2.0 Flash", ID: "gemini-2.0-flash"},
		{Name: "Gemini 2.0 Flash-Lite", ID: "gemini-2.0-flash-lite"},
		{Name: "Gemini 1.5 Flash", ID: "gemini-1.5-flash"},
		{Name: "Gemini 1.5 Flash-8B", ID: "gemini-1.5-flash-8b"},
		{Name: "Gemini 1.5 Pro", ID: "gemini-1.5-pro"},
	}
}

type ValidationOutcome string

const (
	ValidationSuccess ValidationOutcome = "success"
	ValidationError   ValidationOutcome = "error"
)

// ValidationResult is the transient outcome of probing one model with a
// credential. Never persisted.
type ValidationResult struct {
	Model   ModelDescriptor   `json:"model"`
	Outcome ValidationOutcome `json:"outcome"`
}

type AddModelRequest struct {
	Name string `json:"name"`
	ID   string `json:"id"`
}

type ValidateModelRequest struct {
	Name   string `json:"name"`
	ID     string `json:"id"`
	APIKey string `json:"api_key,omitempty"`
}

type ValidateAllRequest struct {
	APIKey string `json:"api_key,omitempty"`
}
