package prompt

import (
	"strings"
	"testing"
)

func TestRender_SubstitutesAllTokens(t *testing.T) {
	template := "History: $(HISTORY_JSON)\nFormal: $(FORMAL_MODE)\nModel: $(MODELNAME)"

	out := Render(template, Values{
		HistoryJSON: `[{"role":"user","message":"hi"}]`,
		Formal:      false,
		ModelName:   "Test Model",
	})

	for _, token := range []string{TokenHistoryJSON, TokenFormalMode, TokenModelName} {
		if strings.Contains(out, token) {
			t.Errorf("Expected token %s to be substituted, still present in output", token)
		}
	}

	expected := "History: [{\"role\":\"user\",\"message\":\"hi\"}]\nFormal: false\nModel: Test Model"
	if out != expected {
		t.Errorf("Expected %q, got %q", expected, out)
	}
}

func TestRender_NoTokens(t *testing.T) {
	template := "just a plain prompt with no placeholders"
	if out := Render(template, Values{HistoryJSON: "[]", Formal: true, ModelName: "X"}); out != template {
		t.Errorf("Expected template unchanged, got %q", out)
	}
}

func TestRender_UnrecognizedPlaceholderPassesThrough(t *testing.T) {
	template := "$(HISTORY_JSON) and $(SOMETHING_ELSE)"
	out := Render(template, Values{HistoryJSON: "[]"})
	if !strings.Contains(out, "$(SOMETHING_ELSE)") {
		t.Errorf("Expected unrecognized placeholder to pass through, got %q", out)
	}
	if strings.Contains(out, TokenHistoryJSON) {
		t.Errorf("Expected history token substituted, got %q", out)
	}
}

func TestRender_FormalModeBooleanWords(t *testing.T) {
	tests := []struct {
		name     string
		formal   bool
		expected string
	}{
		{"formal renders true", true, "true"},
		{"casual renders false", false, "false"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			out := Render("$(FORMAL_MODE)", Values{Formal: tc.formal})
			if out != tc.expected {
				t.Errorf("Expected %q, got %q", tc.expected, out)
			}
		})
	}
}

func TestRender_NoRecursiveSubstitution(t *testing.T) {
	// A value that contains a token literal must not trigger a second pass.
	out := Render("$(MODELNAME)", Values{ModelName: "sneaky $(HISTORY_JSON)"})
	if out != "sneaky $(HISTORY_JSON)" {
		t.Errorf("Expected single-pass substitution, got %q", out)
	}
}

func TestRender_DefaultTemplateScenario(t *testing.T) {
	historyJSON := `[{"role":"user","message":"hi"}]`
	out := Render(DefaultTemplate, Values{
		HistoryJSON: historyJSON,
		Formal:      false,
		ModelName:   "Test Model",
	})

	if !strings.Contains(out, historyJSON) {
		t.Error("Expected rendered template to contain the literal history JSON")
	}
	if !strings.Contains(out, "named Test Model,") {
		t.Error("Expected model name substituted at its token position")
	}
	if !strings.Contains(out, "If `false` is `true`,") {
		t.Error("Expected formal flag rendered as the literal word false at its token position")
	}
	for _, token := range []string{TokenHistoryJSON, TokenFormalMode, TokenModelName} {
		if strings.Contains(out, token) {
			t.Errorf("Expected no leftover %s token", token)
		}
	}
	// Surrounding template text is unchanged.
	if !strings.HasPrefix(out, "SYSTEM PROMPT START") || !strings.HasSuffix(out, "SYSTEM PROMPT END") {
		t.Error("Expected template framing text to be preserved")
	}
}

func TestValidateTemplate(t *testing.T) {
	tests := []struct {
		name     string
		template string
		valid    bool
	}{
		{"both required tokens", "a $(HISTORY_JSON) b $(FORMAL_MODE) c", true},
		{"model name optional", "$(HISTORY_JSON) $(FORMAL_MODE)", true},
		{"missing formal mode", "only $(HISTORY_JSON)", false},
		{"missing history", "only $(FORMAL_MODE)", false},
		{"empty template", "", false},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			err := ValidateTemplate(tc.template)
			if tc.valid && err != nil {
				t.Errorf("Expected valid template, got error: %v", err)
			}
			if !tc.valid && err == nil {
				t.Error("Expected validation error, got nil")
			}
		})
	}
}

func TestDefaultTemplate_IsValid(t *testing.T) {
	if err := ValidateTemplate(DefaultTemplate); err != nil {
		t.Errorf("Default template must pass its own validation: %v", err)
	}
}
