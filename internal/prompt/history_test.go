package prompt

import (
	"encoding/json"
	"testing"

	"gemini-chat-backend/internal/models"
)

func TestSerializeHistory_Empty(t *testing.T) {
	out, err := SerializeHistory(nil)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if out != "[]" {
		t.Errorf("Expected \"[]\" for empty transcript, got %q", out)
	}
}

func TestSerializeHistory_RoundTrip(t *testing.T) {
	messages := []models.Message{
		{IsUser: true, Text: "hello"},
		{IsUser: false, Text: "hi there"},
		{IsUser: true, Text: "what's 2+2?"},
	}

	out, err := SerializeHistory(messages)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	var entries []HistoryEntry
	if err := json.Unmarshal([]byte(out), &entries); err != nil {
		t.Fatalf("Output is not valid JSON: %v", err)
	}

	if len(entries) != len(messages) {
		t.Fatalf("Expected %d entries, got %d", len(messages), len(entries))
	}

	expectedRoles := []string{"user", "ai", "user"}
	for i, e := range entries {
		if e.Role != expectedRoles[i] {
			t.Errorf("Entry %d: expected role %q, got %q", i, expectedRoles[i], e.Role)
		}
		if e.Message != messages[i].Text {
			t.Errorf("Entry %d: expected message %q, got %q", i, messages[i].Text, e.Message)
		}
	}
}

func TestSerializeHistory_EscapesJSONCharacters(t *testing.T) {
	messages := []models.Message{
		{IsUser: true, Text: "line one\nline \"two\" with \\ backslash"},
	}

	out, err := SerializeHistory(messages)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	var entries []HistoryEntry
	if err := json.Unmarshal([]byte(out), &entries); err != nil {
		t.Fatalf("Output is not valid JSON: %v", err)
	}
	if entries[0].Message != messages[0].Text {
		t.Errorf("Expected message to round-trip exactly, got %q", entries[0].Message)
	}
}

func TestSerializeHistory_Stable(t *testing.T) {
	messages := []models.Message{
		{IsUser: true, Text: "hi"},
		{IsUser: false, Text: "hello"},
	}

	first, err := SerializeHistory(messages)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	second, err := SerializeHistory(messages)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if first != second {
		t.Error("Expected byte-identical output for identical input")
	}
}
