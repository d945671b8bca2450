package model

import "testing"

func TestIsRealUserMessage(t *testing.T) {
	tests := []struct {
		name string
		item ResponseItem
		want bool
	}{
		{"real user message", NewMessage(RoleUser, InputText("hi")), true},
		{"pseudo user message", ResponseItem{Kind: ItemMessage, Role: RoleUser, Pseudo: true}, false},
		{"assistant message", NewMessage(RoleAssistant, OutputText("hi")), false},
		{"function call", NewFunctionCall("c1", "list_dir", nil), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.item.IsRealUserMessage(); got != tt.want {
				t.Errorf("IsRealUserMessage() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestTextContent(t *testing.T) {
	msg := NewMessage(RoleAssistant, OutputText("hello "), OutputText("world"))
	if got := msg.TextContent(); got != "hello world" {
		t.Errorf("TextContent() = %q, want %q", got, "hello world")
	}
}

func TestSessionIDRoundTrip(t *testing.T) {
	id := NewSessionID()
	if id.IsZero() {
		t.Fatal("NewSessionID() returned zero value")
	}
	parsed, err := ParseSessionID(id.String())
	if err != nil {
		t.Fatalf("ParseSessionID() error = %v", err)
	}
	if parsed != id {
		t.Errorf("ParseSessionID() = %v, want %v", parsed, id)
	}
}
