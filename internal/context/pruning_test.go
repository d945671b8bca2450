package context

import (
	"strings"
	"testing"

	"github.com/corebridge/agentcore/pkg/model"
)

func TestPruneContextMessages_SoftTrimOnly(t *testing.T) {
	settings := DefaultContextPruningSettings()
	settings.KeepLastAssistants = 1
	settings.SoftTrimRatio = 0.01
	settings.HardClearRatio = 0.9
	settings.MinPrunableToolChars = 1
	settings.SoftTrim.MaxChars = 50
	settings.SoftTrim.HeadChars = 10
	settings.SoftTrim.TailChars = 10
	settings.HardClear.Enabled = true

	history := []model.ResponseItem{
		userMessage("hello"),
		functionCall("tc-1", "fetch"),
		functionCallOutput("tc-1", strings.Repeat("a", 200)),
		assistantMessage("done"),
	}

	out := PruneContextMessages(history, settings, 1000)
	got := out[2].Output
	if got == strings.Repeat("a", 200) {
		t.Fatalf("expected tool result to be trimmed")
	}
	if !strings.Contains(got, "Tool result trimmed") {
		t.Fatalf("expected trim note, got %q", got)
	}
	if got == settings.HardClear.Placeholder {
		t.Fatalf("unexpected hard clear placeholder")
	}
}

func TestPruneContextMessages_HardClear(t *testing.T) {
	settings := DefaultContextPruningSettings()
	settings.KeepLastAssistants = 1
	settings.SoftTrimRatio = 0.01
	settings.HardClearRatio = 0.2
	settings.MinPrunableToolChars = 1
	settings.SoftTrim.MaxChars = 50
	settings.SoftTrim.HeadChars = 10
	settings.SoftTrim.TailChars = 10
	settings.HardClear.Enabled = true

	history := []model.ResponseItem{
		userMessage("hello"),
		functionCall("tc-1", "fetch"),
		functionCallOutput("tc-1", strings.Repeat("b", 200)),
		assistantMessage("done"),
	}

	out := PruneContextMessages(history, settings, 100)
	got := out[2].Output
	if got != settings.HardClear.Placeholder {
		t.Fatalf("expected hard clear placeholder, got %q", got)
	}
}

func TestPruneContextMessages_AllowDeny(t *testing.T) {
	settings := DefaultContextPruningSettings()
	settings.KeepLastAssistants = 1
	settings.SoftTrimRatio = 0.01
	settings.HardClear.Enabled = false
	settings.SoftTrim.MaxChars = 10
	settings.SoftTrim.HeadChars = 4
	settings.SoftTrim.TailChars = 4
	settings.Tools.Allow = []string{"fetch*"}
	settings.Tools.Deny = []string{"fetch_secret"}

	history := []model.ResponseItem{
		userMessage("hello"),
		functionCall("tc-1", "fetch_public"),
		functionCall("tc-2", "fetch_secret"),
		functionCallOutput("tc-1", strings.Repeat("p", 40)),
		functionCallOutput("tc-2", strings.Repeat("s", 40)),
		assistantMessage("done"),
	}

	out := PruneContextMessages(history, settings, 1000)
	publicResult := out[3].Output
	secretResult := out[4].Output

	if publicResult == strings.Repeat("p", 40) {
		t.Fatalf("expected public tool result to be trimmed")
	}
	if !strings.Contains(publicResult, "Tool result trimmed") {
		t.Fatalf("expected trim note for public tool result")
	}
	if secretResult != strings.Repeat("s", 40) {
		t.Fatalf("expected secret tool result to remain unchanged")
	}
}

func TestPruneContextMessages_UnknownToolNameDefaultAllowed(t *testing.T) {
	settings := DefaultContextPruningSettings()
	settings.KeepLastAssistants = 1
	settings.SoftTrimRatio = 0.01
	settings.HardClear.Enabled = false
	settings.SoftTrim.MaxChars = 10
	settings.SoftTrim.HeadChars = 4
	settings.SoftTrim.TailChars = 4

	history := []model.ResponseItem{
		userMessage("hello"),
		functionCallOutput("missing", strings.Repeat("x", 40)),
		assistantMessage("done"),
	}

	out := PruneContextMessages(history, settings, 1000)
	got := out[1].Output
	if got == strings.Repeat("x", 40) {
		t.Fatalf("expected tool result to be trimmed even without tool name")
	}
}

func userMessage(content string) model.ResponseItem {
	return model.NewMessage(model.RoleUser, model.InputText(content))
}

func assistantMessage(content string) model.ResponseItem {
	return model.NewMessage(model.RoleAssistant, model.OutputText(content))
}

func functionCall(callID, name string) model.ResponseItem {
	return model.NewFunctionCall(callID, name, nil)
}

func functionCallOutput(callID, output string) model.ResponseItem {
	return model.NewFunctionCallOutput(callID, output, false)
}
