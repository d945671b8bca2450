package toolconv

import (
	"encoding/json"
	"testing"
)

func TestToOpenAITools_FallsBackOnBadSchema(t *testing.T) {
	tools := ToOpenAITools([]ToolSpec{{Name: "broken", Schema: json.RawMessage(`not json`)}})
	if len(tools) != 1 {
		t.Fatalf("len(tools) = %d, want 1", len(tools))
	}
	if tools[0].Function.Name != "broken" {
		t.Errorf("Name = %q", tools[0].Function.Name)
	}
	params, ok := tools[0].Function.Parameters.(map[string]any)
	if !ok || params["type"] != "object" {
		t.Errorf("Parameters fallback = %+v", tools[0].Function.Parameters)
	}
}

func TestToOpenAITools_ValidSchema(t *testing.T) {
	schema := json.RawMessage(`{"type":"object","properties":{"q":{"type":"string"}}}`)
	tools := ToOpenAITools([]ToolSpec{{Name: "search", Description: "search the web", Schema: schema}})
	if tools[0].Function.Description != "search the web" {
		t.Errorf("Description = %q", tools[0].Function.Description)
	}
}

func TestToAnthropicTools_RejectsBadSchema(t *testing.T) {
	_, err := ToAnthropicTools([]ToolSpec{{Name: "t", Schema: json.RawMessage(`not json`)}})
	if err == nil {
		t.Fatal("expected error for invalid schema")
	}
}

func TestToAnthropicTools_Empty(t *testing.T) {
	tools, err := ToAnthropicTools(nil)
	if err != nil || tools != nil {
		t.Errorf("ToAnthropicTools(nil) = %v, %v; want nil, nil", tools, err)
	}
}

func TestToAnthropicTool_SetsDescription(t *testing.T) {
	schema := json.RawMessage(`{"type":"object","properties":{}}`)
	param, err := ToAnthropicTool(ToolSpec{Name: "lookup", Description: "look things up", Schema: schema})
	if err != nil {
		t.Fatalf("ToAnthropicTool() error = %v", err)
	}
	if param.OfTool == nil || param.OfTool.Name != "lookup" {
		t.Fatalf("param = %+v", param)
	}
	if param.OfTool.Description.Value != "look things up" {
		t.Errorf("Description = %q, want %q", param.OfTool.Description.Value, "look things up")
	}
}
