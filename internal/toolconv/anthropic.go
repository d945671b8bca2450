package toolconv

import (
	"encoding/json"
	"fmt"

	"github.com/anthropics/anthropic-sdk-go"
)

// ToAnthropicTools converts tool definitions to Anthropic's Messages
// API tool schema. The teacher's beta (computer-use) variant,
// ToAnthropicBetaTools, is not carried: SPEC_FULL.md names no
// computer-use tool, so there is nothing that would ever call it.
func ToAnthropicTools(tools []ToolSpec) ([]anthropic.ToolUnionParam, error) {
	if len(tools) == 0 {
		return nil, nil
	}
	result := make([]anthropic.ToolUnionParam, 0, len(tools))
	for _, t := range tools {
		param, err := ToAnthropicTool(t)
		if err != nil {
			return nil, err
		}
		result = append(result, param)
	}
	return result, nil
}

// ToAnthropicTool converts a single tool definition.
func ToAnthropicTool(t ToolSpec) (anthropic.ToolUnionParam, error) {
	var schema anthropic.ToolInputSchemaParam
	if err := json.Unmarshal(t.Schema, &schema); err != nil {
		return anthropic.ToolUnionParam{}, fmt.Errorf("toolconv: invalid schema for %s: %w", t.Name, err)
	}

	param := anthropic.ToolUnionParamOfTool(schema, t.Name)
	if param.OfTool == nil {
		return anthropic.ToolUnionParam{}, fmt.Errorf("toolconv: invalid schema for %s: missing tool definition", t.Name)
	}
	param.OfTool.Description = anthropic.String(t.Description)
	return param, nil
}
