package toolconv

import (
	openai "github.com/sashabaranov/go-openai"
)

// ToOpenAITools converts tool definitions to OpenAI's function-calling
// schema. Ollama's /api/chat accepts the identical wire shape, so
// internal/providers/ollama.go calls this too rather than duplicating it.
func ToOpenAITools(tools []ToolSpec) []openai.Tool {
	result := make([]openai.Tool, len(tools))
	for i, t := range tools {
		result[i] = openai.Tool{
			Type: openai.ToolTypeFunction,
			Function: &openai.FunctionDefinition{
				Name:        t.Name,
				Description: t.Description,
				Parameters:  parseSchema(t.Schema),
			},
		}
	}
	return result
}
