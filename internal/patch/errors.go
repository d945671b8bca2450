package patch

import (
	"encoding/json"

	"github.com/corebridge/agentcore/internal/tool"
)

func toolError(message string) *tool.Result {
	payload, err := json.Marshal(map[string]string{"error": message})
	if err != nil {
		return &tool.Result{Content: message, IsError: true}
	}
	return &tool.Result{Content: string(payload), IsError: true}
}
