package mcp

import (
	"encoding/json"
	"fmt"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

// schemaCache memoizes compiled InputSchema documents by their raw JSON
// text, grounded on pkg/pluginsdk/validation.go's identical
// schema-compile-and-cache pattern for plugin config manifests.
var schemaCache sync.Map

// compileToolSchema compiles an MCP tool's InputSchema, caching the
// result so a tool called repeatedly across a session doesn't pay
// jsonschema's compile cost on every invocation.
func compileToolSchema(raw json.RawMessage) (*jsonschema.Schema, error) {
	key := string(raw)
	if cached, ok := schemaCache.Load(key); ok {
		if compiled, ok := cached.(*jsonschema.Schema); ok {
			return compiled, nil
		}
	}
	compiled, err := jsonschema.CompileString("mcp-tool-input.schema.json", key)
	if err != nil {
		return nil, err
	}
	schemaCache.Store(key, compiled)
	return compiled, nil
}

// validateToolArguments checks arguments against an MCP tool's
// InputSchema before it is ever sent to the server process. Rejecting
// malformed arguments here means a confused model call fails fast with
// a schema error the provider can retry against, instead of consuming
// a round trip to an external MCP server only to get the same
// rejection back (or, worse, undefined behavior from a server that
// doesn't validate its own inputs strictly).
func validateToolArguments(raw json.RawMessage, arguments map[string]any) error {
	if len(raw) == 0 {
		return nil
	}
	schema, err := compileToolSchema(raw)
	if err != nil {
		// An uncompilable schema is the server's problem, not the
		// caller's argument's — don't block dispatch on it.
		return nil
	}
	if arguments == nil {
		arguments = map[string]any{}
	}
	if err := schema.Validate(arguments); err != nil {
		return fmt.Errorf("mcp: arguments do not match tool input schema: %w", err)
	}
	return nil
}
