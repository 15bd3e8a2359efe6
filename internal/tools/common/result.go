package common

import (
	"encoding/json"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
)

// JSONResult renders v as an indented JSON text result
func JSONResult(v any) *mcp.CallToolResult {
	out, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to encode result: %v", err))
	}
	return mcp.NewToolResultText(string(out))
}

// StringArg returns the string argument name, or "" when it is missing or
// not a string
func StringArg(args map[string]any, name string) string {
	s, _ := args[name].(string)
	return s
}

// ObjectArg returns the object argument name. Missing or null arguments
// yield nil; a JSON string holding an object is decoded.
func ObjectArg(args map[string]any, name string) (map[string]any, error) {
	switch v := args[name].(type) {
	case nil:
		return nil, nil
	case map[string]any:
		return v, nil
	case string:
		if v == "" {
			return nil, nil
		}
		var m map[string]any
		if err := json.Unmarshal([]byte(v), &m); err != nil {
			return nil, fmt.Errorf("%s must be a JSON object: %w", name, err)
		}
		return m, nil
	default:
		return nil, fmt.Errorf("%s must be a JSON object", name)
	}
}
