package domain

import (
	"context"

	"github.com/louisbranch/obtuse.units/internal/services/obtuse/app"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

// ObtusifyInput represents the MCP tool input for a numeric obfuscation.
type ObtusifyInput struct {
	Value float64   `json:"value" jsonschema:"positive magnitude in SI base units"`
	Dims  DimsInput `json:"dims" jsonschema:"dimension vector of the value"`
	// Options may be omitted to use the server defaults.
	Options OptionsInput `json:"options,omitempty" jsonschema:"optional obfuscation options"`
	Locale  string       `json:"locale,omitempty" jsonschema:"locale for error messages (en-US or pt-BR)"`
}

// ObtusifyResult represents the MCP tool output for an obfuscation.
type ObtusifyResult struct {
	ID       int64     `json:"id,omitempty" jsonschema:"history id, when history is enabled"`
	Text     string    `json:"text" jsonschema:"rendered obtuse quantity"`
	Units    string    `json:"units" jsonschema:"rendered unit expression"`
	Mantissa float64   `json:"mantissa" jsonschema:"printed number"`
	Order    int       `json:"order" jsonschema:"prefix shift minus the value's order of magnitude; the printed number's order of magnitude is its negation"`
	Prefixes int       `json:"prefixes" jsonschema:"number of prefixed units"`
	Rng      RngResult `json:"rng" jsonschema:"rng details"`
}

// ObtusifyTextInput represents the MCP tool input for a free-text obfuscation.
type ObtusifyTextInput struct {
	Text    string       `json:"text" jsonschema:"text containing a quantity such as '5 km'"`
	Handle  string       `json:"handle,omitempty" jsonschema:"optional handle appended to the reply"`
	Options OptionsInput `json:"options,omitempty" jsonschema:"optional obfuscation options"`
	Locale  string       `json:"locale,omitempty" jsonschema:"locale for error messages (en-US or pt-BR)"`
}

// ObtusifyTextResult represents the MCP tool output for a free-text obfuscation.
type ObtusifyTextResult struct {
	Result  ObtusifyResult `json:"result" jsonschema:"the obfuscation"`
	Surface string         `json:"surface" jsonschema:"quantity as written in the text"`
	Reply   string         `json:"reply" jsonschema:"text with the quantity replaced"`
}

// ObtusifyTool defines the MCP tool schema for numeric obfuscation.
func ObtusifyTool() *mcp.Tool {
	return &mcp.Tool{
		Name:        "obtusify",
		Description: "Renders an SI quantity as an exact but needlessly convoluted combination of units",
	}
}

// ObtusifyTextTool defines the MCP tool schema for free-text obfuscation.
func ObtusifyTextTool() *mcp.Tool {
	return &mcp.Tool{
		Name:        "obtusify_text",
		Description: "Finds a quantity in text and replies with it obtusified",
	}
}

func resultOf(resp app.Response) ObtusifyResult {
	return ObtusifyResult{
		ID:       resp.ID,
		Text:     resp.Text,
		Units:    resp.Units,
		Mantissa: resp.Mantissa,
		Order:    resp.Order,
		Prefixes: resp.Prefixes,
		Rng: RngResult{
			SeedUsed:   resp.Seed,
			SeedSource: string(resp.SeedSource),
		},
	}
}

// ObtusifyHandler executes a numeric obfuscation.
func ObtusifyHandler(svc Obtuser) mcp.ToolHandlerFor[ObtusifyInput, ObtusifyResult] {
	return func(ctx context.Context, _ *mcp.CallToolRequest, input ObtusifyInput) (*mcp.CallToolResult, ObtusifyResult, error) {
		runCtx, cancel := context.WithTimeout(ctx, toolCallTimeout)
		defer cancel()

		resp, err := svc.Obtusify(runCtx, app.Request{
			Value:  input.Value,
			Dims:   input.Dims.vector(),
			Params: input.Options.params(),
		})
		if err != nil {
			return nil, ObtusifyResult{}, toolError("obtusify", err, input.Locale)
		}
		return &mcp.CallToolResult{}, resultOf(resp), nil
	}
}

// ObtusifyTextHandler executes a free-text obfuscation.
func ObtusifyTextHandler(svc Obtuser) mcp.ToolHandlerFor[ObtusifyTextInput, ObtusifyTextResult] {
	return func(ctx context.Context, _ *mcp.CallToolRequest, input ObtusifyTextInput) (*mcp.CallToolResult, ObtusifyTextResult, error) {
		runCtx, cancel := context.WithTimeout(ctx, toolCallTimeout)
		defer cancel()

		resp, err := svc.ObtusifyText(runCtx, app.TextRequest{
			Text:   input.Text,
			Handle: input.Handle,
			Params: input.Options.params(),
		})
		if err != nil {
			return nil, ObtusifyTextResult{}, toolError("obtusify text", err, input.Locale)
		}
		return &mcp.CallToolResult{}, ObtusifyTextResult{
			Result:  resultOf(resp.Response),
			Surface: resp.Surface,
			Reply:   resp.Reply,
		}, nil
	}
}
