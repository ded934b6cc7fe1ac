package domain

import (
	"context"
	"time"

	"github.com/louisbranch/obtuse.units/internal/services/obtuse/app"
	"github.com/louisbranch/obtuse.units/internal/services/obtuse/storage"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

// HistoryEntry is one recorded call.
type HistoryEntry struct {
	ID            int64     `json:"id" jsonschema:"history id"`
	Seed          int64     `json:"seed" jsonschema:"seed the call used"`
	SeedSource    string    `json:"seed_source" jsonschema:"seed source (CLIENT or SERVER)"`
	Surface       string    `json:"surface,omitempty" jsonschema:"quantity as written, for text calls"`
	Value         float64   `json:"value" jsonschema:"magnitude in SI base units"`
	Dims          DimsInput `json:"dims" jsonschema:"dimension vector"`
	Loops         int       `json:"loops" jsonschema:"search iterations"`
	MinValueOrder *int      `json:"min_value_order,omitempty" jsonschema:"lower order bound, if set"`
	MaxValueOrder *int      `json:"max_value_order,omitempty" jsonschema:"upper order bound, if set"`
	MaxPrefixes   *int      `json:"max_prefixes,omitempty" jsonschema:"prefix budget, if set"`
	Spread        *float64  `json:"spread,omitempty" jsonschema:"spread, if set"`
	Text          string    `json:"text,omitempty" jsonschema:"rendered output, empty on failure"`
	Code          string    `json:"code" jsonschema:"OK or the error code"`
	CreatedAt     string    `json:"created_at" jsonschema:"RFC3339 timestamp"`
}

func historyEntry(call storage.CallRecord) HistoryEntry {
	return HistoryEntry{
		ID:            call.ID,
		Seed:          call.Seed,
		SeedSource:    call.SeedSource,
		Surface:       call.Surface,
		Value:         call.Value,
		Dims:          dimsOf(call.Dims),
		Loops:         call.Loops,
		MinValueOrder: call.MinValueOrder,
		MaxValueOrder: call.MaxValueOrder,
		MaxPrefixes:   call.MaxPrefixes,
		Spread:        call.Spread,
		Text:          call.Text,
		Code:          call.Code,
		CreatedAt:     call.CreatedAt.UTC().Format(time.RFC3339),
	}
}

// HistoryListInput represents the MCP tool input for listing history.
type HistoryListInput struct {
	Filter    string `json:"filter,omitempty" jsonschema:"AIP-160 filter, e.g. code = \"OK\" AND loops >= 3"`
	PageSize  int    `json:"page_size,omitempty" jsonschema:"maximum entries to return (default 20, max 100)"`
	PageToken string `json:"page_token,omitempty" jsonschema:"token from a previous page"`
	OrderBy   string `json:"order_by,omitempty" jsonschema:"created_at desc (default) or created_at asc"`
	Locale    string `json:"locale,omitempty" jsonschema:"locale for error messages"`
}

// HistoryListResult represents the MCP tool output for listing history.
type HistoryListResult struct {
	Calls         []HistoryEntry `json:"calls" jsonschema:"recorded calls"`
	NextPageToken string         `json:"next_page_token,omitempty" jsonschema:"token for the next page"`
}

// ReplayInput represents the MCP tool input for replaying a recorded call.
type ReplayInput struct {
	ID     int64  `json:"id" jsonschema:"history id to replay"`
	Locale string `json:"locale,omitempty" jsonschema:"locale for error messages"`
}

// ReplayResult represents the MCP tool output for a replay.
type ReplayResult struct {
	Call         HistoryEntry `json:"call" jsonschema:"the recorded call"`
	ReplayedText string       `json:"replayed_text,omitempty" jsonschema:"output of the rerun"`
	ReplayedCode string       `json:"replayed_code" jsonschema:"OK or the rerun's error code"`
	Match        bool         `json:"match" jsonschema:"whether the rerun reproduced the recorded outcome"`
}

// HistoryListTool defines the MCP tool schema for listing history.
func HistoryListTool() *mcp.Tool {
	return &mcp.Tool{
		Name:        "history_list",
		Description: "Lists recorded obtusify calls, newest first",
	}
}

// ReplayTool defines the MCP tool schema for replaying a recorded call.
func ReplayTool() *mcp.Tool {
	return &mcp.Tool{
		Name:        "obtusify_replay",
		Description: "Reruns a recorded call with its seed and checks the output matches",
	}
}

// HistoryListHandler executes a history listing.
func HistoryListHandler(svc Obtuser) mcp.ToolHandlerFor[HistoryListInput, HistoryListResult] {
	return func(ctx context.Context, _ *mcp.CallToolRequest, input HistoryListInput) (*mcp.CallToolResult, HistoryListResult, error) {
		runCtx, cancel := context.WithTimeout(ctx, toolCallTimeout)
		defer cancel()

		page, err := svc.History(runCtx, app.HistoryQuery{
			Filter:    input.Filter,
			PageSize:  input.PageSize,
			PageToken: input.PageToken,
			OrderBy:   input.OrderBy,
		})
		if err != nil {
			return nil, HistoryListResult{}, toolError("history list", err, input.Locale)
		}

		result := HistoryListResult{
			Calls:         make([]HistoryEntry, 0, len(page.Calls)),
			NextPageToken: page.NextPageToken,
		}
		for _, call := range page.Calls {
			result.Calls = append(result.Calls, historyEntry(call))
		}
		return &mcp.CallToolResult{}, result, nil
	}
}

// ReplayHandler executes a replay.
func ReplayHandler(svc Obtuser) mcp.ToolHandlerFor[ReplayInput, ReplayResult] {
	return func(ctx context.Context, _ *mcp.CallToolRequest, input ReplayInput) (*mcp.CallToolResult, ReplayResult, error) {
		runCtx, cancel := context.WithTimeout(ctx, toolCallTimeout)
		defer cancel()

		replay, err := svc.Replay(runCtx, input.ID)
		if err != nil {
			return nil, ReplayResult{}, toolError("replay", err, input.Locale)
		}
		return &mcp.CallToolResult{}, ReplayResult{
			Call:         historyEntry(replay.Call),
			ReplayedText: replay.Text,
			ReplayedCode: replay.Code,
			Match:        replay.Match,
		}, nil
	}
}
