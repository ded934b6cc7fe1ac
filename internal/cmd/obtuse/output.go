package obtuse

import (
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/louisbranch/obtuse.units/internal/services/obtuse/app"
	"github.com/louisbranch/obtuse.units/internal/services/obtuse/storage"
)

type output struct {
	ID         int64   `json:"id,omitempty"`
	Text       string  `json:"text"`
	Units      string  `json:"units"`
	Mantissa   float64 `json:"mantissa"`
	Order      int     `json:"order"`
	Prefixes   int     `json:"prefixes"`
	Seed       int64   `json:"seed"`
	SeedSource string  `json:"seed_source"`
}

func newOutput(resp app.Response) output {
	return output{
		ID:         resp.ID,
		Text:       resp.Text,
		Units:      resp.Units,
		Mantissa:   resp.Mantissa,
		Order:      resp.Order,
		Prefixes:   resp.Prefixes,
		Seed:       resp.Seed,
		SeedSource: string(resp.SeedSource),
	}
}

type textOutput struct {
	output
	Surface string `json:"surface"`
	Reply   string `json:"reply"`
}

type callOutput struct {
	ID         int64   `json:"id"`
	Seed       int64   `json:"seed"`
	SeedSource string  `json:"seed_source"`
	Surface    string  `json:"surface,omitempty"`
	Value      float64 `json:"value"`
	Dims       string  `json:"dims"`
	Loops      int     `json:"loops"`
	Text       string  `json:"text,omitempty"`
	Code       string  `json:"code"`
	CreatedAt  string  `json:"created_at"`
}

type historyOutput struct {
	Calls         []callOutput `json:"calls"`
	NextPageToken string       `json:"next_page_token,omitempty"`
}

type replayOutput struct {
	Call         callOutput `json:"call"`
	ReplayedText string     `json:"replayed_text,omitempty"`
	ReplayedCode string     `json:"replayed_code"`
	Match        bool       `json:"match"`
}

func writeHistory(out io.Writer, page app.HistoryPage, asJSON bool) error {
	calls := make([]callOutput, 0, len(page.Calls))
	for _, call := range page.Calls {
		calls = append(calls, newCallOutput(call))
	}
	if asJSON {
		return writeJSON(out, historyOutput{Calls: calls, NextPageToken: page.NextPageToken})
	}
	for _, call := range calls {
		if _, err := fmt.Fprintf(out, "%d\t%s\t%s\t%g %s\t%s\n", call.ID, call.CreatedAt, call.Code, call.Value, call.Dims, call.Text); err != nil {
			return err
		}
	}
	if page.NextPageToken != "" {
		if _, err := fmt.Fprintf(out, "next page: %s\n", page.NextPageToken); err != nil {
			return err
		}
	}
	return nil
}

func writeReplay(out io.Writer, result app.ReplayResult, asJSON bool) error {
	if asJSON {
		return writeJSON(out, replayOutput{
			Call:         newCallOutput(result.Call),
			ReplayedText: result.Text,
			ReplayedCode: result.Code,
			Match:        result.Match,
		})
	}
	verdict := "match"
	if !result.Match {
		verdict = "MISMATCH"
	}
	_, err := fmt.Fprintf(out, "recorded: %s %s\nreplayed: %s %s\n%s\n",
		result.Call.Code, result.Call.Text, result.Code, result.Text, verdict)
	return err
}

func writeJSON(out io.Writer, v any) error {
	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func newCallOutput(call storage.CallRecord) callOutput {
	return callOutput{
		ID:         call.ID,
		Seed:       call.Seed,
		SeedSource: call.SeedSource,
		Surface:    call.Surface,
		Value:      call.Value,
		Dims:       call.Dims.String(),
		Loops:      call.Loops,
		Text:       call.Text,
		Code:       call.Code,
		CreatedAt:  call.CreatedAt.UTC().Format(time.RFC3339),
	}
}
