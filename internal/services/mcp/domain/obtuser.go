package domain

import (
	"context"
	"errors"
	"fmt"
	"time"

	apperrors "github.com/louisbranch/obtuse.units/internal/platform/errors"
	"github.com/louisbranch/obtuse.units/internal/services/obtuse/app"
	"github.com/louisbranch/obtuse.units/internal/services/obtuse/domain/catalog"
)

// Obtuser is the application surface the MCP handlers call.
type Obtuser interface {
	Obtusify(ctx context.Context, req app.Request) (app.Response, error)
	ObtusifyText(ctx context.Context, req app.TextRequest) (app.TextResponse, error)
	Replay(ctx context.Context, id int64) (app.ReplayResult, error)
	History(ctx context.Context, query app.HistoryQuery) (app.HistoryPage, error)
	Catalog() catalog.Catalog
}

var _ Obtuser = (*app.Service)(nil)

// toolCallTimeout bounds one tool invocation.
const toolCallTimeout = 10 * time.Second

// ToolError carries a coded failure back to the MCP client with a localized
// message.
type ToolError struct {
	Action  string
	Code    apperrors.Code
	Message string
	Err     error
}

func (e *ToolError) Error() string {
	return fmt.Sprintf("%s failed [%s]: %s", e.Action, e.Code, e.Message)
}

func (e *ToolError) Unwrap() error {
	return e.Err
}

// toolError localizes coded errors; uncoded errors are wrapped unchanged.
func toolError(action string, err error, locale string) error {
	var coded *apperrors.Error
	if !errors.As(err, &coded) {
		return fmt.Errorf("%s failed: %w", action, err)
	}
	if locale == "" {
		locale = apperrors.BaseLocale
	}
	return &ToolError{
		Action:  action,
		Code:    coded.Code,
		Message: coded.Localize(locale),
		Err:     err,
	}
}

// DimsInput is a dimension vector over mass, length, time and current.
type DimsInput struct {
	Mass    int `json:"mass,omitempty" jsonschema:"exponent of mass (kilogram)"`
	Length  int `json:"length,omitempty" jsonschema:"exponent of length (metre)"`
	Time    int `json:"time,omitempty" jsonschema:"exponent of time (second)"`
	Current int `json:"current,omitempty" jsonschema:"exponent of electric current (ampere)"`
}

func (d DimsInput) vector() catalog.Dimensions {
	return catalog.Dimensions{d.Mass, d.Length, d.Time, d.Current}
}

func dimsOf(d catalog.Dimensions) DimsInput {
	return DimsInput{
		Mass:    d[catalog.AxisMass],
		Length:  d[catalog.AxisLength],
		Time:    d[catalog.AxisTime],
		Current: d[catalog.AxisCurrent],
	}
}

// OptionsInput holds the optional per-call knobs shared by the obtusify tools.
type OptionsInput struct {
	Seed          *int64   `json:"seed,omitempty" jsonschema:"optional seed for a reproducible result"`
	Loops         *int     `json:"loops,omitempty" jsonschema:"search iterations; more loops give more convoluted units"`
	MinValueOrder *int     `json:"min_value_order,omitempty" jsonschema:"smallest acceptable power of ten of the printed number"`
	MaxValueOrder *int     `json:"max_value_order,omitempty" jsonschema:"largest acceptable power of ten of the printed number"`
	MaxPrefixes   *int     `json:"max_prefixes,omitempty" jsonschema:"maximum number of prefixed units"`
	Spread        *float64 `json:"spread,omitempty" jsonschema:"probability in [0,1) of greedy steps while spreading over more units"`
}

func (o OptionsInput) params() app.Params {
	return app.Params{
		Seed:          o.Seed,
		Loops:         o.Loops,
		MinValueOrder: o.MinValueOrder,
		MaxValueOrder: o.MaxValueOrder,
		MaxPrefixes:   o.MaxPrefixes,
		Spread:        o.Spread,
	}
}

// RngResult reports the seed an obfuscation used.
type RngResult struct {
	SeedUsed   int64  `json:"seed_used" jsonschema:"seed value used by the server"`
	SeedSource string `json:"seed_source" jsonschema:"seed source (CLIENT or SERVER)"`
}
