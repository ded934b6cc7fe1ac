// Package app wires the obfuscation engine to seeds, history and telemetry.
package app

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	apperrors "github.com/louisbranch/obtuse.units/internal/platform/errors"
	"github.com/louisbranch/obtuse.units/internal/platform/logging"
	"github.com/louisbranch/obtuse.units/internal/platform/random"
	"github.com/louisbranch/obtuse.units/internal/services/obtuse/domain/catalog"
	"github.com/louisbranch/obtuse.units/internal/services/obtuse/domain/engine"
	"github.com/louisbranch/obtuse.units/internal/services/obtuse/domain/quantity"
	"github.com/louisbranch/obtuse.units/internal/services/obtuse/storage"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	otelcodes "go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const tracerName = "github.com/louisbranch/obtuse.units/internal/services/obtuse/app"

// DefaultReplyLimit is the reply length, in runes, the bot posts within.
const DefaultReplyLimit = 280

// Config holds the dependencies and defaults of a Service.
type Config struct {
	// Catalog defaults to catalog.SI.
	Catalog *catalog.Catalog
	// Defaults apply to every request field left unset.
	Defaults engine.Options
	// ReplyLimit bounds composed replies; zero uses DefaultReplyLimit and a
	// negative value disables the bound.
	ReplyLimit int
	// History records every call when set.
	History storage.HistoryStore
	Logger  *slog.Logger
	Tracer  trace.Tracer
	// NewSeed generates server seeds; nil uses random.NewSeed.
	NewSeed func() (int64, error)
	Now     func() time.Time
}

// Service runs obfuscations.
type Service struct {
	catalog    catalog.Catalog
	defaults   engine.Options
	replyLimit int
	history    storage.HistoryStore
	logger     *slog.Logger
	tracer     trace.Tracer
	newSeed    func() (int64, error)
	now        func() time.Time
}

// NewService validates cfg and builds a Service.
func NewService(cfg Config) (*Service, error) {
	cat := catalog.SI()
	if cfg.Catalog != nil {
		cat = cfg.Catalog.Clone()
	}
	if err := cat.Validate(); err != nil {
		return nil, apperrors.WrapWithMetadata(apperrors.CodeInvalidCatalog, "validate catalog",
			map[string]string{"Reason": err.Error()}, err)
	}

	defaults := cfg.Defaults
	if defaults.Loops == 0 {
		defaults.Loops = engine.DefaultOptions().Loops
	}
	if err := defaults.Validate(); err != nil {
		return nil, mapError(err)
	}

	s := &Service{
		catalog:    cat,
		defaults:   defaults,
		replyLimit: cfg.ReplyLimit,
		history:    cfg.History,
		logger:     cfg.Logger,
		tracer:     cfg.Tracer,
		newSeed:    cfg.NewSeed,
		now:        cfg.Now,
	}
	if s.replyLimit == 0 {
		s.replyLimit = DefaultReplyLimit
	}
	if s.logger == nil {
		s.logger = logging.Discard()
	}
	if s.tracer == nil {
		s.tracer = otel.Tracer(tracerName)
	}
	if s.newSeed == nil {
		s.newSeed = random.NewSeed
	}
	if s.now == nil {
		s.now = time.Now
	}
	return s, nil
}

// Params are the per-call knobs. Nil fields take the service defaults.
type Params struct {
	Seed          *int64
	Loops         *int
	MinValueOrder *int
	MaxValueOrder *int
	MaxPrefixes   *int
	Spread        *float64
}

// Request obfuscates a quantity already in SI base units.
type Request struct {
	Value float64
	Dims  catalog.Dimensions
	Params
}

// Response is a successful obfuscation.
type Response struct {
	// ID is the history id, zero when history is off or recording failed.
	ID         int64
	Text       string
	Units      string
	Mantissa   float64
	Order      int
	Prefixes   int
	Seed       int64
	SeedSource random.SeedSource
}

// Catalog returns a copy of the active catalog.
func (s *Service) Catalog() catalog.Catalog {
	return s.catalog.Clone()
}

// HistoryEnabled reports whether calls are recorded.
func (s *Service) HistoryEnabled() bool {
	return s.history != nil
}

// Obtusify resolves a seed, runs the engine and records the call.
func (s *Service) Obtusify(ctx context.Context, req Request) (Response, error) {
	return s.obtusify(ctx, req, "")
}

func (s *Service) obtusify(ctx context.Context, req Request, surface string) (Response, error) {
	if err := ctx.Err(); err != nil {
		return Response{}, err
	}
	seed, source, err := random.ResolveSeed(req.Seed, s.newSeed)
	if err != nil {
		return Response{}, apperrors.Wrap(apperrors.CodeUnknown, "resolve seed", err)
	}
	opts := s.options(req.Params)

	ctx, span := s.tracer.Start(ctx, "obtuse.Obtusify", trace.WithAttributes(
		attribute.Int64("obtuse.seed", seed),
		attribute.String("obtuse.seed_source", string(source)),
		attribute.Int("obtuse.loops", opts.Loops),
		attribute.String("obtuse.dims", req.Dims.String()),
	))
	defer span.End()

	res, runErr := engine.Obtusify(engine.Quantity{Value: req.Value, Dims: req.Dims}, s.catalog, opts, engine.NewRand(seed))
	if isErr(runErr, engine.ErrNoDecomposition) {
		runErr = apperrors.WrapWithMetadata(apperrors.CodeNoDecomposition, runErr.Error(),
			map[string]string{"Dims": req.Dims.String()}, runErr)
	}
	runErr = mapError(runErr)

	code := storage.OutcomeOK
	if runErr != nil {
		code = string(apperrors.CodeOf(runErr))
		span.RecordError(runErr)
		span.SetStatus(otelcodes.Error, code)
	}
	span.SetAttributes(attribute.String("obtuse.outcome", code))

	id := s.record(ctx, storage.CallRecord{
		Seed:          seed,
		SeedSource:    string(source),
		Surface:       surface,
		Value:         req.Value,
		Dims:          req.Dims,
		Loops:         opts.Loops,
		MinValueOrder: opts.MinValueOrder,
		MaxValueOrder: opts.MaxValueOrder,
		MaxPrefixes:   opts.MaxPrefixes,
		Spread:        opts.Spread,
		Text:          res.Text,
		Code:          code,
		CreatedAt:     s.now().UTC(),
	})

	if runErr != nil {
		s.logger.DebugContext(ctx, "obtusify failed", "seed", seed, "code", code, "error", runErr)
		return Response{}, runErr
	}
	s.logger.DebugContext(ctx, "obtusified", "seed", seed, "id", id, "text", res.Text)
	return Response{
		ID:         id,
		Text:       res.Text,
		Units:      res.Units,
		Mantissa:   res.Mantissa,
		Order:      res.Order,
		Prefixes:   res.PrefixCount(),
		Seed:       seed,
		SeedSource: source,
	}, nil
}

// record stores call when history is on. A storage failure is logged, not
// returned: the obfuscation itself succeeded.
func (s *Service) record(ctx context.Context, call storage.CallRecord) int64 {
	if s.history == nil {
		return 0
	}
	id, err := s.history.RecordCall(ctx, call)
	if err != nil {
		s.logger.WarnContext(ctx, "record call", "seed", call.Seed, "error", err)
		return 0
	}
	return id
}

func (s *Service) options(p Params) engine.Options {
	opts := s.defaults
	if p.Loops != nil {
		opts.Loops = *p.Loops
	}
	if p.MinValueOrder != nil {
		opts.MinValueOrder = p.MinValueOrder
	}
	if p.MaxValueOrder != nil {
		opts.MaxValueOrder = p.MaxValueOrder
	}
	if p.MaxPrefixes != nil {
		opts.MaxPrefixes = p.MaxPrefixes
	}
	if p.Spread != nil {
		opts.Spread = p.Spread
	}
	return opts
}

// TextRequest obfuscates the first quantity found in free text.
type TextRequest struct {
	Text string
	// Handle is appended to the reply as " @handle" when set.
	Handle string
	Params
}

// TextResponse carries the obfuscation and the composed reply.
type TextResponse struct {
	Response
	// Surface is the quantity as written in the text.
	Surface string
	Reply   string
}

// ObtusifyText parses a quantity out of req.Text, obfuscates it and composes
// a reply that substitutes the result for the original quantity.
func (s *Service) ObtusifyText(ctx context.Context, req TextRequest) (TextResponse, error) {
	q, err := quantity.Parse(req.Text)
	if err != nil {
		return TextResponse{}, mapError(err)
	}

	resp, err := s.obtusify(ctx, Request{Value: q.Value, Dims: q.Dims, Params: req.Params}, q.Surface)
	if err != nil {
		return TextResponse{}, err
	}

	reply, err := ComposeReply(req.Text, q.Surface, resp.Text, req.Handle, s.replyLimit)
	if err != nil {
		return TextResponse{}, mapError(err)
	}
	return TextResponse{Response: resp, Surface: q.Surface, Reply: reply}, nil
}

// ReplayResult compares a recorded call with a fresh run of the same inputs.
type ReplayResult struct {
	Call storage.CallRecord
	// Text and Code are the outputs of the rerun.
	Text string
	Code string
	// Match is true when the rerun reproduced the recorded outcome exactly.
	Match bool
}

// Replay reruns the recorded call id with its seed and options. The rerun is
// not recorded.
func (s *Service) Replay(ctx context.Context, id int64) (ReplayResult, error) {
	if s.history == nil {
		return ReplayResult{}, apperrors.New(apperrors.CodeHistoryDisabled, "history is disabled")
	}
	call, err := s.history.GetCall(ctx, id)
	if err != nil {
		return ReplayResult{}, mapStorageError(err, id)
	}

	opts := s.defaults
	opts.Loops = call.Loops
	opts.MinValueOrder = call.MinValueOrder
	opts.MaxValueOrder = call.MaxValueOrder
	opts.MaxPrefixes = call.MaxPrefixes
	opts.Spread = call.Spread

	_, span := s.tracer.Start(ctx, "obtuse.Replay", trace.WithAttributes(
		attribute.Int64("obtuse.call_id", id),
		attribute.Int64("obtuse.seed", call.Seed),
	))
	defer span.End()

	result := ReplayResult{Call: call, Code: storage.OutcomeOK}
	res, err := engine.Obtusify(engine.Quantity{Value: call.Value, Dims: call.Dims}, s.catalog, opts, engine.NewRand(call.Seed))
	if err != nil {
		result.Code = string(apperrors.CodeOf(mapError(err)))
	} else {
		result.Text = res.Text
	}
	result.Match = result.Code == call.Code && result.Text == call.Text
	span.SetAttributes(attribute.Bool("obtuse.match", result.Match))
	if !result.Match {
		s.logger.InfoContext(ctx, "replay diverged", "id", id, "recorded", call.Text, "replayed", result.Text)
	}
	return result, nil
}

func idMetadata(id int64) map[string]string {
	return map[string]string{"ID": strconv.FormatInt(id, 10)}
}

func mapStorageError(err error, id int64) error {
	if err == nil {
		return nil
	}
	if code := apperrors.CodeOf(err); code != apperrors.CodeUnknown {
		return err
	}
	switch {
	case isErr(err, storage.ErrNotFound):
		return apperrors.WrapWithMetadata(apperrors.CodeNotFound, fmt.Sprintf("call %d not found", id), idMetadata(id), err)
	case isErr(err, storage.ErrInvalidFilter):
		return apperrors.Wrap(apperrors.CodeInvalidFilter, "invalid filter", err)
	case isErr(err, context.Canceled), isErr(err, context.DeadlineExceeded):
		return err
	default:
		return apperrors.Wrap(apperrors.CodeStorageFailure, "history store", err)
	}
}
