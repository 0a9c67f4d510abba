// Package compiler is the entry point that turns a normalized generation
// request into one orchestrator step.
package compiler

import (
	"context"
	"encoding/json"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"

	apperrors "generation-workers/internal/common/errors"
	"generation-workers/internal/common/logger"
	"generation-workers/internal/common/metrics"
	"generation-workers/internal/generation"
	"generation-workers/internal/generation/ecosystems"
	"generation-workers/internal/generation/orchestrator"
	"generation-workers/internal/generation/resources"
)

// Compiler routes requests through a Registry. It holds no per-request
// state and is safe for concurrent use.
type Compiler struct {
	registry  *ecosystems.Registry
	workflows ecosystems.WorkflowCompiler
	tracer    trace.Tracer
	logger    logger.Logger
}

// New builds a Compiler. A nil tracer disables tracing.
func New(registry *ecosystems.Registry, workflows ecosystems.WorkflowCompiler, tracer trace.Tracer, log logger.Logger) *Compiler {
	if tracer == nil {
		tracer = noop.NewTracerProvider().Tracer("compiler")
	}
	return &Compiler{
		registry:  registry,
		workflows: workflows,
		tracer:    tracer,
		logger:    log,
	}
}

// header carries only the routing discriminators of a request document.
type header struct {
	Workflow  string               `json:"workflow"`
	Ecosystem generation.Ecosystem `json:"ecosystem"`
	BaseModel string               `json:"baseModel"`
}

// Decode reads the routing discriminators from raw and parses the rest into
// the input variant of the matching handler.
func (c *Compiler) Decode(raw []byte) (generation.Input, error) {
	var h header
	if err := json.Unmarshal(raw, &h); err != nil {
		return nil, apperrors.NewInvalidGenerationInputError(err.Error())
	}
	handler, err := c.registry.Lookup(h.Workflow, h.Ecosystem, h.BaseModel)
	if err != nil {
		return nil, err
	}
	return handler.Decode(raw)
}

// CompileStep builds the step for a decoded, hydrated request. Resources
// without catalogue data are rejected rather than dropped.
func (c *Compiler) CompileStep(ctx context.Context, in generation.Input) (*orchestrator.Step, error) {
	b := in.Common()
	route := "unrouted"
	matched, handler, lookupErr := c.registry.Resolve(b.Workflow, b.Ecosystem, b.BaseModel)
	if lookupErr == nil {
		route = matched.String()
	}

	ctx, span := c.tracer.Start(ctx, "compileStep", trace.WithAttributes(
		attribute.String("generation.route", route),
		attribute.String("generation.ecosystem", string(b.Ecosystem)),
		attribute.String("generation.base_model", b.BaseModel),
		attribute.Int("generation.resources", len(b.Resources)),
	))
	defer span.End()

	start := time.Now()
	err := lookupErr
	if err == nil {
		err = resources.RequireHydrated(in)
	}
	var s *orchestrator.Step
	if err == nil {
		s, err = handler.Compile(ctx, in, &ecosystems.ResolverCtx{
			Airs:      resources.ForRequest(in),
			Workflows: c.workflows,
			Logger:    c.logger,
		})
	}
	metrics.StepCompileDuration.WithLabelValues(route).Observe(time.Since(start).Seconds())

	if err != nil {
		stdErr := apperrors.Normalize(err)
		span.RecordError(stdErr)
		span.SetStatus(codes.Error, string(stdErr.Code))
		metrics.StepFailures.WithLabelValues(string(stdErr.Code)).Inc()
		c.logFailure(route, stdErr)
		return nil, stdErr
	}

	span.SetAttributes(attribute.String("generation.step_type", string(s.Type)))
	metrics.StepsCompiled.WithLabelValues(string(s.Type), route).Inc()
	c.logger.Debug("Compiled generation step", logger.Fields{
		"route":    route,
		"stepType": s.Type,
	})
	return s, nil
}

// CompileJSON decodes and compiles a request whose resources are already
// hydrated.
func (c *Compiler) CompileJSON(ctx context.Context, raw []byte) (*orchestrator.Step, error) {
	in, err := c.Decode(raw)
	if err != nil {
		return nil, err
	}
	return c.CompileStep(ctx, in)
}

// logFailure logs by category: bad input is the caller's problem, while
// configuration and internal failures point at this service's data.
func (c *Compiler) logFailure(route string, err *apperrors.StandardError) {
	category := apperrors.GetErrorCategory(err.Code)
	fields := logger.Fields{
		"route":     route,
		"errorCode": err.Code,
		"details":   err.Details,
		"category":  category,
	}
	switch category {
	case apperrors.CategoryMalformedInput:
		c.logger.Warn("Rejected generation request", fields)
	case apperrors.CategoryInfrastructure:
		c.logger.Warn("Step compilation hit an infrastructure failure", fields)
	case apperrors.CategoryConfiguration:
		fields["category"] = "data-integrity"
		c.logger.Error("Workflow configuration does not match request", fields)
	default:
		c.logger.Error("Step compilation failed", fields)
	}
}
