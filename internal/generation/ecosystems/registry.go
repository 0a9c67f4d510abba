// Package ecosystems holds one step builder per ecosystem and fixed
// workflow, and the static table that routes requests to them.
package ecosystems

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"

	apperrors "generation-workers/internal/common/errors"
	"generation-workers/internal/common/logger"
	"generation-workers/internal/generation"
	"generation-workers/internal/generation/orchestrator"
)

// AirLookup resolves a resource version id to its AIR.
type AirLookup interface {
	GetOrThrow(id int) (string, error)
}

// WorkflowCompiler compiles a stored workflow template.
type WorkflowCompiler interface {
	Compile(ctx context.Context, key string, params map[string]interface{}) (json.RawMessage, error)
}

// ResolverCtx is what a builder may use besides its own input.
type ResolverCtx struct {
	Airs      AirLookup
	Workflows WorkflowCompiler
	Logger    logger.Logger
}

// Handler pairs the decoder of one input variant with its step builder.
type Handler struct {
	// Kind is the step type built for a request without source images.
	Kind    orchestrator.StepType
	decode  func(raw []byte) (generation.Input, error)
	compile func(ctx context.Context, in generation.Input, rc *ResolverCtx) (*orchestrator.Step, error)
}

// Define wraps a typed builder so every handler shares one signature.
func Define[T any, PT interface {
	*T
	generation.Input
}](kind orchestrator.StepType, build func(ctx context.Context, in PT, rc *ResolverCtx) (*orchestrator.Step, error)) Handler {
	return Handler{
		Kind: kind,
		decode: func(raw []byte) (generation.Input, error) {
			v := PT(new(T))
			if err := json.Unmarshal(raw, v); err != nil {
				return nil, apperrors.NewInvalidGenerationInputError(err.Error())
			}
			return v, nil
		},
		compile: func(ctx context.Context, in generation.Input, rc *ResolverCtx) (*orchestrator.Step, error) {
			typed, ok := in.(PT)
			if !ok {
				return nil, apperrors.NewInvalidGenerationInputError(fmt.Sprintf("builder expects %T, got %T", typed, in))
			}
			return build(ctx, typed, rc)
		},
	}
}

// Decode parses raw into this handler's input variant.
func (h Handler) Decode(raw []byte) (generation.Input, error) {
	return h.decode(raw)
}

// Compile builds the step for in.
func (h Handler) Compile(ctx context.Context, in generation.Input, rc *ResolverCtx) (*orchestrator.Step, error) {
	return h.compile(ctx, in, rc)
}

type ecosystemRoutes struct {
	handler     *Handler
	byBaseModel map[string]Handler
}

// Registry routes on workflow first, then ecosystem, then base model.
type Registry struct {
	workflows  map[string]Handler
	ecosystems map[generation.Ecosystem]ecosystemRoutes
}

func NewRegistry() *Registry {
	return &Registry{
		workflows:  map[string]Handler{},
		ecosystems: map[generation.Ecosystem]ecosystemRoutes{},
	}
}

// Workflow registers a fixed builder for an explicit workflow key.
func (r *Registry) Workflow(key string, h Handler) *Registry {
	r.workflows[key] = h
	return r
}

// Ecosystem registers the builder for every base model of eco.
func (r *Registry) Ecosystem(eco generation.Ecosystem, h Handler) *Registry {
	routes := r.ecosystems[eco]
	routes.handler = &h
	r.ecosystems[eco] = routes
	return r
}

// BaseModel registers a builder for one base model of eco. An ecosystem
// with base model routes only accepts those base models.
func (r *Registry) BaseModel(eco generation.Ecosystem, baseModel string, h Handler) *Registry {
	routes := r.ecosystems[eco]
	if routes.byBaseModel == nil {
		routes.byBaseModel = map[string]Handler{}
	}
	routes.byBaseModel[baseModel] = h
	r.ecosystems[eco] = routes
	return r
}

// Lookup finds the handler for a request. Workflow keys without a fixed
// builder fall through to the ecosystem routes.
func (r *Registry) Lookup(workflow string, eco generation.Ecosystem, baseModel string) (Handler, error) {
	_, h, err := r.Resolve(workflow, eco, baseModel)
	return h, err
}

// Resolve is Lookup that also reports which table entry matched.
func (r *Registry) Resolve(workflow string, eco generation.Ecosystem, baseModel string) (Route, Handler, error) {
	if h, ok := r.workflows[workflow]; ok && workflow != "" {
		return Route{Workflow: workflow, Kind: h.Kind}, h, nil
	}
	routes, ok := r.ecosystems[eco]
	if ok {
		if len(routes.byBaseModel) > 0 {
			if h, ok := routes.byBaseModel[baseModel]; ok {
				return Route{Ecosystem: eco, BaseModel: baseModel, Kind: h.Kind}, h, nil
			}
		} else if routes.handler != nil {
			return Route{Ecosystem: eco, Kind: routes.handler.Kind}, *routes.handler, nil
		}
	}
	return Route{}, Handler{}, apperrors.NewUnsupportedWorkflowError(workflow, string(eco), baseModel)
}

// Route is one entry of the static table.
type Route struct {
	Workflow  string
	Ecosystem generation.Ecosystem
	BaseModel string
	Kind      orchestrator.StepType
}

// String is the metric label of the route.
func (r Route) String() string {
	switch {
	case r.Workflow != "":
		return r.Workflow
	case r.BaseModel != "":
		return string(r.Ecosystem) + "/" + r.BaseModel
	default:
		return string(r.Ecosystem)
	}
}

// Routes lists the table in a stable order.
func (r *Registry) Routes() []Route {
	var out []Route
	for key, h := range r.workflows {
		out = append(out, Route{Workflow: key, Kind: h.Kind})
	}
	for eco, routes := range r.ecosystems {
		if routes.handler != nil && len(routes.byBaseModel) == 0 {
			out = append(out, Route{Ecosystem: eco, Kind: routes.handler.Kind})
		}
		for bm, h := range routes.byBaseModel {
			out = append(out, Route{Ecosystem: eco, BaseModel: bm, Kind: h.Kind})
		}
	}
	sort.Slice(out, func(i, j int) bool {
		a, b := out[i], out[j]
		if a.Workflow != b.Workflow {
			return a.Workflow < b.Workflow
		}
		if a.Ecosystem != b.Ecosystem {
			return a.Ecosystem < b.Ecosystem
		}
		return a.BaseModel < b.BaseModel
	})
	return out
}
