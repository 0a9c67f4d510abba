// internal/workers/generation/compile-step/handler.go
package compilestep

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
	"github.com/google/uuid"

	"generation-workers/internal/common/config"
	apperrors "generation-workers/internal/common/errors"
	"generation-workers/internal/common/logger"
	"generation-workers/internal/common/metrics"
	"generation-workers/internal/common/observability"
	"generation-workers/internal/common/validation"
	"generation-workers/internal/generation"
	"generation-workers/internal/generation/orchestrator"
	"generation-workers/internal/generation/resources"
)

const TaskType = "compile-generation-step"

// StepCompiler is the part of the compiler the worker drives.
type StepCompiler interface {
	Decode(raw []byte) (generation.Input, error)
	CompileStep(ctx context.Context, in generation.Input) (*orchestrator.Step, error)
}

type Handler struct {
	config        *Config
	compiler      StepCompiler
	resolver      resources.DataResolver
	errorHandler  *apperrors.ErrorHandler
	observability *observability.Observability
	logger        logger.Logger
}

type HandlerOptions struct {
	AppConfig     *config.Config
	CustomConfig  *Config
	Compiler      StepCompiler
	Resolver      resources.DataResolver
	Observability *observability.Observability
	Logger        logger.Logger
}

func NewHandler(opts HandlerOptions) (*Handler, error) {
	workerConfig := createConfigFromAppConfig(opts.AppConfig, opts.CustomConfig)
	if err := workerConfig.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration for %s: %w", TaskType, err)
	}
	if opts.Compiler == nil {
		return nil, fmt.Errorf("%s: compiler is required", TaskType)
	}
	if opts.Resolver == nil {
		return nil, fmt.Errorf("%s: resource resolver is required", TaskType)
	}

	log := opts.Logger
	if log == nil {
		log = logger.NewStructured("info", "json")
	}
	log = log.WithFields(logger.Fields{"taskType": TaskType})

	return &Handler{
		config:        workerConfig,
		compiler:      opts.Compiler,
		resolver:      opts.Resolver,
		errorHandler:  apperrors.NewErrorHandler(log),
		observability: opts.Observability,
		logger:        log,
	}, nil
}

// Config exposes the effective worker settings.
func (h *Handler) Config() *Config {
	return h.config
}

func (h *Handler) Handle(client worker.JobClient, job entities.Job) {
	startTime := time.Now()
	metrics.WorkerJobsActive.WithLabelValues(TaskType).Inc()
	defer metrics.WorkerJobsActive.WithLabelValues(TaskType).Dec()

	ctx, cancel := context.WithTimeout(context.Background(), h.config.Timeout)
	defer cancel()

	h.logger.Info("Processing compile step request", logger.Fields{
		"jobKey":             job.GetKey(),
		"processInstanceKey": job.GetProcessInstanceKey(),
	})

	output, err := h.Execute(ctx, []byte(job.GetVariables()))
	if err != nil {
		code := apperrors.CodeOf(err)
		metrics.WorkerJobsFailed.WithLabelValues(TaskType, string(code)).Inc()
		h.observability.RecordJobProcessed(ctx, TaskType, "failed")
		h.observability.RecordJobDuration(ctx, TaskType, time.Since(startTime), "failed")
		h.errorHandler.HandleJobError(ctx, client, job, err)
		return
	}

	h.completeJob(ctx, client, job, output)
	metrics.WorkerJobsCompleted.WithLabelValues(TaskType).Inc()
	metrics.WorkerJobDuration.WithLabelValues(TaskType).Observe(time.Since(startTime).Seconds())
	h.observability.RecordJobProcessed(ctx, TaskType, "completed")
	h.observability.RecordJobDuration(ctx, TaskType, time.Since(startTime), "completed")
}

// Execute validates, hydrates and compiles one generation document.
func (h *Handler) Execute(ctx context.Context, document []byte) (*Output, error) {
	result, err := validation.ValidateJSON(validation.GenerationDocumentSchema, document)
	if err != nil {
		return nil, apperrors.NewInvalidGenerationInputError(err.Error())
	}
	if !result.Valid {
		return nil, apperrors.NewInvalidGenerationInputError(result.Summary())
	}

	var envelope Input
	if err := json.Unmarshal(document, &envelope); err != nil {
		return nil, apperrors.NewInvalidGenerationInputError(err.Error())
	}
	requestID := envelope.RequestID
	if requestID == "" {
		requestID = uuid.NewString()
	}
	log := h.logger.WithFields(logger.Fields{"requestId": requestID})

	in, err := h.compiler.Decode(document)
	if err != nil {
		return nil, err
	}
	if err := resources.Hydrate(ctx, h.resolver, in); err != nil {
		return nil, err
	}

	step, err := h.compiler.CompileStep(ctx, in)
	if err != nil {
		return nil, err
	}

	log.Info("Compiled generation step", logger.Fields{
		"ecosystem": in.Common().Ecosystem,
		"workflow":  in.Common().Workflow,
		"stepType":  step.Type,
	})
	return &Output{
		RequestID: requestID,
		StepType:  string(step.Type),
		Step:      step,
	}, nil
}

func (h *Handler) completeJob(ctx context.Context, client worker.JobClient, job entities.Job, output *Output) {
	cmd, err := client.NewCompleteJobCommand().
		JobKey(job.GetKey()).
		VariablesFromObject(output)
	if err != nil {
		h.errorHandler.HandleJobError(ctx, client, job, apperrors.NewInternalError(err))
		return
	}
	if _, err := cmd.Send(ctx); err != nil {
		h.logger.Error("failed to send complete job command", logger.Fields{
			"jobKey": job.GetKey(),
			"error":  err.Error(),
		})
	}
}
