package pipeline

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/tombee/cascade/pkg/errors"
)

// Engine executes pipelines against a registry of operations. Construct with
// New and customize with the WithX methods before first use.
type Engine struct {
	registry Registry
	logger   *slog.Logger
	tracer   trace.Tracer
}

// New creates an engine backed by the given registry.
func New(registry Registry) *Engine {
	return &Engine{
		registry: registry,
		logger:   slog.Default(),
		tracer:   otel.Tracer("github.com/tombee/cascade/pkg/pipeline"),
	}
}

// WithLogger sets the logger used for run and step events.
func (e *Engine) WithLogger(logger *slog.Logger) *Engine {
	e.logger = logger
	return e
}

// WithTracer sets the tracer used to span runs and steps.
func (e *Engine) WithTracer(tracer trace.Tracer) *Engine {
	e.tracer = tracer
	return e
}

// runState is the mutable state of one run. A fresh runState is built for
// every Execute call so concurrent runs cannot observe each other's outputs.
type runState struct {
	id      string
	store   *OutputStore
	history []ExecutionRecord
}

// Execute runs the steps in order and always returns a structured result;
// step failures and panics are reported through the result, never as a
// returned error or escaped panic.
func (e *Engine) Execute(ctx context.Context, steps []Step) (result *Result) {
	run := &runState{id: uuid.NewString(), store: NewOutputStore()}
	logger := e.logger.With(slog.String("run_id", run.id))

	ctx, span := e.tracer.Start(ctx, "pipeline.run",
		trace.WithAttributes(attribute.Int("pipeline.steps", len(steps))))
	defer span.End()

	defer func() {
		if r := recover(); r != nil {
			err := &errors.PipelineError{Step: -1, Message: fmt.Sprintf("%v", r)}
			logger.Error("pipeline panicked", slog.Any("panic", r))
			span.SetStatus(codes.Error, err.Error())
			result = newFailureResult(run, err, -1)
		}
	}()

	logger.Info("starting pipeline", slog.Int("steps", len(steps)))
	for i, step := range steps {
		record, err := e.executeStep(ctx, logger, run, i, step)
		run.history = append(run.history, record)
		if err != nil {
			logger.Error("step failed",
				slog.Int("step", i),
				slog.String("operation", step.Operation),
				slog.Any("error", err))
			span.SetStatus(codes.Error, err.Error())
			return newFailureResult(run, err, i)
		}
	}
	logger.Info("pipeline complete", slog.Int("outputs", run.store.Len()))
	return newSuccessResult(run)
}

func (e *Engine) executeStep(ctx context.Context, logger *slog.Logger, run *runState, index int, step Step) (ExecutionRecord, error) {
	ctx, span := e.tracer.Start(ctx, "pipeline.step",
		trace.WithAttributes(
			attribute.Int("step.index", index),
			attribute.String("step.operation", step.Operation)))
	defer span.End()

	record := ExecutionRecord{
		Step:        index,
		Operation:   step.Operation,
		OutputAlias: step.OutputAlias,
		Status:      StepStatusPending,
	}
	fail := func(err error) (ExecutionRecord, error) {
		record.Status = StepStatusFailed
		record.Success = false
		record.Inputs = step.Inputs
		record.Error = err.Error()
		span.RecordError(err)
		return record, err
	}

	if step.OutputAlias != "" && run.store.Has(step.OutputAlias) {
		return fail(&errors.ValidationError{
			Field:      "output_alias",
			Message:    fmt.Sprintf("step %d: alias %q is already bound", index, step.OutputAlias),
			Suggestion: "give each step a distinct output_alias",
		})
	}

	record.Status = StepStatusResolving
	logger.Debug("resolving inputs", slog.Int("step", index), slog.String("operation", step.Operation))
	resolved, err := ResolveInputs(step.Inputs, run.store, run.history)
	if err != nil {
		return fail(err)
	}

	op, err := e.registry.Lookup(step.Operation)
	if err != nil {
		// Unknown operations are a validation failure whether they are
		// caught by a dry run or only here at execution time.
		return fail(&errors.ValidationError{
			Field:      "operation",
			Message:    fmt.Sprintf("step %d: unknown operation %q", index, step.Operation),
			Suggestion: "list registered operations and check the name",
			Cause:      err,
		})
	}

	record.Status = StepStatusInvoking
	outputs, err := e.invoke(ctx, op, resolved)
	if err != nil {
		return fail(err)
	}

	if err := run.store.Put(OutputKey(index), outputs); err != nil {
		return fail(err)
	}
	if step.OutputAlias != "" {
		if err := run.store.Put(step.OutputAlias, outputs); err != nil {
			return fail(err)
		}
	}

	record.Status = StepStatusSucceeded
	record.Success = true
	record.Inputs = resolved
	record.Outputs = outputs
	logger.Debug("step succeeded", slog.Int("step", index), slog.String("operation", step.Operation))
	return record, nil
}

// invoke calls the operation, normalizing returned errors and panics into
// OperationError so callers see one failure shape.
func (e *Engine) invoke(ctx context.Context, op Operation, inputs map[string]any) (outputs map[string]any, err error) {
	defer func() {
		if r := recover(); r != nil {
			outputs = nil
			err = &errors.OperationError{Operation: op.Name(), Message: fmt.Sprintf("panic: %v", r)}
		}
	}()
	outputs, err = op.Invoke(ctx, inputs)
	if err != nil {
		if errors.IsOperation(err) {
			return nil, err
		}
		return nil, &errors.OperationError{Operation: op.Name(), Message: err.Error(), Cause: err}
	}
	return outputs, nil
}
