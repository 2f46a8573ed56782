package commands

import (
	"context"

	goerrors "github.com/goliatone/go-errors"
)

const (
	pipelineValidationCode   = "PIPELINE_VALIDATION_FAILED"
	pipelineContextCanceled  = "PIPELINE_CONTEXT_CANCELED"
	pipelineContextTimeout   = "PIPELINE_CONTEXT_TIMEOUT"
	pipelineContextErrorCode = "PIPELINE_CONTEXT_ERROR"
	pipelineExecuteFailed    = "PIPELINE_EXECUTION_FAILED"
)

func wrapValidationError(err error) error {
	if err == nil {
		return nil
	}
	if goerrors.IsWrapped(err) {
		return err
	}
	return goerrors.Wrap(err, goerrors.CategoryValidation, "pipeline command validation failed").
		WithTextCode(pipelineValidationCode)
}

func wrapContextError(err error) error {
	if err == nil {
		return nil
	}
	if goerrors.IsWrapped(err) {
		return err
	}
	switch err {
	case context.Canceled:
		return goerrors.Wrap(err, goerrors.CategoryCommand, "pipeline command cancelled").
			WithTextCode(pipelineContextCanceled)
	case context.DeadlineExceeded:
		return goerrors.Wrap(err, goerrors.CategoryCommand, "pipeline command deadline exceeded").
			WithTextCode(pipelineContextTimeout)
	default:
		return goerrors.Wrap(err, goerrors.CategoryCommand, "pipeline command context error").
			WithTextCode(pipelineContextErrorCode)
	}
}

func wrapExecuteError(err error) error {
	if err == nil {
		return nil
	}
	if goerrors.IsWrapped(err) {
		return err
	}
	return goerrors.Wrap(err, goerrors.CategoryCommand, "pipeline command failed").
		WithTextCode(pipelineExecuteFailed)
}
