package exporter

import (
	"errors"

	goerrors "github.com/goliatone/go-errors"

	"github.com/sleroq/notion2md/internal/domain/notion"
	"github.com/sleroq/notion2md/internal/infra/notionjson"
)

const (
	codeInvalidID       = "INVALID_ID"
	codeInvalidConfig   = "INVALID_CONFIG"
	codeInvalidSnapshot = "INVALID_SNAPSHOT"
	codeRootNotFound    = "ROOT_NOT_FOUND"
	codeSnapshotRead    = "SNAPSHOT_READ_FAILED"
	codeGraphAssembly   = "GRAPH_ASSEMBLY_FAILED"
	codeRender          = "RENDER_FAILED"
	codeTemplate        = "TEMPLATE_FAILED"
	codeDelivery        = "DELIVERY_FAILED"
)

func wrapValidationError(err error, message, code string) error {
	if err == nil {
		return nil
	}
	if goerrors.IsWrapped(err) {
		return err
	}
	return goerrors.Wrap(err, goerrors.CategoryValidation, message).WithTextCode(code)
}

func wrapCommandError(err error, message, code string) error {
	if err == nil {
		return nil
	}
	if goerrors.IsWrapped(err) {
		return err
	}
	return goerrors.Wrap(err, goerrors.CategoryCommand, message).WithTextCode(code)
}

// wrapSnapshotError separates bad input from I/O trouble while reading a snapshot.
func wrapSnapshotError(err error) error {
	var idErr *notion.InvalidIDError
	switch {
	case err == nil:
		return nil
	case errors.As(err, &idErr):
		return wrapValidationError(err, "snapshot contains an invalid id", codeInvalidID)
	case errors.Is(err, notionjson.ErrEnvelopeInvalid):
		return wrapValidationError(err, "snapshot document is invalid", codeInvalidSnapshot)
	default:
		return wrapCommandError(err, "read snapshot failed", codeSnapshotRead)
	}
}
