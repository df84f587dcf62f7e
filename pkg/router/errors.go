package router

import (
	rterrors "github.com/vango-dev/routetree/internal/errors"
	"github.com/vango-dev/routetree/pkg/pattern"
)

// Sentinel errors. Returned errors carry more detail; compare with
// errors.Is.
var (
	ErrDuplicateRouteName = rterrors.New(rterrors.CodeDuplicateRouteName)
	ErrMissingParam       = pattern.ErrMissingParam
	ErrUnknownRoute       = rterrors.New(rterrors.CodeUnknownRoute)
	ErrInvariantViolation = rterrors.New(rterrors.CodeInvariantViolation)
	ErrDestroyed          = rterrors.New(rterrors.CodeDestroyed)
	ErrAmbiguousRootPath  = rterrors.New(rterrors.CodeAmbiguousRootPath)
	ErrInvalidRoute       = rterrors.New(rterrors.CodeInvalidRoute)
	ErrUnexpectedParam    = rterrors.New(rterrors.CodeUnexpectedParam)
)
