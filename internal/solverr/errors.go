// Package solverr centralizes the error taxonomy the solver uses to
// decide which terminal status to report. Callers outside the solver
// packages should compare with errors.Is against the sentinels below
// rather than matching on message text.
package solverr

import (
	"errors"
	"fmt"
)

// Sentinel error kinds, one per row of spec.md section 7.
var (
	// ErrDomainFeasibility marks a loaded point that failed a cone's
	// is_feas/is_dual_feas check. Callers inside the solver never see
	// this escape the cone layer; the line search treats it as a
	// rejected trial step.
	ErrDomainFeasibility = errors.New("point is not strictly feasible")

	// ErrNumericalFactorization marks a factorization that lost
	// positive-definiteness or became singular.
	ErrNumericalFactorization = errors.New("factorization failed")

	// ErrInconsistent marks preprocessing-detected inconsistency of the
	// primal or dual equality constraints.
	ErrInconsistent = errors.New("equality constraints are inconsistent")

	// ErrResourceLimit marks an iteration or time limit reached before
	// convergence.
	ErrResourceLimit = errors.New("resource limit reached")

	// ErrSlowProgress marks two consecutive iterations whose relative
	// improvement fell below tolerance.
	ErrSlowProgress = errors.New("slow progress")
)

// Wrapf wraps one of the sentinels above with call-site context while
// keeping errors.Is(err, kind) working.
func Wrapf(kind error, format string, args ...any) error {
	return &wrapped{kind: kind, msg: fmt.Sprintf(format, args...)}
}

type wrapped struct {
	kind error
	msg  string
}

func (w *wrapped) Error() string { return w.msg }
func (w *wrapped) Unwrap() error { return w.kind }
