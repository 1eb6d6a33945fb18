package solver

import (
	"log/slog"
	"time"

	"github.com/hrautila/conic/solver/stepper"
)

// SystemSolverKind selects between the naive and QR-Cholesky system
// solvers, spec.md section 6's `system_solver` option.
type SystemSolverKind int

const (
	Naive SystemSolverKind = iota
	QRChol
)

// Options mirrors the shape of the teacher's cvx.SolverOptions (see
// tests/testlp.go) widened to the conic solver's full option set from
// spec.md section 6. Logger nil falls back to slog.Default(); Trace nil
// disables the per-iteration callback.
type Options struct {
	Verbose bool
	Logger  *slog.Logger
	Trace   func(IterationRecord)

	IterLimit int
	TimeLimit time.Duration

	TolRelOpt float64
	TolAbsOpt float64
	TolFeas   float64
	TolSlow   float64

	Preprocess        bool
	InitUseIterative  bool
	InitTolQR         float64
	InitUseFallback   bool

	MaxNbhd      float64
	UseInftyNbhd bool

	SystemSolver SystemSolverKind

	Stepper stepper.Options
}

// DefaultOptions returns the spec-documented defaults.
func DefaultOptions() Options {
	return Options{
		IterLimit: 100,
		TimeLimit: 10 * time.Minute,
		TolRelOpt: 1e-8, TolAbsOpt: 1e-8, TolFeas: 1e-8, TolSlow: 1e-3,
		Preprocess:   true,
		InitTolQR:    0,
		MaxNbhd:      0.7,
		UseInftyNbhd: false,
		SystemSolver: Naive,
		Stepper:      stepper.DefaultOptions(),
	}
}

// IterationRecord is the structured payload passed to Options.Trace once
// per main-loop iteration and, when Verbose is set, logged as greppable
// attributes (spec.md's per-iteration table, per the logging design).
type IterationRecord struct {
	Iter  int
	Mu    float64
	Alpha float64
	Gap   float64
	NormRX, NormRY, NormRZ float64
	Status Status
}
