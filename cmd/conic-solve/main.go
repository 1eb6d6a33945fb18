// Command conic-solve is the CLI front end over package solver: an
// "external collaborator" per spec.md section 1, not a core package.
// It binds solver.Options to pflag/cobra flags, builds a small built-in
// demo model (the teacher's tests/testlp.go problem, translated to the
// conic data model), and logs through a tint console handler when
// stdout is a terminal or a JSON handler otherwise; with --verbose the
// solver logs one record per iteration.
package main

import (
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/lmittmann/tint"
	"github.com/spf13/cobra"

	"github.com/hrautila/conic/solver"
	"github.com/hrautila/conic/solver/cone"
	"github.com/hrautila/conic/solver/point"
)

var flags struct {
	verbose      bool
	iterLimit    int
	timeLimit    time.Duration
	tolRelOpt    float64
	tolAbsOpt    float64
	tolFeas      float64
	tolSlow      float64
	preprocess   bool
	initIterative bool
	initTolQR    float64
	maxNbhd      float64
	useInftyNbhd bool
	systemSolver string
}

func main() {
	root := &cobra.Command{
		Use:   "conic-solve",
		Short: "solve the built-in demo conic program and report the result",
		RunE:  run,
	}

	fs := root.Flags()
	fs.BoolVarP(&flags.verbose, "verbose", "v", false, "log one record per main-loop iteration")
	fs.IntVar(&flags.iterLimit, "iter-limit", 100, "cap on main-loop iterations")
	fs.DurationVar(&flags.timeLimit, "time-limit", 10*time.Minute, "wall-clock cap")
	fs.Float64Var(&flags.tolRelOpt, "tol-rel-opt", 1e-8, "relative optimality tolerance")
	fs.Float64Var(&flags.tolAbsOpt, "tol-abs-opt", 1e-8, "absolute optimality tolerance")
	fs.Float64Var(&flags.tolFeas, "tol-feas", 1e-8, "feasibility tolerance on scaled residuals")
	fs.Float64Var(&flags.tolSlow, "tol-slow", 1e-3, "slow-progress relative-improvement threshold")
	fs.BoolVar(&flags.preprocess, "preprocess", true, "enable rank reduction of A and [A; G]")
	fs.BoolVar(&flags.initIterative, "init-use-iterative", false, "use iterative least squares for the initial x, y")
	fs.Float64Var(&flags.initTolQR, "init-tol-qr", 0, "pivot tolerance for rank estimation (0 = default 100*eps)")
	fs.Float64Var(&flags.maxNbhd, "max-nbhd", 0.7, "wide neighborhood beta_max")
	fs.BoolVar(&flags.useInftyNbhd, "use-infty-nbhd", false, "use the infinity-norm neighborhood check")
	fs.StringVar(&flags.systemSolver, "system-solver", "naive", "system solver: naive or qrchol")

	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}

func newLogger() *slog.Logger {
	if !isTerminal(os.Stdout) {
		return slog.New(slog.NewJSONHandler(os.Stdout, nil))
	}
	return slog.New(tint.NewHandler(os.Stdout, &tint.Options{TimeFormat: time.Kitchen}))
}

func isTerminal(f *os.File) bool {
	fi, err := f.Stat()
	if err != nil {
		return false
	}
	return (fi.Mode() & os.ModeCharDevice) != 0
}

func run(cmd *cobra.Command, args []string) error {
	logger := newLogger()

	opts := solver.DefaultOptions()
	opts.Verbose = flags.verbose
	opts.Logger = logger
	opts.IterLimit = flags.iterLimit
	opts.TimeLimit = flags.timeLimit
	opts.TolRelOpt = flags.tolRelOpt
	opts.TolAbsOpt = flags.tolAbsOpt
	opts.TolFeas = flags.tolFeas
	opts.TolSlow = flags.tolSlow
	opts.Preprocess = flags.preprocess
	opts.InitUseIterative = flags.initIterative
	opts.InitTolQR = flags.initTolQR
	opts.MaxNbhd = flags.maxNbhd
	opts.UseInftyNbhd = flags.useInftyNbhd
	opts.Stepper.BetaMax = flags.maxNbhd
	opts.Stepper.UseInftyNbhd = flags.useInftyNbhd
	if flags.systemSolver == "qrchol" {
		opts.SystemSolver = solver.QRChol
	} else {
		opts.SystemSolver = solver.Naive
	}

	m, err := demoModel()
	if err != nil {
		return fmt.Errorf("building demo model: %w", err)
	}

	s := solver.New(opts)
	if err := s.Load(m); err != nil {
		logger.Error("load failed", "err", err)
		return err
	}
	status := s.Solve()

	logger.Info("solve finished", "status", status.String(), "iterations", s.Iterations(),
		"time", s.SolveTime(), "primal_objective", s.PrimalObjective(), "dual_objective", s.DualObjective())

	fmt.Printf("status: %s\n", status)
	fmt.Printf("x: %v\n", s.X())
	fmt.Printf("primal objective: %.9f\n", s.PrimalObjective())
	fmt.Printf("dual objective:   %.9f\n", s.DualObjective())
	return nil
}

// demoModel is the teacher's tests/testlp.go LP, translated into the
// conic data model: minimize c^T x subject to G x + s = h, s in the
// nonnegative cone (no equality constraints).
//
//	minimize   -4 x1 - 5 x2
//	subject to  2 x1 +   x2 <= 3
//	              x1 + 2 x2 <= 3
//	           -x1 <= 0, -x2 <= 0
func demoModel() (*point.Model, error) {
	c := []float64{-4, -5}
	gdata := []float64{
		2, 1, -1, 0, // column 1
		1, 2, 0, -1, // column 2
	}
	g := &point.DenseOrSparse{Rows: 4, Cols: 2, Dense: gdata}
	h := []float64{3, 3, 0, 0}
	a := &point.DenseOrSparse{Rows: 0, Cols: 2, Dense: []float64{}}
	b := []float64{}

	cones := []cone.Cone{cone.NewNonnegative(4)}
	return point.NewModel(c, a, b, g, h, cones, 0)
}
