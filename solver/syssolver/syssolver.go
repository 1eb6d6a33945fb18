// Package syssolver implements the two system-solver variants spec.md
// section 4.3 requires: a naive solver that assembles the full
// block-eliminated KKT-like matrix and factors it with a general LU,
// and a QR-Cholesky solver that factors A^T once with a pivoted QR,
// eliminates y and the range-space part of x against it, and factors
// the symmetric positive-definite reduced system over the null-space
// coordinate of x with Cholesky.
//
// Both eliminate the per-cone s_dir variable analytically via the
// cone's inverse-Hessian action before the matrix is ever assembled:
// Hess_k(s_dir_k) + z_dir_k = r_{s,k} gives s_dir_k = InvHess_k(r_{s,k}
// - z_dir_k), so the assembled system is over (x, y, z, tau) only, with
// each cone contributing a -InvHess_k block on the z-diagonal.
package syssolver

import "github.com/hrautila/conic/solver/point"

// SysSolver is the contract the stepper drives: UpdateLHS once per
// iteration after cones are refreshed at the new scaled point, then
// SolveSystem any number of times against distinct right-hand sides
// reusing that factorization.
type SysSolver interface {
	UpdateLHS(m *point.Model, pt *point.Point, mu float64) error
	SolveSystem(m *point.Model, pt *point.Point, mu float64, rhs *point.RHS, dir *point.Direction) error
}

// invHessBlocks materializes each cone's current inverse-Hessian action
// as a dense Dimension()-by-Dimension() matrix by probing with the
// standard basis, the same pattern used inside solver/cone for the
// cones that do not have a cheaper closed form. Built once per
// UpdateLHS call and reused across every SolveSystem call in the same
// iteration.
func invHessBlocks(m *point.Model) ([][]float64, error) {
	blocks := make([][]float64, len(m.Cones))
	for i, k := range m.Cones {
		d := k.Dimension()
		blk := make([]float64, d*d)
		e := make([]float64, d)
		col := make([]float64, d)
		for c := 0; c < d; c++ {
			for j := range e {
				e[j] = 0
			}
			e[c] = 1
			if err := k.InvHessProd(col, e); err != nil {
				return nil, err
			}
			for r := 0; r < d; r++ {
				blk[c*d+r] = col[r]
			}
		}
		blocks[i] = blk
	}
	return blocks, nil
}
