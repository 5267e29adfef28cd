// Package solve holds the multidimensional Newton root finder shared by the
// equilibrium and periodic-orbit analyses, plus finite-difference Jacobians
// and eigenvalue helpers on top of gonum.
package solve
