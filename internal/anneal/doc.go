// Package anneal searches for receiver layouts that minimise an objective by
// simulated annealing.
//
// A run starts from a uniformly drawn layout and then perturbs one receiver
// coordinate at a time, cycling through every (receiver, axis) parameter in
// order. Candidates that leave their bounds or that the objective reports as
// infeasible are rejected. Worse candidates are accepted with the Metropolis
// probability exp(-Δ/T). The temperature is multiplied by the schedule's
// reduction factor after every step until the acceptance rate collapses, the
// best cost reaches the target, or the step budget runs out.
//
// All randomness comes from the *rand.Rand the caller supplies, so a fixed
// seed reproduces a run exactly.
package anneal
