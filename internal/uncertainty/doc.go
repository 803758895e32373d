// Package uncertainty implements the linearised error-propagation model used
// to score receiver layouts.
//
// For every evaluation point the TDOA model is differentiated with respect
// to the source position (Jacobian), the normal matrix JᵀJ is inverted to
// obtain the position covariance, and the per-point RMS uncertainties are
// reduced to one scalar cost by the Evaluator.
package uncertainty
