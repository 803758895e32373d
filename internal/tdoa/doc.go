// Package tdoa estimates time differences of arrival between hydrophone
// channels by normalised cross-correlation.
//
// For a pair (Ref, Other) the correlation is c[k] = Σ ref[n+k]·other[n] over
// lags k in [-(len(other)-1), len(ref)-1]. A positive delay therefore means
// the reference channel received the signal later than the other channel.
package tdoa
