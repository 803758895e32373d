package geometry

// Layout is an ordered receiver set. Index i is receiver i.
//
// Layouts are treated as values: With returns a new layout and leaves the
// receiver untouched, so a candidate can never alias the accepted state.
type Layout []Point

// Clone returns an independent copy of l.
func (l Layout) Clone() Layout {
	if l == nil {
		return nil
	}
	out := make(Layout, len(l))
	copy(out, l)
	return out
}

// With returns a copy of l with the given receiver coordinate replaced.
func (l Layout) With(receiver, axis int, value float64) Layout {
	out := l.Clone()
	out[receiver] = out[receiver].WithAxis(axis, value)
	return out
}

// Param returns the coordinate of receiver along axis.
func (l Layout) Param(receiver, axis int) float64 {
	return l[receiver].Axis(axis)
}

// Equal reports whether both layouts hold identical coordinates.
func (l Layout) Equal(other Layout) bool {
	if len(l) != len(other) {
		return false
	}
	for i := range l {
		if l[i] != other[i] {
			return false
		}
	}
	return true
}
