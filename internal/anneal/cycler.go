package anneal

import "github.com/banshee-data/hydroloc/internal/geometry"

// Param addresses one optimisation parameter: a coordinate of one receiver.
type Param struct {
	Receiver int
	Axis     int
}

// ParamCycler yields the flattened (receiver, axis) parameters in
// receiver-major order and wraps around after the last one.
type ParamCycler struct {
	receivers int
	next      int
}

// NewParamCycler returns a cycler over receivers × geometry.Axes parameters.
func NewParamCycler(receivers int) *ParamCycler {
	return &ParamCycler{receivers: receivers}
}

// Len is the number of distinct parameters.
func (c *ParamCycler) Len() int {
	return c.receivers * geometry.Axes
}

// Next returns the current parameter and advances the cycler.
func (c *ParamCycler) Next() Param {
	p := Param{Receiver: c.next / geometry.Axes, Axis: c.next % geometry.Axes}
	c.next++
	if c.next >= c.Len() {
		c.next = 0
	}
	return p
}

// Reset rewinds the cycler to the first parameter.
func (c *ParamCycler) Reset() {
	c.next = 0
}
