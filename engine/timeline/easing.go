package timeline

import "math"

// cubicBezier is a CSS-style timing curve through (0,0), (x1,y1), (x2,y2), (1,1).
type cubicBezier struct {
	cx, bx, ax float64
	cy, by, ay float64
}

func newCubicBezier(x1, y1, x2, y2 float64) cubicBezier {
	var c cubicBezier
	c.cx = 3 * x1
	c.bx = 3*(x2-x1) - c.cx
	c.ax = 1 - c.cx - c.bx
	c.cy = 3 * y1
	c.by = 3*(y2-y1) - c.cy
	c.ay = 1 - c.cy - c.by
	return c
}

func (c cubicBezier) sampleX(t float64) float64 {
	return ((c.ax*t+c.bx)*t + c.cx) * t
}

func (c cubicBezier) sampleY(t float64) float64 {
	return ((c.ay*t+c.by)*t + c.cy) * t
}

func (c cubicBezier) sampleDerivX(t float64) float64 {
	return (3*c.ax*t+2*c.bx)*t + c.cx
}

// solveX finds t such that sampleX(t) == x: Newton iterations first, bisection as fallback.
func (c cubicBezier) solveX(x float64) float64 {
	const epsilon = 1e-7

	t := x
	for range 8 {
		d := c.sampleX(t) - x
		if math.Abs(d) < epsilon {
			return t
		}
		dx := c.sampleDerivX(t)
		if math.Abs(dx) < 1e-6 {
			break
		}
		t -= d / dx
	}

	lo, hi := 0.0, 1.0
	t = x
	for range 64 {
		v := c.sampleX(t)
		if math.Abs(v-x) < epsilon {
			return t
		}
		if x > v {
			lo = t
		} else {
			hi = t
		}
		t = (lo + hi) / 2
	}
	return t
}

// ease maps progress p in [0, 1] through the curve.
func (c cubicBezier) ease(p float64) float64 {
	if p <= 0 {
		return 0
	}
	if p >= 1 {
		return 1
	}
	return c.sampleY(c.solveX(p))
}
