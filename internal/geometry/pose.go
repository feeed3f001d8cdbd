package geometry

import "math"

// Pose is a rigid 2D transform (an element of SE(2)): a rotation by Theta
// radians, counter-clockwise positive, followed by a translation to (X, Y).
// A piece's pose maps points in its local frame into the shared world frame.
type Pose struct {
	X     float64
	Y     float64
	Theta float64
}

// Identity returns the identity pose.
func Identity() Pose { return Pose{} }

// Compose returns the pose p·q: the transform that applies q first and then
// p. Composing a piece's local pose onto a frame pose yields the piece's pose
// in that frame's parent.
func (p Pose) Compose(q Pose) Pose {
	sin, cos := math.Sincos(p.Theta)
	return Pose{
		X:     p.X + cos*q.X - sin*q.Y,
		Y:     p.Y + sin*q.X + cos*q.Y,
		Theta: NormalizeAngle(p.Theta + q.Theta),
	}
}

// Invert returns the inverse transform, so that p.Compose(p.Invert()) is the
// identity up to floating-point rounding.
func (p Pose) Invert() Pose {
	sin, cos := math.Sincos(p.Theta)
	return Pose{
		X:     -(cos*p.X + sin*p.Y),
		Y:     -(-sin*p.X + cos*p.Y),
		Theta: NormalizeAngle(-p.Theta),
	}
}

// RelativeTo expresses p in the frame of reference. The result is always
// derived from the two absolute poses; callers must not chain relative poses
// across evaluations.
func (p Pose) RelativeTo(reference Pose) Pose {
	return reference.Invert().Compose(p)
}

// Apply transforms a point from the pose's local frame into its parent frame.
func (p Pose) Apply(pt Point) Point {
	sin, cos := math.Sincos(p.Theta)
	return Point{
		X: p.X + cos*pt.X - sin*pt.Y,
		Y: p.Y + sin*pt.X + cos*pt.Y,
	}
}

// ApplyVector rotates a direction vector without translating it.
func (p Pose) ApplyVector(v Point) Point {
	sin, cos := math.Sincos(p.Theta)
	return Point{
		X: cos*v.X - sin*v.Y,
		Y: sin*v.X + cos*v.Y,
	}
}

// Mirror reflects the pose across the Y axis. Reflecting a world and its
// pieces turns every relative pose p into p.Mirror().
func (p Pose) Mirror() Pose {
	return Pose{X: -p.X, Y: p.Y, Theta: NormalizeAngle(-p.Theta)}
}

// NormalizeAngle wraps an angle into the half-open interval (-π, π].
func NormalizeAngle(theta float64) float64 {
	theta = math.Mod(theta, 2*math.Pi)
	if theta > math.Pi {
		theta -= 2 * math.Pi
	} else if theta <= -math.Pi {
		theta += 2 * math.Pi
	}
	return theta
}

// AngleDiff returns the smallest signed angle from a to b in radians.
func AngleDiff(a, b float64) float64 {
	return NormalizeAngle(b - a)
}
