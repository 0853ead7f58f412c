package airhockey

import "math"

// CollisionKind classifies what the puck touched during a tick.
type CollisionKind int

const (
	CollisionNone CollisionKind = iota
	CollisionWall
	CollisionPaddle
	CollisionGoal
)

// Collision is the narrow-phase result. Seat is the paddle owner for
// CollisionPaddle and the scoring seat for CollisionGoal.
type Collision struct {
	Kind CollisionKind
	Seat int
}

// broadPhase is a cheap test for whether the puck might be touching anything.
func broadPhase(t Table, puck *Body, paddles *[2]Body) bool {
	p := puck.Position
	r := puck.Radius
	if p.X-r <= 0 || p.X+r >= t.Width || p.Y-r <= 0 || p.Y+r >= t.Height {
		return true
	}
	for i := range paddles {
		if puck.overlaps(&paddles[i]) {
			return true
		}
	}
	return false
}

// narrowPhase picks the single collision to resolve, checking goal mouths
// before walls so a puck crossing a short wall inside the mouth scores.
func narrowPhase(t Table, puck *Body, paddles *[2]Body) Collision {
	p := puck.Position
	r := puck.Radius

	if t.inMouth(p.X) {
		if p.Y-r <= 0 {
			// Low-y goal belongs to seat 0.
			return Collision{Kind: CollisionGoal, Seat: 1}
		}
		if p.Y+r >= t.Height {
			return Collision{Kind: CollisionGoal, Seat: 0}
		}
	}
	if p.X-r <= 0 || p.X+r >= t.Width || p.Y-r <= 0 || p.Y+r >= t.Height {
		return Collision{Kind: CollisionWall}
	}
	for i := range paddles {
		if puck.overlaps(&paddles[i]) {
			return Collision{Kind: CollisionPaddle, Seat: i}
		}
	}
	return Collision{Kind: CollisionNone}
}

// reflectWall flips the velocity component normal to each wall the puck
// crossed and pushes it back inside.
func reflectWall(t Table, puck *Body) {
	r := puck.Radius
	e := t.WallRestitution
	switch {
	case puck.Position.X-r <= 0:
		puck.Position.X = r
		puck.Velocity.X = math.Abs(puck.Velocity.X) * e
	case puck.Position.X+r >= t.Width:
		puck.Position.X = t.Width - r
		puck.Velocity.X = -math.Abs(puck.Velocity.X) * e
	}
	switch {
	case puck.Position.Y-r <= 0:
		puck.Position.Y = r
		puck.Velocity.Y = math.Abs(puck.Velocity.Y) * e
	case puck.Position.Y+r >= t.Height:
		puck.Position.Y = t.Height - r
		puck.Velocity.Y = -math.Abs(puck.Velocity.Y) * e
	}
}

// reflectPaddle bounces the puck off a paddle. The velocity relative to the
// paddle is reflected about the center-to-center normal only while the bodies
// approach; the puck is then moved to just touching the paddle.
func reflectPaddle(t Table, puck *Body, paddle *Body) {
	d := puck.Position.Sub(paddle.Position)
	dist := d.Len()
	var n Vec
	if dist == 0 {
		// Coincident centers: push toward the table center.
		n = Vec{0, 1}
		if paddle.Position.Y > t.Height/2 {
			n = Vec{0, -1}
		}
	} else {
		n = d.Scale(1 / dist)
	}

	rel := puck.Velocity.Sub(paddle.Velocity)
	if along := rel.Dot(n); along < 0 {
		rel = rel.Sub(n.Scale((1 + t.PaddleRestitution) * along))
		puck.Velocity = rel.Add(paddle.Velocity)
	}

	puck.Position = paddle.Position.Add(n.Scale(puck.Radius + paddle.Radius))
	puck.clampInto(t.Width, t.Height)
}
