package airhockey

// Body is a moving disc: the puck or a paddle.
type Body struct {
	Position Vec
	Velocity Vec
	Radius   float64
	MaxSpeed float64
}

// integrate advances the body by dt seconds.
func (b *Body) integrate(dt float64) {
	b.Position = b.Position.Add(b.Velocity.Scale(dt))
}

// clampSpeed scales the velocity down to MaxSpeed.
//
// Postcondition: b.Velocity.Len() <= b.MaxSpeed.
func (b *Body) clampSpeed() {
	b.Velocity = b.Velocity.ClampLen(b.MaxSpeed)
}

// clampInto keeps the whole disc on a w x h table.
func (b *Body) clampInto(w, h float64) {
	b.Position.X = clamp(b.Position.X, b.Radius, w-b.Radius)
	b.Position.Y = clamp(b.Position.Y, b.Radius, h-b.Radius)
}

// overlaps reports whether the two discs touch.
func (b *Body) overlaps(o *Body) bool {
	d := b.Position.Sub(o.Position)
	r := b.Radius + o.Radius
	return d.Dot(d) <= r*r
}
