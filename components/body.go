package components

// Body holds physical properties of a particle.
// Radius doubles as the half-size used against the world bounds.
type Body struct {
	Radius float64
}

// BodyFromSize returns a body for a square sprite of the given edge length.
func BodyFromSize(size float64) Body {
	return Body{Radius: size / 2}
}
