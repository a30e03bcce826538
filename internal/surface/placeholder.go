package surface

// This file holds the placeholder surface operations the public API must
// expose for ABI-style compatibility with the broader drawing contract,
// even though their observable behavior beyond serialization and advisory
// logging has no upstream specification yet (see DESIGN.md's open
// questions). Each acquires the lock, logs, and returns — the same shape
// spec.md §4.B and §9 describe for these calls.

// Paint draws a filled or stroked path onto the surface. Not yet specified
// beyond lock/log.
func (s *Surface) Paint(args ...any) {
	s.advisory("Paint", args)
}

// Copy duplicates a rectangle from another surface onto this one. Not yet
// specified beyond lock/log.
func (s *Surface) Copy(args ...any) {
	s.advisory("Copy", args)
}

// Transfer applies a pixel transfer function while copying a rectangle. Not
// yet specified beyond lock/log.
func (s *Surface) Transfer(args ...any) {
	s.advisory("Transfer", args)
}

// Set fills a rectangle with a solid color. Not yet specified beyond
// lock/log.
func (s *Surface) Set(args ...any) {
	s.advisory("Set", args)
}

// Clip restricts subsequent draws to a path. Not yet specified beyond
// lock/log.
func (s *Surface) Clip(args ...any) {
	s.advisory("Clip", args)
}

// ResetClip removes any clipping path previously set by Clip. Not yet
// specified beyond lock/log.
func (s *Surface) ResetClip() {
	s.advisory("ResetClip", nil)
}

// Move repositions the surface within its parent's coordinate space. Not
// yet specified beyond lock/log.
func (s *Surface) Move(x, y int) {
	s.advisory("Move", []any{x, y})
}

// Stack changes the surface's z-order relative to a sibling. Not yet
// specified beyond lock/log.
func (s *Surface) Stack(args ...any) {
	s.advisory("Stack", args)
}

// SetParent reparents the surface for compositing purposes. Not yet
// specified beyond lock/log.
func (s *Surface) SetParent(args ...any) {
	s.advisory("SetParent", args)
}

// SetOpacity sets the surface's compositing opacity. Not yet specified
// beyond lock/log.
func (s *Surface) SetOpacity(opacity float64) {
	s.advisory("SetOpacity", []any{opacity})
}

// Dup creates a duplicate of this surface as a new layer (distinct from the
// per-tile Dup contract exposed as Surface.ResyncUser). Not yet specified
// beyond lock/log.
func (s *Surface) Dup(args ...any) {
	s.advisory("Dup", args)
}

// SetMultitouch toggles multitouch event routing for the surface. Not yet
// specified beyond lock/log.
func (s *Surface) SetMultitouch(enabled bool) {
	s.advisory("SetMultitouch", []any{enabled})
}

// SetLossless toggles a preference for lossless (vs. lossy) tile encoding.
// Not yet specified beyond lock/log; the encoder used by Flush is a
// construction-time choice of the Sink, not of the Surface.
func (s *Surface) SetLossless(enabled bool) {
	s.advisory("SetLossless", []any{enabled})
}

// advisory serializes with every other Surface operation via mu and logs a
// one-line advisory message naming the call and its arguments.
func (s *Surface) advisory(op string, args []any) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(args) == 0 {
		s.client.Printf("surface: %s (unspecified behavior)", op)
		return
	}
	s.client.Printf("surface: %s%v (unspecified behavior)", op, args)
}
