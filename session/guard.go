package session

// Guard is the route-level step check. It never errors and never redirects;
// it answers whether the requested wizard page may be shown given recorded
// progress, and leaves the redirect to the caller.
type Guard struct {
	store *Store
}

// NewGuard creates a Guard over the given store.
func NewGuard(store *Store) *Guard {
	return &Guard{store: store}
}

// CanAccess reports whether the session may visit the requested step:
// true iff the requested step is at or before the recorded one. Progression
// itself happens only through the store's mutators.
func (g *Guard) CanAccess(requested Step) bool {
	return g.store.Load().Step.Reached(requested)
}
