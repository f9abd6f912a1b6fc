package check

// Renaming maps the names a user wrote to the fresh names the checker bound
// them to. It is persistent: Extend returns a new Renaming and leaves the
// receiver alone, so sibling scopes never see each other's bindings. The nil
// Renaming is empty.
type Renaming struct {
	from, to string
	next     *Renaming
}

// Extend returns r with from renamed to to.
func (r *Renaming) Extend(from, to string) *Renaming {
	return &Renaming{from: from, to: to, next: r}
}

// Rename returns the name that from was bound to, or from itself.
func (r *Renaming) Rename(from string) string {
	for e := r; e != nil; e = e.next {
		if e.from == from {
			return e.to
		}
	}
	return from
}
