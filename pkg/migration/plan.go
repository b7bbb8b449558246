package migration

// Plan is the ordered list of units to run for one app. Plans are computed
// per invocation and never stored.
type Plan struct {
	App       string
	Direction Direction
	Steps     []*Unit

	// Ghosts are ledger entries to delete before the steps run.
	Ghosts []string

	// Skipped are out-of-order units left unapplied.
	Skipped []string
}

// Empty reports whether the plan has nothing to run.
func (p *Plan) Empty() bool {
	return len(p.Steps) == 0
}

// Names returns the step names in plan order.
func (p *Plan) Names() []string {
	names := make([]string, len(p.Steps))
	for i, u := range p.Steps {
		names[i] = u.Name
	}

	return names
}
