// Package disk tracks which drives occupy the HAT's bays. A Scanner
// enumerates the bays; the Registry diffs successive scans so consumers
// see attach/detach transitions, never stale drives.
package disk

// Info describes one bay's drive. A zero Info (Present false) means the
// bay is empty.
type Info struct {
	// Device is the kernel block device name, e.g. "sda".
	Device string
	// SizeBytes is the drive capacity. Zero when unknown.
	SizeBytes int64
	// Present reports whether a drive is attached.
	Present bool
	// TempC is the drive temperature if the kernel exposes it, else nil.
	TempC *float64
}

// Change is one bay's transition between two scans.
type Change struct {
	Bay  int
	Info Info
}

// Scanner enumerates all bays. The returned map is keyed by bay index
// (1..N) and contains only present bays. A bay whose metadata cannot be
// read is still reported, Present with unknown size/temperature; only a
// failure of the enumeration itself returns an error.
type Scanner interface {
	Scan() (map[int]Info, error)
}

// Registry diffs successive scans. It is driven from a single loop and is
// not synchronized.
type Registry struct {
	scanner Scanner
	bays    int
	known   map[int]Info
}

// NewRegistry creates a Registry over the given fixed bay count.
func NewRegistry(scanner Scanner, bays int) *Registry {
	return &Registry{
		scanner: scanner,
		bays:    bays,
		known:   make(map[int]Info, bays),
	}
}

// Scan enumerates the bays and returns what changed since the previous
// scan. Scanning twice with no physical change yields an empty diff. A
// bay transitioning present to absent is represented as a Change with
// Present=false; removed drives must never linger in the summary.
func (r *Registry) Scan() ([]Change, error) {
	current, err := r.scanner.Scan()
	if err != nil {
		return nil, err
	}

	var changes []Change
	for bay := 1; bay <= r.bays; bay++ {
		cur, curOK := current[bay]
		prev, prevOK := r.known[bay]

		switch {
		case curOK && (!prevOK || !equal(prev, cur)):
			r.known[bay] = cur
			changes = append(changes, Change{Bay: bay, Info: cur})
		case !curOK && prevOK && prev.Present:
			r.known[bay] = Info{}
			changes = append(changes, Change{Bay: bay, Info: Info{}})
		}
	}
	return changes, nil
}

// Snapshot returns a copy of the last known bay map. Only present bays
// have entries.
func (r *Registry) Snapshot() map[int]Info {
	out := make(map[int]Info, len(r.known))
	for bay, info := range r.known {
		if info.Present {
			out[bay] = info
		}
	}
	return out
}

func equal(a, b Info) bool {
	if a.Device != b.Device || a.SizeBytes != b.SizeBytes || a.Present != b.Present {
		return false
	}
	switch {
	case a.TempC == nil && b.TempC == nil:
		return true
	case a.TempC == nil || b.TempC == nil:
		return false
	default:
		return *a.TempC == *b.TempC
	}
}
