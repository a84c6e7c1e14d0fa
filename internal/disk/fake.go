package disk

// FakeScanner is a test double that returns scripted bay maps.
type FakeScanner struct {
	// Results contains scripted scan results; each Scan consumes the next
	// one. When exhausted, the last result repeats.
	Results []map[int]Info

	// ScanError, if set, is returned by Scan.
	ScanError error

	index int
}

// NewFakeScanner creates a FakeScanner with the given results.
func NewFakeScanner(results ...map[int]Info) *FakeScanner {
	return &FakeScanner{Results: results}
}

// Scan returns the next scripted result.
func (f *FakeScanner) Scan() (map[int]Info, error) {
	if f.ScanError != nil {
		return nil, f.ScanError
	}
	if len(f.Results) == 0 {
		return map[int]Info{}, nil
	}
	r := f.Results[f.index]
	if f.index < len(f.Results)-1 {
		f.index++
	}
	return r, nil
}

// TempPtr is a test helper for Info.TempC literals.
func TempPtr(c float64) *float64 { return &c }
