package domain

// Polyline is an ordered path of coordinates walked from index 0 onward.
type Polyline []Coordinates

// Last returns the final point. The polyline must be non-empty.
func (p Polyline) Last() Coordinates { return p[len(p)-1] }

// Clone returns a copy that shares no storage with p.
func (p Polyline) Clone() Polyline {
	if p == nil {
		return nil
	}
	out := make(Polyline, len(p))
	copy(out, p)
	return out
}

// EndingAt returns p with end appended unless p already finishes there.
func (p Polyline) EndingAt(end Coordinates) Polyline {
	if len(p) > 0 && p.Last() == end {
		return p
	}
	return append(p.Clone(), end)
}
