package axis

// MapAxes is an ordered set of axes. The order is the storage order of any
// array defined over them, slowest varying first.
type MapAxes []*MapAxis

func (m MapAxes) Index(name string) int {
	for i, a := range m {
		if a.name == name {
			return i
		}
	}
	return -1
}

func (m MapAxes) Get(name string) (*MapAxis, bool) {
	if i := m.Index(name); i >= 0 {
		return m[i], true
	}
	return nil, false
}

func (m MapAxes) Names() []string {
	names := make([]string, len(m))
	for i, a := range m {
		names[i] = a.name
	}
	return names
}

// Shape returns the bin count of every axis.
func (m MapAxes) Shape() []int {
	shape := make([]int, len(m))
	for i, a := range m {
		shape[i] = a.Nbin()
	}
	return shape
}

// Size is the product of all bin counts.
func (m MapAxes) Size() int {
	n := 1
	for _, a := range m {
		n *= a.Nbin()
	}
	return n
}
