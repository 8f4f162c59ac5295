package request

// Sort orders results by one field.
type Sort struct {
	Path       string
	Descending bool
}

// Asc sorts by path in ascending order.
func Asc(path string) Sort {
	return Sort{Path: path}
}

// Desc sorts by path in descending order.
func Desc(path string) Sort {
	return Sort{Path: path, Descending: true}
}

// String renders the sort as the platform expects: "<path> asc|desc".
func (s Sort) String() string {
	if s.Descending {
		return s.Path + " desc"
	}
	return s.Path + " asc"
}
