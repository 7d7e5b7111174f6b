package dissect

// Result is the outcome of one dissection. The zero value is a match.
type Result struct {
	bailed bool
}

// Matched reports whether the whole mapping matched and fields were written.
func (r Result) Matched() bool {
	return !r.bailed
}

// NotMatched reports whether the scan bailed. No fields were written.
func (r Result) NotMatched() bool {
	return r.bailed
}

// String returns "matched" or "not matched".
func (r Result) String() string {
	if r.bailed {
		return "not matched"
	}
	return "matched"
}
