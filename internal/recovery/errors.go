package recovery

import "fmt"

// EmptyInputError is the only error Parse returns: the input was blank or
// nothing in it could be salvaged.
type EmptyInputError struct {
	Bytes     int
	Discarded int
}

func (e *EmptyInputError) Error() string {
	if e.Discarded == 0 {
		return fmt.Sprintf("recovery: no records in %d bytes of input", e.Bytes)
	}
	return fmt.Sprintf("recovery: no recoverable records (%d fragments discarded)", e.Discarded)
}
