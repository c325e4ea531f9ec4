package behavior

import "fmt"

// Status is the outcome of ticking a node.
type Status int8

const (
	// StatusInvalid is the zero value; nodes never report it and composites
	// treat it as a failure.
	StatusInvalid Status = iota
	StatusSuccess
	StatusFail
	StatusRunning
)

func (s Status) String() string {
	switch s {
	case StatusSuccess:
		return "SUCCESS"
	case StatusFail:
		return "FAIL"
	case StatusRunning:
		return "RUNNING"
	default:
		return "INVALID"
	}
}

// Terminal reports whether s resolves an activation.
func (s Status) Terminal() bool {
	return s == StatusSuccess || s == StatusFail
}

func (s Status) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

func (s *Status) UnmarshalText(b []byte) error {
	switch string(b) {
	case "SUCCESS":
		*s = StatusSuccess
	case "FAIL":
		*s = StatusFail
	case "RUNNING":
		*s = StatusRunning
	default:
		return fmt.Errorf("unknown status %q", b)
	}
	return nil
}

// normalize folds anything a task may return that is not SUCCESS or RUNNING
// into FAIL.
func (s Status) normalize() Status {
	if s == StatusSuccess || s == StatusRunning {
		return s
	}
	return StatusFail
}
