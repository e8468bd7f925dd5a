package core

import (
	"fmt"
	"strings"
)

// Option is one of the fixed symbolic draw choices
type Option string

const (
	OptionA Option = "A"
	OptionB Option = "B"
	OptionC Option = "C"
	OptionD Option = "D"
	OptionE Option = "E"
	OptionF Option = "F"
	OptionG Option = "G"
	OptionH Option = "H"
)

// allOptions is the canonical display order
var allOptions = [...]Option{OptionA, OptionB, OptionC, OptionD, OptionE, OptionF, OptionG, OptionH}

// AllOptions returns a fresh copy of the full option set in display order
func AllOptions() []Option {
	out := make([]Option, len(allOptions))
	copy(out, allOptions[:])
	return out
}

// OptionCount is the size of the full option set
const OptionCount = len(allOptions)

// ParseOption accepts a single letter in either case
func ParseOption(s string) (Option, error) {
	o := Option(strings.ToUpper(strings.TrimSpace(s)))
	if !o.Valid() {
		return "", fmt.Errorf("%w: %q", ErrInvalidOption, s)
	}
	return o, nil
}

// Valid reports whether o belongs to the fixed option set
func (o Option) Valid() bool {
	return o.Index() >= 0
}

// Index returns the position of o in display order, -1 if unknown
func (o Option) Index() int {
	for i, opt := range allOptions {
		if opt == o {
			return i
		}
	}
	return -1
}

func (o Option) String() string { return string(o) }

// IndexOf returns the position of o within options, -1 if absent
func IndexOf(options []Option, o Option) int {
	for i, opt := range options {
		if opt == o {
			return i
		}
	}
	return -1
}

// Without returns options minus every member of exclude, order preserved
func Without(options []Option, exclude ...Option) []Option {
	out := make([]Option, 0, len(options))
	for _, opt := range options {
		if IndexOf(exclude, opt) < 0 {
			out = append(out, opt)
		}
	}
	return out
}
