package core

import "errors"

// Selection errors; every rejection leaves the draw state untouched
var (
	ErrInvalidOption = errors.New("invalid option")
	ErrAlreadyDrawn  = errors.New("option already drawn")
	ErrNotDrawn      = errors.New("option not drawn")
	ErrBusy          = errors.New("effect session in flight")
	ErrExhausted     = errors.New("no options available")
	ErrUnknownEffect = errors.New("unknown effect")
)
