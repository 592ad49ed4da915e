package configuration

import "errors"

// ErrUnknownFormat is returned when an override file carries an extension
// that maps to no supported format.
var ErrUnknownFormat = errors.New("unknown override file format")
