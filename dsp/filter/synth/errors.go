package synth

import "errors"

// ErrUnsupportedFamily is returned when the requested family cannot be
// designed for the requested band type.
var ErrUnsupportedFamily = errors.New("synth: unsupported filter family for band type")
