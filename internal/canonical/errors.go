package canonical

import "errors"

var (
	ErrNonFiniteFloat  = errors.New("non-finite float values are not allowed")
	ErrNonStringMapKey = errors.New("map keys must be strings")
	ErrUnsupportedType = errors.New("unsupported type for canonical encoding")
	ErrKeyCollision    = errors.New("normalized map key collision")
)
