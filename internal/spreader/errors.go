package spreader

import "github.com/rotisserie/eris"

// ErrNoPeriodsDetected is returned when column classification finds zero
// real period columns; extraction cannot proceed without at least one.
var ErrNoPeriodsDetected = eris.New("spreader: no period columns detected")
