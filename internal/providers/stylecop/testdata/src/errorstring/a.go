package errorstring

import (
	"errors"
	"fmt"
)

var errA = errors.New("Something failed") // want "error strings should not be capitalized"

var errB = errors.New("something failed.") // want "error strings should not end with punctuation or newlines"

var errC = fmt.Errorf("Bad value %d!", 3) // want "error strings should not be capitalized or end with punctuation or newlines"

var errD = errors.New("HTTP request failed")

var errE = errors.New("ok")

var errF = errors.New(`Raw failure`) // want "error strings should not be capitalized"

var msg = fmt.Sprintf("Not an error.")
