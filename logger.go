package doomsie3d

import (
	"io"
	"log"
)

var logger *log.Logger = log.New(io.Discard, "", log.LstdFlags)

// SetLogger directs load-phase progress and recoverable-substitution
// messages somewhere visible. The render path never logs.
func SetLogger(l *log.Logger) {
	logger = l
}
