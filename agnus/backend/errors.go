package backend

import "errors"

// ErrQuit is returned by a Driver step to end the loop without error.
var ErrQuit = errors.New("quit")
