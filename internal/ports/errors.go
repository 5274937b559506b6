package ports

import "errors"

var ErrBiteNotFound = errors.New("saved bite not found")

// DefaultHistoryLimit is how many recent queries a History keeps.
const DefaultHistoryLimit = 10
