package utils

import "github.com/google/uuid"

// NewConnID returns a unique identifier for a physical connection.
func NewConnID() string {
	return uuid.NewString()
}
