package utils

import "github.com/google/uuid"

// GetToken returns a random token used as a lock owner id.
func GetToken() string {
	return uuid.NewString()
}
