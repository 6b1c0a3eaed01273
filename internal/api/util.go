package api

import (
	"math/rand"
	"strings"
)

const roomIDCharset = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
const roomIDLength = 6

// generateRoomID creates a short alphanumeric room identifier.
func generateRoomID() string {
	b := make([]byte, roomIDLength)
	for i := range b {
		b[i] = roomIDCharset[rand.Intn(len(roomIDCharset))]
	}
	return string(b)
}

func normalizeRoomID(s string) string {
	return strings.TrimSpace(s)
}
