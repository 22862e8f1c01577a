package ws

import (
	"strings"

	"github.com/mmuslimabdulj/navsocket/internal/domain"
)

// RoomName returns the broadcast group of a user
func RoomName(userID string) string {
	return domain.RoomPrefix + userID
}

// UserIDFromRoom strips the group prefix; ok is false for non-user groups
func UserIDFromRoom(room string) (userID string, ok bool) {
	userID, ok = strings.CutPrefix(room, domain.RoomPrefix)
	if !ok || userID == "" {
		return "", false
	}
	return userID, true
}
