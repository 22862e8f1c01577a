package http

import (
	"sort"

	"github.com/mmuslimabdulj/navsocket/internal/domain"
)

//go:generate templ generate -f status.templ

// statusView is what the status page renders
type statusView struct {
	Connections int
	Registered  int
	ActiveTrips int
	Online      []onlineUser
	Activity    []domain.Activity
}

type onlineUser struct {
	UserID      string
	Connections int
}

// sortedOnline orders connected users by id
func sortedOnline(online map[string]int) []onlineUser {
	out := make([]onlineUser, 0, len(online))
	for userID, n := range online {
		out = append(out, onlineUser{UserID: userID, Connections: n})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].UserID < out[j].UserID })
	return out
}
