package controllers

import (
	"sound-garage/environment"
	"sound-garage/lookups"
)

// Created is the standard response for new items
type Created struct {
	ID string `json:"id"`
}

// isAdmin checks a user's role (used to guard maintenance endpoints)
func isAdmin(userID string) bool {
	credentials, err := environment.Env.UserModel.GetCredentials(userID)
	if err != nil {
		return false
	}
	return credentials.RoleCode == lookups.UserRoleAdmin
}
