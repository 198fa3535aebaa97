// Package policy holds authorization decisions that are independent of
// transport and storage.
package policy

// UserAccessPolicy decides whether a caller may read, update or deactivate a
// target user record.
type UserAccessPolicy interface {
	CanAccess(callerID, targetID string) bool
}

// OwnerOnly grants access to a user's own record and nothing else. No role,
// including admin, widens it.
type OwnerOnly struct{}

func (OwnerOnly) CanAccess(callerID, targetID string) bool {
	return callerID != "" && callerID == targetID
}
