package middleware

// CanMutate reports whether the caller may change a resource owned by ownerID.
func CanMutate(id Identity, ownerID string) bool {
	return id.IsAdmin() || (id.UserID != "" && id.UserID == ownerID)
}
