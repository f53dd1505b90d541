package forum

import "time"

// EditWindow is how long after creation a content owner may still edit or
// delete their own topic or post.
const EditWindow = 5 * time.Minute

// CanMutate decides whether actor may edit or delete the content identified
// by its author and creation time. Owners act inside the edit window; admins
// bypass it unconditionally. Moderators get no bypass here: editing is an
// authorship privilege, and moderation is a separate track with its own
// operations.
func CanMutate(authorID string, createdAt time.Time, actor *User, now time.Time) bool {
	if actor.Role == RoleAdmin {
		return true
	}
	return actor.ID == authorID && now.Sub(createdAt) < EditWindow
}
