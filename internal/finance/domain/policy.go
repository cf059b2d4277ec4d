package domain

// Action names the record-level permissions a caller can ask about.
type Action string

const (
	ActionView        Action = "view"
	ActionUpdate      Action = "update"
	ActionDelete      Action = "delete"
	ActionRestore     Action = "restore"
	ActionForceDelete Action = "force_delete"
)

// Owned is implemented by every record carrying an owner id. Owner returns
// false when the record has no owning user (shared default categories).
type Owned interface {
	Owner() (string, bool)
}

// Can decides whether the actor may perform a record-scoped action. The rule
// is identical for transactions, categories and budgets: the actor must be
// the owner. Ownerless records are viewable by everyone and mutable by no one.
// The predicate is pure; callers turn false into an access-denied response.
func Can(actorID string, action Action, record Owned) bool {
	owner, hasOwner := record.Owner()
	if !hasOwner {
		return action == ActionView
	}
	return actorID == owner
}

// CanViewAny reports whether the actor may list records. Always true for an
// authenticated actor: scoping to the actor's own records happens in the
// query layer, not here.
func CanViewAny(actorID string) bool {
	return actorID != ""
}

// CanCreate reports whether the actor may create records. Always true for an
// authenticated actor.
func CanCreate(actorID string) bool {
	return actorID != ""
}
