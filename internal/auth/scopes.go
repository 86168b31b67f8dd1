package auth

// Scopes understood by the habit API.
const (
	ScopeHabitsWrite = "habits:write"
	ScopeHabitsRead  = "habits:read"
)
