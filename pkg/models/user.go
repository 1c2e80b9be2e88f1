package models

// User is an application login stored in tblUsers.
type User struct {
	ID        int64  `json:"id"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Email     string `json:"email"`
	Role      string `json:"role"`
	Branch    string `json:"branch"`

	// PasswordHash is either a bcrypt hash or, for legacy rows, plaintext.
	PasswordHash string `json:"-"`
}

// WriteResult is the status body returned by upsert, delete and update calls.
type WriteResult struct {
	Message string  `json:"message"`
	Count   int     `json:"count"`
	IDs     []int64 `json:"ids,omitempty"`
}
