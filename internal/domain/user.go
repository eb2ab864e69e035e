package domain

// User is a warehouse picker account on the sync server. Code is the
// badge code pickers log in with and the value stored in a list's
// AssignedUser field.
type User struct {
	ID   string `db:"id"`
	Code string `db:"code"`
	Name string `db:"name"`
	Hash string `db:"password_hash"`
}
