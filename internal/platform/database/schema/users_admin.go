package schema

// UsersAdminTable represents the 'users.admin' table
type UsersAdminTable struct {
	Table        string
	ID           string
	Username     string
	Email        string
	Name         string
	PasswordHash string
	LastLoginAt  string
	CreatedAt    string
}

// UsersAdmin is the schema definition for users.admin
var UsersAdmin = UsersAdminTable{
	Table:        "users.admin",
	ID:           "id",
	Username:     "username",
	Email:        "email",
	Name:         "name",
	PasswordHash: "passwordhash",
	LastLoginAt:  "lastloginat",
	CreatedAt:    "createdat",
}

func (t UsersAdminTable) Columns() []string {
	return []string{t.ID, t.Username, t.Email, t.Name, t.PasswordHash, t.LastLoginAt, t.CreatedAt}
}
