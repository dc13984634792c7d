package schema

// UserAccountTable represents the 'users.account' table
type UserAccountTable struct {
	Table        string
	ID           string
	FullName     string
	Email        string
	Phone        string
	DateOfBirth  string
	PasswordHash string
	ImagePath    string
	Role         string
	SavedPosts   string
	CreatedAt    string
	UpdatedAt    string
}

// UserAccount is the schema definition for users.account
var UserAccount = UserAccountTable{
	Table:        "users.account",
	ID:           "id",
	FullName:     "fullname",
	Email:        "email",
	Phone:        "phone",
	DateOfBirth:  "dateofbirth",
	PasswordHash: "passwordhash",
	ImagePath:    "imagepath",
	Role:         "role",
	SavedPosts:   "savedposts",
	CreatedAt:    "createdat",
	UpdatedAt:    "updatedat",
}

func (t UserAccountTable) Columns() []string {
	return []string{
		t.ID, t.FullName, t.Email, t.Phone, t.DateOfBirth, t.PasswordHash,
		t.ImagePath, t.Role, t.SavedPosts, t.CreatedAt, t.UpdatedAt,
	}
}
