package entity

// User is one row in the users relation, uniquely addressable by UUID and
// looked up for login/display by Username.
//
// Password carries a bcrypt hash, never plaintext.
type User struct {
	UUID        string `json:"uuid"`
	Username    string `json:"username"`
	Password    string `json:"password"`
	Email       string `json:"email"`
	PhoneNumber string `json:"phone_number"`
	Bio         string `json:"bio"`
	Role        string `json:"role"`
}
