package chat

import "strings"

// Role identifies which side of the marketplace a participant sits on.
type Role string

const (
	RoleCustomer Role = "customer"
	RoleFarmer   Role = "farmer"
)

// Valid reports whether the role is one of the two marketplace roles.
func (r Role) Valid() bool {
	return r == RoleCustomer || r == RoleFarmer
}

// Participant is one side of a conversation, addressed by role and email.
type Participant struct {
	Role  Role   `db:"role"`
	Email string `db:"email"`
}

// NormalizeEmail lowercases and trims an email so the same identity always
// produces the same pair key and the same stored row.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// RoomKey derives the broadcast room for a customer/farmer pair. It is a pure
// function of the normalized pair, so both sides of a conversation land in
// the same room no matter who initiates or how the emails were cased.
func RoomKey(userEmail, farmerEmail string) string {
	return NormalizeEmail(userEmail) + "_" + NormalizeEmail(farmerEmail)
}
