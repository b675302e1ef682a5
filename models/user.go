package models

// Role determines which API surface a user may call.
const (
	RoleCustomer = "customer"
	RoleDriver   = "driver"
	RoleAdmin    = "admin"
)

// User represents an account in the system. It is collaborator data for the
// workflow core: invoices snapshot customer/seller details from it and the
// auth middleware resolves callers against it.
type User struct {
	ID         int64  `db:"id" json:"id"`
	Username   string `db:"username" json:"username"`
	Email      string `db:"email" json:"email"`
	FullName   string `db:"full_name" json:"full_name"`
	Phone      string `db:"phone" json:"phone,omitempty"`
	Address    string `db:"address" json:"address,omitempty"`
	City       string `db:"city" json:"city,omitempty"`
	PostalCode string `db:"postal_code" json:"postal_code,omitempty"`
	Role       string `db:"role" json:"role"`
}

// DisplayName returns the full name when present, otherwise the username.
func (u *User) DisplayName() string {
	if u.FullName != "" {
		return u.FullName
	}
	return u.Username
}
