package domain

import "strings"

// User is the storefront account record supplied by the session provider.
type User struct {
	ID        string
	Name      string
	Email     string
	Phone     string
	Address   string
	Favorites []string
}

// CustomerInfo projects the user onto the contact record used at checkout.
func (u User) CustomerInfo() CustomerInfo {
	return CustomerInfo{
		Name:    strings.TrimSpace(u.Name),
		Phone:   strings.TrimSpace(u.Phone),
		Email:   strings.TrimSpace(u.Email),
		Address: strings.TrimSpace(u.Address),
	}
}

// Session is either SignedIn or Anonymous.
type Session interface {
	isSession()
}

// SignedIn carries the current user.
type SignedIn struct {
	User User
}

// Anonymous marks a visitor that is not signed in.
type Anonymous struct{}

func (SignedIn) isSession()  {}
func (Anonymous) isSession() {}

// SessionUser returns the user when the session is signed in.
func SessionUser(s Session) (User, bool) {
	switch v := s.(type) {
	case SignedIn:
		return v.User, true
	case *SignedIn:
		if v != nil {
			return v.User, true
		}
	}
	return User{}, false
}
