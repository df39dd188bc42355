package repository

import (
	"fmt"
	"strings"
)

// Author represents a Git commit author or committer.
type Author struct {
	name  string
	email string
}

// NewAuthor creates a new Author. The email is lowercased so that two
// identical addresses differing only in case (git allows this; mail
// servers generally don't care) compare equal and dedupe correctly.
func NewAuthor(name, email string) Author {
	return Author{
		name:  name,
		email: strings.ToLower(strings.TrimSpace(email)),
	}
}

// Name returns the author's name.
func (a Author) Name() string { return a.name }

// Email returns the author's email.
func (a Author) Email() string { return a.email }

// IsEmpty returns true if no name is set.
func (a Author) IsEmpty() bool { return a.name == "" }

// String returns a formatted representation (Name <email>).
func (a Author) String() string {
	if a.email == "" {
		return a.name
	}
	return fmt.Sprintf("%s <%s>", a.name, a.email)
}

// Equal returns true if two Author values are equal.
func (a Author) Equal(other Author) bool {
	return a.name == other.name && a.email == other.email
}
