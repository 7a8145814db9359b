package session

import (
	"strings"
	"unicode/utf8"
)

const (
	minPasswordLen = 6
	minNameLen     = 3
)

// Mode selects between signing in and registering
type Mode int

const (
	SignIn Mode = iota
	SignUp
)

func (m Mode) String() string {
	if m == SignUp {
		return "signup"
	}
	return "signin"
}

// Form is the credentials form
type Form struct {
	Name            string
	Email           string
	Password        string
	ConfirmPassword string
}

// Validate reports whether form can be submitted in mode
func Validate(form Form, mode Mode) bool {
	return len(Problems(form, mode)) == 0
}

// Problems lists the rules form breaks in mode, empty when submittable
func Problems(form Form, mode Mode) []string {
	var problems []string

	if form.Email == "" || !strings.Contains(form.Email, "@") {
		problems = append(problems, "email must contain @")
	}
	if utf8.RuneCountInString(form.Password) < minPasswordLen {
		problems = append(problems, "password must have at least 6 characters")
	}

	if mode == SignUp {
		if form.ConfirmPassword == "" {
			problems = append(problems, "password confirmation is required")
		} else if form.ConfirmPassword != form.Password {
			problems = append(problems, "passwords do not match")
		}
		if utf8.RuneCountInString(strings.TrimSpace(form.Name)) < minNameLen {
			problems = append(problems, "name must have at least 3 characters")
		}
	}

	return problems
}
