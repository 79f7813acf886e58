package authbridge

import (
	"errors"

	"github.com/jrazmi/artplanner/sdk/validation"
)

type RegisterInput struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (in RegisterInput) Validate() error {
	if validation.Blank(in.Username) || validation.Blank(in.Email) || in.Password == "" {
		return errors.New("username, email and password are required")
	}
	return nil
}

type LoginInput struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (in LoginInput) Validate() error {
	if validation.Blank(in.Email) || in.Password == "" {
		return errors.New("email and password are required")
	}
	return nil
}

type Message struct {
	Message string `json:"message"`
	UserID  string `json:"userId,omitempty"`
}

type Session struct {
	Token    string `json:"token"`
	UserID   string `json:"userId"`
	Username string `json:"username"`
}
