package request

import (
	"errors"

	"github.com/dlclark/regexp2"
	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/go-ozzo/ozzo-validation/is"
)

// Password must have at least one letter, one digit and eight characters.
// The lookahead syntax needs regexp2; Go's regexp has no lookaheads.
const passwordPattern = `^(?=.*[A-Za-z])(?=.*\d)[A-Za-z\d@$!%*#?&\-_]{8,}$`

type SignupRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Name     string `json:"name"`
	Role     string `json:"role"`
}

func (req *SignupRequest) Validate() error {
	return validation.ValidateStruct(
		req,
		validation.Field(&req.Email, validation.Required, is.Email),
		validation.Field(&req.Password, validation.Required, validation.By(validatePassword)),
		validation.Field(&req.Name, validation.Required, validation.Length(2, 50)),
		validation.Field(&req.Role, validation.Required, validation.In("admin", "supervisor")),
	)
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (req *LoginRequest) Validate() error {
	return validation.ValidateStruct(
		req,
		validation.Field(&req.Email, validation.Required, is.Email),
		validation.Field(&req.Password, validation.Required),
	)
}

func validatePassword(value interface{}) error {
	password, ok := value.(string)
	if !ok {
		return errors.New("password must be a string")
	}

	re := regexp2.MustCompile(passwordPattern, regexp2.None)
	matched, err := re.MatchString(password)
	if err != nil {
		return err
	}
	if !matched {
		return errors.New("password must be at least 8 characters with letters and numbers")
	}

	return nil
}
