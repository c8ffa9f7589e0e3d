package session

import (
	"crypto/subtle"
	"errors"
	"fmt"
	"strings"

	"github.com/dmitrijs2005/shlokapath/internal/client/models"
	"github.com/dmitrijs2005/shlokapath/internal/common"
	"github.com/go-playground/validator/v10"
	"golang.org/x/text/unicode/norm"
)

var validate = validator.New()

var fieldLabels = map[string]string{
	"Name":     "name",
	"Email":    "email",
	"Password": "password",
	"Current":  "current password",
	"New":      "new password",
}

func normalizeText(s string) string {
	return norm.NFC.String(strings.TrimSpace(s))
}

func validationError(op string, err error) error {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return common.NewValidation(op, err.Error())
	}

	fe := verrs[0]
	label, ok := fieldLabels[fe.Field()]
	if !ok {
		label = strings.ToLower(fe.Field())
	}

	var msg string
	switch fe.Tag() {
	case "required":
		msg = fmt.Sprintf("%s is required", label)
	case "contains":
		msg = fmt.Sprintf("%s must contain %q", label, fe.Param())
	case "min":
		if fe.Param() == "1" {
			msg = fmt.Sprintf("%s is required", label)
		} else {
			msg = fmt.Sprintf("%s must be at least %s characters", label, fe.Param())
		}
	default:
		msg = fmt.Sprintf("%s is invalid", label)
	}
	return common.NewValidation(op, msg)
}

func validateCredentials(c *models.Credentials) error {
	c.Email = strings.TrimSpace(c.Email)
	if err := validate.Struct(c); err != nil {
		return validationError("login", err)
	}
	return nil
}

func validateRegistration(r *models.Registration) error {
	r.Name = normalizeText(r.Name)
	r.Email = strings.TrimSpace(r.Email)
	if err := validate.Struct(r); err != nil {
		return validationError("register", err)
	}
	return nil
}

func validateProfileUpdate(u *models.ProfileUpdate) error {
	u.Name = normalizeText(u.Name)
	u.Email = strings.TrimSpace(u.Email)
	u.Profile.Bio = normalizeText(u.Profile.Bio)
	u.Profile.Location = normalizeText(u.Profile.Location)
	if err := validate.Struct(u); err != nil {
		return validationError("update profile", err)
	}
	return nil
}

func validatePasswordChange(p models.PasswordChange) error {
	if err := validate.Struct(p); err != nil {
		return validationError("change password", err)
	}
	if subtle.ConstantTimeCompare(p.New, p.Confirm) != 1 {
		return common.NewValidation("change password", "new password and confirmation do not match")
	}
	return nil
}
