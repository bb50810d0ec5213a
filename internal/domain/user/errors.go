package user

import "errors"

// Domain errors for user operations

var (
	ErrEmailRequired    = errors.New("email is required")
	ErrEmailInvalid     = errors.New("invalid email format")
	ErrNameRequired     = errors.New("name is required")
	ErrNameLength       = errors.New("name must be between 2 and 100 characters")
	ErrPasswordLength   = errors.New("password must be between 8 and 128 characters")
	ErrPasswordHashing  = errors.New("failed to hash password")
	ErrProfileRequired  = errors.New("profile is required")
	ErrHeightOutOfRange = errors.New("height must be between 50 and 280 cm")
	ErrWeightOutOfRange = errors.New("weight must be between 20 and 400 kg")
	ErrBirthDateInvalid = errors.New("birth date must be in the past")
	ErrUserNotFound     = errors.New("user not found")
	ErrEmailTaken       = errors.New("user with this email already exists")
	ErrProfileMissing   = errors.New("user has not completed their biometric profile")
)
