package services

import "context"

type EmailValidator interface {
	Validate(ctx context.Context, email string) error
}

// LocalValidator accepts anything that already passed the format check.
type LocalValidator struct{}

func NewLocalValidator() *LocalValidator {
	return &LocalValidator{}
}

func (v *LocalValidator) Validate(
	ctx context.Context,
	email string,
) error {
	// Format already checked in validateEmail(), so just accept
	return nil
}
