package entity

import "errors"

var (
	ErrTaskNotFound          = errors.New("task not found")
	ErrCategoryNotFound      = errors.New("category not found")
	ErrInvalidTaskData       = errors.New("invalid task data")
	ErrInvalidCategoryData   = errors.New("invalid category data")
	ErrCategoryAlreadyExists = errors.New("category already exists")
	ErrInvalidUserData       = errors.New("invalid user data")
	ErrUserAlreadyExists     = errors.New("username already exists")
	ErrInvalidCredentials    = errors.New("invalid username or password")
	ErrAssistUnavailable     = errors.New("assistant is not configured")
)
