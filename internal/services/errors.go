package services

import "errors"

var (
	errEmptyName = errors.New("name is empty")
	errBadName   = errors.New("name must be a single path element")
)
