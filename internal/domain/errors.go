package domain

import "errors"

var (
	// ErrNoCount is returned when a count response carries no count field.
	ErrNoCount = errors.New("count missing from response")
	// ErrNegativeCount indicates the remote side reported a count below zero.
	ErrNegativeCount = errors.New("negative document count")
)
