package request

import "errors"

var (
	ErrRequestNotFound = errors.New("attendance request not found")
	ErrSelfDecision    = errors.New("you cannot decide your own request")
	ErrAlreadyDecided  = errors.New("request has already been decided")
	ErrInvalidMeta     = errors.New("request meta payload does not match the request type")
)
