package domain

import "errors"

var (
	ErrUnknownVotePolicy = errors.New("unknown vote policy")
	ErrPostNotFound      = errors.New("post not found")
)
