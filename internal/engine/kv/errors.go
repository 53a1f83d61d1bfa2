package kv

import "github.com/hivellm/synap/internal/core/domain"

func errKeyNotFound(key string) error {
	return domain.ErrKeyNotFound.WithDetails("key=" + key)
}

func errWrongType(key string, have, want Kind) error {
	return domain.ErrWrongType.WithDetails(key + ": have " + have.String() + ", want " + want.String())
}

func errInvalidArgument(detail string) error {
	return domain.ErrInvalidArgument.WithDetails(detail)
}

func errMemoryLimit(detail string) error {
	return domain.ErrMemoryLimit.WithDetails(detail)
}
