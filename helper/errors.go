package helper

import "errors"

var (
	ErrOrderNotFound      = errors.New("order not found")
	ErrDuplicateReference = errors.New("payment reference already exists")
	ErrNotTrashed         = errors.New("order is not in trash")
	ErrInvalidOrderInput  = errors.New("invalid order input")
)
