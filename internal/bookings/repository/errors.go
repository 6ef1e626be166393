package repository

import "errors"

var (
	ErrDuplicateID = errors.New("booking id already exists")

	ErrWrongResource = errors.New("booking belongs to a different resource than the transaction")

	ErrTxClosed = errors.New("transaction already finished")
)
