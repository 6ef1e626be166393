package repository

import "errors"

var ErrDuplicateID = errors.New("resource id already registered")
