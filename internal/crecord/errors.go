package crecord

import "errors"

var (
	ErrBadDate             = errors.New("unparseable date")
	ErrUnknownGrade        = errors.New("unknown grade code")
	ErrUnknownUnit         = errors.New("unknown unit of time")
	ErrUnparseableQuantity = errors.New("unparseable sentence quantity")
	ErrMissingDisposition  = errors.New("missing disposition")
	ErrNoLastAction        = errors.New("no arrest or disposition date")

	ErrInvalidRecord = errors.New("invalid record")
	ErrMissingDocket = errors.New("case has no docket number")
	ErrDuplicateCase = errors.New("duplicate docket number")
)
