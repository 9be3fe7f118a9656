package service

import "errors"

var (
	ErrDivideByZero = errors.New("division by zero")
	ErrBadOperand   = errors.New("operand is not an integer")
)
