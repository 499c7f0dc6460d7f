package services

import (
	"errors"
)

var (
	ErrUserNotFound        = errors.New("user not found")
	ErrPaymentNotFound     = errors.New("payment record not found")
	ErrPaymentNotConfirmed = errors.New("payment is not confirmed")
	ErrInvalidStatus       = errors.New("invalid payment status")
	ErrInvalidTableType    = errors.New("invalid table type")
	ErrMissingSeatFields   = errors.New("table type, table number and seat number are required")
	ErrMissingReceipt      = errors.New("receipt file or url is required")
)
