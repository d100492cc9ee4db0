package cli

type ErrorCode string

const (
	ErrInvalidConfig ErrorCode = "InvalidConfig"
	ErrServer        ErrorCode = "ServerError"
	ErrInvalidArgs   ErrorCode = "InvalidArguments"
)
