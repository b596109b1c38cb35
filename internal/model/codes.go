package model

// API error codes surfaced in the response envelope alongside the message.
const (
	CodeTokenExpired = "TOKEN_EXPIRED"
	CodeTokenInvalid = "TOKEN_INVALID"
	CodeFileTooLarge = "FILE_TOO_LARGE"
)
