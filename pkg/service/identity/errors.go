package identity

import "github.com/m-mizutani/goerr/v2"

var (
	ErrInvalidCredential = goerr.New("invalid credential")
)
