package source

import (
	"errors"
	"net/http"
	"strconv"
)

var (
	ErrEmptyResponse = errors.New("device returned an empty response")
	ErrMalformed     = errors.New("device returned a malformed response")
)

type errStatusNotOK int

func (e errStatusNotOK) Error() string {
	return "non-2xx HTTP status code: " + strconv.Itoa(int(e)) + " " + http.StatusText(int(e))
}

type errFieldMissing string

func (e errFieldMissing) Error() string {
	return "field missing from response: " + string(e)
}
