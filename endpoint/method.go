package endpoint

import "net/http"

// Method is an HTTP request method.
type Method string

const (
	GET     Method = http.MethodGet
	POST    Method = http.MethodPost
	PUT     Method = http.MethodPut
	PATCH   Method = http.MethodPatch
	DELETE  Method = http.MethodDelete
	HEAD    Method = http.MethodHead
	OPTIONS Method = http.MethodOptions
	CONNECT Method = http.MethodConnect
	TRACE   Method = http.MethodTrace
)

// Valid reports whether m is one of the standard HTTP methods.
func (m Method) Valid() bool {
	switch m {
	case GET, POST, PUT, PATCH, DELETE, HEAD, OPTIONS, CONNECT, TRACE:
		return true
	}
	return false
}

func (m Method) String() string {
	return string(m)
}
