package http

import (
	"context"
	"time"
)

type IClient interface {
	DoHTTPRequest(ctx context.Context, requestParam *RequestParam) error
}

// RequestParam describes one HTTP call. Body may be nil, an io.Reader,
// []byte, or any JSON-marshalable value. Response may be a *[]byte to
// receive the raw body (image payloads) or a pointer that the JSON body
// is unmarshaled into.
type RequestParam struct {
	RequestURI string
	Method     string
	Header     map[string]string
	Body       interface{}
	Response   interface{}

	Timeout time.Duration
}
