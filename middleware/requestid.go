package middleware

import (
	"github.com/google/uuid"

	"github.com/alterationx10/spider"
	"github.com/alterationx10/spider/hdr"
)

const RequestIDKey = "middleware.request_id"

// RequestID generates a UUID per request, stores it on the attribute
// bag under RequestIDKey, and echoes it as X-Request-Id on the response.
func RequestID() Middleware {
	return Middleware{
		Pre: func(req *spider.Request) (Result, error) {
			id := uuid.New().String()
			req.Attributes.Set(RequestIDKey, id)
			return Continue(req), nil
		},
		Post: func(req *spider.Request, resp *spider.Response) *spider.Response {
			if id := req.Attributes.GetString(RequestIDKey); id != "" && resp != nil {
				resp.Header.Set(hdr.XRequestID, id)
			}
			return resp
		},
	}
}
