package middleware

import (
	"time"

	"github.com/sirupsen/logrus"

	"github.com/alterationx10/spider"
)

const startTimeKey = "middleware.start_time"

// Logging logs method, path, status, and duration for every request,
// reading the start time recorded by its own Pre hook.
func Logging(log *logrus.Logger) Middleware {
	return Middleware{
		Pre: func(req *spider.Request) (Result, error) {
			req.Attributes.Set(startTimeKey, time.Now())
			return Continue(req), nil
		},
		Post: func(req *spider.Request, resp *spider.Response) *spider.Response {
			var duration time.Duration
			if v, ok := req.Attributes.Get(startTimeKey); ok {
				if start, ok := v.(time.Time); ok {
					duration = time.Since(start)
				}
			}
			status := 0
			if resp != nil {
				status = resp.Status
			}
			log.WithFields(logrus.Fields{
				"method":   req.Method,
				"path":     req.URI.RawPath,
				"status":   status,
				"duration": duration,
			}).Info("request")
			return resp
		},
	}
}
