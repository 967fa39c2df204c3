package middleware

import (
	"runtime/debug"

	"github.com/sirupsen/logrus"

	"github.com/alterationx10/spider"
)

// Recover catches panics raised by inner middlewares or the handler,
// converting them to the Internal taxonomy entry and logging the
// stack trace, per SPEC_FULL.md §6.6. It should be the outermost
// middleware in any chain.
func Recover(log *logrus.Logger) Middleware {
	return Middleware{
		Around: func(req *spider.Request, next spider.Handler) (resp *spider.Response, err error) {
			defer func() {
				if r := recover(); r != nil {
					log.WithFields(logrus.Fields{
						"panic": r,
						"stack": string(debug.Stack()),
					}).Error("recovered panic")
					resp = spider.FromError(spider.Internal("internal server error"))
					err = nil
				}
			}()
			return next(req)
		},
	}
}
