package middleware

import (
	"strconv"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"github.com/alterationx10/spider"
	"github.com/alterationx10/spider/hdr"
)

// RateLimitConfig controls the token-bucket rate-limit middleware.
type RateLimitConfig struct {
	MaxRequests int
	Window      time.Duration
	// KeyFunc extracts the bucket key for a request; defaults to
	// req.RemoteAddr.
	KeyFunc func(req *spider.Request) string
}

type bucket struct {
	limiter *rate.Limiter
	reset   time.Time
}

// RateLimit implements the per-key token bucket from spec.md §4.8.
func RateLimit(cfg RateLimitConfig) Middleware {
	if cfg.KeyFunc == nil {
		cfg.KeyFunc = func(req *spider.Request) string { return req.RemoteAddr }
	}
	every := cfg.Window / time.Duration(maxInt(cfg.MaxRequests, 1))

	var mu sync.Mutex
	buckets := make(map[string]*bucket)

	getBucket := func(key string) *bucket {
		mu.Lock()
		defer mu.Unlock()
		b, ok := buckets[key]
		if !ok {
			b = &bucket{limiter: rate.NewLimiter(rate.Every(every), cfg.MaxRequests)}
			buckets[key] = b
		}
		return b
	}

	return Middleware{
		Pre: func(req *spider.Request) (Result, error) {
			key := cfg.KeyFunc(req)
			b := getBucket(key)
			reservation := b.limiter.Reserve()
			if !reservation.OK() {
				return Respond(spider.FromError(spider.RateLimited("rate limit configuration rejects all requests"))), nil
			}
			delay := reservation.Delay()
			if delay > 0 {
				reservation.Cancel()
				resp := spider.FromError(spider.RateLimited("rate limit exceeded"))
				retryAfter := int(delay.Seconds())
				if delay > time.Duration(retryAfter)*time.Second {
					retryAfter++
				}
				resp.Header.Set(hdr.RetryAfter, strconv.Itoa(retryAfter))
				setRateLimitHeaders(resp, cfg.MaxRequests, 0, time.Now().Add(delay))
				return Respond(resp), nil
			}
			req.Attributes.Set("middleware.ratelimit_remaining", int(b.limiter.Tokens()))
			return Continue(req), nil
		},
		Post: func(req *spider.Request, resp *spider.Response) *spider.Response {
			if resp == nil {
				return resp
			}
			remaining := 0
			if v, ok := req.Attributes.Get("middleware.ratelimit_remaining"); ok {
				remaining, _ = v.(int)
			}
			setRateLimitHeaders(resp, cfg.MaxRequests, remaining, time.Now().Add(cfg.Window))
			return resp
		},
	}
}

func setRateLimitHeaders(resp *spider.Response, limit, remaining int, reset time.Time) {
	resp.Header.Set("X-RateLimit-Limit", strconv.Itoa(limit))
	resp.Header.Set("X-RateLimit-Remaining", strconv.Itoa(remaining))
	resp.Header.Set("X-RateLimit-Reset", strconv.FormatInt(reset.Unix(), 10))
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}
