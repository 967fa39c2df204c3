package middleware

import (
	"time"

	"github.com/alterationx10/spider"
	"github.com/alterationx10/spider/cookie"
	"github.com/alterationx10/spider/hdr"
	"github.com/alterationx10/spider/session"
)

const sessionAttrKey = "middleware.session"

// sessionState tracks, alongside the session itself, whether it existed
// in the store before this request (an existing session is persisted
// unconditionally to keep its sliding expiration alive; a brand-new one
// is only allocated — saved and given a Set-Cookie — once the handler
// actually writes to it).
type sessionState struct {
	sess  *session.Session
	isNew bool
}

// SessionConfig controls the cookie-based session middleware.
type SessionConfig struct {
	Store      session.Store
	CookieName string // default "SID"
	TTL        time.Duration
	Secure     bool
}

// Session extracts the session id from a cookie, loads it from the
// store (sliding expiration on read), and defers persistence to
// Post, per spec.md §4.8.
func Session(cfg SessionConfig) Middleware {
	name := cfg.CookieName
	if name == "" {
		name = "SID"
	}
	return Middleware{
		Pre: func(req *spider.Request) (Result, error) {
			cookies := cookie.Parse(req.Header.Get(hdr.Cookie))
			var sess *session.Session
			isNew := true
			if id := cookies[name]; id != "" {
				if sess, _ = cfg.Store.Get(id); sess != nil {
					isNew = false
				}
			}
			if sess == nil {
				id, err := cookie.NewSessionID()
				if err != nil {
					return Continue(req), nil
				}
				sess = session.New(id, cfg.TTL)
			}
			req.Attributes.Set(sessionAttrKey, &sessionState{sess: sess, isNew: isNew})
			return Continue(req), nil
		},
		Post: func(req *spider.Request, resp *spider.Response) *spider.Response {
			v, ok := req.Attributes.Get(sessionAttrKey)
			if !ok || resp == nil {
				return resp
			}
			st := v.(*sessionState)
			if st.isNew && !st.sess.Dirty() {
				// nothing was written to a session nobody had before:
				// don't allocate a store entry or mint a cookie.
				return resp
			}
			sess := st.sess
			cfg.Store.Save(sess)
			c, err := cookie.New(name, sess.ID)
			if err == nil {
				c.HTTPOnly = true
				c.Secure = cfg.Secure
				c.MaxAge = int(cfg.TTL.Seconds())
				resp.Header.Add(hdr.SetCookie, c.String())
			}
			return resp
		},
	}
}

// FromRequest returns the session attached to req by the Session
// middleware, if any.
func FromRequest(req *spider.Request) (*session.Session, bool) {
	v, ok := req.Attributes.Get(sessionAttrKey)
	if !ok {
		return nil, false
	}
	st, ok := v.(*sessionState)
	if !ok {
		return nil, false
	}
	return st.sess, true
}
