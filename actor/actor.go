// Package actor implements Keanu, the supervised actor runtime from
// spec.md §4.11: a registry of named, lazily-instantiated actors, each
// backed by a mailbox and a long-running task, supervised on failure,
// with a bounded dead-letter log.
package actor

import "errors"

// Actor is the minimal contract: OnMsg is invoked once per dequeued
// message (spec.md §4.11's "actor task ... invokes onMsg"). An actor
// that has no case for msg returns ErrUnhandled, which the runtime
// records as a dead letter rather than treating as a supervised
// failure.
type Actor interface {
	OnMsg(msg any) error
}

// ErrUnhandled is returned by OnMsg when the actor's partial function
// is undefined for msg (spec.md §4.11's UnhandledMessage dead letter).
var ErrUnhandled = errors.New("actor: message unhandled")

// PreStarter is invoked before an actor's first message.
type PreStarter interface{ PreStart() }

// PostStopper is invoked when an actor stops, by any means.
type PostStopper interface{ PostStop() }

// PreRestarter is invoked before a restart, given the failure cause.
type PreRestarter interface{ PreRestart(cause error) }

// PostRestarter is invoked after a restart, given the failure cause.
type PostRestarter interface{ PostRestart(cause error) }

// poisonPill is the sentinel spec.md §4.11 names: processed in order,
// it triggers an orderly stop after prior messages are handled.
type poisonPill struct{}

// PoisonPill is tell'd to an actor to stop it once queued work drains.
var PoisonPill = poisonPill{}

// Factory constructs a fresh actor instance, replacing the teacher's
// class-handle-plus-constructor-arguments idiom with a closure per the
// redesign flag in spec.md §9.
type Factory func() Actor

// ErrSystemShutdown is returned by Tell once the system has begun
// shutting down.
var ErrSystemShutdown = errors.New("actor: system is shut down")

// ErrMailboxOverflow is returned by Tell when a Fail-policy bounded
// mailbox is full.
var ErrMailboxOverflow = errors.New("actor: mailbox overflow")

// ErrEmptyName is returned by Tell/ActorOf for an empty actor name.
var ErrEmptyName = errors.New("actor: name must not be empty")

// ErrNilMessage is returned by Tell for a nil message.
var ErrNilMessage = errors.New("actor: message must not be nil")

// ErrNotRegistered is returned by Tell for a name with no ActorOf props
// registered.
var ErrNotRegistered = errors.New("actor: name not registered")
