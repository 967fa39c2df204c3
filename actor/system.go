package actor

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
)

// MailboxFactory builds a fresh Mailbox for a newly-registered actor.
type MailboxFactory func() Mailbox

// Props bundles everything ActorOf needs to lazily construct and
// supervise an actor: a factory closure standing in for the teacher's
// class-handle-plus-constructor-arguments, a mailbox factory, and a
// supervision strategy (spec.md §4.11's "registration records props").
type Props struct {
	New      Factory
	Mailbox  MailboxFactory
	Strategy Strategy
}

// System owns the actor registry, the dead-letter log, and the shared
// logger, per spec.md §4.11.
type System struct {
	log   *logrus.Logger
	clock Clock

	mu       sync.Mutex
	refs     map[string]*actorRef
	shutdown bool

	deadLetters *deadLetterLog
}

// NewSystem returns an actor system logging via log. Pass RealClock
// unless injecting a fake clock for tests.
func NewSystem(log *logrus.Logger, clock Clock) *System {
	if clock == nil {
		clock = RealClock
	}
	return &System{
		log:         log,
		clock:       clock,
		refs:        make(map[string]*actorRef),
		deadLetters: newDeadLetterLog(),
	}
}

type actorRef struct {
	name     string
	props    Props
	mailbox  Mailbox
	done     chan struct{}
	stopOnce sync.Once
}

// ActorOf registers props under name. The actor is not constructed
// until its first message arrives.
func (s *System) ActorOf(name string, props Props) error {
	if name == "" {
		return ErrEmptyName
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.shutdown {
		return ErrSystemShutdown
	}
	if _, exists := s.refs[name]; exists {
		return nil
	}
	mbFactory := props.Mailbox
	if mbFactory == nil {
		mbFactory = NewUnboundedMailbox
	}
	ref := &actorRef{name: name, props: props, mailbox: mbFactory(), done: make(chan struct{})}
	s.refs[name] = ref
	go s.run(ref)
	return nil
}

// Tell looks up or lazily creates the named actor (registering it with
// default props is the caller's job via ActorOf first) and enqueues
// msg into its mailbox.
func (s *System) Tell(name string, msg any) error {
	if name == "" {
		return ErrEmptyName
	}
	if msg == nil {
		return ErrNilMessage
	}
	s.mu.Lock()
	if s.shutdown {
		s.mu.Unlock()
		return ErrSystemShutdown
	}
	ref, ok := s.refs[name]
	s.mu.Unlock()
	if !ok {
		return ErrNotRegistered
	}
	if err := ref.mailbox.Enqueue(msg); err != nil {
		s.deadLetters.record(DeadLetter{ActorName: name, Message: msg, Reason: ReasonActorTerminated, Time: time.Now()})
		return err
	}
	return nil
}

// run is the one long-running task per actor (spec.md §5): it
// instantiates the actor lazily, dequeues messages, invokes OnMsg, and
// applies the supervision Strategy on failure.
func (s *System) run(ref *actorRef) {
	defer close(ref.done)

	first, ok := ref.mailbox.Dequeue()
	if !ok {
		return
	}
	instance, err := s.instantiate(ref)
	if err != nil {
		s.log.WithFields(logrus.Fields{"actor": ref.name, "error": err}).Error("actor instantiation failed")
		s.deadLetters.record(DeadLetter{ActorName: ref.name, Message: first, Reason: ReasonActorTerminated, Time: time.Now()})
		s.mu.Lock()
		delete(s.refs, ref.name)
		s.mu.Unlock()
		ref.mailbox.Close()
		for {
			msg, ok := ref.mailbox.Dequeue()
			if !ok {
				break
			}
			s.deadLetters.record(DeadLetter{ActorName: ref.name, Message: msg, Reason: ReasonActorTerminated, Time: time.Now()})
		}
		return
	}

	attempt := 0
	pending := true
	for {
		msg := first
		if pending {
			pending = false
		} else if msg, ok = ref.mailbox.Dequeue(); !ok {
			s.stopInstance(instance)
			return
		}
		if _, isPoison := msg.(poisonPill); isPoison {
			s.stopInstance(instance)
			s.mu.Lock()
			delete(s.refs, ref.name)
			s.mu.Unlock()
			return
		}

		err := instance.OnMsg(msg)
		if err == nil {
			continue
		}
		if errors.Is(err, ErrUnhandled) {
			s.deadLetters.record(DeadLetter{ActorName: ref.name, Message: msg, Reason: ReasonUnhandled, Time: time.Now()})
			continue
		}

		strategy := ref.props.Strategy
		if strategy == nil {
			strategy = RestartStrategy{}
		}
		decision := strategy.Decide(err, attempt)
		switch decision {
		case DecisionStop:
			s.log.WithFields(logrus.Fields{"actor": ref.name, "cause": err}).Warn("actor stopping on failure")
			s.stopInstance(instance)
			s.mu.Lock()
			delete(s.refs, ref.name)
			s.mu.Unlock()
			return
		case DecisionRestartWithBackoff:
			delay := strategy.BackoffDelay(attempt)
			s.log.WithFields(logrus.Fields{"actor": ref.name, "cause": err, "delay": delay}).Warn("actor restarting with backoff")
			s.clock.Sleep(delay)
			instance = s.restart(ref, instance, err)
			attempt++
		default: // DecisionRestart
			s.log.WithFields(logrus.Fields{"actor": ref.name, "cause": err}).Warn("actor restarting")
			instance = s.restart(ref, instance, err)
		}
	}
}

func (s *System) instantiate(ref *actorRef) (instance Actor, err error) {
	defer func() {
		if r := recover(); r != nil {
			instance = nil
			err = fmt.Errorf("actor: constructor panicked: %v", r)
		}
	}()
	instance = ref.props.New()
	if starter, ok := instance.(PreStarter); ok {
		starter.PreStart()
	}
	return instance, nil
}

func (s *System) restart(ref *actorRef, old Actor, cause error) Actor {
	if r, ok := old.(PreRestarter); ok {
		r.PreRestart(cause)
	}
	fresh := ref.props.New()
	if r, ok := fresh.(PostRestarter); ok {
		r.PostRestart(cause)
	}
	return fresh
}

func (s *System) stopInstance(instance Actor) {
	if stopper, ok := instance.(PostStopper); ok {
		stopper.PostStop()
	}
}

// GetDeadLetters returns up to limit recent dead letters, most recent
// first.
func (s *System) GetDeadLetters(limit int) []DeadLetter {
	return s.deadLetters.recent(limit)
}

// Shutdown marks the system shut down, rejecting new Tells, and closes
// every actor's mailbox so outstanding messages drain and each task
// exits. Idempotent.
func (s *System) Shutdown() {
	s.mu.Lock()
	if s.shutdown {
		s.mu.Unlock()
		return
	}
	s.shutdown = true
	refs := make([]*actorRef, 0, len(s.refs))
	for _, ref := range s.refs {
		refs = append(refs, ref)
	}
	s.mu.Unlock()

	for _, ref := range refs {
		ref.mailbox.Close()
	}
}

// ShutdownAwait calls Shutdown, then waits up to timeout for every
// actor task to exit, returning true if all did.
func (s *System) ShutdownAwait(timeout time.Duration) bool {
	s.mu.Lock()
	refs := make([]*actorRef, 0, len(s.refs))
	for _, ref := range s.refs {
		refs = append(refs, ref)
	}
	s.mu.Unlock()

	s.Shutdown()

	deadline := time.After(timeout)
	for _, ref := range refs {
		select {
		case <-ref.done:
		case <-deadline:
			return false
		}
	}
	return true
}
