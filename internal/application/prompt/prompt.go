package prompt

import (
	"context"
	"errors"
	"sync"

	"github.com/google/uuid"
)

// Kind selects the icon/severity of the dialog.
type Kind string

// Dialog kinds
const (
	KindInfo    Kind = "info"
	KindSuccess Kind = "success"
	KindError   Kind = "error"
	KindWarning Kind = "warning"
)

// Errors
var (
	ErrBusy      = errors.New("another prompt is already awaiting resolution")
	ErrNoPending = errors.New("no matching prompt is awaiting resolution")
)

// Request describes a pending confirm/alert dialog.
type Request struct {
	ID         string `json:"id"`
	Kind       Kind   `json:"kind"`
	Title      string `json:"title"`
	Message    string `json:"message"`
	WithCancel bool   `json:"withCancel"`
}

// Asker is the confirm surface consumed by orchestrators: Ask suspends the
// caller until the human confirms (true) or cancels (false).
type Asker interface {
	Ask(ctx context.Context, kind Kind, title, message string, withCancel bool) (bool, error)
}

// Answered is an Asker whose answer is already known — used where the
// confirmation arrived with the request itself.
type Answered bool

// Ask returns the pre-recorded answer immediately.
// POST: Returns bool(a), nil
func (a Answered) Ask(_ context.Context, _ Kind, _, _ string, _ bool) (bool, error) {
	return bool(a), nil
}

type pending struct {
	req  Request
	done chan bool
}

// Modal is the single shared dialog surface. One Ask may be in flight at a
// time; a second concurrent Ask fails with ErrBusy. Each Ask is resolved
// exactly once by a matching Resolve.
type Modal struct {
	mu         sync.Mutex
	current    *pending
	generateID func() string
}

// Compile-time check that *Modal satisfies Asker.
var _ Asker = (*Modal)(nil)

// NewModal creates the shared dialog surface.
func NewModal() *Modal {
	return &Modal{generateID: uuid.NewString}
}

// Ask publishes a dialog request and blocks until it is resolved.
// PRE: no other Ask is in flight
// POST: Returns the human's answer; the surface is free again
func (m *Modal) Ask(ctx context.Context, kind Kind, title, message string, withCancel bool) (bool, error) {
	m.mu.Lock()
	if m.current != nil {
		m.mu.Unlock()
		return false, ErrBusy
	}
	p := &pending{
		req: Request{
			ID:         m.generateID(),
			Kind:       kind,
			Title:      title,
			Message:    message,
			WithCancel: withCancel,
		},
		done: make(chan bool, 1),
	}
	m.current = p
	m.mu.Unlock()

	select {
	case answer := <-p.done:
		return answer, nil
	case <-ctx.Done():
		m.mu.Lock()
		if m.current == p {
			m.current = nil
		}
		m.mu.Unlock()
		return false, ctx.Err()
	}
}

// Pending returns the dialog request currently awaiting resolution, if any.
// INVARIANT: the request is not consumed by reading it
func (m *Modal) Pending() (Request, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.current == nil {
		return Request{}, false
	}
	return m.current.req, true
}

// Resolve delivers the answer for the pending request with the given ID.
// PRE: a request with this ID is awaiting resolution
// POST: The waiting Ask returns; a second Resolve fails with ErrNoPending
func (m *Modal) Resolve(id string, confirmed bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.current == nil || m.current.req.ID != id {
		return ErrNoPending
	}
	m.current.done <- confirmed
	m.current = nil
	return nil
}
