package todolist

import "sync"

// Notifier receives user-facing toasts.
type Notifier interface {
	Success(msg string)
	Error(msg string)
}

// ToastKind distinguishes success from error toasts.
type ToastKind int

const (
	ToastSuccess ToastKind = iota
	ToastError
)

// Toast is a transient message for the user.
type Toast struct {
	Kind    ToastKind
	Message string
}

// ToastQueue is a Notifier that buffers toasts on a channel. When the buffer
// is full the oldest toast is dropped.
type ToastQueue struct {
	mu sync.Mutex
	ch chan Toast
}

// NewToastQueue creates a queue holding up to size toasts.
func NewToastQueue(size int) *ToastQueue {
	if size < 1 {
		size = 1
	}
	return &ToastQueue{ch: make(chan Toast, size)}
}

// C returns the channel toasts are delivered on.
func (q *ToastQueue) C() <-chan Toast {
	return q.ch
}

func (q *ToastQueue) Success(msg string) { q.push(Toast{Kind: ToastSuccess, Message: msg}) }
func (q *ToastQueue) Error(msg string) { q.push(Toast{Kind: ToastError, Message: msg}) }

func (q *ToastQueue) push(t Toast) {
	q.mu.Lock()
	defer q.mu.Unlock()
	for {
		select {
		case q.ch <- t:
			return
		default:
		}
		select {
		case <-q.ch:
		default:
		}
	}
}

type nopNotifier struct{}

func (nopNotifier) Success(string) {}
func (nopNotifier) Error(string) {}
