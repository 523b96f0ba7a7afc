package notify

import "errors"

var (
	// ErrNoRecipients indicates a message with an empty recipient list.
	ErrNoRecipients = errors.New("notify: no recipients")

	// ErrSendFailed indicates the SMTP delivery failed.
	ErrSendFailed = errors.New("notify: send failed")

	// ErrQueueFull indicates the dispatch queue rejected a message.
	ErrQueueFull = errors.New("notify: dispatch queue full")

	// ErrDispatcherClosed indicates enqueue after shutdown.
	ErrDispatcherClosed = errors.New("notify: dispatcher closed")
)
