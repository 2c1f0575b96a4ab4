package hibiscus

// ClientOption configures a Client at construction time.
type ClientOption func(*clientOptions)

type clientOptions struct {
	onError       ErrorHandler
	subscriberBuf int
}

func clientDefaults() clientOptions {
	return clientOptions{
		onError: discardErrors,
	}
}

// WithErrorHandler routes SDK-level errors that cannot be returned to a
// direct caller (a swallowed best-effort disconnect, a handshake cleanup
// failure) to fn instead of discarding them.
func WithErrorHandler(fn ErrorHandler) ClientOption {
	return func(o *clientOptions) {
		if fn != nil {
			o.onError = fn
		}
	}
}

// WithSubscriberBuffer sets the default buffer size new State subscribers
// get from Client.States when they don't request one explicitly.
func WithSubscriberBuffer(n int) ClientOption {
	return func(o *clientOptions) {
		if n > 0 {
			o.subscriberBuf = n
		}
	}
}
