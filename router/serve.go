package router

import (
	"context"
	"errors"
	"time"

	"github.com/io7m-com/hibiscus-go"
)

// Serve repeatedly calls client.Receive and dispatches every ReadReceived
// message through router, sending back whatever the handler returns via
// client.SendAndForget. It returns when ctx is done or the client closes.
func Serve(ctx context.Context, client *hibiscus.Client, r *Router, pollTimeout time.Duration, onError hibiscus.ErrorHandler) {
	if onError == nil {
		onError = func(hibiscus.SDKError) {}
	}

	for {
		select {
		case <-ctx.Done():
			return
		default:
		}

		out, err := client.Receive(ctx, pollTimeout)
		if err != nil {
			if errors.Is(err, hibiscus.ErrClosedClient) || errors.Is(err, context.Canceled) {
				return
			}
			onError(hibiscus.SDKError{Kind: hibiscus.ErrRouterDispatch, Cause: err})
			continue
		}

		if out.Kind != hibiscus.ReadReceived {
			continue
		}

		reply, err := r.Dispatch(ctx, out.Message)
		if err != nil {
			if !errors.Is(err, ErrUnregisteredType) {
				onError(hibiscus.SDKError{Kind: hibiscus.ErrRouterDispatch, Cause: err})
			}
			continue
		}
		if reply == nil {
			continue
		}
		if err := client.SendAndForget(ctx, reply); err != nil {
			onError(hibiscus.SDKError{Kind: hibiscus.ErrRouterDispatch, Cause: err})
		}
	}
}
