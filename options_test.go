package hibiscus

import "testing"

func TestClientDefaults_DiscardsErrorsByDefault(t *testing.T) {
	o := clientDefaults()
	if o.onError == nil {
		t.Fatal("clientDefaults() should set a non-nil onError")
	}
	// Should not panic.
	o.onError(SDKError{Kind: ErrDisconnectFailed})
}

func TestWithErrorHandler_NilIsIgnored(t *testing.T) {
	o := clientDefaults()
	original := &o
	WithErrorHandler(nil)(original)
	if original.onError == nil {
		t.Fatal("WithErrorHandler(nil) should not clear onError")
	}
}

func TestWithSubscriberBuffer_NonPositiveIgnored(t *testing.T) {
	o := clientDefaults()
	WithSubscriberBuffer(0)(&o)
	if o.subscriberBuf != 0 {
		t.Errorf("subscriberBuf = %d, want 0", o.subscriberBuf)
	}
	WithSubscriberBuffer(32)(&o)
	if o.subscriberBuf != 32 {
		t.Errorf("subscriberBuf = %d, want 32", o.subscriberBuf)
	}
}
