package http

import (
	"os"
	"testing"
)

func TestResolveParams_ExplicitValues(t *testing.T) {
	p, err := ResolveParams(Params{BaseURL: "http://localhost:8080/rpc"})
	if err != nil {
		t.Fatalf("ResolveParams() error: %v", err)
	}
	if p.BaseURL != "http://localhost:8080/rpc" {
		t.Errorf("BaseURL = %q, want explicit value", p.BaseURL)
	}
}

func TestResolveParams_EnvFallback(t *testing.T) {
	os.Setenv("HIBISCUS_HTTP_BASE_URL", "http://env-host/rpc")
	defer os.Unsetenv("HIBISCUS_HTTP_BASE_URL")

	p, err := ResolveParams(Params{})
	if err != nil {
		t.Fatalf("ResolveParams() error: %v", err)
	}
	if p.BaseURL != "http://env-host/rpc" {
		t.Errorf("BaseURL = %q, want env fallback", p.BaseURL)
	}
}

func TestResolveParams_MissingBaseURL(t *testing.T) {
	os.Unsetenv("HIBISCUS_HTTP_BASE_URL")
	if _, err := ResolveParams(Params{}); err == nil {
		t.Fatal("ResolveParams() with no BaseURL should fail")
	}
}
