package provider_test

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/petasbytes/marvin/internal/provider"
)

func TestClassify(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want provider.Kind
	}{
		{"nil", nil, provider.KindOther},
		{"missing key", fmt.Errorf("startup: %w", provider.ErrMissingAPIKey), provider.KindAuth},
		{"deadline", fmt.Errorf("send: %w", context.DeadlineExceeded), provider.KindTimeout},
		{"status 401", &provider.StatusError{StatusCode: 401}, provider.KindAuth},
		{"status 504", &provider.StatusError{StatusCode: 504}, provider.KindTimeout},
		{"status 503", &provider.StatusError{StatusCode: 503}, provider.KindConnectivity},
		{"plain", errors.New("weird"), provider.KindOther},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := provider.Classify(tc.err); got != tc.want {
				t.Fatalf("Classify = %v, want %v", got, tc.want)
			}
		})
	}
}

func TestKindReply(t *testing.T) {
	seen := map[string]bool{}
	for _, k := range []provider.Kind{provider.KindOther, provider.KindAuth, provider.KindRateLimit, provider.KindConnectivity, provider.KindTimeout} {
		r := k.Reply()
		if strings.TrimSpace(r) == "" || seen[r] {
			t.Fatalf("kind %v: reply %q empty or duplicated", k, r)
		}
		seen[r] = true
	}
}
