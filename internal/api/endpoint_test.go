package api

import (
	"net/http"
	"testing"

	appErr "ojclient/pkg/errors"
)

func TestSignatureKey(t *testing.T) {
	testCases := []struct {
		sig  Signature
		want string
	}{
		{Signature{Method: http.MethodGet, Path: "/auth/info"}, "get:/auth/info"},
		{Signature{Method: "post", Path: "/auth/login"}, "post:/auth/login"},
		{Signature{Method: http.MethodDelete, Path: "/contest/registrants"}, "delete:/contest/registrants"},
	}
	for _, tc := range testCases {
		if got := tc.sig.Key(); got != tc.want {
			t.Fatalf("Key() = %q, want %q", got, tc.want)
		}
	}
	if AuthInfo.Signature().Key() != "get:/auth/info" {
		t.Fatalf("auth info key = %q", AuthInfo.Signature().Key())
	}
}

func TestCatalogueKeysUnique(t *testing.T) {
	descs := Catalogue()
	if len(descs) == 0 {
		t.Fatalf("catalogue is empty")
	}
	seen := make(map[string]bool, len(descs))
	for i, d := range descs {
		key := d.Signature.Key()
		if seen[key] {
			t.Fatalf("duplicate signature %s", key)
		}
		seen[key] = true
		if i > 0 && descs[i-1].Signature.Key() > key {
			t.Fatalf("catalogue not sorted at %s", key)
		}
		if d.Doc == "" {
			t.Fatalf("%s has no doc", key)
		}
	}
	// One path, three verbs.
	for _, method := range []string{http.MethodGet, http.MethodPost, http.MethodDelete} {
		if _, ok := Lookup(method, "/contest/registrants"); !ok {
			t.Fatalf("%s /contest/registrants not declared", method)
		}
	}
}

func TestDescriptorTypes(t *testing.T) {
	d, ok := Lookup(http.MethodGet, "/user/gravatar")
	if !ok {
		t.Fatalf("gravatar not declared")
	}
	if d.Return != "bytes" {
		t.Fatalf("gravatar return = %q, want bytes", d.Return)
	}
	d, _ = Lookup(http.MethodPost, "/auth/logout")
	if d.Payload != "api.NoPayload" || d.Return != "string" {
		t.Fatalf("logout descriptor = %+v", d)
	}
}

func TestValidateUsername(t *testing.T) {
	testCases := []struct {
		name     string
		username string
		wantErr  string
	}{
		{name: "plain", username: "alice"},
		{name: "digits and underscore", username: "bob_42"},
		{name: "unicode letters", username: "小明同学"},
		{name: "reserved", username: "root"},
		{name: "too short", username: "abc", wantErr: "too short (< 4)"},
		{name: "too long", username: "abcdefghijklmnopqrstu", wantErr: "too long (> 20)"},
		{name: "leading digit", username: "1abc", wantErr: "must start with a letter"},
		{name: "dash", username: "ab-cd", wantErr: "contains invalid char '-'"},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			err := ValidateUsername(tc.username)
			if tc.wantErr == "" {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				return
			}
			if err == nil {
				t.Fatalf("expected error %q", tc.wantErr)
			}
			e := appErr.GetError(err)
			if e.Code != appErr.InvalidUsername {
				t.Fatalf("code = %d, want InvalidUsername", e.Code)
			}
			if reason, _ := e.Details["reason"].(string); reason != tc.wantErr {
				t.Fatalf("reason = %q, want %q", reason, tc.wantErr)
			}
			if appErr.KindOf(err) != appErr.KindValidation {
				t.Fatalf("kind = %s, want validation", appErr.KindOf(err))
			}
		})
	}
}

func TestValidateRegister(t *testing.T) {
	ok := RegisterPayload{Email: "alice@example.com", Username: "alice", PasswordHash: "x"}
	if err := ValidateRegister(ok); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	bad := ok
	bad.Email = "Alice <alice@example.com>"
	if !appErr.Is(ValidateRegister(bad), appErr.InvalidEmail) {
		t.Fatalf("display-name address should be rejected")
	}
	bad = ok
	bad.PasswordHash = ""
	if appErr.KindOf(ValidateRegister(bad)) != appErr.KindValidation {
		t.Fatalf("empty password hash should be a validation error")
	}
}
