package dispatcher

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"strings"
	"testing"
)

func TestSignFormat(t *testing.T) {
	body := []byte(`{"eventId":"abc","data":{}}`)
	signature, err := Sign(body, "s3cret")
	if err != nil {
		t.Fatalf("sign: %v", err)
	}

	if !strings.HasPrefix(signature, "sha256=") {
		t.Fatalf("signature must carry sha256= prefix, got %q", signature)
	}

	mac := hmac.New(sha256.New, []byte("s3cret"))
	mac.Write(body)
	want := "sha256=" + hex.EncodeToString(mac.Sum(nil))
	if signature != want {
		t.Fatalf("signature mismatch: got %q want %q", signature, want)
	}
}

func TestSignEmptySecret(t *testing.T) {
	if _, err := Sign([]byte("x"), ""); err == nil {
		t.Fatalf("expected error for empty secret")
	}
}

func TestVerifyRoundTrip(t *testing.T) {
	body := []byte(`{"eventType":"task.completed"}`)
	signature, err := Sign(body, "abc")
	if err != nil {
		t.Fatalf("sign: %v", err)
	}

	if !Verify("abc", body, signature) {
		t.Fatalf("signature must verify with the same secret and body")
	}
	if Verify("wrong", body, signature) {
		t.Fatalf("signature must not verify with a different secret")
	}
	if Verify("abc", []byte("tampered"), signature) {
		t.Fatalf("signature must not verify over different bytes")
	}
}

func TestVerifyMalformedHeader(t *testing.T) {
	body := []byte("{}")
	if Verify("abc", body, "md5=deadbeef") {
		t.Fatalf("wrong scheme must not verify")
	}
	if Verify("abc", body, "sha256=nothex") {
		t.Fatalf("non-hex digest must not verify")
	}
	if Verify("abc", body, "") {
		t.Fatalf("empty header must not verify")
	}
}
