package utils

import "testing"

func TestHashAndCheckPassword(t *testing.T) {
	hash, err := HashPassword("s3cret-pass")
	if err != nil {
		t.Fatalf("hash password: %v", err)
	}
	if hash == "s3cret-pass" {
		t.Fatalf("hash must not equal the plaintext")
	}

	if err := CheckPassword(hash, "s3cret-pass"); err != nil {
		t.Fatalf("correct password rejected: %v", err)
	}
	if err := CheckPassword(hash, "wrong"); err == nil {
		t.Fatalf("wrong password accepted")
	}
}

func TestGenerateSlug(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"Café Crème", "cafe-creme"},
		{"  Wireless Mouse!! ", "wireless-mouse"},
		{"ALL CAPS", "all-caps"},
		{"multi   spaces", "multi-spaces"},
	}
	for _, tc := range cases {
		if got := GenerateSlug(tc.in); got != tc.want {
			t.Errorf("GenerateSlug(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestParseIntDefault(t *testing.T) {
	if got := ParseIntDefault("", 7); got != 7 {
		t.Errorf("empty input: got %d, want 7", got)
	}
	if got := ParseIntDefault("12", 7); got != 12 {
		t.Errorf("valid input: got %d, want 12", got)
	}
	if got := ParseIntDefault("nope", 7); got != 7 {
		t.Errorf("invalid input: got %d, want 7", got)
	}
}

func TestObjectNameFromPublicURL(t *testing.T) {
	name, err := ObjectNameFromPublicURL("shop-images", "https://storage.googleapis.com/shop-images/products/mouse/1-abc.png")
	if err != nil {
		t.Fatalf("parse url: %v", err)
	}
	if name != "products/mouse/1-abc.png" {
		t.Fatalf("object name = %q", name)
	}

	if _, err := ObjectNameFromPublicURL("shop-images", "https://example.com/whatever.png"); err == nil {
		t.Fatalf("foreign url should be rejected")
	}
	if _, err := ObjectNameFromPublicURL("shop-images", "https://storage.googleapis.com/other-bucket/x.png"); err == nil {
		t.Fatalf("bucket mismatch should be rejected")
	}
}
