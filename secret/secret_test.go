package secret

import "testing"

func TestOfIsDeterministic(t *testing.T) {
	var s Secret
	s[0] = 0x42

	h1 := Of(s)
	h2 := Of(s)
	if h1 != h2 {
		t.Fatalf("Of(s) not deterministic: %x != %x", h1, h2)
	}
}

func TestOfDiffers(t *testing.T) {
	var a, b Secret
	a[0] = 1
	b[0] = 2

	if Of(a) == Of(b) {
		t.Fatalf("distinct secrets hashed to the same value")
	}
}

func TestIsZero(t *testing.T) {
	var s Secret
	if !s.IsZero() {
		t.Fatalf("zero Secret reported as non-zero")
	}
	s[0] = 1
	if s.IsZero() {
		t.Fatalf("non-zero Secret reported as zero")
	}
}
