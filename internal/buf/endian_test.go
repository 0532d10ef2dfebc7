package buf

import "testing"

func TestEndianHelpers(t *testing.T) {
	data := []byte{0x01, 0x23, 0x45, 0x67, 0x89}

	if got := U32LE(data); got != 0x67452301 {
		t.Fatalf("U32LE = 0x%x, want 0x67452301", got)
	}

	short := []byte{0xAA}
	if U32LE(short) != 0 {
		t.Fatalf("short reads should return 0")
	}
}

func TestPutU32LE(t *testing.T) {
	b := make([]byte, 4)
	if !PutU32LE(b, 0xdeadbeef) {
		t.Fatalf("PutU32LE should succeed on 4-byte slice")
	}
	if got := U32LE(b); got != 0xdeadbeef {
		t.Fatalf("round trip = 0x%x, want 0xdeadbeef", got)
	}
	if PutU32LE(b[:3], 1) {
		t.Fatalf("PutU32LE should fail on short slice")
	}
}
