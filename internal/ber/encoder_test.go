package ber

import (
	"bytes"
	"errors"
	"testing"
)

func TestEncoder_WriteTag(t *testing.T) {
	tests := []struct {
		name     string
		tag      Tag
		expected []byte
	}{
		{name: "universal sequence", tag: TagSequenceOf, expected: []byte{0x30}},
		{name: "application search request", tag: Application(3, true), expected: []byte{0x63}},
		{name: "application unbind", tag: Application(2, false), expected: []byte{0x42}},
		{name: "context simple auth", tag: Context(0, false), expected: []byte{0x80}},
		{name: "context referral", tag: Context(3, true), expected: []byte{0xA3}},
		{name: "application 31", tag: Application(31, false), expected: []byte{0x5F, 0x1F}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			enc := NewEncoder(make([]byte, 4))
			if err := enc.WriteTag(tt.tag); err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if !bytes.Equal(enc.Bytes(), tt.expected) {
				t.Errorf("got %X, want %X", enc.Bytes(), tt.expected)
			}
		})
	}
}

func TestEncoder_WriteLength(t *testing.T) {
	tests := []struct {
		length   int
		expected []byte
	}{
		{0, []byte{0x00}},
		{127, []byte{0x7F}},
		{128, []byte{0x81, 0x80}},
		{256, []byte{0x82, 0x01, 0x00}},
		{65536, []byte{0x83, 0x01, 0x00, 0x00}},
	}

	for _, tt := range tests {
		enc := NewEncoder(make([]byte, 8))
		if err := enc.WriteLength(tt.length); err != nil {
			t.Fatalf("WriteLength(%d): %v", tt.length, err)
		}
		if !bytes.Equal(enc.Bytes(), tt.expected) {
			t.Errorf("WriteLength(%d) = %X, want %X", tt.length, enc.Bytes(), tt.expected)
		}
	}

	enc := NewEncoder(make([]byte, 8))
	if err := enc.WriteLength(-1); !errors.Is(err, ErrNegativeLength) {
		t.Errorf("expected ErrNegativeLength, got %v", err)
	}
}

func TestEncoder_Primitives(t *testing.T) {
	buf := make([]byte, 64)
	enc := NewEncoder(buf)

	steps := []func() error{
		func() error { return enc.WriteInteger(TagIntegerValue, 1) },
		func() error { return enc.WriteInteger(TagEnumeratedValue, 0) },
		func() error { return enc.WriteString(TagOctetStringValue, "cn") },
		func() error { return enc.WriteOctetString(Context(0, false), []byte{0xDE, 0xAD}) },
		func() error { return enc.WriteBoolean(TagBooleanValue, true) },
		func() error { return enc.WriteBoolean(TagBooleanValue, false) },
		func() error { return enc.WriteHeader(Application(2, false), 0) },
		func() error { return enc.WriteOID(Context(0, false), "1.3.6.1.5.5.2") },
	}
	for i, step := range steps {
		if err := step(); err != nil {
			t.Fatalf("step %d: %v", i, err)
		}
	}

	expected := []byte{
		0x02, 0x01, 0x01,
		0x0A, 0x01, 0x00,
		0x04, 0x02, 'c', 'n',
		0x80, 0x02, 0xDE, 0xAD,
		0x01, 0x01, 0xFF,
		0x01, 0x01, 0x00,
		0x42, 0x00,
		0x80, 0x06, 0x2B, 0x06, 0x01, 0x05, 0x05, 0x02,
	}
	if !bytes.Equal(enc.Bytes(), expected) {
		t.Errorf("got %X\nwant %X", enc.Bytes(), expected)
	}
	if enc.Available() != len(buf)-len(expected) {
		t.Errorf("Available() = %d, want %d", enc.Available(), len(buf)-len(expected))
	}
}

func TestEncoder_BufferTooSmall(t *testing.T) {
	tests := []struct {
		name  string
		size  int
		write func(*Encoder) error
	}{
		{"tag", 0, func(e *Encoder) error { return e.WriteTag(TagSequenceOf) }},
		{"long length", 1, func(e *Encoder) error { return e.WriteLength(300) }},
		{"header", 1, func(e *Encoder) error { return e.WriteHeader(TagSequenceOf, 0) }},
		{"string value", 3, func(e *Encoder) error { return e.WriteString(TagOctetStringValue, "abc") }},
		{"integer", 3, func(e *Encoder) error { return e.WriteInteger(TagIntegerValue, 256) }},
		{"boolean", 2, func(e *Encoder) error { return e.WriteBoolean(TagBooleanValue, true) }},
		{"oid", 4, func(e *Encoder) error { return e.WriteOID(TagOctetStringValue, "2.5.4.3") }},
		{"raw", 1, func(e *Encoder) error { return e.WriteRaw([]byte{1, 2}) }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			enc := NewEncoder(make([]byte, tt.size))
			if err := tt.write(enc); !errors.Is(err, ErrBufferTooSmall) {
				t.Fatalf("expected ErrBufferTooSmall, got %v", err)
			}
			if enc.Len() != 0 {
				t.Errorf("failed write left %d bytes behind", enc.Len())
			}
		})
	}
}

func TestEncoder_Reset(t *testing.T) {
	enc := NewEncoder(make([]byte, 4))
	if err := enc.WriteHeader(Application(2, false), 0); err != nil {
		t.Fatal(err)
	}
	enc.Reset()
	if enc.Len() != 0 || enc.Available() != 4 {
		t.Errorf("after reset Len=%d Available=%d", enc.Len(), enc.Available())
	}
}

func TestTLVSize(t *testing.T) {
	if got := TLVSize(TagOctetStringValue, 0); got != 2 {
		t.Errorf("TLVSize(0) = %d, want 2", got)
	}
	if got := TLVSize(TagOctetStringValue, 200); got != 203 {
		t.Errorf("TLVSize(200) = %d, want 203", got)
	}
	if got := TLVSize(Application(31, false), 1); got != 4 {
		t.Errorf("TLVSize with high tag = %d, want 4", got)
	}
}

func BenchmarkEncoder_WriteInteger(b *testing.B) {
	enc := NewEncoder(make([]byte, 16))
	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		enc.Reset()
		_ = enc.WriteInteger(TagIntegerValue, int64(i))
	}
}
