package ber

import (
	"bytes"
	"errors"
	"testing"
)

func TestScanner_ReadTag(t *testing.T) {
	tests := []struct {
		name       string
		data       []byte
		wantTag    Tag
		wantClass  int
		wantConstr bool
		wantNumber int
		wantErr    error
	}{
		{
			name:       "universal primitive integer",
			data:       []byte{0x02},
			wantTag:    TagIntegerValue,
			wantClass:  ClassUniversal,
			wantNumber: TagInteger,
		},
		{
			name:       "universal constructed sequence",
			data:       []byte{0x30},
			wantTag:    TagSequenceOf,
			wantClass:  ClassUniversal,
			wantConstr: true,
			wantNumber: TagSequence,
		},
		{
			name:       "application constructed bind request",
			data:       []byte{0x60},
			wantTag:    0x60,
			wantClass:  ClassApplication,
			wantConstr: true,
			wantNumber: 0,
		},
		{
			name:       "context primitive 7",
			data:       []byte{0x87},
			wantTag:    0x87,
			wantClass:  ClassContextSpecific,
			wantNumber: 7,
		},
		{
			name:       "high tag number one octet",
			data:       []byte{0x5F, 0x1F},
			wantTag:    0x5F1F,
			wantClass:  ClassApplication,
			wantNumber: 31,
		},
		{
			name:       "high tag number two octets",
			data:       []byte{0xBF, 0x81, 0x00},
			wantTag:    0xBF8100,
			wantClass:  ClassContextSpecific,
			wantConstr: true,
			wantNumber: 128,
		},
		{
			name:    "end of contents identifier",
			data:    []byte{0x00},
			wantErr: ErrInvalidTag,
		},
		{
			name:    "too many identifier octets",
			data:    []byte{0x1F, 0x81, 0x81, 0x81, 0x01},
			wantErr: ErrInvalidTag,
		},
		{
			name:    "non-minimal tag number",
			data:    []byte{0x1F, 0x80, 0x01},
			wantErr: ErrInvalidTag,
		},
		{
			name:    "empty input",
			data:    []byte{},
			wantErr: ErrNeedMoreData,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var s Scanner
			tag, err := s.ReadTag(NewCursor(tt.data))
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("expected %v, got %v", tt.wantErr, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if tag != tt.wantTag {
				t.Errorf("tag = %v, want %v", tag, tt.wantTag)
			}
			if tag.Class() != tt.wantClass {
				t.Errorf("class = 0x%02X, want 0x%02X", tag.Class(), tt.wantClass)
			}
			if tag.Constructed() != tt.wantConstr {
				t.Errorf("constructed = %v, want %v", tag.Constructed(), tt.wantConstr)
			}
			if tag.Number() != tt.wantNumber {
				t.Errorf("number = %d, want %d", tag.Number(), tt.wantNumber)
			}
			if tag.Size() != len(tt.data) {
				t.Errorf("size = %d, want %d", tag.Size(), len(tt.data))
			}
		})
	}
}

func TestNewTag_HighTagNumber(t *testing.T) {
	for _, number := range []int{0, 1, 30, 31, 127, 128, 16383, 16384} {
		tag := NewTag(ClassContextSpecific, TypeConstructed, number)
		if tag.Number() != number {
			t.Errorf("NewTag(%d).Number() = %d", number, tag.Number())
		}
		if !tag.Constructed() || tag.Class() != ClassContextSpecific {
			t.Errorf("NewTag(%d) lost class or constructed bit: %v", number, tag)
		}

		var s Scanner
		got, err := s.ReadTag(NewCursor(tag.AppendTo(nil)))
		if err != nil {
			t.Fatalf("ReadTag(%v): %v", tag, err)
		}
		if got != tag {
			t.Errorf("ReadTag = %v, want %v", got, tag)
		}
	}
}

func TestScanner_ReadLength(t *testing.T) {
	tests := []struct {
		name       string
		data       []byte
		maxLength  int
		wantLength int
		wantErr    error
	}{
		{name: "length 0", data: []byte{0x00}, wantLength: 0},
		{name: "length 127 (max short form)", data: []byte{0x7F}, wantLength: 127},
		{name: "length 128 (min long form)", data: []byte{0x81, 0x80}, wantLength: 128},
		{name: "length 256", data: []byte{0x82, 0x01, 0x00}, wantLength: 256},
		{name: "non-minimal long form", data: []byte{0x82, 0x00, 0x05}, wantLength: 5},
		{name: "four octets", data: []byte{0x84, 0x01, 0x00, 0x00, 0x00}, wantLength: 1 << 24},
		{name: "indefinite length", data: []byte{0x80}, wantErr: ErrIndefiniteLength},
		{name: "indefinite is invalid length", data: []byte{0x80}, wantErr: ErrInvalidLength},
		{name: "five length octets", data: []byte{0x85, 0x01, 0x00, 0x00, 0x00, 0x00}, wantErr: ErrInvalidLength},
		{name: "above maximum", data: []byte{0x82, 0x10, 0x00}, maxLength: 1024, wantErr: ErrLengthOverflow},
		{name: "at maximum", data: []byte{0x82, 0x04, 0x00}, maxLength: 1024, wantLength: 1024},
		{name: "truncated long form", data: []byte{0x82, 0x01}, wantErr: ErrNeedMoreData},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := Scanner{MaxLength: tt.maxLength}
			length, err := s.ReadLength(NewCursor(tt.data))
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("expected %v, got %v", tt.wantErr, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if length != tt.wantLength {
				t.Errorf("length = %d, want %d", length, tt.wantLength)
			}
		})
	}
}

func TestScanner_Next(t *testing.T) {
	// SEQUENCE { INTEGER 5, OCTET STRING "hi" }
	data := []byte{0x30, 0x07, 0x02, 0x01, 0x05, 0x04, 0x02, 'h', 'i'}

	var s Scanner
	cur := NewCursor(data)

	tlv, err := s.Next(cur)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if tlv.Tag != TagSequenceOf || tlv.Length != 7 || tlv.HeaderLen != 2 || tlv.Value != nil {
		t.Fatalf("unexpected sequence header: %+v", tlv)
	}

	tlv, err = s.Next(cur)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if tlv.Tag != TagIntegerValue || !bytes.Equal(tlv.Value, []byte{0x05}) {
		t.Fatalf("unexpected integer: %+v", tlv)
	}

	tlv, err = s.Next(cur)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if tlv.Tag != TagOctetStringValue || string(tlv.Value) != "hi" || tlv.Size() != 4 {
		t.Fatalf("unexpected octet string: %+v", tlv)
	}

	if _, err := s.Next(cur); !errors.Is(err, ErrNeedMoreData) {
		t.Fatalf("expected ErrNeedMoreData at end, got %v", err)
	}
	if s.Partial() {
		t.Error("scanner should not hold a partial TLV at a TLV boundary")
	}
}

func TestScanner_ResumeByteAtATime(t *testing.T) {
	value := bytes.Repeat([]byte{0xAB}, 200)
	data := append([]byte{0x04, 0x81, 0xC8}, value...)

	var s Scanner
	cur := NewCursor(nil)
	var got *TLV
	for i := range data {
		cur.Reset(data[i : i+1])
		tlv, err := s.Next(cur)
		if errors.Is(err, ErrNeedMoreData) {
			if !s.Partial() {
				t.Fatalf("byte %d: expected partial state", i)
			}
			continue
		}
		if err != nil {
			t.Fatalf("byte %d: unexpected error: %v", i, err)
		}
		if i != len(data)-1 {
			t.Fatalf("TLV completed early at byte %d", i)
		}
		got = tlv
	}
	if got == nil {
		t.Fatal("TLV never completed")
	}
	if got.Length != 200 || got.HeaderLen != 3 || !bytes.Equal(got.Value, value) {
		t.Errorf("unexpected TLV: tag=%v len=%d header=%d", got.Tag, got.Length, got.HeaderLen)
	}
}

func TestScanner_ValueAliasesChunk(t *testing.T) {
	data := []byte{0x04, 0x03, 'a', 'b', 'c'}
	var s Scanner
	tlv, err := s.Next(NewCursor(data))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if &tlv.Value[0] != &data[2] {
		t.Error("value fully present in the chunk should not be copied")
	}
}

func TestScanner_Reset(t *testing.T) {
	var s Scanner
	if _, err := s.Next(NewCursor([]byte{0x04, 0x05, 'a'})); !errors.Is(err, ErrNeedMoreData) {
		t.Fatalf("expected ErrNeedMoreData, got %v", err)
	}
	s.Reset()
	if s.Partial() {
		t.Fatal("expected no partial TLV after reset")
	}
	tlv, err := s.Next(NewCursor([]byte{0x01, 0x01, 0xFF}))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if tlv.Tag != TagBooleanValue {
		t.Errorf("tag = %v, want %v", tlv.Tag, TagBooleanValue)
	}
}

func BenchmarkScanner_Next(b *testing.B) {
	data := []byte{0x30, 0x0C, 0x02, 0x01, 0x01, 0x65, 0x07, 0x0A, 0x01, 0x00, 0x04, 0x00, 0x04, 0x00}
	var s Scanner
	cur := NewCursor(nil)
	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		cur.Reset(data)
		for cur.Remaining() > 0 {
			if _, err := s.Next(cur); err != nil {
				b.Fatal(err)
			}
		}
	}
}
