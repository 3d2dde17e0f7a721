package ldap

import (
	"encoding/hex"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/KilimcininKorOglu/ldapwire/internal/ber"
	"github.com/KilimcininKorOglu/ldapwire/internal/ber/grammar"
)

func mustHex(t *testing.T, s string) []byte {
	t.Helper()
	b, err := hex.DecodeString(strings.ReplaceAll(s, " ", ""))
	require.NoError(t, err)
	return b
}

// decodeAll feeds every chunk and drains the completed messages after each.
func decodeAll(t *testing.T, c *Container, chunks ...[]byte) []*Message {
	t.Helper()
	var out []*Message
	for _, chunk := range chunks {
		res, err := c.Decode(chunk)
		require.NoError(t, err)
		for res.Status == Complete {
			out = append(out, res.Message)
			res, err = c.Decode(nil)
			require.NoError(t, err)
		}
	}
	return out
}

func decodeOne(t *testing.T, data []byte) *Message {
	t.Helper()
	c := NewContainer()
	msgs := decodeAll(t, c, data)
	require.Len(t, msgs, 1)
	require.NoError(t, c.Finish())
	return msgs[0]
}

func decodeErr(t *testing.T, data []byte, opts ...Option) *DecodeError {
	t.Helper()
	c := NewContainer(opts...)
	_, err := c.Decode(data)
	require.Error(t, err)
	var derr *DecodeError
	require.ErrorAs(t, err, &derr)
	assert.Zero(t, c.Buffered())
	assert.False(t, c.InProgress())
	return derr
}

// decodeErrByteAtATime feeds data one byte per call until Decode fails.
func decodeErrByteAtATime(t *testing.T, data []byte) *DecodeError {
	t.Helper()
	c := NewContainer()
	for i := range data {
		res, err := c.Decode(data[i : i+1])
		if err == nil {
			require.Equal(t, NeedMoreData, res.Status, "byte %d", i)
			continue
		}
		var derr *DecodeError
		require.ErrorAs(t, err, &derr)
		assert.Zero(t, c.Buffered())
		assert.False(t, c.InProgress())
		return derr
	}
	require.Fail(t, "no error after the last byte")
	return nil
}

// ============================================================================
// Reference scenarios
// ============================================================================

func TestDecode_SearchResultDone(t *testing.T) {
	data := mustHex(t, "30 0C 02 01 01 65 07 0A 01 00 04 00 04 00")

	msg := decodeOne(t, data)
	assert.Equal(t, 1, msg.MessageID)
	assert.Nil(t, msg.Controls)

	done, ok := msg.Op.(*SearchResultDone)
	require.True(t, ok, "op is %T", msg.Op)
	assert.Equal(t, ResultSuccess, done.ResultCode)
	assert.Empty(t, done.MatchedDN)
	assert.Empty(t, done.DiagnosticMessage)
	assert.Nil(t, done.Referral)

	out, err := msg.Encode()
	require.NoError(t, err)
	assert.Equal(t, data, out)
}

func TestDecode_ExtendedRequestWithValue(t *testing.T) {
	data := mustHex(t, "30 14 02 01 01 77 0F 80 06 2b 06 01 05 05 02 81 05 76 61 6c 75 65")

	msg := decodeOne(t, data)
	req, ok := msg.Op.(*ExtendedRequest)
	require.True(t, ok, "op is %T", msg.Op)
	assert.Equal(t, "1.3.6.1.5.5.2", req.Name)
	assert.Equal(t, []byte("value"), req.Value)

	out, err := msg.Encode()
	require.NoError(t, err)
	assert.Equal(t, data, out)
}

func TestDecode_ExtendedRequestWithoutValue(t *testing.T) {
	data := mustHex(t, "30 0D 02 01 01 77 08 80 06 2b 06 01 05 05 02")

	msg := decodeOne(t, data)
	req, ok := msg.Op.(*ExtendedRequest)
	require.True(t, ok, "op is %T", msg.Op)
	assert.Equal(t, "1.3.6.1.5.5.2", req.Name)
	assert.Nil(t, req.Value)

	out, err := msg.Encode()
	require.NoError(t, err)
	assert.Equal(t, data, out)
}

func TestDecode_ModifyDNResponse(t *testing.T) {
	data := mustHex(t, "30 0C 02 01 01 6D 07 0A 01 00 04 00 04 00")

	msg := decodeOne(t, data)
	resp, ok := msg.Op.(*ModifyDNResponse)
	require.True(t, ok, "op is %T", msg.Op)
	assert.Equal(t, ResultSuccess, resp.ResultCode)
	assert.Equal(t, OperationType(ApplicationModifyDNResponse), msg.OperationType())
}

// ============================================================================
// Streaming
// ============================================================================

func TestDecode_ByteAtATime(t *testing.T) {
	for _, tc := range roundTripCases() {
		t.Run(tc.name, func(t *testing.T) {
			data, err := Encode(tc.msg)
			require.NoError(t, err)

			c := NewContainer()
			var msgs []*Message
			for i := range data {
				res, err := c.Decode(data[i : i+1])
				require.NoError(t, err, "byte %d", i)
				if i < len(data)-1 {
					require.Equal(t, NeedMoreData, res.Status, "byte %d", i)
					require.True(t, c.InProgress())
					continue
				}
				require.Equal(t, Complete, res.Status)
				msgs = append(msgs, res.Message)
			}
			require.Len(t, msgs, 1)
			assert.Equal(t, tc.msg, msgs[0])
			assert.NoError(t, c.Finish())
		})
	}
}

func TestDecode_ArbitrarySplits(t *testing.T) {
	var stream []byte
	var want []*Message
	for _, tc := range roundTripCases() {
		data, err := Encode(tc.msg)
		require.NoError(t, err)
		stream = append(stream, data...)
		want = append(want, tc.msg)
	}

	for _, size := range []int{2, 3, 7, 16, 100, len(stream)} {
		var chunks [][]byte
		for off := 0; off < len(stream); off += size {
			end := off + size
			if end > len(stream) {
				end = len(stream)
			}
			chunks = append(chunks, stream[off:end])
		}

		c := NewContainer()
		got := decodeAll(t, c, chunks...)
		assert.Equal(t, want, got, "chunk size %d", size)
		assert.NoError(t, c.Finish())
	}
}

func TestDecode_PipelinedMessages(t *testing.T) {
	first := mustHex(t, "30 0C 02 01 01 65 07 0A 01 00 04 00 04 00")
	second := mustHex(t, "30 05 02 01 02 42 00")
	third := mustHex(t, "30 0C 02 01 03 6D 07 0A 01 00 04 00 04 00")

	chunk := append(append(append([]byte{}, first...), second...), third[:4]...)

	c := NewContainer()
	res, err := c.Decode(chunk)
	require.NoError(t, err)
	require.Equal(t, Complete, res.Status)
	assert.Equal(t, 1, res.Message.MessageID)
	assert.Equal(t, len(second)+4, c.Buffered())

	res, err = c.Decode(nil)
	require.NoError(t, err)
	require.Equal(t, Complete, res.Status)
	assert.Equal(t, 2, res.Message.MessageID)
	assert.IsType(t, &UnbindRequest{}, res.Message.Op)

	res, err = c.Decode(nil)
	require.NoError(t, err)
	assert.Equal(t, NeedMoreData, res.Status)
	assert.True(t, c.InProgress())

	res, err = c.Decode(third[4:])
	require.NoError(t, err)
	require.Equal(t, Complete, res.Status)
	assert.Equal(t, 3, res.Message.MessageID)
	assert.NoError(t, c.Finish())
}

func TestDecode_ChunkNotRetained(t *testing.T) {
	data, err := Encode(&Message{
		MessageID: 9,
		Op: &CompareRequest{
			Entry:     "cn=alice,dc=example,dc=com",
			Attribute: "mail",
			Value:     []byte("alice@example.com"),
		},
	})
	require.NoError(t, err)

	c := NewContainer()
	buf := append([]byte{}, data...)
	res, err := c.Decode(buf)
	require.NoError(t, err)
	require.Equal(t, Complete, res.Status)

	for i := range buf {
		buf[i] = 0
	}
	req := res.Message.Op.(*CompareRequest)
	assert.Equal(t, "cn=alice,dc=example,dc=com", req.Entry)
	assert.Equal(t, []byte("alice@example.com"), req.Value)
}

func TestFinish(t *testing.T) {
	data := mustHex(t, "30 0C 02 01 01 65 07 0A 01 00 04 00 04 00")

	t.Run("empty stream", func(t *testing.T) {
		assert.NoError(t, NewContainer().Finish())
	})

	t.Run("message in flight", func(t *testing.T) {
		c := NewContainer()
		res, err := c.Decode(data[:5])
		require.NoError(t, err)
		require.Equal(t, NeedMoreData, res.Status)

		err = c.Finish()
		assert.ErrorIs(t, err, ErrTruncatedInput)
		var derr *DecodeError
		require.ErrorAs(t, err, &derr)
		assert.Equal(t, int64(5), derr.Offset)

		assert.False(t, c.InProgress())
		assert.NoError(t, c.Finish())
	})

	t.Run("partial header", func(t *testing.T) {
		c := NewContainer()
		_, err := c.Decode(data[:1])
		require.NoError(t, err)
		assert.ErrorIs(t, c.Finish(), ErrTruncatedInput)
	})

	t.Run("after complete message", func(t *testing.T) {
		c := NewContainer()
		msgs := decodeAll(t, c, data)
		require.Len(t, msgs, 1)
		assert.NoError(t, c.Finish())
	})
}

// ============================================================================
// Decode errors
// ============================================================================

func TestDecode_Errors(t *testing.T) {
	tests := []struct {
		name   string
		data   string
		want   error
		offset int64
	}{
		{
			name:   "unknown protocol op",
			data:   "30 05 02 01 01 71 00",
			want:   grammar.ErrUnexpectedTag,
			offset: 5,
		},
		{
			name:   "not a sequence",
			data:   "31 05 02 01 01 42 00",
			want:   grammar.ErrUnexpectedTag,
			offset: 0,
		},
		{
			name:   "indefinite length",
			data:   "30 80 02 01 01 42 00 00 00",
			want:   ber.ErrInvalidLength,
			offset: 0,
		},
		{
			name:   "child overruns parent",
			data:   "30 03 02 05 01 02 03 04 05",
			want:   ber.ErrInvalidLength,
			offset: 2,
		},
		{
			name:   "zero tag",
			data:   "30 05 02 01 01 00 00",
			want:   ber.ErrInvalidTag,
			offset: 5,
		},
		{
			name:   "negative message id",
			data:   "30 08 02 04 80 00 00 00 42 00",
			want:   ErrInvalidValue,
			offset: 2,
		},
		{
			name:   "unbind with content",
			data:   "30 06 02 01 01 42 01 00",
			want:   ErrInvalidValue,
			offset: 5,
		},
		{
			name:   "missing protocol op",
			data:   "30 03 02 01 01",
			want:   grammar.ErrUnexpectedTag,
			offset: 5,
		},
		{
			name:   "bind version zero",
			data:   "30 0C 02 01 01 60 07 02 01 00 04 00 80 00",
			want:   ErrInvalidValue,
			offset: 7,
		},
		{
			name:   "bad boolean length",
			data:   "30 14 02 01 01 6C 0F 04 03 63 6E 3D 04 04 63 6E 3D 62 01 02 00 FF",
			want:   ber.ErrInvalidBoolean,
			offset: 18,
		},
		{
			name:   "empty substrings",
			data:   "30 20 02 01 01 63 1B 04 00 0A 01 00 0A 01 00 02 01 00 02 01 00 01 01 00 A4 06 04 02 63 6E 30 00 30 00",
			want:   ErrEmptySubstrings,
			offset: 32,
		},
		{
			name:   "unrecognized filter choice",
			data:   "30 1A 02 01 01 63 15 04 00 0A 01 00 0A 01 00 02 01 00 02 01 00 01 01 00 8A 00 30 00",
			want:   ErrUnrecognizedFilterChoice,
			offset: 24,
		},
		{
			name:   "search scope out of range",
			data:   "30 1A 02 01 01 63 15 04 00 0A 01 03 0A 01 00 02 01 00 02 01 00 01 01 00 87 00 30 00",
			want:   ErrInvalidValue,
			offset: 9,
		},
		{
			name:   "empty search result reference",
			data:   "30 05 02 01 01 73 00",
			want:   grammar.ErrUnexpectedTag,
			offset: 7,
		},
		{
			name:   "header in last byte of parent",
			data:   "30 06 02 01 15 42 00 A0 1B",
			want:   ber.ErrInvalidLength,
			offset: 7,
		},
		{
			name:   "extended request with bad oid",
			data:   "30 09 02 01 01 77 04 80 02 2b 86",
			want:   ErrInvalidValue,
			offset: 7,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			data := mustHex(t, tt.data)
			derr := decodeErr(t, data)
			assert.ErrorIs(t, derr, tt.want)
			assert.Equal(t, tt.offset, derr.Offset)

			derr = decodeErrByteAtATime(t, data)
			assert.ErrorIs(t, derr, tt.want)
			assert.Equal(t, tt.offset, derr.Offset)
		})
	}
}

func TestDecode_ErrorDiscardsState(t *testing.T) {
	bad := mustHex(t, "30 05 02 01 01 71 00")
	good := mustHex(t, "30 0C 02 01 01 65 07 0A 01 00 04 00 04 00")

	c := NewContainer()
	_, err := c.Decode(append(append([]byte{}, bad...), good...))
	require.Error(t, err)
	assert.Zero(t, c.Buffered())

	msgs := decodeAll(t, c, good)
	require.Len(t, msgs, 1)
	assert.IsType(t, &SearchResultDone{}, msgs[0].Op)
}

func TestDecode_MessageTooLarge(t *testing.T) {
	data := mustHex(t, "30 0C 02 01 01 65 07 0A 01 00 04 00 04 00")

	derr := decodeErr(t, data, WithMaxMessageSize(len(data)-1))
	assert.ErrorIs(t, derr, ErrMessageTooLarge)

	c := NewContainer(WithMaxMessageSize(len(data)))
	assert.Len(t, decodeAll(t, c, data), 1)
}

func TestDecode_TooDeep(t *testing.T) {
	f := &Filter{Type: FilterPresent, Attribute: "objectClass"}
	for i := 0; i < 8; i++ {
		f = &Filter{Type: FilterNot, Child: f}
	}
	data, err := Encode(&Message{
		MessageID: 1,
		Op:        &SearchRequest{Filter: f},
	})
	require.NoError(t, err)

	derr := decodeErr(t, data, WithMaxDepth(6))
	assert.ErrorIs(t, derr, grammar.ErrTooDeep)

	msg := decodeOne(t, data)
	assert.Equal(t, "(!(!(!(!(!(!(!(!(objectClass=*)))))))))", msg.Op.(*SearchRequest).Filter.String())
}

func TestDecode_TrailingGarbageIsNextMessage(t *testing.T) {
	data := mustHex(t, "30 05 02 01 02 42 00 04 00")

	c := NewContainer()
	res, err := c.Decode(data)
	require.NoError(t, err)
	require.Equal(t, Complete, res.Status)

	_, err = c.Decode(nil)
	assert.ErrorIs(t, err, grammar.ErrUnexpectedTag)
}

// ============================================================================
// Field level decoding
// ============================================================================

func TestDecode_PresentEmptyControls(t *testing.T) {
	msg := decodeOne(t, mustHex(t, "30 07 02 01 05 42 00 A0 00"))
	require.NotNil(t, msg.Controls)
	assert.Empty(t, msg.Controls)
}

func TestDecode_UnknownResultCodeKept(t *testing.T) {
	msg := decodeOne(t, mustHex(t, "30 0D 02 01 01 67 08 0A 02 03 E7 04 00 04 00"))
	resp := msg.Op.(*ModifyResponse)
	assert.Equal(t, ResultCode(999), resp.ResultCode)
	assert.False(t, resp.ResultCode.Known())
}

func TestDecode_BooleanNonZeroIsTrue(t *testing.T) {
	msg := decodeOne(t, mustHex(t, "30 13 02 01 01 6C 0E 04 03 63 6E 3D 04 04 63 6E 3D 62 01 01 2A"))
	req := msg.Op.(*ModifyDNRequest)
	assert.True(t, req.DeleteOldRDN)
	assert.Empty(t, req.NewSuperior)
}

func TestDecode_SubstringOrderEnforced(t *testing.T) {
	// final before initial
	data := mustHex(t, "30 26 02 01 01 63 21 04 00 0A 01 00 0A 01 00 02 01 00 02 01 00 01 01 00 "+
		"A4 0C 04 02 63 6E 30 06 82 01 7A 80 01 61 30 00")
	derr := decodeErr(t, data)
	assert.ErrorIs(t, derr, grammar.ErrUnexpectedTag)
}

func TestDecode_ValuesAreCopies(t *testing.T) {
	data, err := Encode(&Message{
		MessageID: 3,
		Op: &AddRequest{
			Entry: "cn=a",
			Attributes: []Attribute{
				{Type: "cn", Values: [][]byte{[]byte("a"), {}}},
			},
		},
	})
	require.NoError(t, err)

	msg := decodeOne(t, data)
	values := msg.Op.(*AddRequest).Attributes[0].Values
	require.Len(t, values, 2)
	assert.Equal(t, []byte("a"), values[0])
	assert.NotNil(t, values[1])
	assert.Empty(t, values[1])
}
