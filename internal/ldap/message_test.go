package ldap

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFilter_String(t *testing.T) {
	tests := []struct {
		name   string
		filter *Filter
		want   string
	}{
		{"equality", &Filter{Type: FilterEqualityMatch, Attribute: "uid", Value: []byte("alice")}, "(uid=alice)"},
		{"present", &Filter{Type: FilterPresent, Attribute: "objectClass"}, "(objectClass=*)"},
		{"greater or equal", &Filter{Type: FilterGreaterOrEqual, Attribute: "age", Value: []byte("18")}, "(age>=18)"},
		{"less or equal", &Filter{Type: FilterLessOrEqual, Attribute: "age", Value: []byte("65")}, "(age<=65)"},
		{"approx", &Filter{Type: FilterApproxMatch, Attribute: "cn", Value: []byte("jon")}, "(cn~=jon)"},
		{"escaped", &Filter{Type: FilterEqualityMatch, Attribute: "cn", Value: []byte("a*(b)\\")}, `(cn=a\2a\28b\29\5c)`},
		{"binary", &Filter{Type: FilterEqualityMatch, Attribute: "guid", Value: []byte{0x00, 0xC3}}, `(guid=\00\c3)`},
		{"substrings", &Filter{Type: FilterSubstrings, Attribute: "cn", Substrings: &Substrings{
			Initial: []byte("a"), Any: [][]byte{[]byte("b"), []byte("c")}, Final: []byte("d"),
		}}, "(cn=a*b*c*d)"},
		{"substrings any only", &Filter{Type: FilterSubstrings, Attribute: "cn", Substrings: &Substrings{
			Any: [][]byte{[]byte("mid")},
		}}, "(cn=*mid*)"},
		{"extensible", &Filter{Type: FilterExtensibleMatch, Extensible: &ExtensibleMatch{
			Type: "ou", MatchingRule: "2.5.13.5", MatchValue: []byte("Sales"), DNAttributes: true,
		}}, "(ou:dn:2.5.13.5:=Sales)"},
		{"and", &Filter{Type: FilterAnd, Children: []*Filter{
			{Type: FilterPresent, Attribute: "cn"},
			{Type: FilterNot, Child: &Filter{Type: FilterEqualityMatch, Attribute: "sn", Value: []byte("x")}},
		}}, "(&(cn=*)(!(sn=x)))"},
		{"empty or", &Filter{Type: FilterOr}, "(|)"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.filter.String())
		})
	}
}

func TestResultCode_String(t *testing.T) {
	assert.Equal(t, "success", ResultSuccess.String())
	assert.Equal(t, "noSuchObject", ResultNoSuchObject.String())
	assert.Equal(t, "e-syncRefreshRequired", ResultSyncRefreshReqd.String())
	assert.Equal(t, "unknown(999)", ResultCode(999).String())
	assert.Equal(t, "unknown(-1)", ResultCode(-1).String())
}

func TestResultCode_Classification(t *testing.T) {
	assert.True(t, ResultSuccess.IsSuccess())
	assert.False(t, ResultSuccess.IsError())
	assert.False(t, ResultCompareTrue.IsError())
	assert.False(t, ResultSASLBindInProgress.IsError())
	assert.True(t, ResultInvalidCredentials.IsError())
	assert.True(t, ResultCode(999).IsError())
	assert.True(t, ResultCanceled.Known())
	assert.False(t, ResultCode(90).Known())
}

func TestOperationType_String(t *testing.T) {
	assert.Equal(t, "BindRequest", OperationType(ApplicationBindRequest).String())
	assert.Equal(t, "ExtendedResponse", OperationType(ApplicationExtendedResponse).String())
	assert.Equal(t, "Unknown(17)", OperationType(17).String())
}

func TestMessage_OperationType(t *testing.T) {
	for _, tc := range roundTripCases() {
		assert.Equal(t, tc.msg.Op.Type(), tc.msg.OperationType(), tc.name)
	}
	assert.Equal(t, OperationType(-1), (&Message{}).OperationType())
}

func TestMessage_Control(t *testing.T) {
	msg := &Message{
		MessageID: 1,
		Op:        &UnbindRequest{},
		Controls: []Control{
			{OID: "1.2.3", Value: []byte("first")},
			{OID: "1.2.4"},
			{OID: "1.2.3", Value: []byte("second")},
		},
	}

	c, ok := msg.Control("1.2.3")
	require.True(t, ok)
	assert.Equal(t, []byte("first"), c.Value)

	_, ok = msg.Control("9.9")
	assert.False(t, ok)
}

func TestBindRequest_IsAnonymous(t *testing.T) {
	assert.True(t, (&BindRequest{Version: 3}).IsAnonymous())
	assert.False(t, (&BindRequest{Version: 3, Name: "cn=admin", SimplePassword: []byte("x")}).IsAnonymous())
	assert.False(t, (&BindRequest{Version: 3, AuthMethod: AuthSASL, SASL: &SASLCredentials{Mechanism: "EXTERNAL"}}).IsAnonymous())
}

func TestResponsesCarryResult(t *testing.T) {
	responses := []Response{
		&BindResponse{}, &SearchResultDone{}, &ModifyResponse{}, &AddResponse{},
		&DelResponse{}, &ModifyDNResponse{}, &CompareResponse{}, &ExtendedResponse{},
	}
	for _, r := range responses {
		r.Result().ResultCode = ResultBusy
		assert.Equal(t, ResultBusy, r.Result().ResultCode, "%T", r)
	}
}
