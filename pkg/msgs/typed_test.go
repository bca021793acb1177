package msgs

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestTypedRoundTrip(t *testing.T) {
	testCases := []struct {
		name  string
		msg   Message
		event bool
	}{
		{"token", &Token{Text: "-1.5", Numeric: true, Value: -1.5}, true},
		{"empty token", &Token{}, true},
		{"button", &ButtonEvent{Pressed: true, Changed: true}, true},
		{"enter", &ButtonEvent{Pressed: true, Message: "ENTER"}, true},
		{"led", &LEDState{On: true}, true},
		{"button set", &ButtonSet{Pressed: true}, false},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			pkt, err := Encode(tc.msg)
			require.NoError(t, err)
			typed, msg, err := DecodeMessage(pkt)
			require.NoError(t, err)
			require.Equal(t, tc.msg.TypeID(), typed.TypeId)
			require.Equal(t, tc.event, typed.IsEvent())
			require.Equal(t, !tc.event, typed.IsCommand())
			require.Equal(t, tc.msg, msg)
		})
	}
}

func TestTypedUnknown(t *testing.T) {
	pkt, err := (&Typed{TypeId: 0x7f000001}).Encode()
	require.NoError(t, err)
	_, _, err = DecodeMessage(pkt)
	require.Equal(t, &ErrUnknownType{TypeID: 0x7f000001}, err)

	_, err = TypedFrom(nil)
	require.Equal(t, ErrNilMessage, err)
}
