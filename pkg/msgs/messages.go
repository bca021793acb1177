package msgs

import (
	"github.com/golang/protobuf/proto"
)

// Token is the event of an emitted token.
type Token struct {
	Text      string  `protobuf:"bytes,1,opt,name=text,proto3" json:"text"`
	Truncated bool    `protobuf:"varint,2,opt,name=truncated,proto3" json:"truncated,omitempty"`
	Numeric   bool    `protobuf:"varint,3,opt,name=numeric,proto3" json:"numeric,omitempty"`
	Value     float64 `protobuf:"fixed64,4,opt,name=value,proto3" json:"value,omitempty"`
}

// TypeID implements Message.
func (m *Token) TypeID() uint32 { return TokenTypeID }

// ProtoMessage implements proto.Message.
func (m *Token) ProtoMessage() {}

// Reset implements proto.Message.
func (m *Token) Reset() { *m = Token{} }

// String implements proto.Message.
func (m *Token) String() string { return proto.CompactTextString(m) }

// ButtonEvent is the event of a button state change or a completed press.
type ButtonEvent struct {
	Pressed bool   `protobuf:"varint,1,opt,name=pressed,proto3" json:"pressed"`
	Changed bool   `protobuf:"varint,2,opt,name=changed,proto3" json:"changed,omitempty"`
	Message string `protobuf:"bytes,3,opt,name=message,proto3" json:"message,omitempty"`
}

// TypeID implements Message.
func (m *ButtonEvent) TypeID() uint32 { return ButtonEventTypeID }

// ProtoMessage implements proto.Message.
func (m *ButtonEvent) ProtoMessage() {}

// Reset implements proto.Message.
func (m *ButtonEvent) Reset() { *m = ButtonEvent{} }

// String implements proto.Message.
func (m *ButtonEvent) String() string { return proto.CompactTextString(m) }

// LEDState is the event of the LED output level.
type LEDState struct {
	On bool `protobuf:"varint,1,opt,name=on,proto3" json:"on"`
}

// TypeID implements Message.
func (m *LEDState) TypeID() uint32 { return LEDStateTypeID }

// ProtoMessage implements proto.Message.
func (m *LEDState) ProtoMessage() {}

// Reset implements proto.Message.
func (m *LEDState) Reset() { *m = LEDState{} }

// String implements proto.Message.
func (m *LEDState) String() string { return proto.CompactTextString(m) }

// ButtonSet is the command to drive a simulated button.
type ButtonSet struct {
	Pressed bool `protobuf:"varint,1,opt,name=pressed,proto3" json:"pressed"`
}

// TypeID implements Message.
func (m *ButtonSet) TypeID() uint32 { return ButtonSetTypeID }

// ProtoMessage implements proto.Message.
func (m *ButtonSet) ProtoMessage() {}

// Reset implements proto.Message.
func (m *ButtonSet) Reset() { *m = ButtonSet{} }

// String implements proto.Message.
func (m *ButtonSet) String() string { return proto.CompactTextString(m) }

// TypeID Groups
const (
	GroupSerial uint32 = 0x00010000
	GroupButton uint32 = 0x00020000
)

// TypeIDs
const (
	TokenTypeID       uint32 = GroupSerial | TypeIDKindEvent | 0x0000
	ButtonEventTypeID uint32 = GroupButton | TypeIDKindEvent | 0x0000
	LEDStateTypeID    uint32 = GroupButton | TypeIDKindEvent | 0x0001
	ButtonSetTypeID   uint32 = GroupButton | 0x0000
)

func init() {
	MessageTypes[TokenTypeID] = func() Message { return &Token{} }
	MessageTypes[ButtonEventTypeID] = func() Message { return &ButtonEvent{} }
	MessageTypes[LEDStateTypeID] = func() Message { return &LEDState{} }
	MessageTypes[ButtonSetTypeID] = func() Message { return &ButtonSet{} }
}
