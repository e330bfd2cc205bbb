package proto

// Kind identifies a decoded flight-controller telemetry message.
type Kind uint16

const (
	MsgHeartbeat Kind = iota + 1
	MsgGPSRawInt
	MsgGlobalPositionInt
)

func (k Kind) String() string {
	switch k {
	case MsgHeartbeat:
		return "heartbeat"
	case MsgGPSRawInt:
		return "gps_raw_int"
	case MsgGlobalPositionInt:
		return "global_position_int"
	default:
		return "unknown"
	}
}

// FixType is the GPS fix quality reported in MsgGPSRawInt.
type FixType uint8

const (
	FixNone FixType = iota
	FixNoFix
	Fix2D
	Fix3D
)
