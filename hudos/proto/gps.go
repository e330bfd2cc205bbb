package proto

import "encoding/binary"

// GPSRawInt is the raw GPS sensor report.
type GPSRawInt struct {
	Fix        FixType
	Satellites uint8
	Lat        int32 // degrees * 1e7
	Lon        int32 // degrees * 1e7
	AltMM      int32 // millimeters above MSL
}

const gpsRawIntLen = 14

// GPSRawIntPayload encodes a MsgGPSRawInt payload.
//
// Layout (little-endian):
//   - u8: fix type
//   - u8: satellites visible
//   - i32: latitude
//   - i32: longitude
//   - i32: altitude (mm)
func GPSRawIntPayload(m GPSRawInt) []byte {
	buf := make([]byte, gpsRawIntLen)
	buf[0] = byte(m.Fix)
	buf[1] = m.Satellites
	binary.LittleEndian.PutUint32(buf[2:6], uint32(m.Lat))
	binary.LittleEndian.PutUint32(buf[6:10], uint32(m.Lon))
	binary.LittleEndian.PutUint32(buf[10:14], uint32(m.AltMM))
	return buf
}

// DecodeGPSRawInt decodes a GPSRawIntPayload.
func DecodeGPSRawInt(payload []byte) (GPSRawInt, bool) {
	if len(payload) < gpsRawIntLen {
		return GPSRawInt{}, false
	}
	return GPSRawInt{
		Fix:        FixType(payload[0]),
		Satellites: payload[1],
		Lat:        int32(binary.LittleEndian.Uint32(payload[2:6])),
		Lon:        int32(binary.LittleEndian.Uint32(payload[6:10])),
		AltMM:      int32(binary.LittleEndian.Uint32(payload[10:14])),
	}, true
}

// DecodeAltitude extracts the raw altitude (mm) from a MsgGPSRawInt payload.
func DecodeAltitude(payload []byte) (int32, bool) {
	if len(payload) < gpsRawIntLen {
		return 0, false
	}
	return int32(binary.LittleEndian.Uint32(payload[10:14])), true
}
