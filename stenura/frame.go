package stenura

import "encoding/binary"

// soh marks the start of every Stenura frame.
const soh = 0x01

// Action identifies a Stenura protocol request.
type Action uint16

// Actions named in the protocol. Only ActionOpen and ActionReadC are ever
// sent by this client; the rest are recognized so a captured trace can be
// decoded and logged.
const (
	ActionClose      Action = 0x02
	ActionDelete     Action = 0x03
	ActionDiskStatus Action = 0x07
	ActionOpen       Action = 0x0A
	ActionReadC      Action = 0x0B
	ActionReset      Action = 0x14
	ActionTerm       Action = 0x15
	ActionGetDos     Action = 0x18
	ActionDiag       Action = 0x19
)

func (a Action) String() string {
	switch a {
	case ActionClose:
		return "CLOSE"
	case ActionDelete:
		return "DELETE"
	case ActionDiskStatus:
		return "DISKSTATUS"
	case ActionOpen:
		return "OPEN"
	case ActionReadC:
		return "READC"
	case ActionReset:
		return "RESET"
	case ActionTerm:
		return "TERM"
	case ActionGetDos:
		return "GETDOS"
	case ActionDiag:
		return "DIAG"
	default:
		return "UNKNOWN"
	}
}

const (
	requestHeaderLen  = 18
	responseHeaderLen = 14
)

// Request is one outgoing Stenura request frame.
type Request struct {
	Seq    byte
	Action Action
	P1     uint16
	P2     uint16
	P3     uint16
	P4     uint16
	P5     uint16
	Data   []byte
}

// openRequest builds the OPEN request for the REALTIME.000 stream, per
// spec: p1='A', data "REALTIME.000".
func openRequest(seq byte) Request {
	return Request{Seq: seq, Action: ActionOpen, P1: 'A', Data: []byte("REALTIME.000")}
}

// readCRequest builds a READC request starting at offset, reading up to
// 512 bytes in one block.
func readCRequest(seq byte, offset uint16) Request {
	return Request{Seq: seq, Action: ActionReadC, P1: 1, P2: 1, P3: 512, P4: 0, P5: offset}
}

// encode renders r to wire bytes: an 18-byte header, plus (when Data is
// non-empty) the raw data followed by its own trailing CRC-16.
func (r Request) encode() []byte {
	buf := make([]byte, requestHeaderLen, requestHeaderLen+len(r.Data)+2)
	buf[0] = soh
	buf[1] = r.Seq
	total := requestHeaderLen
	if len(r.Data) > 0 {
		total += len(r.Data) + 2
	}
	binary.LittleEndian.PutUint16(buf[2:4], uint16(total))
	binary.LittleEndian.PutUint16(buf[4:6], uint16(r.Action))
	binary.LittleEndian.PutUint16(buf[6:8], r.P1)
	binary.LittleEndian.PutUint16(buf[8:10], r.P2)
	binary.LittleEndian.PutUint16(buf[10:12], r.P3)
	binary.LittleEndian.PutUint16(buf[12:14], r.P4)
	binary.LittleEndian.PutUint16(buf[14:16], r.P5)
	binary.LittleEndian.PutUint16(buf[16:18], crcChecksum(buf[1:16]))

	if len(r.Data) > 0 {
		buf = append(buf, r.Data...)
		var tail [2]byte
		binary.LittleEndian.PutUint16(tail[:], crcChecksum(r.Data))
		buf = append(buf, tail[:]...)
	}
	return buf
}

// Response is one incoming Stenura response frame.
type Response struct {
	Seq    byte
	Action Action
	Err    uint16
	P1     uint16
	P2     uint16
	Data   []byte
}

// decodeResponse parses buf (exactly as read off the wire, header first)
// into a Response, validating both the header CRC and, when a data
// section is declared, the trailing data CRC.
func decodeResponse(buf []byte) (Response, error) {
	if len(buf) < responseHeaderLen {
		return Response{}, ProtocolError{Kind: BadLength}
	}
	seq := buf[1]
	total := binary.LittleEndian.Uint16(buf[2:4])
	if int(total) < responseHeaderLen || int(total) > len(buf) {
		return Response{}, ProtocolError{Kind: BadLength, Seq: seq}
	}

	headerCRC := binary.LittleEndian.Uint16(buf[12:14])
	if crcChecksum(buf[1:12]) != headerCRC {
		return Response{}, ProtocolError{Kind: BadCRC, Seq: seq}
	}

	resp := Response{
		Seq:    seq,
		Action: Action(binary.LittleEndian.Uint16(buf[4:6])),
		Err:    binary.LittleEndian.Uint16(buf[6:8]),
		P1:     binary.LittleEndian.Uint16(buf[8:10]),
		P2:     binary.LittleEndian.Uint16(buf[10:12]),
	}

	if int(total) == responseHeaderLen {
		return resp, nil
	}

	dataLen := int(total) - responseHeaderLen - 2
	if dataLen < 0 || int(total) > len(buf) {
		return Response{}, ProtocolError{Kind: BadLength, Seq: seq}
	}
	data := buf[responseHeaderLen : responseHeaderLen+dataLen]
	dataCRC := binary.LittleEndian.Uint16(buf[responseHeaderLen+dataLen : total])
	if crcChecksum(data) != dataCRC {
		return Response{}, ProtocolError{Kind: BadCRC, Seq: seq}
	}
	resp.Data = data
	return resp, nil
}
