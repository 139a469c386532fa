package stenura

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRequestEncode_openHasExpectedLength(t *testing.T) {
	req := openRequest(1)
	buf := req.encode()
	assert.Equal(t, requestHeaderLen+len(req.Data)+2, len(buf))
	assert.Equal(t, byte(soh), buf[0])
	assert.Equal(t, byte(1), buf[1])
}

func TestRequestEncode_readCHasNoData(t *testing.T) {
	req := readCRequest(7, 128)
	buf := req.encode()
	assert.Equal(t, requestHeaderLen, len(buf))
}

func TestDecodeResponse_headerOnly(t *testing.T) {
	req := readCRequest(3, 0)
	_ = req // just to keep seq conventions close by

	buf := make([]byte, responseHeaderLen)
	buf[0] = soh
	buf[1] = 3
	putUint16(buf[2:4], responseHeaderLen)
	putUint16(buf[4:6], uint16(ActionReadC))
	putUint16(buf[6:8], 0)
	putUint16(buf[8:10], 0)
	putUint16(buf[10:12], 0)
	putUint16(buf[12:14], crcChecksum(buf[1:12]))

	resp, err := decodeResponse(buf)
	require.NoError(t, err)
	assert.Equal(t, byte(3), resp.Seq)
	assert.Equal(t, ActionReadC, resp.Action)
	assert.Empty(t, resp.Data)
}

func TestDecodeResponse_withData(t *testing.T) {
	data := []byte{1, 2, 3, 4}
	buf := make([]byte, responseHeaderLen+len(data)+2)
	buf[0] = soh
	buf[1] = 9
	putUint16(buf[2:4], uint16(len(buf)))
	putUint16(buf[4:6], uint16(ActionReadC))
	putUint16(buf[6:8], 0)
	putUint16(buf[8:10], uint16(len(data)))
	putUint16(buf[10:12], 0)
	putUint16(buf[12:14], crcChecksum(buf[1:12]))
	copy(buf[responseHeaderLen:], data)
	putUint16(buf[responseHeaderLen+len(data):], crcChecksum(data))

	resp, err := decodeResponse(buf)
	require.NoError(t, err)
	assert.Equal(t, data, resp.Data)
	assert.Equal(t, uint16(len(data)), resp.P1)
}

func TestDecodeResponse_badCRC(t *testing.T) {
	buf := make([]byte, responseHeaderLen)
	buf[0] = soh
	buf[1] = 5
	putUint16(buf[2:4], responseHeaderLen)
	putUint16(buf[4:6], uint16(ActionReadC))
	putUint16(buf[12:14], 0xFFFF)

	_, err := decodeResponse(buf)
	require.Error(t, err)
	var perr ProtocolError
	require.ErrorAs(t, err, &perr)
	assert.Equal(t, BadCRC, perr.Kind)
}

func TestDecodeResponse_tooShort(t *testing.T) {
	_, err := decodeResponse([]byte{soh, 1, 2, 3})
	require.Error(t, err)
	var perr ProtocolError
	require.ErrorAs(t, err, &perr)
	assert.Equal(t, BadLength, perr.Kind)
}

func putUint16(b []byte, v uint16) {
	b[0] = byte(v)
	b[1] = byte(v >> 8)
}
