package core

import (
	"encoding/binary"

	"github.com/pkg/errors"

	"quantiledb/percentile"
)

// Wire form of a partial state. Opaque to everything but the accumulator
// that decodes it:
//
//	<1 byte version> <1 byte method tag> <4 bytes LE payload length> <payload>
//
// The payload is whatever the strategy's SerializePartial produced.
const (
	partialStateVersion = 1
	partialHeaderBytes  = 6
)

func encodePartialState(method percentile.Method, payload []byte) []byte {
	buf := make([]byte, partialHeaderBytes+len(payload))
	buf[0] = partialStateVersion
	buf[1] = byte(method)
	binary.LittleEndian.PutUint32(buf[2:6], uint32(len(payload)))
	copy(buf[partialHeaderBytes:], payload)
	return buf
}

func decodePartialState(buf []byte) (percentile.Method, []byte, error) {
	if len(buf) < partialHeaderBytes {
		return 0, nil, errors.Wrapf(ErrBadValue,
			"partial state too short: %d bytes", len(buf))
	}
	if buf[0] != partialStateVersion {
		return 0, nil, errors.Wrapf(ErrBadValue,
			"unknown partial state version: %d", buf[0])
	}
	method := percentile.Method(buf[1])
	if method != percentile.Approximate && method != percentile.Discrete &&
		method != percentile.Continuous {
		return 0, nil, errors.Wrapf(ErrBadValue,
			"unknown method tag in partial state: %d", buf[1])
	}
	payloadLen := binary.LittleEndian.Uint32(buf[2:6])
	if int(payloadLen) != len(buf)-partialHeaderBytes {
		return 0, nil, errors.Wrapf(ErrBadValue,
			"partial state payload length mismatch: header says %d, have %d",
			payloadLen, len(buf)-partialHeaderBytes)
	}
	return method, buf[partialHeaderBytes:], nil
}
