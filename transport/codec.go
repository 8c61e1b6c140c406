package transport

import (
	"bufio"
	"bytes"
	"encoding/binary"
	"encoding/gob"
	"fmt"
	"io"

	"github.com/slpgo/slpd/wire"
)

func init() {
	gob.Register(wire.SrvRqst{})
	gob.Register(wire.SrvRply{})
	gob.Register(wire.SrvReg{})
	gob.Register(wire.SrvDeReg{})
	gob.Register(wire.SrvAck{})
	gob.Register(wire.DAAdvert{})
}

// envelope is the only thing that goes over the wire: a tagged
// wire.Message plus the multicast bit, since a UDP datagram carries no
// other framing information of its own.
type envelope struct {
	Multicast bool
	Message   wire.Message
}

const maxFrameSize = 64 * 1024

// writeFrame writes a 4-byte big-endian length prefix followed by the
// gob-encoded envelope.
func writeFrame(w io.Writer, e envelope) error {
	var buf bytes.Buffer
	if err := gob.NewEncoder(&buf).Encode(e); err != nil {
		return fmt.Errorf("transport: encoding frame: %w", err)
	}
	if buf.Len() > maxFrameSize {
		return fmt.Errorf("transport: frame too large: %d bytes", buf.Len())
	}

	header := make([]byte, 4)
	binary.BigEndian.PutUint32(header, uint32(buf.Len()))
	if _, err := w.Write(header); err != nil {
		return err
	}
	_, err := w.Write(buf.Bytes())
	return err
}

// readFrame reads one length-prefixed gob-encoded envelope from r.
func readFrame(r *bufio.Reader) (envelope, error) {
	header := make([]byte, 4)
	if _, err := io.ReadFull(r, header); err != nil {
		return envelope{}, err
	}
	size := binary.BigEndian.Uint32(header)
	if size > maxFrameSize {
		return envelope{}, fmt.Errorf("transport: frame too large: %d bytes", size)
	}

	payload := make([]byte, size)
	if _, err := io.ReadFull(r, payload); err != nil {
		return envelope{}, err
	}

	var e envelope
	if err := gob.NewDecoder(bytes.NewReader(payload)).Decode(&e); err != nil {
		return envelope{}, fmt.Errorf("transport: decoding frame: %w", err)
	}
	return e, nil
}

// encodeDatagram/decodeDatagram are the UDP equivalents: a single
// datagram carries exactly one gob-encoded envelope, no length prefix
// needed since UDP already preserves message boundaries.
func encodeDatagram(e envelope) ([]byte, error) {
	var buf bytes.Buffer
	if err := gob.NewEncoder(&buf).Encode(e); err != nil {
		return nil, fmt.Errorf("transport: encoding datagram: %w", err)
	}
	return buf.Bytes(), nil
}

func decodeDatagram(b []byte) (envelope, error) {
	var e envelope
	if err := gob.NewDecoder(bytes.NewReader(b)).Decode(&e); err != nil {
		return envelope{}, fmt.Errorf("transport: decoding datagram: %w", err)
	}
	return e, nil
}
