// SPDX-License-Identifier: MIT
package udp

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"sync"
	"time"

	"earshot/internal/analysis"
	applog "earshot/internal/log"
	"earshot/internal/recognition"
	"earshot/internal/transport"
)

/*
UDP Packet Structure (BigEndian)

+-----------------------------------------------------------------------------+
| Field             | Data Type      | Size (Bytes) | Description             |
|-------------------|----------------|--------------|-------------------------|
| Sequence Number   | uint32         | 4            | Monotonically increasing|
| Timestamp         | int64          | 8            | Nanoseconds since epoch |
| Value Count       | uint16         | 2            | Number of floats (N)    |
| Values            | []float32      | N * 4        | Feature vector          |
+-----------------------------------------------------------------------------+

Values follow analysis.Features.Vector order.
*/

// HeaderSize is the byte length of the packet header.
const HeaderSize = 4 + 8 + 2

// Packet is a decoded feature packet.
type Packet struct {
	Sequence  uint32
	Timestamp int64
	Values    []float32
}

// ParsePacket decodes a packet produced by FeaturePublisher.
func ParsePacket(b []byte) (Packet, error) {
	if len(b) < HeaderSize {
		return Packet{}, fmt.Errorf("packet too short: %d bytes", len(b))
	}
	p := Packet{
		Sequence:  binary.BigEndian.Uint32(b[0:4]),
		Timestamp: int64(binary.BigEndian.Uint64(b[4:12])),
	}
	n := int(binary.BigEndian.Uint16(b[12:14]))
	if len(b) != HeaderSize+4*n {
		return Packet{}, fmt.Errorf("packet declares %d values but carries %d bytes of payload", n, len(b)-HeaderSize)
	}
	p.Values = make([]float32, n)
	if err := binary.Read(bytes.NewReader(b[HeaderSize:]), binary.BigEndian, p.Values); err != nil {
		return Packet{}, err
	}
	return p, nil
}

// FeaturePublisher packs feature vectors into binary packets and sends them
// over UDP, one packet per Publish.
type FeaturePublisher struct {
	sender *UDPSender
	log    applog.Logger

	mu          sync.Mutex // Serialises packing into the shared buffers.
	sequenceNum uint32
	f32Buffer   []float32
	packet      *bytes.Buffer
	now         func() time.Time
}

// NewFeaturePublisher wraps sender.
func NewFeaturePublisher(sender *UDPSender) (*FeaturePublisher, error) {
	if sender == nil {
		return nil, errors.New("UDP sender cannot be nil")
	}
	return &FeaturePublisher{
		sender:    sender,
		log:       applog.For("udp"),
		f32Buffer: make([]float32, analysis.FeatureVectorLen),
		packet:    bytes.NewBuffer(make([]byte, 0, HeaderSize+4*analysis.FeatureVectorLen)),
		now:       time.Now,
	}, nil
}

// Publish sends f as one packet.
func (p *FeaturePublisher) Publish(f analysis.Features) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	for i, v := range f.Vector() {
		p.f32Buffer[i] = float32(v)
	}

	p.sequenceNum++
	p.packet.Reset()
	err := binary.Write(p.packet, binary.BigEndian, p.sequenceNum)
	if err == nil {
		err = binary.Write(p.packet, binary.BigEndian, p.now().UnixNano())
	}
	if err == nil {
		err = binary.Write(p.packet, binary.BigEndian, uint16(len(p.f32Buffer)))
	}
	if err == nil {
		err = binary.Write(p.packet, binary.BigEndian, p.f32Buffer)
	}
	if err != nil {
		return fmt.Errorf("packing feature packet: %w", err)
	}

	if err := p.sender.Send(p.packet.Bytes()); err != nil {
		return err
	}
	p.log.Debugf("sent packet %d (%d bytes)", p.sequenceNum, p.packet.Len())
	return nil
}

// Send implements transport.Transport. Only feature-bearing values produce a
// packet; progress events and other data are ignored.
func (p *FeaturePublisher) Send(data any) error {
	switch v := data.(type) {
	case transport.Event:
		return p.Send(v.Data)
	case analysis.Features:
		return p.Publish(v)
	case *recognition.Result:
		if v == nil {
			return nil
		}
		return p.Publish(v.Features)
	}
	return nil
}

// Close closes the underlying sender.
func (p *FeaturePublisher) Close() error {
	return p.sender.Close()
}

var _ transport.Transport = (*FeaturePublisher)(nil)
