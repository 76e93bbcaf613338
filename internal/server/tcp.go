package server

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"time"

	"github.com/tacsight/takwire/internal/tak"
)

// errFrameTooLarge is returned by readFrame when a stream frame declares a
// payload larger than the configured buffer size.
var errFrameTooLarge = errors.New("stream frame exceeds buffer size")

// listenTCP binds one TCP port and starts its accept loop.
func (s *Server) listenTCP(port int) error {
	addr := fmt.Sprintf("%s:%d", s.config.Server.BindAddress, port)

	listener, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("failed to listen on TCP %s: %w", addr, err)
	}

	s.tcpListeners = append(s.tcpListeners, listener)
	s.logger.Info("TCP listener started", slog.String("addr", listener.Addr().String()))

	s.producers.Add(1)
	go s.acceptTCP(listener, port)
	return nil
}

// acceptTCP accepts connections until the listener is closed.
func (s *Server) acceptTCP(listener net.Listener, port int) {
	defer s.producers.Done()

	for {
		conn, err := listener.Accept()
		if err != nil {
			select {
			case <-s.ctx.Done():
				return
			default:
			}
			if errors.Is(err, net.ErrClosed) {
				return
			}
			s.logger.Error("TCP accept error",
				slog.Int("port", port),
				slog.String("error", err.Error()),
			)
			continue
		}

		s.producers.Add(1)
		go s.handleTCPConn(conn, port)
	}
}

// handleTCPConn splits one connection into payloads and queues each one.
// The connection is tracked so Stop can close it out from under a blocked
// read.
func (s *Server) handleTCPConn(conn net.Conn, port int) {
	defer s.producers.Done()
	defer conn.Close()

	s.trackConn(conn)
	defer s.untrackConn(conn)

	s.logger.Debug("TCP connection opened",
		slog.String("remote_addr", conn.RemoteAddr().String()),
		slog.Int("local_port", port),
	)

	br := bufio.NewReaderSize(conn, s.config.Server.BufferSize)
	for {
		frame, err := readFrame(br, s.config.Server.BufferSize)
		if len(frame) > 0 {
			s.enqueue(&incomingPayload{
				data:       frame,
				remoteAddr: conn.RemoteAddr(),
				localPort:  port,
				transport:  "tcp",
				timestamp:  time.Now(),
			})
		}
		if err != nil {
			if !errors.Is(err, io.EOF) {
				s.logger.Debug("TCP connection error",
					slog.String("remote_addr", conn.RemoteAddr().String()),
					slog.String("error", err.Error()),
				)
			}
			return
		}
	}
}

// readFrame extracts the next payload from a TCP byte stream.
//
// The stream-framed envelope is self-delimiting (magic byte, varint length,
// payload), so frames are cut at their declared boundaries and the envelope
// header is kept so the decoder sees the complete frame. A magic byte
// followed by a varint and a second magic byte is the mesh variant, which
// carries no length; it and any non-framed payload (XML, bare protobuf)
// extend to the end of the connection.
//
// A nil error means another frame may follow. io.EOF means the connection
// is drained; a partial frame read before the failure is still returned.
func readFrame(br *bufio.Reader, max int) ([]byte, error) {
	first, err := br.ReadByte()
	if err != nil {
		return nil, err
	}

	if first != tak.MagicByte {
		return readToEOF(br, []byte{first}, max)
	}

	frame := []byte{first}
	var length uint64
	for shift := 0; ; shift += 7 {
		if shift >= 64 {
			return frame, fmt.Errorf("malformed frame length varint")
		}
		b, err := br.ReadByte()
		if err != nil {
			return frame, unexpectedEOF(err)
		}
		frame = append(frame, b)
		length |= uint64(b&0x7F) << shift
		if b&0x80 == 0 {
			break
		}
	}

	// Mesh frames repeat the magic byte after the version varint and run
	// to the end of the connection.
	if next, err := br.Peek(1); err == nil && next[0] == tak.MagicByte {
		return readToEOF(br, frame, max)
	}

	if length > uint64(max) {
		return frame, fmt.Errorf("%w: declared %d, max %d", errFrameTooLarge, length, max)
	}

	payload := make([]byte, int(length))
	if _, err := io.ReadFull(br, payload); err != nil {
		return frame, unexpectedEOF(err)
	}
	return append(frame, payload...), nil
}

// readToEOF drains the connection into one payload.
func readToEOF(br *bufio.Reader, prefix []byte, max int) ([]byte, error) {
	rest, err := io.ReadAll(io.LimitReader(br, int64(max)))
	if err != nil {
		return append(prefix, rest...), err
	}
	return append(prefix, rest...), io.EOF
}

func unexpectedEOF(err error) error {
	if errors.Is(err, io.EOF) {
		return io.ErrUnexpectedEOF
	}
	return err
}
