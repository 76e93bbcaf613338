package server

import (
	"errors"
	"fmt"
	"log/slog"
	"net"
	"time"
)

// listenUDP binds one UDP port and starts its receive loop. Each datagram
// is one complete payload.
func (s *Server) listenUDP(port int) error {
	addr := &net.UDPAddr{
		IP:   net.ParseIP(s.config.Server.BindAddress),
		Port: port,
	}

	conn, err := net.ListenUDP("udp", addr)
	if err != nil {
		return fmt.Errorf("failed to listen on UDP %s:%d: %w", s.config.Server.BindAddress, port, err)
	}
	if err := conn.SetReadBuffer(s.config.Server.BufferSize); err != nil {
		s.logger.Warn("failed to set UDP read buffer",
			slog.Int("port", port),
			slog.String("error", err.Error()),
		)
	}

	s.udpConns = append(s.udpConns, conn)
	s.logger.Info("UDP listener started", slog.String("addr", conn.LocalAddr().String()))

	s.producers.Add(1)
	go s.receiveUDP(conn, port)
	return nil
}

// receiveUDP reads datagrams until the socket is closed.
func (s *Server) receiveUDP(conn *net.UDPConn, port int) {
	defer s.producers.Done()

	buf := make([]byte, s.config.Server.BufferSize)
	for {
		n, remote, err := conn.ReadFromUDP(buf)
		if err != nil {
			select {
			case <-s.ctx.Done():
				return
			default:
			}
			if errors.Is(err, net.ErrClosed) {
				return
			}
			s.logger.Error("UDP read error",
				slog.Int("port", port),
				slog.String("error", err.Error()),
			)
			continue
		}
		if n == 0 {
			continue
		}

		data := make([]byte, n)
		copy(data, buf[:n])

		s.enqueue(&incomingPayload{
			data:       data,
			remoteAddr: remote,
			localPort:  port,
			transport:  "udp",
			timestamp:  time.Now(),
		})
	}
}
