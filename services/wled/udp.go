package wled

import (
	"log/slog"
	"net"
	"strconv"

	"wledremote/errcode"
	"wledremote/types"
)

// UDPSender writes one datagram per intent. The socket is opened on first
// use so an unreachable endpoint at boot does not block the control loop.
type UDPSender struct {
	addr string
	conn net.Conn
	log  *slog.Logger
}

func NewUDPSender(ip string, port int, log *slog.Logger) *UDPSender {
	if port <= 0 {
		port = types.DefaultPort
	}
	s := &UDPSender{log: log.With("svc", "wled", "transport", types.TransportUDP)}
	if ip != "" {
		s.addr = net.JoinHostPort(ip, strconv.Itoa(port))
	}
	return s
}

// Addr is the destination as host:port, or "" when unconfigured.
func (s *UDPSender) Addr() string { return s.addr }

func (s *UDPSender) Send(in Intent) error {
	if s.addr == "" {
		return errcode.NoEndpoint
	}
	msg, err := in.Encode()
	if err != nil {
		return errcode.Wrap(errcode.SendFailed, "udp encode", err)
	}
	if s.conn == nil {
		c, err := net.Dial("udp", s.addr)
		if err != nil {
			return errcode.Wrap(errcode.SendFailed, "udp dial", err)
		}
		s.conn = c
	}
	if _, err := s.conn.Write(msg); err != nil {
		// Drop the socket; the next intent re-dials.
		_ = s.conn.Close()
		s.conn = nil
		return errcode.Wrap(errcode.SendFailed, "udp send", err)
	}
	s.log.Debug("sent", "to", s.addr, "payload", string(msg))
	return nil
}

func (s *UDPSender) Close() error {
	if s.conn == nil {
		return nil
	}
	err := s.conn.Close()
	s.conn = nil
	return err
}
