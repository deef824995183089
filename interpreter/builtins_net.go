package interpreter

import (
	"bufio"
	"io"
	"net"
	"strings"
)

// The tcp built-ins serve one connection at a time: tcp_listen accepts a connection
// and reads one line, tcp_write answers it and closes it.

func (i *Interpreter) networkAllowed(name string) error {
	if !i.config.AllowNetwork {
		return &RuntimeError{Kind: ErrIOFailure, Name: name, Detail: "networking disabled"}
	}
	return nil
}

func (i *Interpreter) closeNetwork() {
	if i.conn != nil {
		_ = i.conn.Close()
		i.conn = nil
	}
	if i.listener != nil {
		_ = i.listener.Close()
		i.listener = nil
	}
}

func builtinTCPBind(i *Interpreter, args []*Cell) (*Cell, error) {
	if err := arity("tcp_bind", args, 1); err != nil {
		return nil, err
	}
	if err := i.networkAllowed("tcp_bind"); err != nil {
		return nil, err
	}
	addr, err := stringArg(args[0])
	if err != nil {
		return nil, err
	}
	i.closeNetwork()
	listener, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, ioFailure(err, "bind %s", addr)
	}
	i.listener = listener
	if i.config.LogExecution {
		i.logger.Info().Str("address", listener.Addr().String()).Msg("tcp listener bound")
	}
	return none()
}

func builtinTCPUnbind(i *Interpreter, args []*Cell) (*Cell, error) {
	if err := arity("tcp_unbind", args, 0); err != nil {
		return nil, err
	}
	if err := i.networkAllowed("tcp_unbind"); err != nil {
		return nil, err
	}
	i.closeNetwork()
	return none()
}

func builtinTCPListen(i *Interpreter, args []*Cell) (*Cell, error) {
	if err := arity("tcp_listen", args, 0); err != nil {
		return nil, err
	}
	if err := i.networkAllowed("tcp_listen"); err != nil {
		return nil, err
	}
	if i.listener == nil {
		return nil, ioFailure(nil, "tcp_listen called before tcp_bind")
	}
	if i.conn != nil {
		_ = i.conn.Close()
		i.conn = nil
	}
	conn, err := i.listener.Accept()
	if err != nil {
		return nil, ioFailure(err, "accept")
	}
	line, err := bufio.NewReader(conn).ReadString('\n')
	if err != nil && err != io.EOF {
		_ = conn.Close()
		return nil, ioFailure(err, "read from %s", conn.RemoteAddr())
	}
	i.conn = conn
	return NewCell(&String{Value: strings.TrimRight(line, "\r\n")}), nil
}

func builtinTCPWrite(i *Interpreter, args []*Cell) (*Cell, error) {
	if err := arity("tcp_write", args, 1); err != nil {
		return nil, err
	}
	if err := i.networkAllowed("tcp_write"); err != nil {
		return nil, err
	}
	payload, err := stringArg(args[0])
	if err != nil {
		return nil, err
	}
	if i.conn == nil {
		return nil, ioFailure(nil, "tcp_write without a pending connection")
	}
	conn := i.conn
	i.conn = nil
	defer conn.Close()
	if _, err := io.WriteString(conn, payload); err != nil {
		return nil, ioFailure(err, "write to %s", conn.RemoteAddr())
	}
	return none()
}
