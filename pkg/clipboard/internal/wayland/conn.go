// Package wayland implements just enough of the Wayland wire protocol to
// claim the clipboard through zwlr_data_control_v1 and serve paste requests.
// No compositor library is involved; the whole exchange is a handful of
// messages over the session socket.
package wayland

import (
	"encoding/binary"
	"fmt"
	"os"
	"path/filepath"
	"syscall"
)

var le = binary.LittleEndian

// conn is a buffered connection to the compositor socket. File descriptors
// delivered via SCM_RIGHTS are queued in arrival order and handed out one
// per message.
type conn struct {
	fd      int
	buf     []byte
	fdQueue []int
}

func dial() (*conn, error) {
	runtime := os.Getenv("XDG_RUNTIME_DIR")
	if runtime == "" {
		return nil, fmt.Errorf("wayland: XDG_RUNTIME_DIR not set")
	}
	display := os.Getenv("WAYLAND_DISPLAY")
	if display == "" {
		display = "wayland-0"
	}

	sockPath := filepath.Join(runtime, display)
	fd, err := syscall.Socket(syscall.AF_UNIX, syscall.SOCK_STREAM, 0)
	if err != nil {
		return nil, err
	}
	if err := syscall.Connect(fd, &syscall.SockaddrUnix{Name: sockPath}); err != nil {
		syscall.Close(fd) //nolint:errcheck
		return nil, fmt.Errorf("wayland: connect %s: %w", sockPath, err)
	}
	return &conn{fd: fd}, nil
}

func (c *conn) close() {
	syscall.Close(c.fd) //nolint:errcheck
}

// request sends one Wayland request: object id, opcode, then the
// pre-encoded argument block.
func (c *conn) request(object uint32, opcode uint16, args ...[]byte) error {
	var body []byte
	for _, a := range args {
		body = append(body, a...)
	}
	size := uint16(8 + len(body))
	msg := make([]byte, size)
	le.PutUint32(msg[0:], object)
	le.PutUint32(msg[4:], uint32(opcode)|uint32(size)<<16)
	copy(msg[8:], body)
	_, err := syscall.Write(c.fd, msg)
	return err
}

// event is one decoded Wayland event. fd is -1 unless the compositor
// attached a file descriptor.
type event struct {
	object  uint32
	opcode  uint16
	payload []byte
	fd      int
}

// next blocks until a complete event is buffered.
func (c *conn) next() (event, error) {
	for {
		if ev, ok := c.popEvent(); ok {
			return ev, nil
		}

		data := make([]byte, 4096)
		oob := make([]byte, syscall.CmsgSpace(4*8))
		n, oobn, _, _, err := syscall.Recvmsg(c.fd, data, oob, 0)
		if err != nil {
			return event{}, err
		}
		if n == 0 {
			return event{}, fmt.Errorf("wayland: connection closed")
		}
		c.buf = append(c.buf, data[:n]...)

		if oobn > 0 {
			c.collectFds(oob[:oobn])
		}
	}
}

func (c *conn) popEvent() (event, bool) {
	if len(c.buf) < 8 {
		return event{}, false
	}
	sizeOpcode := le.Uint32(c.buf[4:8])
	size := int(sizeOpcode >> 16)
	if size < 8 || len(c.buf) < size {
		return event{}, false
	}

	ev := event{
		object:  le.Uint32(c.buf[0:4]),
		opcode:  uint16(sizeOpcode & 0xffff),
		payload: append([]byte(nil), c.buf[8:size]...),
		fd:      -1,
	}
	c.buf = c.buf[size:]

	if len(c.fdQueue) > 0 {
		ev.fd = c.fdQueue[0]
		c.fdQueue = c.fdQueue[1:]
	}
	return ev, true
}

func (c *conn) collectFds(oob []byte) {
	scms, err := syscall.ParseSocketControlMessage(oob)
	if err != nil {
		return
	}
	for _, scm := range scms {
		if rights, err := syscall.ParseUnixRights(&scm); err == nil {
			c.fdQueue = append(c.fdQueue, rights...)
		}
	}
}

func uint32Arg(v uint32) []byte {
	b := make([]byte, 4)
	le.PutUint32(b, v)
	return b
}

// stringArg encodes a Wayland string: uint32 length including the null
// terminator, the bytes, then padding to 4-byte alignment.
func stringArg(s string) []byte {
	raw := append([]byte(s), 0)
	padded := (len(raw) + 3) &^ 3
	buf := make([]byte, 4+padded)
	le.PutUint32(buf[0:], uint32(len(raw)))
	copy(buf[4:], raw)
	return buf
}

// parseString decodes a Wayland string from the front of data.
func parseString(data []byte) (string, []byte, error) {
	if len(data) < 4 {
		return "", data, fmt.Errorf("wayland: short string length field")
	}
	length := int(le.Uint32(data[:4]))
	data = data[4:]
	if length == 0 {
		return "", data, nil
	}
	padded := (length + 3) &^ 3
	if len(data) < padded {
		return "", data, fmt.Errorf("wayland: short string data")
	}
	return string(data[:length-1]), data[padded:], nil
}

// writeAll writes data to fd completely. Image payloads exceed the pipe
// buffer, so partial writes are the norm, not the exception.
func writeAll(fd int, data []byte) {
	for len(data) > 0 {
		n, err := syscall.Write(fd, data)
		if err != nil {
			if err == syscall.EINTR {
				continue
			}
			return
		}
		data = data[n:]
	}
}
