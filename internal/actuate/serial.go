package actuate

import (
	"fmt"
	"io"
	"strings"
	"sync"

	"go.bug.st/serial"
)

// DefaultSerialCommand is the line sent to the HID bridge for one jump.
const DefaultSerialCommand = "JUMP\n"

// SerialPorter defines the minimal interface needed for a serial port.
// This abstraction enables unit testing without real serial hardware.
type SerialPorter interface {
	io.Writer
	io.Closer
}

// PortOptions describes the serial connection parameters used when opening
// the HID bridge's port.
type PortOptions struct {
	BaudRate int    `json:"baud_rate"`
	DataBits int    `json:"data_bits"`
	StopBits int    `json:"stop_bits"`
	Parity   string `json:"parity"`
}

var standardBaudRates = map[int]bool{
	110: true, 300: true, 600: true, 1200: true, 2400: true, 4800: true, 9600: true,
	14400: true, 19200: true, 28800: true, 38400: true, 57600: true, 115200: true,
	128000: true, 256000: true,
}

// Normalize validates the options and applies defaults for any unset values.
func (o PortOptions) Normalize() (PortOptions, error) {
	opts := o

	if opts.BaudRate <= 0 {
		opts.BaudRate = 115200
	}
	if !standardBaudRates[opts.BaudRate] {
		return opts, fmt.Errorf("unsupported baud rate %d", opts.BaudRate)
	}

	if opts.DataBits == 0 {
		opts.DataBits = 8
	}
	if opts.DataBits < 5 || opts.DataBits > 8 {
		return opts, fmt.Errorf("invalid data bits %d: must be between 5 and 8", opts.DataBits)
	}

	if opts.StopBits == 0 {
		opts.StopBits = 1
	}
	if opts.StopBits != 1 && opts.StopBits != 2 {
		return opts, fmt.Errorf("invalid stop bits %d: supported values are 1 or 2", opts.StopBits)
	}

	parity := strings.TrimSpace(strings.ToUpper(opts.Parity))
	switch parity {
	case "", "N", "NONE":
		parity = "N"
	case "E", "EVEN":
		parity = "E"
	case "O", "ODD":
		parity = "O"
	default:
		return opts, fmt.Errorf("unsupported parity %q: expected N, E, or O", opts.Parity)
	}

	opts.Parity = parity
	return opts, nil
}

// SerialMode converts the port options into the serial.Mode structure required by
// go.bug.st/serial when opening a port.
func (o PortOptions) SerialMode() (*serial.Mode, error) {
	opts, err := o.Normalize()
	if err != nil {
		return nil, err
	}

	mode := &serial.Mode{
		BaudRate: opts.BaudRate,
		DataBits: opts.DataBits,
		StopBits: serial.OneStopBit,
	}
	if opts.StopBits == 2 {
		mode.StopBits = serial.TwoStopBits
	}

	switch opts.Parity {
	case "N":
		mode.Parity = serial.NoParity
	case "E":
		mode.Parity = serial.EvenParity
	case "O":
		mode.Parity = serial.OddParity
	}

	return mode, nil
}

// Serial sends each jump as a command line to a microcontroller that acts as
// a USB keyboard (HID bridge). It is useful when synthetic key events are
// blocked or when the game runs on another machine.
type Serial struct {
	mu      sync.Mutex
	port    SerialPorter
	command []byte
}

// OpenSerial opens path with opts and returns a Serial actuator that writes
// command for each jump. An empty command selects DefaultSerialCommand.
func OpenSerial(path string, opts PortOptions, command string) (*Serial, error) {
	mode, err := opts.SerialMode()
	if err != nil {
		return nil, err
	}
	port, err := serial.Open(path, mode)
	if err != nil {
		return nil, fmt.Errorf("open serial port %s: %w", path, err)
	}
	return NewSerial(port, command), nil
}

// NewSerial wraps an already-open port.
func NewSerial(port SerialPorter, command string) *Serial {
	if command == "" {
		command = DefaultSerialCommand
	}
	return &Serial{port: port, command: []byte(command)}
}

func (s *Serial) Jump() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	n, err := s.port.Write(s.command)
	if err != nil {
		return fmt.Errorf("serial write: %w", err)
	}
	if n != len(s.command) {
		return fmt.Errorf("serial write: short write %d of %d bytes", n, len(s.command))
	}
	return nil
}

func (s *Serial) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.port.Close()
}
