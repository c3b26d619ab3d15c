package printer

import (
	"context"
	"errors"
	"fmt"
	"net"
	"os"
	"time"
)

// Printer types accepted by New.
const (
	TypeUSB     = "usb"
	TypeNetwork = "network"
	TypeNone    = "none"
)

// ErrNotConfigured is returned by the printer used when none is configured.
var ErrNotConfigured = errors.New("printer: no printer configured")

// Printer sends raw ESC/POS data to a thermal printer. Each call opens and
// closes its own connection.
type Printer interface {
	Print(ctx context.Context, data []byte) error
	// Ping reports whether the printer can currently be reached.
	Ping(ctx context.Context) error
	Type() string
}

// Config selects and parameterises a printer
type Config struct {
	Type         string
	USBPath      string
	Address      string
	DialTimeout  time.Duration
	WriteTimeout time.Duration
}

// New creates the printer described by cfg. An empty type means none.
func New(cfg Config) (Printer, error) {
	switch cfg.Type {
	case TypeUSB:
		if cfg.USBPath == "" {
			return nil, errors.New("printer: USB path is required for usb printers")
		}
		return &devicePrinter{path: cfg.USBPath}, nil
	case TypeNetwork:
		if cfg.Address == "" {
			return nil, errors.New("printer: address is required for network printers")
		}
		return newNetworkPrinter(cfg), nil
	case TypeNone, "":
		return nonePrinter{}, nil
	default:
		return nil, fmt.Errorf("printer: unknown printer type %q (use usb, network or none)", cfg.Type)
	}
}

// devicePrinter writes to a character device such as /dev/usb/lp0.
type devicePrinter struct {
	path string
}

func (p *devicePrinter) Print(ctx context.Context, data []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	f, err := os.OpenFile(p.path, os.O_WRONLY, 0)
	if err != nil {
		return fmt.Errorf("printer: open %s: %w", p.path, err)
	}
	if _, err := f.Write(data); err != nil {
		f.Close()
		return fmt.Errorf("printer: write %s: %w", p.path, err)
	}
	return f.Close()
}

func (p *devicePrinter) Ping(ctx context.Context) error {
	if _, err := os.Stat(p.path); err != nil {
		return fmt.Errorf("printer: %w", err)
	}
	return nil
}

func (p *devicePrinter) Type() string { return TypeUSB }

// networkPrinter speaks raw TCP, usually on port 9100.
type networkPrinter struct {
	address      string
	dialer       net.Dialer
	writeTimeout time.Duration
}

func newNetworkPrinter(cfg Config) *networkPrinter {
	dial := cfg.DialTimeout
	if dial <= 0 {
		dial = 5 * time.Second
	}
	write := cfg.WriteTimeout
	if write <= 0 {
		write = 10 * time.Second
	}
	return &networkPrinter{
		address:      cfg.Address,
		dialer:       net.Dialer{Timeout: dial},
		writeTimeout: write,
	}
}

func (p *networkPrinter) Print(ctx context.Context, data []byte) error {
	conn, err := p.dialer.DialContext(ctx, "tcp", p.address)
	if err != nil {
		return fmt.Errorf("printer: connect %s: %w", p.address, err)
	}
	defer conn.Close()

	deadline := time.Now().Add(p.writeTimeout)
	if d, ok := ctx.Deadline(); ok && d.Before(deadline) {
		deadline = d
	}
	if err := conn.SetWriteDeadline(deadline); err != nil {
		return fmt.Errorf("printer: %w", err)
	}

	if _, err := conn.Write(data); err != nil {
		return fmt.Errorf("printer: write %s: %w", p.address, err)
	}
	return nil
}

func (p *networkPrinter) Ping(ctx context.Context) error {
	conn, err := p.dialer.DialContext(ctx, "tcp", p.address)
	if err != nil {
		return fmt.Errorf("printer: connect %s: %w", p.address, err)
	}
	return conn.Close()
}

func (p *networkPrinter) Type() string { return TypeNetwork }

type nonePrinter struct{}

func (nonePrinter) Print(context.Context, []byte) error { return ErrNotConfigured }
func (nonePrinter) Ping(context.Context) error { return ErrNotConfigured }
func (nonePrinter) Type() string { return TypeNone }
