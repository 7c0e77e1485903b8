package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"go.uber.org/zap"
	"golang.org/x/term"

	"github.com/wippyai/sockshim/host"
	"github.com/wippyai/sockshim/hostmem"
	"github.com/wippyai/sockshim/shim"
	"github.com/wippyai/sockshim/sockaddr"
)

const memorySize = 1 << 20

func main() {
	var (
		hostName    = flag.String("host", "", "Host to connect to")
		port        = flag.Uint("port", 80, "Port to connect to")
		udp         = flag.Bool("udp", false, "Use a datagram socket")
		send        = flag.String("send", "", "Data to send after connecting (\\r\\n escapes honored)")
		recvSize    = flag.Int("recv", 4096, "Receive buffer size per read")
		timeout     = flag.Duration("timeout", 10*time.Second, "Overall operation timeout")
		resolveOnly = flag.Bool("resolve", false, "Resolve the host and exit")
		interactive = flag.Bool("i", false, "Interactive console")
		verbose     = flag.Bool("v", false, "Verbose logging")
	)
	flag.Parse()

	if *interactive {
		if !term.IsTerminal(int(os.Stdin.Fd())) {
			fmt.Fprintln(os.Stderr, "Error: interactive mode requires a terminal")
			os.Exit(1)
		}
		if err := runInteractive(newStack(*verbose)); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		return
	}

	if *hostName == "" {
		fmt.Fprintln(os.Stderr, "Usage: sockcall -host <name> [-port n] [-udp] [-send data] [-recv n]")
		fmt.Fprintln(os.Stderr, "       sockcall -host <name> -resolve")
		fmt.Fprintln(os.Stderr, "       sockcall -i  (interactive console)")
		os.Exit(1)
	}

	if err := run(*hostName, uint16(*port), *udp, *send, *recvSize, *timeout, *resolveOnly, *verbose); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// newStack wires the shim over the native backend through one linear memory.
func newStack(verbose bool) *shim.Shim {
	mem := hostmem.New(memorySize)
	backend := host.NewNetBackend()
	s := shim.New(host.NewPrimitives(backend, mem), mem, mem)

	if verbose {
		logger, err := zap.NewDevelopment()
		if err == nil {
			s.SetLogger(logger)
			backend.SetLogger(logger)
		}
	}
	return s
}

func run(hostName string, port uint16, udp bool, send string, recvSize int, timeout time.Duration, resolveOnly, verbose bool) error {
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	s := newStack(verbose)

	if resolveOnly {
		addrs, err := s.Resolve(ctx, hostName, port)
		if err != nil {
			return err
		}
		for _, addr := range addrs {
			fmt.Printf("%-6s %s\n", familyName(addr.Family), addr)
		}
		return nil
	}

	fd, err := dial(ctx, s, hostName, port, udp)
	if err != nil {
		return err
	}
	defer s.Close(ctx, fd)

	if send != "" {
		if err := shim.SendAll(ctx, s, fd, []byte(unescape(send))); err != nil {
			return err
		}
	}

	for {
		data, err := s.Recv(ctx, fd, int32(recvSize))
		if err != nil {
			return err
		}
		if len(data) == 0 {
			return nil
		}
		os.Stdout.Write(data)
		if udp {
			// One datagram exchange; don't wait for more.
			return nil
		}
	}
}

func dial(ctx context.Context, s *shim.Shim, hostName string, port uint16, udp bool) (int32, error) {
	if !udp {
		return shim.DialStream(ctx, s, hostName, port)
	}

	addrs, err := s.Resolve(ctx, hostName, port)
	if err != nil {
		return 0, err
	}
	var lastErr error
	for _, addr := range addrs {
		if !addr.Valid() {
			continue
		}
		fd, err := s.Open(ctx, addr.Family, sockaddr.DGRAM)
		if err != nil {
			lastErr = err
			continue
		}
		if err := s.Connect(ctx, fd, addr); err != nil {
			_ = s.Close(ctx, fd)
			lastErr = err
			continue
		}
		return fd, nil
	}
	if lastErr == nil {
		lastErr = fmt.Errorf("no usable addresses for host %q", hostName)
	}
	return 0, lastErr
}

func familyName(f sockaddr.Family) string {
	switch f {
	case sockaddr.INET:
		return "inet"
	case sockaddr.INET6:
		return "inet6"
	default:
		return fmt.Sprintf("af%d", f)
	}
}

// unescape turns literal \r and \n sequences from the command line into
// control characters so protocol lines can be typed directly.
func unescape(s string) string {
	out := make([]byte, 0, len(s))
	for i := 0; i < len(s); i++ {
		if s[i] == '\\' && i+1 < len(s) {
			switch s[i+1] {
			case 'r':
				out = append(out, '\r')
				i++
				continue
			case 'n':
				out = append(out, '\n')
				i++
				continue
			}
		}
		out = append(out, s[i])
	}
	return string(out)
}
