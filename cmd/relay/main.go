// Command relay runs the event-loop server against a TCP listen address,
// wiring engine.Listen to the fixed-body HTTP/1.0 handler. It exists so the
// engine/handler pairing compiles and runs as a real program; no
// request-handling logic lives here.
package main

import (
	"flag"
	"os"

	"github.com/hashicorp/go-hclog"

	"github.com/yourusername/relay/pkg/relay/engine"
	"github.com/yourusername/relay/pkg/relay/handler"
)

func main() {
	addr := flag.String("addr", "127.0.0.1", "address to bind")
	port := flag.Uint("port", 8080, "port to listen on")
	connMax := flag.Int("conn-max", 256, "maximum concurrent connections")
	flag.Parse()

	logger := hclog.New(&hclog.LoggerOptions{
		Name:  "relay",
		Level: hclog.Info,
	})

	octets, ok := parseIPv4(*addr)
	if !ok {
		logger.Error("invalid bind address", "addr", *addr)
		os.Exit(2)
	}

	cfg := engine.Config{
		ListenAddr:     engine.IPv4Address{A: octets[0], B: octets[1], C: octets[2], D: octets[3], Port: uint16(*port)},
		ConnectionsMax: *connMax,
		Logger:         logger,
	}

	srv, err := engine.New(cfg)
	if err != nil {
		logger.Error("failed to initialize server", "error", err)
		os.Exit(1)
	}

	slabs := make([]any, *connMax)
	for i := range slabs {
		slabs[i] = handler.NewRequestState()
	}

	if err := srv.Listen(handler.Task(logger), slabs); err != nil {
		logger.Error("server exited", "error", err)
		os.Exit(1)
	}
}

func parseIPv4(s string) ([4]byte, bool) {
	var out [4]byte
	part, idx := 0, 0
	val := 0
	for i := 0; i <= len(s); i++ {
		if i == len(s) || s[i] == '.' {
			if part > 3 || idx == 0 || val > 255 {
				return out, false
			}
			out[part] = byte(val)
			part++
			val = 0
			idx = 0
			continue
		}
		c := s[i]
		if c < '0' || c > '9' {
			return out, false
		}
		val = val*10 + int(c-'0')
		idx++
	}
	if part != 4 {
		return out, false
	}
	return out, true
}
