// Package benchmarks compares the engine's raw request/response round trip
// against net/http and, as external baselines only, fasthttp and
// gorilla/websocket. None of the competitor stacks are exercised by the
// engine's own request path — they exist purely for comparison.
package benchmarks

import (
	"net"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gorilla/websocket"
	"github.com/valyala/fasthttp"
	"github.com/valyala/fasthttp/fasthttputil"
	"golang.org/x/sys/unix"

	"github.com/yourusername/relay/pkg/relay/coro"
	"github.com/yourusername/relay/pkg/relay/engine"
	"github.com/yourusername/relay/pkg/relay/handler"
)

// driveTask resumes task against slot/ctx until it reaches a terminal
// signal, for use outside the engine's own epoll loop.
func driveTask(task coro.Task, ctx *coro.Context, slot *engine.Slot) {
	for {
		sig := task(ctx, slot)
		if sig != coro.Pending {
			return
		}
	}
}

func BenchmarkComparisonSimpleGET(b *testing.B) {
	b.Run("relay", func(b *testing.B) {
		task := handler.Task(nil)

		b.ResetTimer()
		b.ReportAllocs()

		for i := 0; i < b.N; i++ {
			fds, err := unix.Socketpair(unix.AF_UNIX, unix.SOCK_STREAM|unix.SOCK_NONBLOCK, 0)
			if err != nil {
				b.Fatal(err)
			}
			clientFd, serverFd := fds[0], fds[1]

			if _, err := unix.Write(clientFd, []byte("GET / HTTP/1.0\r\n\r\n")); err != nil {
				b.Fatal(err)
			}

			slot := &engine.Slot{Fd: serverFd}
			ctx := &coro.Context{Slab: handler.NewRequestState()}
			driveTask(task, ctx, slot)

			buf := make([]byte, 4096)
			for {
				n, _ := unix.Read(clientFd, buf)
				if n <= 0 {
					break
				}
			}

			unix.Close(clientFd)
			unix.Close(serverFd)
		}
	})

	b.Run("net/http", func(b *testing.B) {
		h := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusOK)
			w.Write([]byte("OK"))
		})
		server := httptest.NewServer(h)
		defer server.Close()

		client := &http.Client{Transport: &http.Transport{MaxIdleConnsPerHost: 100}}

		b.ResetTimer()
		b.ReportAllocs()

		for i := 0; i < b.N; i++ {
			resp, err := client.Get(server.URL)
			if err != nil {
				b.Fatal(err)
			}
			resp.Body.Close()
		}
	})

	b.Run("fasthttp", func(b *testing.B) {
		h := func(ctx *fasthttp.RequestCtx) {
			ctx.SetStatusCode(fasthttp.StatusOK)
			ctx.WriteString("OK")
		}
		server := &fasthttp.Server{Handler: h}
		ln := fasthttputil.NewInmemoryListener()
		defer ln.Close()
		go server.Serve(ln)

		client := &fasthttp.Client{
			Dial: func(addr string) (net.Conn, error) { return ln.Dial() },
		}

		var req fasthttp.Request
		var resp fasthttp.Response
		req.SetRequestURI("http://localhost/")

		b.ResetTimer()
		b.ReportAllocs()

		for i := 0; i < b.N; i++ {
			if err := client.Do(&req, &resp); err != nil {
				b.Fatal(err)
			}
			resp.Reset()
		}
	})
}

// BenchmarkWebSocketBaseline exercises gorilla/websocket purely as an
// external baseline; the engine itself has no WebSocket upgrade path.
func BenchmarkWebSocketBaseline(b *testing.B) {
	upgrader := websocket.Upgrader{}
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		defer conn.Close()
		for {
			mt, msg, err := conn.ReadMessage()
			if err != nil {
				return
			}
			if err := conn.WriteMessage(mt, msg); err != nil {
				return
			}
		}
	}))
	defer server.Close()

	wsURL := "ws" + server.URL[len("http"):]

	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	if err != nil {
		b.Fatal(err)
	}
	defer conn.Close()

	payload := []byte("ping")

	b.ResetTimer()
	b.ReportAllocs()

	for i := 0; i < b.N; i++ {
		if err := conn.WriteMessage(websocket.TextMessage, payload); err != nil {
			b.Fatal(err)
		}
		if _, _, err := conn.ReadMessage(); err != nil {
			b.Fatal(err)
		}
	}
}
