package redisserver

import (
	"bufio"
	"context"
	"net"
	"testing"
	"time"

	"github.com/hivellm/synap/internal/engine/kv"
	"github.com/hivellm/synap/internal/engine/pubsub"
	"github.com/hivellm/synap/internal/engine/queue"
	"github.com/hivellm/synap/internal/engine/stream"
	"github.com/hivellm/synap/internal/engine/txn"
)

func newTestEngines() Engines {
	store := kv.New(kv.Config{ShardCount: 4})
	return Engines{
		KV:     store,
		Queue:  queue.NewManager(queue.ManagerConfig{}),
		Stream: stream.NewManager(stream.ManagerConfig{}),
		PubSub: pubsub.NewRouter(),
		Txn:    txn.NewCoordinator(store),
	}
}

// pipeConn wires a net.Pipe's server half into serveConn and returns the
// client half for the test to drive.
func newPipeServer(t *testing.T, engines Engines) (client net.Conn, reader *bufio.Reader) {
	t.Helper()
	cfg := DefaultConfig()
	srv := New(cfg, engines, nil)

	clientSide, serverSide := net.Pipe()
	connID := "test-conn"
	c := newConn(serverSide, connID)

	go srv.serveConn(context.Background(), c)
	t.Cleanup(func() { _ = clientSide.Close() })

	return clientSide, bufio.NewReader(clientSide)
}

func sendCommand(t *testing.T, conn net.Conn, args ...string) {
	t.Helper()
	var buf []byte
	buf = append(buf, []byte("*"+itoa(len(args))+"\r\n")...)
	for _, a := range args {
		buf = append(buf, []byte("$"+itoa(len(a))+"\r\n"+a+"\r\n")...)
	}
	if _, err := conn.Write(buf); err != nil {
		t.Fatalf("write: %v", err)
	}
}

func itoa(n int) string {
	if n == 0 {
		return "0"
	}
	digits := []byte{}
	for n > 0 {
		digits = append([]byte{byte('0' + n%10)}, digits...)
		n /= 10
	}
	return string(digits)
}

func readLine(t *testing.T, r *bufio.Reader) string {
	t.Helper()
	line, err := r.ReadString('\n')
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	return line
}

func TestServeConn_PingAndSet(t *testing.T) {
	engines := newTestEngines()
	conn, r := newPipeServer(t, engines)
	defer conn.Close()

	sendCommand(t, conn, "PING")
	if got := readLine(t, r); got != "+PONG\r\n" {
		t.Fatalf("PING reply = %q, want +PONG", got)
	}

	sendCommand(t, conn, "SET", "k1", "v1")
	if got := readLine(t, r); got != "+OK\r\n" {
		t.Fatalf("SET reply = %q, want +OK", got)
	}

	sendCommand(t, conn, "GET", "k1")
	if got := readLine(t, r); got != "$2\r\n" {
		t.Fatalf("GET header = %q, want $2", got)
	}
	if got := readLine(t, r); got != "v1\r\n" {
		t.Fatalf("GET body = %q, want v1", got)
	}
}

func TestServeConn_DelAndExists(t *testing.T) {
	engines := newTestEngines()
	conn, r := newPipeServer(t, engines)
	defer conn.Close()

	sendCommand(t, conn, "SET", "k2", "v2")
	readLine(t, r)

	sendCommand(t, conn, "EXISTS", "k2")
	if got := readLine(t, r); got != ":1\r\n" {
		t.Fatalf("EXISTS reply = %q, want :1", got)
	}

	sendCommand(t, conn, "DEL", "k2")
	if got := readLine(t, r); got != ":1\r\n" {
		t.Fatalf("DEL reply = %q, want :1", got)
	}

	sendCommand(t, conn, "GET", "k2")
	if got := readLine(t, r); got != "$-1\r\n" {
		t.Fatalf("GET reply = %q, want $-1 (missing key)", got)
	}
}

func TestServeConn_UnknownCommand(t *testing.T) {
	engines := newTestEngines()
	conn, r := newPipeServer(t, engines)
	defer conn.Close()

	sendCommand(t, conn, "BOGUS")
	got := readLine(t, r)
	if got[0] != '-' {
		t.Fatalf("BOGUS reply = %q, want an error line", got)
	}
}

func TestServeConn_QueuePublishConsumeAck(t *testing.T) {
	engines := newTestEngines()
	conn, r := newPipeServer(t, engines)
	defer conn.Close()

	sendCommand(t, conn, "QUEUE.PUBLISH", "jobs", "5", "payload")
	readLine(t, r) // bulk header, e.g. $36
	idLine := readLine(t, r)
	id := idLine[:len(idLine)-2] // trim CRLF

	sendCommand(t, conn, "QUEUE.CONSUME", "jobs", "worker-1")
	if got := readLine(t, r); got != "*3\r\n" {
		t.Fatalf("QUEUE.CONSUME header = %q, want *3", got)
	}
	readLine(t, r) // message id bulk header
	readLine(t, r) // message id body
	if got := readLine(t, r); got != ":5\r\n" {
		t.Fatalf("QUEUE.CONSUME priority = %q, want :5", got)
	}
	readLine(t, r) // payload bulk header
	if got := readLine(t, r); got != "payload\r\n" {
		t.Fatalf("QUEUE.CONSUME payload = %q, want payload", got)
	}

	sendCommand(t, conn, "QUEUE.ACK", "jobs", id)
	if got := readLine(t, r); got != "+OK\r\n" {
		t.Fatalf("QUEUE.ACK reply = %q, want +OK", got)
	}
}

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	if cfg.PlainAddress == "" {
		t.Fatal("DefaultConfig: PlainAddress is empty")
	}
	if cfg.ReadTimeout != 30*time.Second {
		t.Fatalf("ReadTimeout = %v, want 30s", cfg.ReadTimeout)
	}
}
