package std

import (
	"io"
	"net"
	"net/http"
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func hello() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte("hello"))
	})
}

func TestServer_RunAndClose(t *testing.T) {
	s := NewDefault(Config{Host: "127.0.0.1", Port: 0}, hello())
	addr, err := s.Listen()
	require.NoError(t, err)
	s.Run()

	resp, err := http.Get("http://" + addr.String())
	require.NoError(t, err)
	body, _ := io.ReadAll(resp.Body)
	_ = resp.Body.Close()
	assert.Equal(t, "hello", string(body))

	require.NoError(t, s.Close())
	_, err = (&http.Client{Timeout: time.Second}).Get("http://" + addr.String())
	assert.Error(t, err)
}

func TestServer_PortSearch(t *testing.T) {
	taken, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	defer taken.Close()
	port := taken.Addr().(*net.TCPAddr).Port

	s := New(Config{Host: "127.0.0.1", Port: port, PortSearch: 20}, hello())
	addr, err := s.Listen()
	require.NoError(t, err)
	defer s.Close()

	got := addr.(*net.TCPAddr).Port
	assert.Greater(t, got, port)
	assert.LessOrEqual(t, got, port+20)
	assert.Equal(t, "127.0.0.1:"+strconv.Itoa(got), s.server.Addr)
}

func TestServer_PortTakenNoSearch(t *testing.T) {
	taken, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	defer taken.Close()

	s := New(Config{Host: "127.0.0.1", Port: taken.Addr().(*net.TCPAddr).Port}, hello())
	_, err = s.Listen()
	assert.ErrorContains(t, err, "failed to listen")
}
