package smtp

import (
	"bufio"
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/rand"
	"crypto/tls"
	"crypto/x509"
	"crypto/x509/pkix"
	"encoding/base64"
	"encoding/pem"
	"math/big"
	"net"
	"strconv"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

// miniSMTPServer is a minimal SMTP server for testing.
type miniSMTPServer struct {
	listener net.Listener
	starttls *tls.Config
	user     string
	pass     string
	// rejectRcpt answers RCPT TO for this address with a 550
	rejectRcpt string

	mx       sync.Mutex
	messages []receivedMessage
}

type receivedMessage struct {
	From  string
	Rcpts []string
	Data  string
	TLS   bool
	Authd bool
}

type serverOption func(s *miniSMTPServer)

func withAuth(user, pass string) serverOption {
	return func(s *miniSMTPServer) { s.user, s.pass = user, pass }
}

func withSTARTTLS(t *testing.T) serverOption {
	return func(s *miniSMTPServer) { s.starttls = testTLSConfig(t) }
}

func withRejectedRcpt(addr string) serverOption {
	return func(s *miniSMTPServer) { s.rejectRcpt = addr }
}

// startMiniSMTPServer listens on a random local port.
func startMiniSMTPServer(t *testing.T, opts ...serverOption) *miniSMTPServer {
	listener, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err, "failed to start SMTP server")
	return serve(t, listener, false, opts...)
}

// startImplicitTLSServer accepts TLS from the first byte.
func startImplicitTLSServer(t *testing.T, opts ...serverOption) *miniSMTPServer {
	listener, err := tls.Listen("tcp", "127.0.0.1:0", testTLSConfig(t))
	require.NoError(t, err, "failed to start SMTPS server")
	return serve(t, listener, true, opts...)
}

func serve(t *testing.T, l net.Listener, implicit bool, opts ...serverOption) *miniSMTPServer {
	s := &miniSMTPServer{listener: l}
	for _, o := range opts {
		o(s)
	}
	t.Cleanup(func() { _ = l.Close() })

	go func() {
		for {
			conn, err := l.Accept()
			if err != nil {
				return // listener closed
			}
			go s.handle(conn, implicit)
		}
	}()
	return s
}

func (s *miniSMTPServer) config(host string) Config {
	_, port, _ := net.SplitHostPort(s.listener.Addr().String())
	p, _ := strconv.Atoi(port)
	return Config{Host: host, Port: p, Timeout: 5 * time.Second}
}

func (s *miniSMTPServer) received() []receivedMessage {
	s.mx.Lock()
	defer s.mx.Unlock()
	return append([]receivedMessage(nil), s.messages...)
}

func (s *miniSMTPServer) handle(conn net.Conn, secure bool) {
	defer conn.Close()

	r := bufio.NewReader(conn)
	w := bufio.NewWriter(conn)
	reply := func(line string) {
		_, _ = w.WriteString(line + "\r\n")
		_ = w.Flush()
	}

	var cur receivedMessage
	cur.TLS = secure
	authd := false

	reply("220 localhost ESMTP Test Server")
	for {
		line, err := r.ReadString('\n')
		if err != nil {
			return
		}
		line = strings.TrimRight(line, "\r\n")
		upper := strings.ToUpper(line)

		switch {
		case strings.HasPrefix(upper, "EHLO"), strings.HasPrefix(upper, "HELO"):
			ext := []string{"250-localhost", "250-SIZE 52428800"}
			if s.starttls != nil && !secure {
				ext = append(ext, "250-STARTTLS")
			}
			if s.user != "" {
				ext = append(ext, "250-AUTH PLAIN")
			}
			ext = append(ext, "250 HELP")
			reply(strings.Join(ext, "\r\n"))
		case upper == "STARTTLS" && s.starttls != nil && !secure:
			reply("220 Ready to start TLS")
			tlsConn := tls.Server(conn, s.starttls)
			if err := tlsConn.Handshake(); err != nil {
				return
			}
			conn = tlsConn
			r = bufio.NewReader(conn)
			w = bufio.NewWriter(conn)
			secure = true
			cur.TLS = true
		case strings.HasPrefix(upper, "AUTH PLAIN"):
			raw, _ := base64.StdEncoding.DecodeString(strings.TrimSpace(line[len("AUTH PLAIN"):]))
			parts := strings.Split(string(raw), "\x00")
			if len(parts) == 3 && parts[1] == s.user && parts[2] == s.pass {
				authd = true
				reply("235 2.7.0 Authentication successful")
			} else {
				reply("535 5.7.8 Username and Password not accepted")
			}
		case strings.HasPrefix(upper, "MAIL FROM:"):
			if s.user != "" && !authd {
				reply("530 5.7.0 Authentication Required")
				continue
			}
			cur.From = strings.Trim(line[len("MAIL FROM:"):], "<> ")
			reply("250 OK")
		case strings.HasPrefix(upper, "RCPT TO:"):
			rcpt := strings.Trim(line[len("RCPT TO:"):], "<> ")
			if rcpt == s.rejectRcpt {
				reply("550 5.1.1 The email account that you tried to reach does not exist")
				continue
			}
			cur.Rcpts = append(cur.Rcpts, rcpt)
			reply("250 OK")
		case upper == "DATA":
			reply("354 End data with <CR><LF>.<CR><LF>")
			var data strings.Builder
			for {
				l, err := r.ReadString('\n')
				if err != nil {
					return
				}
				trimmed := strings.TrimRight(l, "\r\n")
				if trimmed == "." {
					break
				}
				data.WriteString(strings.TrimPrefix(trimmed, "."))
				data.WriteString("\r\n")
			}
			cur.Data = data.String()
			cur.Authd = authd
			s.mx.Lock()
			s.messages = append(s.messages, cur)
			s.mx.Unlock()
			cur = receivedMessage{TLS: secure}
			reply("250 OK queued")
		case upper == "QUIT":
			reply("221 localhost closing connection")
			return
		case upper == "NOOP", upper == "RSET":
			reply("250 OK")
		default:
			reply("500 Syntax error")
		}
	}
}

// testTLSConfig returns a server config with a self-signed certificate.
func testTLSConfig(t *testing.T) *tls.Config {
	priv, err := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
	require.NoError(t, err)

	template := x509.Certificate{
		SerialNumber:          big.NewInt(1),
		Subject:               pkix.Name{Organization: []string{"Test SMTP"}, CommonName: "localhost"},
		NotBefore:             time.Now().Add(-time.Minute),
		NotAfter:              time.Now().Add(time.Hour),
		KeyUsage:              x509.KeyUsageKeyEncipherment | x509.KeyUsageDigitalSignature,
		ExtKeyUsage:           []x509.ExtKeyUsage{x509.ExtKeyUsageServerAuth},
		BasicConstraintsValid: true,
		DNSNames:              []string{"localhost"},
		IPAddresses:           []net.IP{net.ParseIP("127.0.0.1")},
	}

	der, err := x509.CreateCertificate(rand.Reader, &template, &template, &priv.PublicKey, priv)
	require.NoError(t, err)
	privBytes, err := x509.MarshalECPrivateKey(priv)
	require.NoError(t, err)

	cert, err := tls.X509KeyPair(
		pem.EncodeToMemory(&pem.Block{Type: "CERTIFICATE", Bytes: der}),
		pem.EncodeToMemory(&pem.Block{Type: "EC PRIVATE KEY", Bytes: privBytes}),
	)
	require.NoError(t, err)
	return &tls.Config{Certificates: []tls.Certificate{cert}, MinVersion: tls.VersionTLS12}
}
