// Package oauth provides the loopback redirect receiver and browser helper
// used by the interactive authorisation flow.
package oauth

import (
	"context"
	"errors"
	"fmt"
	"html"
	"net"
	"net/http"
	"os/exec"
	"runtime"
	"sync"
	"time"
)

// Loopback ports tried by Listen, in order.
const (
	DefaultPortStart = 8085
	DefaultPortEnd   = 8095
)

const callbackPath = "/callback"

// Errors reported through WaitForCode.
var (
	ErrStateMismatch = errors.New("state mismatch")
	ErrNoCode        = errors.New("no authorisation code received")
	ErrTimeout       = errors.New("timeout waiting for authorisation callback")
)

// CallbackServer receives the provider redirect on 127.0.0.1 and hands the
// authorisation code to WaitForCode.
type CallbackServer struct {
	mu            sync.Mutex
	port          int
	expectedState string
	codeChan      chan string
	errChan       chan error
	server        *http.Server
	listener      net.Listener
}

// NewCallbackServer creates an unstarted server for the given port.
// Port 0 lets the OS choose.
func NewCallbackServer(port int, expectedState string) *CallbackServer {
	return &CallbackServer{
		port:          port,
		expectedState: expectedState,
		codeChan:      make(chan string, 1),
		errChan:       make(chan error, 1),
	}
}

// Listen starts a server on the first free port in [DefaultPortStart,
// DefaultPortEnd]. Its signature matches the connector's receiver factory.
func Listen(expectedState string) (*CallbackServer, error) {
	port, err := FindAvailablePort(DefaultPortStart, DefaultPortEnd)
	if err != nil {
		return nil, err
	}
	s := NewCallbackServer(port, expectedState)
	if err := s.Start(); err != nil {
		return nil, err
	}
	return s, nil
}

// Start begins serving. After Start, Port reports the bound port.
func (s *CallbackServer) Start() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	mux := http.NewServeMux()
	mux.HandleFunc("GET "+callbackPath, s.handleCallback)

	s.server = &http.Server{
		Handler:      mux,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
	}

	addr := fmt.Sprintf("127.0.0.1:%d", s.port)
	listener, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("listen on %s: %w", addr, err)
	}
	s.listener = listener
	if tcpAddr, ok := listener.Addr().(*net.TCPAddr); ok {
		s.port = tcpAddr.Port
	}

	go func() {
		if err := s.server.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.fail(err)
		}
	}()
	return nil
}

func (s *CallbackServer) handleCallback(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	w.Header().Set("Content-Type", "text/html; charset=utf-8")

	if errParam := q.Get("error"); errParam != "" {
		desc := q.Get("error_description")
		s.fail(fmt.Errorf("oauth error: %s: %s", errParam, desc))
		fmt.Fprint(w, resultPage("Authorisation failed", desc))
		return
	}

	if q.Get("state") != s.expectedState {
		s.fail(ErrStateMismatch)
		w.WriteHeader(http.StatusBadRequest)
		fmt.Fprint(w, resultPage("Authorisation failed", "The state parameter did not match."))
		return
	}

	code := q.Get("code")
	if code == "" {
		s.fail(ErrNoCode)
		w.WriteHeader(http.StatusBadRequest)
		fmt.Fprint(w, resultPage("Authorisation failed", "No code was received."))
		return
	}

	select {
	case s.codeChan <- code:
	default:
	}
	fmt.Fprint(w, resultPage("Authorisation complete", "You can close this window and return to the terminal."))
}

// fail records the first error; later ones are dropped.
func (s *CallbackServer) fail(err error) {
	select {
	case s.errChan <- err:
	default:
	}
}

// WaitForCode blocks until a code or an error arrives, or timeout elapses.
func (s *CallbackServer) WaitForCode(timeout time.Duration) (string, error) {
	timer := time.NewTimer(timeout)
	defer timer.Stop()

	select {
	case code := <-s.codeChan:
		return code, nil
	case err := <-s.errChan:
		return "", err
	case <-timer.C:
		return "", ErrTimeout
	}
}

// Stop shuts the server down. Calling Stop more than once is safe.
func (s *CallbackServer) Stop() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.server == nil {
		return nil
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	err := s.server.Shutdown(ctx)
	s.server = nil
	return err
}

// Port returns the listening port.
func (s *CallbackServer) Port() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.port
}

// RedirectURI returns the redirect_uri to register for this server. It names
// the same loopback address the server binds so the redirect never depends
// on how localhost resolves.
func (s *CallbackServer) RedirectURI() string {
	return fmt.Sprintf("http://127.0.0.1:%d%s", s.Port(), callbackPath)
}

func resultPage(title, message string) string {
	return fmt.Sprintf(`<!DOCTYPE html>
<html>
<head>
    <title>googlewrapper</title>
    <style>
        body { font-family: sans-serif; display: flex; justify-content: center; align-items: center; height: 100vh; margin: 0; background: #FAFAFA; }
        .box { text-align: center; background: white; padding: 40px 56px; border-radius: 12px; border: 1px solid #DADCE0; }
        h1 { color: #202124; margin: 0 0 8px 0; font-size: 22px; }
        p { color: #5F6368; margin: 0; }
    </style>
</head>
<body>
    <div class="box">
        <h1>%s</h1>
        <p>%s</p>
    </div>
</body>
</html>`, html.EscapeString(title), html.EscapeString(message))
}

// OpenBrowser opens url with the platform's default handler.
func OpenBrowser(url string) error {
	var cmd *exec.Cmd

	switch runtime.GOOS {
	case "darwin":
		cmd = exec.Command("open", url)
	case "linux":
		cmd = exec.Command("xdg-open", url)
	case "windows":
		cmd = exec.Command("rundll32", "url.dll,FileProtocolHandler", url)
	default:
		return fmt.Errorf("unsupported platform: %s", runtime.GOOS)
	}

	return cmd.Start()
}

// FindAvailablePort returns the first port in [startPort, endPort] that can
// be bound on 127.0.0.1.
func FindAvailablePort(startPort, endPort int) (int, error) {
	for port := startPort; port <= endPort; port++ {
		listener, err := net.Listen("tcp", fmt.Sprintf("127.0.0.1:%d", port))
		if err == nil {
			listener.Close()
			return port, nil
		}
	}
	return 0, fmt.Errorf("no available port in range %d-%d", startPort, endPort)
}
