package core

import (
	"context"
	"crypto/subtle"
	"fmt"
	"io"
	"log"
	"os"
	"sync"
	"time"

	"github.com/gliderlabs/ssh"
	"github.com/juju/ratelimit"

	"github.com/gosh-shell/gosh/core/config"
	"github.com/gosh-shell/gosh/core/history"
	"github.com/gosh-shell/gosh/core/logger"
)

// Server exposes the shell over SSH. Every accepted session gets its own
// working directory and exit scope; history and the event log are shared.
type Server struct {
	configuration *config.Configuration
	recorder      *logger.Recorder
	history       *history.Store
	sshServer     *ssh.Server

	// bucket throttles new sessions. Nil disables throttling.
	bucket *ratelimit.Bucket
}

// NewServer creates a server from the configuration. Events are recorded to
// eventLog; history may be nil.
func NewServer(configuration *config.Configuration, eventLog io.Writer, hist *history.Store) (*Server, error) {
	server := &Server{
		configuration: configuration,
		recorder:      logger.NewRecorder(eventLog),
		history:       hist,
	}

	if perMinute := configuration.SSH.ConnectionsPerMinute; perMinute > 0 {
		server.bucket = ratelimit.NewBucketWithRate(float64(perMinute)/60, int64(perMinute))
	}

	server.sshServer = &ssh.Server{
		Addr: fmt.Sprintf(":%d", configuration.SSH.Port),
		Handler: func(s ssh.Session) {
			server.HandleSession(s)
		},
		PasswordHandler: func(ctx ssh.Context, password string) bool {
			return server.checkPassword(password)
		},
	}
	server.sshServer.SetOption(ssh.HostKeyFile(configuration.HostKeyPath()))

	return server, nil
}

// checkPassword tests the offered password against every configured one in
// constant time. No configured passwords means no password logins.
func (s *Server) checkPassword(password string) bool {
	ok := false
	for _, allowed := range s.configuration.SSH.Passwords {
		if subtle.ConstantTimeCompare([]byte(password), []byte(allowed)) == 1 {
			ok = true
		}
	}
	return ok
}

// HandleSession runs one shell session over the SSH channel.
func (s *Server) HandleSession(sess ssh.Session) {
	if s.bucket != nil && s.bucket.TakeAvailable(1) == 0 {
		fmt.Fprintln(sess.Stderr(), "too many connections, try again later")
		sess.Exit(1)
		return
	}

	if banner := s.configuration.SSH.Banner; banner != "" {
		fmt.Fprintln(sess, banner)
	}

	// Track window size changes for the line editor.
	pty, winch, isPty := sess.Pty()
	var mu sync.Mutex
	windowWidth := pty.Window.Width
	go func() {
		for window := range winch {
			mu.Lock()
			windowWidth = window.Width
			mu.Unlock()
		}
	}()

	sys, err := newSessionSystem(s.configuration.Path)
	if err != nil {
		log.Printf("couldn't start session: %v", err)
		sess.Exit(1)
		return
	}

	host, _ := os.Hostname()
	sessionID := fmt.Sprintf("%s-%d", sess.RemoteAddr(), time.Now().UnixNano())

	shell, err := NewShell(Options{
		Config:     s.configuration,
		Sys:        sys,
		History:    s.history,
		Events:     s.recorder.NewSession(sessionID),
		Stdin:      io.NopCloser(sess),
		Stdout:     sess,
		Stderr:     sess.Stderr(),
		IsTerminal: isPty,
		Width: func() int {
			mu.Lock()
			defer mu.Unlock()
			return windowWidth
		},
		User:          sess.User(),
		Host:          host,
		Remote:        sess.RemoteAddr().String(),
		ExitRequested: sys.ExitRequested,
	})
	if err != nil {
		log.Printf("couldn't start shell: %v", err)
		sess.Exit(1)
		return
	}
	defer shell.Close()

	sess.Exit(shell.Run())
}

// ListenAndServe accepts connections until Shutdown or a listener error.
func (s *Server) ListenAndServe() error {
	log.Printf("- Starting SSH server on %s\n", s.sshServer.Addr)
	return s.sshServer.ListenAndServe()
}

// Shutdown gracefully stops the server.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.sshServer.Shutdown(ctx)
}
