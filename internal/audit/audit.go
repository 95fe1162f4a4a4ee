// Package audit writes the security log: every login attempt and every
// destructive admin action lands in logs/security.log as one line per
// event. The log is append-only and best-effort; a write failure is
// reported on stderr but never fails the request that triggered it.
package audit

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sync"
	"time"
)

const securityLogName = "security.log"

// Logger appends security events to a file under dir. A nil *Logger is
// valid and drops every event, which keeps handler tests free of file
// I/O.
type Logger struct {
	mu  sync.Mutex
	dir string
}

// New returns a Logger writing under dir (created on first write).
func New(dir string) *Logger {
	if dir == "" {
		dir = "logs"
	}
	return &Logger{dir: dir}
}

// LoginAttempt records the outcome of a login. The reason categorizes
// failures ("user_not_found", "invalid_password") and is empty on
// success.
func (l *Logger) LoginAttempt(email string, success bool, ip, userAgent, reason string) {
	outcome := "success"
	if !success {
		outcome = "failure reason=" + reason
	}
	l.write(fmt.Sprintf("LOGIN_ATTEMPT email=%q %s ip=%s ua=%q", email, outcome, ip, userAgent))
}

// AdminAction records a state-changing back-office operation.
func (l *Logger) AdminAction(actorID uint64, action, target, ip string) {
	l.write(fmt.Sprintf("ADMIN_ACTION actor=%d action=%s target=%s ip=%s", actorID, action, target, ip))
}

// SessionRevoked records a refresh attempt that was refused because the
// presented token no longer matches any stored session.
func (l *Logger) SessionRevoked(ip, userAgent string) {
	l.write(fmt.Sprintf("SESSION_REVOKED ip=%s ua=%q", ip, userAgent))
}

func (l *Logger) write(event string) {
	if l == nil {
		return
	}
	line := fmt.Sprintf("[%s] %s\n", time.Now().UTC().Format(time.RFC3339), event)

	l.mu.Lock()
	defer l.mu.Unlock()
	if err := os.MkdirAll(l.dir, 0o755); err != nil {
		log.Printf("audit: mkdir %s: %v", l.dir, err)
		return
	}
	f, err := os.OpenFile(filepath.Join(l.dir, securityLogName), os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		log.Printf("audit: open log: %v", err)
		return
	}
	defer f.Close()
	if _, err := f.WriteString(line); err != nil {
		log.Printf("audit: write log: %v", err)
	}
}
