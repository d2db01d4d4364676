package procpid

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"syscall"
)

const (
	dirPermissions  = 0750
	filePermissions = 0644

	// binaryName is the substring a process's command line must carry
	// before its PID file is trusted.
	binaryName = "polychromatic"
)

// Well-known component names. Device serials are also used as component
// names when a helper process claims a device's software-effect slot.
const (
	ComponentController = "controller"
	ComponentTrayApplet = "tray-applet"
	ComponentHelper     = "helper"
)

// Logger defines the logging interface used by the Manager.
type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
}

type noopLogger struct{}

func (noopLogger) Debug(string, ...any) {}
func (noopLogger) Info(string, ...any)  {}
func (noopLogger) Warn(string, ...any)  {}
func (noopLogger) Error(string, ...any) {}

// Manager owns the PID files under one runtime directory.
type Manager struct {
	runtimeDir string
	logger     Logger

	// procRoot is "/proc" in production; tests point it at a fixture
	// tree.
	procRoot string
}

// NewManager creates a manager rooted at runtimeDir, creating the
// directory if needed.
func NewManager(runtimeDir string) (*Manager, error) {
	if err := os.MkdirAll(runtimeDir, dirPermissions); err != nil {
		return nil, fmt.Errorf("creating runtime directory: %w", err)
	}
	return &Manager{
		runtimeDir: runtimeDir,
		logger:     noopLogger{},
		procRoot:   "/proc",
	}, nil
}

// SetLogger sets the logger for the manager.
func (m *Manager) SetLogger(logger Logger) {
	m.logger = logger
}

func (m *Manager) pidPath(name string) string {
	return filepath.Join(m.runtimeDir, name+".pid")
}

func (m *Manager) lockPath(name string) string {
	return filepath.Join(m.runtimeDir, name+".lock")
}

// ComponentPID returns the live owner of a component slot. A PID file
// whose process no longer exists, or whose command line no longer names
// a Polychromatic binary, is stale: it is removed and (0, false) is
// returned.
func (m *Manager) ComponentPID(name string) (int, bool) {
	data, err := os.ReadFile(m.pidPath(name))
	if err != nil {
		return 0, false
	}

	pid, err := strconv.Atoi(strings.TrimSpace(string(data)))
	if err != nil || pid <= 0 {
		m.removeStale(name, "unparsable contents")
		return 0, false
	}

	if !m.cmdlineMatches(pid) {
		m.removeStale(name, "command line mismatch")
		return 0, false
	}
	return pid, true
}

// IsRunning reports whether a component slot has a live owner.
func (m *Manager) IsRunning(name string) bool {
	_, ok := m.ComponentPID(name)
	return ok
}

// IsAnotherInstanceRunning reports whether a process other than the
// caller owns the slot.
func (m *Manager) IsAnotherInstanceRunning(name string) bool {
	pid, ok := m.ComponentPID(name)
	return ok && pid != os.Getpid()
}

// SetComponentPID claims a component slot for the calling process. The
// claim sequence runs under an advisory file lock: any previous owner
// is asked to stop (fire and forget), then the slot is overwritten with
// our own PID. Serializing the claim closes the window where two racing
// processes each believe they stopped the other.
func (m *Manager) SetComponentPID(name string) error {
	unlock, err := m.acquireLock(name)
	if err != nil {
		return err
	}
	defer unlock()

	if pid, ok := m.ComponentPID(name); ok && pid != os.Getpid() {
		m.logger.Info("asking previous owner to stop", "component", name, "pid", pid)
		// No wait guarantee; the previous owner exits in its own time.
		_ = syscall.Kill(pid, syscall.SIGUSR2)
	}

	pid := strconv.Itoa(os.Getpid())
	if err := os.WriteFile(m.pidPath(name), []byte(pid+"\n"), filePermissions); err != nil {
		return fmt.Errorf("writing pid file for %s: %w", name, err)
	}
	m.logger.Debug("component claimed", "component", name, "pid", pid)
	return nil
}

// ReleaseComponentPID releases a slot the calling process owns. A slot
// owned by someone else is left alone.
func (m *Manager) ReleaseComponentPID(name string) error {
	if pid, ok := m.ComponentPID(name); ok && pid != os.Getpid() {
		return nil
	}
	if err := os.Remove(m.pidPath(name)); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("removing pid file for %s: %w", name, err)
	}
	return nil
}

// Stop asks a component's owner to stop (SIGUSR2). A slot without a
// live owner is a no-op.
func (m *Manager) Stop(name string) error {
	return m.signal(name, syscall.SIGUSR2)
}

// Reload asks a component's owner to reload (SIGUSR1).
func (m *Manager) Reload(name string) error {
	return m.signal(name, syscall.SIGUSR1)
}

func (m *Manager) signal(name string, sig syscall.Signal) error {
	pid, ok := m.ComponentPID(name)
	if !ok {
		return nil
	}
	if err := syscall.Kill(pid, sig); err != nil {
		if err == syscall.ESRCH {
			m.removeStale(name, "process gone")
			return nil
		}
		return fmt.Errorf("signalling %s (pid %d): %w", name, pid, err)
	}
	return nil
}

// cmdlineMatches reports whether the process's command line names a
// Polychromatic binary. /proc/<pid>/cmdline is NUL-separated; only the
// executable component is examined.
func (m *Manager) cmdlineMatches(pid int) bool {
	data, err := os.ReadFile(filepath.Join(m.procRoot, strconv.Itoa(pid), "cmdline"))
	if err != nil {
		return false
	}
	argv := bytes.Split(data, []byte{0})
	if len(argv) == 0 || len(argv[0]) == 0 {
		return false
	}
	return strings.Contains(filepath.Base(string(argv[0])), binaryName)
}

func (m *Manager) removeStale(name, reason string) {
	m.logger.Debug("removing stale pid file", "component", name, "reason", reason)
	_ = os.Remove(m.pidPath(name))
}

// acquireLock takes the advisory lock serializing claims for one slot.
func (m *Manager) acquireLock(name string) (func(), error) {
	f, err := os.OpenFile(m.lockPath(name), os.O_CREATE|os.O_RDWR, filePermissions)
	if err != nil {
		return nil, fmt.Errorf("opening lock file for %s: %w", name, err)
	}
	if err := syscall.Flock(int(f.Fd()), syscall.LOCK_EX); err != nil {
		f.Close()
		return nil, fmt.Errorf("locking claim for %s: %w", name, err)
	}
	return func() {
		_ = syscall.Flock(int(f.Fd()), syscall.LOCK_UN)
		f.Close()
	}, nil
}
