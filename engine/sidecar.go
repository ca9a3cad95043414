package engine

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"os/exec"
	"sync"
	"time"

	"github.com/yllada/leaf-vpn/common"
	"github.com/yllada/leaf-vpn/status"
)

// Common errors - re-exported from common package for convenience.
var (
	ErrAlreadyRunning = common.ErrAlreadyRunning
	ErrNotRunning     = common.ErrNotRunning
)

// Sidecar runs the leaf-ipc process and relays its status to an observer.
type Sidecar struct {
	path            string
	args            []string
	env             []string
	observer        status.Observer
	shutdownTimeout time.Duration

	mu           sync.RWMutex
	cmd          *exec.Cmd
	stdin        io.WriteCloser
	exited       chan struct{}
	exitErr      error
	proxy        status.ProxyStatus
	shuttingDown bool

	writeMu sync.Mutex
}

// NewSidecar creates an adapter for the sidecar binary at path.
func NewSidecar(path string, observer status.Observer, args ...string) *Sidecar {
	return &Sidecar{
		path:            path,
		args:            args,
		observer:        observer,
		shutdownTimeout: common.ShutdownTimeout,
	}
}

// SetEnv adds environment variables to the sidecar process.
func (s *Sidecar) SetEnv(env ...string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.env = append(s.env, env...)
}

// Path returns the sidecar binary path.
func (s *Sidecar) Path() string {
	return s.path
}

// Start launches the sidecar. The engine reports Starting immediately and
// Started once the sidecar says so.
func (s *Sidecar) Start() error {
	s.mu.Lock()
	if s.cmd != nil {
		s.mu.Unlock()
		return ErrAlreadyRunning
	}

	cmd := exec.Command(s.path, s.args...)
	if len(s.env) > 0 {
		cmd.Env = append(os.Environ(), s.env...)
	}

	stdin, err := cmd.StdinPipe()
	if err != nil {
		s.mu.Unlock()
		return s.fail(err)
	}
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		s.mu.Unlock()
		return s.fail(err)
	}
	stderr, err := cmd.StderrPipe()
	if err != nil {
		s.mu.Unlock()
		return s.fail(err)
	}

	if err := cmd.Start(); err != nil {
		s.mu.Unlock()
		return s.fail(fmt.Errorf("failed to start %s: %w", s.path, err))
	}

	exited := make(chan struct{})
	s.cmd = cmd
	s.stdin = stdin
	s.exited = exited
	s.exitErr = nil
	s.proxy = status.ProxyStatus{State: status.ProxyIdle}
	s.shuttingDown = false
	s.mu.Unlock()

	common.LogInfo("Sidecar started with PID %d", cmd.Process.Pid)
	s.observer.OnEngine(status.EngineStatus{State: status.EngineStarting})

	var readers sync.WaitGroup
	readers.Add(2)
	go func() {
		defer readers.Done()
		s.readEvents(stdout)
	}()
	go func() {
		defer readers.Done()
		s.readLog(stderr)
	}()
	go s.wait(cmd, exited, &readers)

	return nil
}

func (s *Sidecar) fail(err error) error {
	common.LogError("Sidecar: %v", err)
	s.observer.OnEngine(status.EngineStatus{State: status.EngineError, Message: err.Error()})
	return err
}

// readEvents decodes stdout status lines.
func (s *Sidecar) readEvents(pipe io.Reader) {
	scanner := bufio.NewScanner(pipe)
	for scanner.Scan() {
		line := scanner.Bytes()
		event, err := ParseEvent(line)
		if err != nil {
			common.LogDebug("leaf-ipc: %s", line)
			continue
		}
		s.dispatch(event)
	}
}

func (s *Sidecar) readLog(pipe io.Reader) {
	scanner := bufio.NewScanner(pipe)
	for scanner.Scan() {
		common.LogInfo("leaf-ipc: %s", scanner.Text())
	}
}

func (s *Sidecar) dispatch(event status.Status) {
	switch v := event.(type) {
	case status.EngineStatus:
		s.observer.OnEngine(v)
	case status.ProxyStatus:
		s.mu.Lock()
		s.proxy = v
		s.mu.Unlock()
		s.observer.OnProxy(v)
	case status.ConnectivityStatus:
		s.observer.OnConnectivity(v)
	case status.SubscriptionStatus:
		s.observer.OnSubscription(v)
	}
}

// wait reaps the process once its output has been drained.
func (s *Sidecar) wait(cmd *exec.Cmd, exited chan struct{}, readers *sync.WaitGroup) {
	readers.Wait()
	err := cmd.Wait()

	s.mu.Lock()
	proxyActive := s.proxy.State != status.ProxyIdle
	requested := s.shuttingDown
	s.cmd = nil
	s.stdin = nil
	s.exitErr = err
	s.proxy = status.ProxyStatus{State: status.ProxyIdle}
	s.shuttingDown = false
	close(exited)
	s.mu.Unlock()

	if proxyActive {
		s.observer.OnProxy(status.ProxyStatus{State: status.ProxyIdle})
	}

	if err != nil && !requested {
		common.LogError("Sidecar terminated with error: %v", err)
		s.observer.OnEngine(status.EngineStatus{State: status.EngineError, Message: err.Error()})
		return
	}
	common.LogInfo("Sidecar terminated")
	s.observer.OnEngine(status.EngineStatus{State: status.EngineIdle})
}

// IsEngineRunning reports whether the sidecar process is alive.
func (s *Sidecar) IsEngineRunning() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.cmd != nil
}

// IsProxyRunning reports whether the proxy holds the tunnel. It fails with
// ErrNotRunning when the engine is down.
func (s *Sidecar) IsProxyRunning() (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.cmd == nil {
		return false, ErrNotRunning
	}
	return s.proxy.IsRunning(), nil
}

// send writes one command line to the sidecar.
func (s *Sidecar) send(cmd Command, args map[string]string) error {
	line, err := EncodeCommand(cmd, args)
	if err != nil {
		return err
	}

	s.mu.RLock()
	stdin := s.stdin
	s.mu.RUnlock()
	if stdin == nil {
		return ErrNotRunning
	}

	s.writeMu.Lock()
	defer s.writeMu.Unlock()
	if _, err := stdin.Write(append(line, '\n')); err != nil {
		return common.WrapError(err, "failed to send "+string(cmd))
	}
	common.LogDebug("Sidecar command: %s", line)
	return nil
}

// RunProxy asks the sidecar to start the proxy.
func (s *Sidecar) RunProxy() error { return s.send(CmdRunProxy, nil) }

// StopProxy asks the sidecar to stop the proxy.
func (s *Sidecar) StopProxy() error { return s.send(CmdStopProxy, nil) }

// ReloadProxy asks the sidecar to reload the proxy configuration.
func (s *Sidecar) ReloadProxy() error { return s.send(CmdReloadProxy, nil) }

// TestConfig asks the sidecar to validate the proxy configuration.
func (s *Sidecar) TestConfig() error { return s.send(CmdTestConfig, nil) }

// UpdateSubscription asks the sidecar to refresh the subscription for
// clientID.
func (s *Sidecar) UpdateSubscription(clientID string) error {
	return s.send(CmdUpdateSubscription, map[string]string{"client_id": clientID})
}

// ShutdownEngine asks the sidecar to exit and reports the result to done.
// The request is sent before it returns; waiting for the exit does not
// block the caller. A sidecar that does not exit within the
// shutdown timeout is killed and reported as an error.
func (s *Sidecar) ShutdownEngine(done func(status.EngineStatus)) {
	report := func(st status.EngineStatus) {
		if done != nil {
			done(st)
		}
	}

	s.mu.Lock()
	cmd, exited := s.cmd, s.exited
	if cmd == nil {
		s.mu.Unlock()
		go report(status.EngineStatus{State: status.EngineIdle})
		return
	}
	s.shuttingDown = true
	s.mu.Unlock()

	// Sent synchronously: callers may exit right after.
	if sendErr := s.send(CmdShutdown, nil); sendErr != nil {
		common.LogWarn("Sidecar shutdown request failed, killing it: %v", sendErr)
		go func() {
			if err := cmd.Process.Kill(); err != nil {
				common.LogError("Failed to kill sidecar: %v", err)
			}
			<-exited
			report(status.EngineStatus{State: status.EngineError, Message: sendErr.Error()})
		}()
		return
	}

	go func() {
		select {
		case <-exited:
			s.mu.RLock()
			err := s.exitErr
			s.mu.RUnlock()
			if err != nil {
				report(status.EngineStatus{State: status.EngineError, Message: err.Error()})
				return
			}
			report(status.EngineStatus{State: status.EngineIdle})

		case <-time.After(s.shutdownTimeout):
			common.LogWarn("Sidecar did not exit within %v, killing it", s.shutdownTimeout)
			if err := cmd.Process.Kill(); err != nil {
				common.LogError("Failed to kill sidecar: %v", err)
			}
			<-exited
			report(status.EngineStatus{
				State:   status.EngineError,
				Message: fmt.Sprintf("%v: sidecar killed after %v", common.ErrTimeout, s.shutdownTimeout),
			})
		}
	}()
}
