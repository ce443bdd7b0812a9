package mpv

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"net"
	"os/exec"
	"path/filepath"
	"time"

	"github.com/cenkalti/backoff/v5"
	"github.com/playstate/playstate/constant"
	"github.com/playstate/playstate/log"
	"github.com/playstate/playstate/where"
)

var errExited = errors.New("mpv exited before its socket was ready")

// process is a spawned mpv instance.
type process struct {
	cmd    *exec.Cmd
	socket string
	exited chan struct{}
}

func socketPath() (string, error) {
	b := make([]byte, 4)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("generate socket name: %w", err)
	}
	return filepath.Join(where.Sockets(), fmt.Sprintf("mpv-%x.sock", b)), nil
}

func spawn(opts Options) (*process, error) {
	socket, err := socketPath()
	if err != nil {
		return nil, err
	}

	args := []string{
		"--no-terminal",
		"--really-quiet",
		"--idle=yes",
		"--pause=yes",
		"--keep-open=yes",
		"--force-window=" + forceWindow(opts.Headless),
		"--input-ipc-server=" + socket,
		"--user-agent=" + constant.UserAgent,
	}
	if title := sanitizeTitle(opts.Title); title != "" {
		args = append(args, "--title="+title)
	}
	if opts.Headless {
		args = append(args, "--vo=null", "--ao=null")
	}
	args = append(args, opts.ExtraArgs...)

	cmd := exec.Command(opts.Binary, args...)
	cmd.SysProcAttr = sysProcAttr()
	cmd.Stdin, cmd.Stdout, cmd.Stderr = nil, nil, nil

	if err := cmd.Start(); err != nil {
		return nil, fmt.Errorf("start %s: %w", opts.Binary, err)
	}
	log.Debugf("mpv: started pid %d on %s", cmd.Process.Pid, socket)

	p := &process{cmd: cmd, socket: socket, exited: make(chan struct{})}
	go func() {
		_ = cmd.Wait()
		close(p.exited)
	}()
	return p, nil
}

func forceWindow(headless bool) string {
	if headless {
		return "no"
	}
	return "yes"
}

// dial connects to the IPC socket, retrying until it appears, the process
// dies or wait elapses.
func (p *process) dial(ctx context.Context, wait time.Duration) (net.Conn, error) {
	dial := func() (net.Conn, error) {
		select {
		case <-p.exited:
			return nil, backoff.Permanent(errExited)
		default:
		}
		return net.Dial("unix", p.socket)
	}

	conn, err := backoff.Retry(ctx, dial,
		backoff.WithBackOff(backoff.NewConstantBackOff(100*time.Millisecond)),
		backoff.WithMaxElapsedTime(wait),
	)
	if err != nil {
		return nil, fmt.Errorf("socket %s not ready: %w", p.socket, err)
	}
	return conn, nil
}

// stop waits for mpv to exit after a quit command and kills it if it does not.
func (p *process) stop(grace time.Duration) {
	select {
	case <-p.exited:
	case <-time.After(grace):
		log.Warnf("mpv: pid %d ignored quit, killing", p.cmd.Process.Pid)
		_ = killProcess(p.cmd)
		<-p.exited
	}
}
