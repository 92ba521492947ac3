// Package process restarts the running binary after a destructive storage reset.
package process

import (
	"errors"
	"fmt"
	"os"

	"github.com/Sakly-Saber/TraceTrade-sub000/internal/ports"
)

var ErrUnsupported = errors.New("process restart unsupported on this platform")

type execFunc func(path string, argv []string, env []string) error

type Restarter struct {
	executable func() (string, error)
	exec       execFunc
	args       []string
	env        func() []string
}

var _ ports.Restarter = (*Restarter)(nil)

// NewRestarter re-executes the current binary with args, which should include argv[0].
func NewRestarter(args []string) *Restarter {
	return &Restarter{
		executable: os.Executable,
		exec:       execImage,
		args:       append([]string(nil), args...),
		env:        os.Environ,
	}
}

func (r *Restarter) Restart() error {
	path, err := r.executable()
	if err != nil {
		return fmt.Errorf("locate executable: %w", err)
	}

	argv := r.args
	if len(argv) == 0 {
		argv = []string{path}
	}

	if err := r.exec(path, argv, r.env()); err != nil {
		return fmt.Errorf("exec %s: %w", path, err)
	}
	return nil
}
