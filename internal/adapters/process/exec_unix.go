//go:build unix

package process

import "syscall"

func execImage(path string, argv []string, env []string) error {
	return syscall.Exec(path, argv, env)
}
