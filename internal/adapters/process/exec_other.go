//go:build !unix

package process

func execImage(string, []string, []string) error {
	return ErrUnsupported
}
