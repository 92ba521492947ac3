package ports

// Restarter replaces the running process with a fresh image. On success it does not return.
type Restarter interface {
	Restart() error
}
