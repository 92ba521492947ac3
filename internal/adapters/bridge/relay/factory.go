package relay

import (
	"github.com/Sakly-Saber/TraceTrade-sub000/internal/ports"
)

var _ ports.BridgeFactory = (*Factory)(nil)

// Factory builds one relay bridge per initialization attempt.
type Factory struct {
	Options Options
}

func NewFactory(opts Options) *Factory {
	return &Factory{Options: opts}
}

func (f *Factory) NewBridge(opts ports.BridgeOptions) (ports.Bridge, error) {
	return New(f.Options, opts)
}
