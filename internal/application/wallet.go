package application

import (
	"context"

	"github.com/Sakly-Saber/TraceTrade-sub000/internal/domain"
)

// Wallet is the surface the rest of the application uses for pairing and
// transaction dispatch.
type Wallet struct {
	controller *PairingController
	dispatcher *TransactionDispatcher
	state      *ConnectionStateStore
}

func NewWallet(controller *PairingController, dispatcher *TransactionDispatcher, state *ConnectionStateStore) *Wallet {
	return &Wallet{controller: controller, dispatcher: dispatcher, state: state}
}

func (w *Wallet) Init(ctx context.Context) error {
	_, err := w.controller.Init(ctx)
	return err
}

func (w *Wallet) Pair(ctx context.Context) (domain.AccountID, error) {
	return w.controller.Pair(ctx)
}

func (w *Wallet) Disconnect(ctx context.Context) error {
	return w.controller.Disconnect(ctx)
}

func (w *Wallet) Send(ctx context.Context, tx domain.Transaction, accountID string) (domain.TransactionResult, error) {
	return w.dispatcher.Send(ctx, tx, accountID)
}

func (w *Wallet) State() domain.ConnectionSnapshot {
	return w.state.Snapshot()
}

func (w *Wallet) PairingData() *domain.PairingRecord {
	return w.state.Snapshot().Record
}

func (w *Wallet) Subscribe() (<-chan domain.ConnectionSnapshot, func()) {
	return w.state.Subscribe()
}

func (w *Wallet) Close() error {
	return w.controller.Close()
}
