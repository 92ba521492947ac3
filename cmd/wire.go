package cmd

import (
	"fmt"
	"io"
	"os"
	"sync"
	"time"

	"github.com/Sakly-Saber/TraceTrade-sub000/internal/adapters/bridge/relay"
	"github.com/Sakly-Saber/TraceTrade-sub000/internal/adapters/embeddb"
	chainkv "github.com/Sakly-Saber/TraceTrade-sub000/internal/adapters/kv/chain"
	memorykv "github.com/Sakly-Saber/TraceTrade-sub000/internal/adapters/kv/memory"
	tomlkv "github.com/Sakly-Saber/TraceTrade-sub000/internal/adapters/kv/toml"
	"github.com/Sakly-Saber/TraceTrade-sub000/internal/adapters/process"
	statusadapter "github.com/Sakly-Saber/TraceTrade-sub000/internal/adapters/render/status"
	"github.com/Sakly-Saber/TraceTrade-sub000/internal/application"
	"github.com/Sakly-Saber/TraceTrade-sub000/internal/config"
	"github.com/Sakly-Saber/TraceTrade-sub000/internal/domain"
	"github.com/Sakly-Saber/TraceTrade-sub000/internal/observability"
	"github.com/Sakly-Saber/TraceTrade-sub000/internal/ports"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

const appName = "ttw"

type app struct {
	cfg            config.Config
	logger         zerolog.Logger
	wallet         *application.Wallet
	controller     *application.PairingController
	pairingCache   *application.PairingCache
	databases      *embeddb.Registry
	presenter      *uriPresenter
	statusRenderer func(statusadapter.Report, statusadapter.RenderOptions) string
	now            func() time.Time
}

func (a *app) Close() error {
	return a.wallet.Close()
}

type appLoader struct {
	configPath string
	wire       func(configPath string, logOut io.Writer) (*app, error)
}

func (l *appLoader) load(cmd *cobra.Command) (*app, error) {
	a, err := l.wire(l.configPath, cmd.ErrOrStderr())
	if err != nil {
		return nil, fmt.Errorf("wire app: %w", err)
	}
	a.presenter.setOutput(cmd.OutOrStdout())
	return a, nil
}

// uriPresenter prints the pairing URI to whichever command output is current.
type uriPresenter struct {
	mu  sync.Mutex
	out io.Writer
}

func (p *uriPresenter) setOutput(w io.Writer) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.out = w
}

func (p *uriPresenter) Present(uri string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.out == nil {
		return
	}
	_, _ = fmt.Fprintf(p.out, "Open this pairing URI in your wallet:\n%s\n", uri)
}

func wireApp(configPath string, logOut io.Writer) (*app, error) {
	v := viper.New()
	cfg, err := config.Load(v, configPath)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}

	logger, err := observability.NewLogger(appName, cfg.Log.Level, cfg.Log.Format, logOut)
	if err != nil {
		return nil, fmt.Errorf("build logger: %w", err)
	}
	observability.RegisterMetrics()

	durable, err := tomlkv.NewStore(v)
	if err != nil {
		return nil, fmt.Errorf("wire durable storage: %w", err)
	}
	session := memorykv.NewStore()
	storage, err := chainkv.NewStoreChecked(durable, session)
	if err != nil {
		return nil, fmt.Errorf("wire storage chain: %w", err)
	}

	databases, err := embeddb.NewRegistry(cfg.DatabaseDir())
	if err != nil {
		return nil, fmt.Errorf("wire database registry: %w", err)
	}

	clock := ports.SystemClock{}
	recovery := application.NewStorageRecoveryManager(application.RecoveryDeps{
		Scopes:    []ports.KeyValueStore{durable, session},
		Databases: databases,
		Restarter: process.NewRestarter(os.Args),
		Clock:     clock,
		Logger:    logger,
	}, application.RecoveryConfig{
		Tier0Keys:         cfg.Recovery.Tier0Keys,
		NamespacePrefixes: cfg.Recovery.NamespacePrefixes,
		Databases:         cfg.Recovery.Databases,
		ExtraKeys:         cfg.Recovery.ExtraKeys,
		Tier1Settle:       cfg.Recovery.Tier1Settle,
		Tier2Settle:       cfg.Recovery.Tier2Settle,
		RestartOnReset:    cfg.Recovery.RestartOnReset,
	})

	policy, err := application.ParseConflictPolicy(cfg.Pairing.ConflictPolicy)
	if err != nil {
		return nil, fmt.Errorf("wire pairing policy: %w", err)
	}

	presenter := &uriPresenter{}
	factory := relay.NewFactory(relay.Options{
		URL:         cfg.Bridge.URL,
		CallTimeout: cfg.Bridge.CallTimeout,
		Presenter:   presenter.Present,
		Databases:   databases,
		Logger:      logger,
	})

	pairingCache := application.NewPairingCache(storage, cfg.Pairing.CacheKey, logger)
	state := application.NewConnectionStateStore()
	controller := application.NewPairingController(application.PairingDeps{
		Factory:  factory,
		Cache:    pairingCache,
		Recovery: recovery,
		State:    state,
		Resolver: application.NewTopicResolver(domain.PeerMetadata{
			Name: cfg.Pairing.ExpectedPeer.Name,
			URL:  cfg.Pairing.ExpectedPeer.URL,
		}),
		Clock:  clock,
		Logger: logger,
	}, application.PairingConfig{
		Bridge: ports.BridgeOptions{
			Network:   cfg.Bridge.Network,
			ProjectID: cfg.Bridge.ProjectID,
			Debug:     cfg.Bridge.Debug,
			Metadata: domain.PeerMetadata{
				Name:        cfg.App.Name,
				Description: cfg.App.Description,
				URL:         cfg.App.URL,
				Icons:       cfg.App.Icons,
			},
		},
		MaxInitAttempts: cfg.Pairing.MaxInitAttempts,
		PairTimeout:     cfg.Pairing.Timeout,
		ConflictPolicy:  policy,
	})
	dispatcher := application.NewTransactionDispatcher(state, controller, logger)

	return &app{
		cfg:            cfg,
		logger:         logger,
		wallet:         application.NewWallet(controller, dispatcher, state),
		controller:     controller,
		pairingCache:   pairingCache,
		databases:      databases,
		presenter:      presenter,
		statusRenderer: statusadapter.Render,
		now:            time.Now,
	}, nil
}
