package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"kittycore/internal/blob"
	"kittycore/internal/config"
	"kittycore/internal/core"
)

// app carries the state shared by every subcommand of one invocation.
type app struct {
	configPath string
	caller     string

	cfg    *config.Config
	logger *zap.Logger
	store  core.PersistentStore
	svc    *core.Service
	blobs  blob.Store
}

func newRootCmd(a *app) *cobra.Command {
	root := &cobra.Command{
		Use:           "kittycore",
		Short:         "Track, breed and trade kitties with persistent lineage",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.open(cmd.Context())
		},
	}
	root.PersistentFlags().StringVar(&a.configPath, "config", "", "config file (default ./kittycore.{yaml,toml,json})")
	root.PersistentFlags().StringVar(&a.caller, "as", "", "account issuing the call")

	root.AddCommand(
		createCmd(a),
		breedCmd(a),
		transferCmd(a),
		showCmd(a),
		ownedCmd(a),
		lineageCmd(a),
		childrenCmd(a),
		endowCmd(a),
		balanceCmd(a),
		archiveCmd(a),
		archivesCmd(a),
		restoreCmd(a),
	)
	return root
}

// execute runs one invocation and releases the store whether or not the
// command succeeded.
func execute(ctx context.Context, args []string, stdout, stderr io.Writer) (err error) {
	a := &app{}
	root := newRootCmd(a)
	root.SetArgs(args)
	root.SetOut(stdout)
	root.SetErr(stderr)
	defer func() {
		err = errors.Join(err, a.close())
	}()
	return root.ExecuteContext(ctx)
}

func (a *app) open(ctx context.Context) error {
	cfg, err := config.Load(a.configPath)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	a.cfg = cfg

	logger, err := core.BuildZapLogger(cfg.Logging.Level, cfg.Logging.Format)
	if err != nil {
		return fmt.Errorf("building logger: %w", err)
	}
	a.logger = logger

	store, err := core.OpenPersistentStore(cfg.StorageOptions(), core.NewDefaultRulesEngine())
	if err != nil {
		return fmt.Errorf("opening %s store: %w", cfg.Storage.Driver, err)
	}
	a.store = store
	a.svc = core.NewService(store,
		core.WithLogger(core.NewZapLogger(logger)),
		core.WithNewKittyReserve(core.Balance(cfg.NewKittyReserve)),
	)
	return a.applyGenesis(ctx)
}

// applyGenesis credits configured balances once, while the store holds no
// accounts. All balances commit together so a failed run is retried whole.
func (a *app) applyGenesis(ctx context.Context) error {
	endowments := a.cfg.Endowments()
	if len(endowments) == 0 || len(a.store.ExportState().Accounts) > 0 {
		return nil
	}
	if err := a.svc.EndowAll(ctx, endowments); err != nil {
		return fmt.Errorf("genesis endowments: %w", err)
	}
	a.logger.Info("applied genesis balances", zap.Int("accounts", len(endowments)))
	return nil
}

func (a *app) close() error {
	var errs []error
	if c, ok := a.store.(io.Closer); ok {
		errs = append(errs, c.Close())
	}
	if a.logger != nil {
		_ = a.logger.Sync()
	}
	return errors.Join(errs...)
}

func (a *app) blobStore(ctx context.Context) (blob.Store, error) {
	if a.blobs != nil {
		return a.blobs, nil
	}
	blobs, err := blob.Open(ctx, a.cfg.BlobOptions())
	if err != nil {
		return nil, fmt.Errorf("opening %s blob store: %w", a.cfg.Blob.Driver, err)
	}
	a.blobs = blobs
	return blobs, nil
}

func (a *app) requireCaller() (core.AccountID, error) {
	if a.caller == "" {
		return "", errors.New("--as is required for this command")
	}
	return core.AccountID(a.caller), nil
}

func parseKittyID(raw string) (core.KittyID, error) {
	v, err := strconv.ParseUint(raw, 10, 32)
	if err != nil {
		return 0, fmt.Errorf("invalid kitty id %q", raw)
	}
	return core.KittyID(v), nil
}

func parseAmount(raw string) (core.Balance, error) {
	v, err := strconv.ParseUint(raw, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid amount %q", raw)
	}
	return core.Balance(v), nil
}
