// Package bootstrap builds the storage backend and service selected by Config.
package bootstrap

import (
	"context"
	"fmt"
	"log/slog"

	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	awsdynamodb "github.com/aws/aws-sdk-go-v2/service/dynamodb"
	awsssm "github.com/aws/aws-sdk-go-v2/service/ssm"

	"message-store/internal/config"
	"message-store/internal/integrations/paramstore"
	"message-store/internal/repository"
	"message-store/internal/usecase"
)

// OpenStore opens the backend named by cfg.StoreBackend. The caller owns the
// returned store and must Close it.
func OpenStore(ctx context.Context, cfg config.Config, log *slog.Logger) (repository.Store, error) {
	switch cfg.StoreBackend {
	case config.BackendMemory:
		return repository.NewMemoryStore(), nil
	case config.BackendBadger:
		store, err := repository.OpenBadger(cfg.BadgerPath, log)
		if err != nil {
			return nil, err
		}
		return store, nil
	case config.BackendDynamoDB:
		return openDynamo(ctx, cfg, log)
	default:
		return nil, fmt.Errorf("bootstrap: unknown store backend %q", cfg.StoreBackend)
	}
}

func openDynamo(ctx context.Context, cfg config.Config, log *slog.Logger) (repository.Store, error) {
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx)
	if err != nil {
		return nil, fmt.Errorf("bootstrap: load AWS config: %w", err)
	}

	table := cfg.MessageTable
	if table == "" {
		ps, err := paramstore.New(awsssm.NewFromConfig(awsCfg))
		if err != nil {
			return nil, fmt.Errorf("bootstrap: create SSM client: %w", err)
		}
		if table, err = ps.Lookup(ctx, cfg.MessageTableParam); err != nil {
			return nil, fmt.Errorf("bootstrap: resolve message table: %w", err)
		}
		log.Info("resolved message table from parameter store", "param", cfg.MessageTableParam, "table", table)
	}

	client, err := repository.NewDynamoClient(awsdynamodb.NewFromConfig(awsCfg), table)
	if err != nil {
		return nil, fmt.Errorf("bootstrap: create dynamodb store: %w", err)
	}
	return client, nil
}

// NewService wires a MessageService over store with the production id
// generator and clock.
func NewService(store repository.Store, log *slog.Logger) (*usecase.MessageService, error) {
	return usecase.NewMessageService(store, usecase.WithLogger(log))
}
