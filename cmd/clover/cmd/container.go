package cmd

import (
	"context"
	"errors"
	"fmt"

	"github.com/Gobusters/ectoinject"
	"github.com/Gobusters/ectoinject/ectocontainer"
	"github.com/Gobusters/ectoinject/loglevel"
	"github.com/Gobusters/ectologger"
	"github.com/google/uuid"

	"github.com/Ramsey-B/clover/pkg/indexer"
	"github.com/Ramsey-B/clover/pkg/matching"
	"github.com/Ramsey-B/clover/pkg/routes/entities"
)

// bindings are the collaborators commands resolve from their context.
type bindings struct {
	logger  ectologger.Logger
	matcher *matching.Matcher
	source  indexer.Source
	sink    indexer.Sink
}

// provide registers b in a new dependency container and returns ctx with that
// container active. Every call gets its own container.
func provide(ctx context.Context, b bindings) (context.Context, error) {
	container, err := ectoinject.NewDIContainer(ectocontainer.DIContainerConfig{
		ID:                       "clover-" + uuid.NewString(),
		AllowCaptiveDependencies: true,
		LoggerConfig: &ectocontainer.DIContainerLoggerConfig{
			Prefix:   "ectoinject",
			LogLevel: loglevel.INFO,
			Enabled:  true,
			LogFunc: func(ctx context.Context, _ string, msg string) {
				b.logger.WithContext(ctx).Debug(msg)
			},
		},
	})
	if err != nil {
		return ctx, fmt.Errorf("failed to create dependency container: %w", err)
	}

	err = errors.Join(
		ectoinject.RegisterInstance[ectologger.Logger](container, b.logger),
		ectoinject.RegisterInstance[*matching.Matcher](container, b.matcher),
		ectoinject.RegisterInstance[entities.Searcher](container, b.matcher),
		ectoinject.RegisterInstance[indexer.Source](container, b.source),
		ectoinject.RegisterInstance[indexer.Sink](container, b.sink),
	)
	if err != nil {
		return ctx, fmt.Errorf("failed to register dependencies: %w", err)
	}

	return ectoinject.SetActiveContainer(ctx, container.GetContainerID())
}
