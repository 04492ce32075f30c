package cmd

import (
	"github.com/spf13/cobra"

	"github.com/Ramsey-B/clover/pkg/indexer"
	"github.com/Ramsey-B/clover/pkg/routes/commonname"
	"github.com/Ramsey-B/clover/pkg/routes/entities"
	"github.com/Ramsey-B/clover/pkg/routes/health"
	"github.com/Ramsey-B/clover/pkg/routes/match"
	"github.com/Ramsey-B/clover/pkg/routes/names"
	"github.com/Ramsey-B/clover/pkg/server"
)

// version is set at build time with -ldflags "-X .../cmd.version=...".
var version = "dev"

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the HTTP API",
	Long:  "Serves the match, entities, names, common-names and health endpoints. When kafka.consumer_enabled is set the dedupe worker runs in the same process.",
	Args:  cobra.NoArgs,
	RunE:  runServe,
}

func runServe(cmd *cobra.Command, args []string) error {
	ctx, cancel := signalContext()
	defer cancel()

	s, err := newStack(ctx)
	if err != nil {
		return err
	}
	defer s.stop()

	checker := health.NewChecker(version)
	checker.AddCheck("postgres", health.PingerFunc(s.db.PingContext))
	checker.AddCheck("opensearch", s.search)
	if s.redis != nil {
		checker.AddCheck("redis", s.redis)
	}

	// A nil *Cache must not become a non-nil Invalidator.
	var invalidator commonname.Invalidator
	if s.cache != nil {
		invalidator = s.cache
	}

	idx := indexer.New(s.entities, s.search, 0, s.logger)

	srv := server.New(s.cfg.Server("postgres", "opensearch"), s.logger,
		server.Route{Path: "/match", Handler: match.NewHandler(s.matcher)},
		server.Route{Path: "/entities", Handler: entities.NewHandler(s.entities, idx, s.matcher, s.logger)},
		server.Route{Path: "/names", Handler: server.RegisterFunc(names.Register)},
		server.Route{Path: "/common-names", Handler: commonname.NewHandler(s.lookup, s.commonNames, invalidator, s.logger)},
		server.Route{Path: "/health", Handler: checker},
	)
	s.startup.AddDependency(srv)

	if s.cfg.Kafka.ConsumerEnabled {
		addDedupeWorker(s)
	}

	if err := s.start(ctx); err != nil {
		return err
	}
	checker.SetReady(true)

	select {
	case <-ctx.Done():
		s.logger.Info("Shutting down")
	case err := <-srv.Done():
		if err != nil {
			s.logger.WithError(err).Error("HTTP server stopped")
			return err
		}
	}
	checker.SetReady(false)
	return nil
}
