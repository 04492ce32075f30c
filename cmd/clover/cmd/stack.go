package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/Gobusters/ectologger"

	"github.com/Ramsey-B/clover/config"
	"github.com/Ramsey-B/clover/internal/repositories/commonname"
	"github.com/Ramsey-B/clover/internal/repositories/entity"
	"github.com/Ramsey-B/clover/pkg/commonnames"
	"github.com/Ramsey-B/clover/pkg/database"
	"github.com/Ramsey-B/clover/pkg/graph"
	"github.com/Ramsey-B/clover/pkg/logger"
	"github.com/Ramsey-B/clover/pkg/matching"
	"github.com/Ramsey-B/clover/pkg/redis"
	"github.com/Ramsey-B/clover/pkg/search"
	"github.com/Ramsey-B/clover/pkg/startup"
	"github.com/Ramsey-B/clover/pkg/tracing"
)

const shutdownTimeout = 15 * time.Second

// stack is the matcher plus every collaborator it reads from.
type stack struct {
	cfg     *config.Config
	logger  ectologger.Logger
	startup *startup.Startup

	db          *database.Instance
	redis       *redis.Client
	search      *search.OpenSearch
	graph       *graph.Client
	entities    *entity.Repository
	commonNames *commonname.Repository
	cache       *commonnames.Cache
	lookup      commonnames.Lookup
	matcher     *matching.Matcher

	stopTracing func(context.Context) error
	syncLogs    func()
}

func loadConfig() (*config.Config, ectologger.Logger, func(), error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, nil, nil, err
	}
	log, sync, err := logger.New(cfg.App.LogLevel, cfg.App.PrettyLogs)
	if err != nil {
		return nil, nil, nil, err
	}
	return cfg, log, sync, nil
}

// newStack wires the collaborators. Nothing connects until start.
func newStack(ctx context.Context) (*stack, error) {
	cfg, log, sync, err := loadConfig()
	if err != nil {
		return nil, err
	}

	s := &stack{
		cfg:      cfg,
		logger:   log,
		startup:  startup.New(log, cfg.App.StartupMaxAttempts),
		syncLogs: sync,
	}

	if cfg.Tracing.Enabled {
		s.stopTracing, err = tracing.Setup(ctx, cfg.TracingSetup())
		if err != nil {
			return nil, err
		}
	}

	s.db, err = database.Open(cfg.Database.Connection(), log)
	if err != nil {
		return nil, err
	}
	s.startup.AddDependency(s.db)

	s.search, err = search.NewOpenSearch(cfg.Search.OpenSearch(), log)
	if err != nil {
		return nil, err
	}
	s.startup.AddDependency(s.search)

	var related entity.RelatedSource
	if cfg.Graph.Enabled {
		s.graph, err = graph.NewClient(cfg.Graph.Client(), log)
		if err != nil {
			return nil, err
		}
		s.startup.AddDependency(s.graph)
		related = graph.NewRelations(s.graph, log)
	}
	s.entities = entity.NewRepository(s.db, related, log)

	s.commonNames = commonname.NewRepository(s.db, log)
	s.lookup = commonnames.NewStore(s.commonNames)
	if cfg.Redis.Enabled {
		s.redis = redis.NewClient(cfg.Redis.Client(), log)
		s.startup.AddDependency(s.redis)
		s.cache = commonnames.NewCache(s.lookup, s.redis, cfg.Redis.CacheTTL, log)
		s.lookup = s.cache
	}

	scorer := matching.NewScorer(cfg.Matching.Scorer())
	evaluator := matching.NewEvaluator(scorer, s.lookup)
	s.matcher = matching.NewMatcher(log, s.search, s.entities, evaluator, cfg.Matching.Matcher())

	return s, nil
}

func (s *stack) start(ctx context.Context) error {
	return s.startup.Start(ctx)
}

// bind makes the stack's collaborators resolvable from the returned context.
func (s *stack) bind(ctx context.Context) (context.Context, error) {
	return provide(ctx, bindings{
		logger:  s.logger,
		matcher: s.matcher,
		source:  s.entities,
		sink:    s.search,
	})
}

// stop shuts dependencies down in reverse start order and flushes spans and
// logs.
func (s *stack) stop() {
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := s.startup.Stop(ctx); err != nil {
		s.logger.WithError(err).Error("Failed to stop dependencies")
	}
	if s.stopTracing != nil {
		if err := s.stopTracing(ctx); err != nil {
			s.logger.WithError(err).Error("Failed to flush traces")
		}
	}
	s.syncLogs()
}

// signalContext is cancelled on SIGINT or SIGTERM.
func signalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
}

func joinName(args []string) (string, error) {
	name := strings.TrimSpace(strings.Join(args, " "))
	if name == "" {
		return "", fmt.Errorf("a name is required")
	}
	return name, nil
}
