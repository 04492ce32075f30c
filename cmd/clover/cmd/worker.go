package cmd

import (
	"github.com/spf13/cobra"

	"github.com/Ramsey-B/clover/pkg/events"
	"github.com/Ramsey-B/clover/pkg/kafka"
	"github.com/Ramsey-B/clover/pkg/worker"
)

var workerCmd = &cobra.Command{
	Use:   "worker",
	Short: "Run the dedupe worker",
	Long:  "Consumes dedupe requests, matches each entity against the others and publishes match.completed events.",
	Args:  cobra.NoArgs,
	RunE:  runWorker,
}

func runWorker(cmd *cobra.Command, args []string) error {
	ctx, cancel := signalContext()
	defer cancel()

	s, err := newStack(ctx)
	if err != nil {
		return err
	}
	defer s.stop()

	addDedupeWorker(s)
	if err := s.start(ctx); err != nil {
		return err
	}

	<-ctx.Done()
	s.logger.Info("Shutting down")
	return nil
}

// addDedupeWorker registers the match.completed producer and the
// dedupe.requested consumer with the stack's startup, which stops them.
func addDedupeWorker(s *stack) {
	cfg := s.cfg.Kafka

	producer := kafka.NewProducer(kafka.ProducerConfig{
		Brokers:      cfg.Brokers,
		Topic:        cfg.MatchCompletedTopic,
		BatchSize:    cfg.BatchSize,
		BatchTimeout: cfg.BatchTimeout,
		RequiredAcks: cfg.RequiredAcks,
		Compression:  cfg.Compression,
	}, s.logger)

	dedupe := worker.NewDedupe(s.matcher, events.NewEmitter(producer, s.logger), s.cfg.Matching.DefaultKeywords, s.logger)

	consumer := kafka.NewConsumer(kafka.ConsumerConfig{
		Brokers:       cfg.Brokers,
		Topic:         cfg.DedupeTopic,
		ConsumerGroup: cfg.ConsumerGroup,
	}, s.logger, dedupe.Handle)

	s.startup.AddDependency(producer)
	s.startup.AddDependency(consumer)
}
