package worker

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/kingrain94/token-quota-api/internal/service/queue"
	"github.com/kingrain94/token-quota-api/pkg/logger"
)

const (
	defaultMaxMessages = 10
	// Long polling: wait up to 20 seconds for messages.
	defaultWaitTime = 20
)

// Queue is the part of queue.SQSService a worker consumes from.
type Queue interface {
	ReceiveMessages(ctx context.Context, queueURL string, maxMessages int32, waitTimeSeconds int32) ([]queue.ReceivedMessage, error)
	DeleteMessage(ctx context.Context, queueURL string, receiptHandle *string) error
}

// MessageHandler processes one message. A nil error deletes the message from
// the queue; anything else leaves it for redelivery.
type MessageHandler interface {
	Handle(ctx context.Context, msg queue.Message) error
}

// SQSWorker runs workerCount goroutines that poll one queue and hand each
// message to a MessageHandler.
type SQSWorker struct {
	name         string
	queue        Queue
	queueURL     string
	handler      MessageHandler
	logger       *logger.Logger
	workerCount  int
	pollInterval time.Duration
	maxMessages  int32
	waitTime     int32
	ctx          context.Context
	cancel       context.CancelFunc
	waitGroup    sync.WaitGroup
}

func NewSQSWorker(
	name string,
	q Queue,
	queueURL string,
	handler MessageHandler,
	logger *logger.Logger,
	workerCount int,
	pollInterval time.Duration,
) *SQSWorker {
	ctx, cancel := context.WithCancel(context.Background())
	return &SQSWorker{
		name:         name,
		queue:        q,
		queueURL:     queueURL,
		handler:      handler,
		logger:       logger.With(zap.String("worker", name)),
		workerCount:  workerCount,
		pollInterval: pollInterval,
		maxMessages:  defaultMaxMessages,
		waitTime:     defaultWaitTime,
		ctx:          ctx,
		cancel:       cancel,
	}
}

func (w *SQSWorker) Start() {
	w.logger.Info("Starting SQS workers", zap.Int("count", w.workerCount))

	for i := 0; i < w.workerCount; i++ {
		w.waitGroup.Add(1)
		go w.runWorker(i)
	}
}

// Run starts the workers, blocks until ctx is done and then stops them.
func (w *SQSWorker) Run(ctx context.Context) {
	w.Start()
	<-ctx.Done()
	w.Stop()
}

// Stop cancels in-flight polls and waits for every goroutine to return.
func (w *SQSWorker) Stop() {
	w.logger.Info("Stopping SQS workers")
	w.cancel()
	w.waitGroup.Wait()
	w.logger.Info("All SQS workers stopped")
}

func (w *SQSWorker) runWorker(workerID int) {
	defer w.waitGroup.Done()

	w.logger.Info("Worker started", zap.Int("worker_id", workerID))

	ticker := time.NewTicker(w.pollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-w.ctx.Done():
			w.logger.Info("Worker shutting down", zap.Int("worker_id", workerID))
			return
		case <-ticker.C:
			if _, err := w.ProcessMessages(w.ctx); err != nil && w.ctx.Err() == nil {
				w.logger.Error("Failed to process messages", err, zap.Int("worker_id", workerID))
			}
		}
	}
}

// ProcessMessages receives one batch and returns how many messages were handled and deleted.
func (w *SQSWorker) ProcessMessages(ctx context.Context) (int, error) {
	messages, err := w.queue.ReceiveMessages(ctx, w.queueURL, w.maxMessages, w.waitTime)
	if err != nil {
		if len(messages) == 0 {
			return 0, fmt.Errorf("failed to receive messages: %w", err)
		}
		// Part of the batch decoded; the rest stays for the dead letter queue.
		w.logger.Error("Skipping undecodable messages", err)
	}

	processed := 0
	for _, msg := range messages {
		if err := w.handler.Handle(ctx, msg.Message); err != nil {
			w.logger.Error("Failed to process message", err, zap.String("type", string(msg.Message.Type)))
			continue
		}

		// Only delete the message if processing was successful
		if err := w.queue.DeleteMessage(ctx, w.queueURL, msg.ReceiptHandle); err != nil {
			w.logger.Error("Failed to delete message", err)
			continue
		}
		processed++
	}

	return processed, nil
}
