package queue

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sqs"
	"github.com/aws/aws-sdk-go-v2/service/sqs/types"

	"github.com/kingrain94/token-quota-api/internal/config"
	"github.com/kingrain94/token-quota-api/internal/domain"
)

type MessageType string

const (
	MessageTypeIndex      MessageType = "INDEX"
	MessageTypeBulkIndex  MessageType = "BULK_INDEX"
	MessageTypeDailyReset MessageType = "DAILY_RESET"
	MessageTypeArchive    MessageType = "ARCHIVE"
)

type Message struct {
	Type           MessageType         `json:"type"`
	OrganizationID string              `json:"organization_id,omitempty"`
	Events         []domain.UsageEvent `json:"events,omitempty"`
	Timestamp      time.Time           `json:"timestamp"`

	// UTC day an archive job exports.
	Day time.Time `json:"day,omitempty"`
}

type ReceivedMessage struct {
	Message       Message
	ReceiptHandle *string
}

// typeAttribute carries the message type outside the body so that queue
// subscriptions and DLQ tooling can filter without decoding.
const typeAttribute = "type"

// SQSAPI is the part of the SQS client the service uses.
type SQSAPI interface {
	SendMessage(ctx context.Context, params *sqs.SendMessageInput, optFns ...func(*sqs.Options)) (*sqs.SendMessageOutput, error)
	ReceiveMessage(ctx context.Context, params *sqs.ReceiveMessageInput, optFns ...func(*sqs.Options)) (*sqs.ReceiveMessageOutput, error)
	DeleteMessage(ctx context.Context, params *sqs.DeleteMessageInput, optFns ...func(*sqs.Options)) (*sqs.DeleteMessageOutput, error)
}

type SQSService struct {
	client          SQSAPI
	indexQueueURL   string
	resetQueueURL   string
	archiveQueueURL string
}

func NewSQSService(client SQSAPI, config *config.SQSConfig) *SQSService {
	return &SQSService{
		client:          client,
		indexQueueURL:   config.IndexQueueURL,
		resetQueueURL:   config.ResetQueueURL,
		archiveQueueURL: config.ArchiveQueueURL,
	}
}

func (s *SQSService) SendIndexMessage(ctx context.Context, event *domain.UsageEvent) error {
	msg := Message{
		Type:           MessageTypeIndex,
		OrganizationID: event.OrganizationID,
		Events:         []domain.UsageEvent{*event},
		Timestamp:      event.CreatedAt,
	}

	return s.sendMessage(ctx, msg, s.indexQueueURL)
}

func (s *SQSService) SendBulkIndexMessage(ctx context.Context, events []domain.UsageEvent) error {
	if len(events) == 0 {
		return nil
	}

	msg := Message{
		Type:           MessageTypeBulkIndex,
		OrganizationID: events[0].OrganizationID,
		Events:         events,
		Timestamp:      events[0].CreatedAt,
	}

	return s.sendMessage(ctx, msg, s.indexQueueURL)
}

// SendDailyResetMessage asks a reset worker to run the sweep.
func (s *SQSService) SendDailyResetMessage(ctx context.Context) error {
	msg := Message{
		Type:      MessageTypeDailyReset,
		Timestamp: time.Now().UTC(),
	}

	return s.sendMessage(ctx, msg, s.resetQueueURL)
}

func (s *SQSService) SendArchiveMessage(ctx context.Context, day time.Time) error {
	msg := Message{
		Type:      MessageTypeArchive,
		Day:       day.UTC(),
		Timestamp: time.Now().UTC(),
	}

	return s.sendMessage(ctx, msg, s.archiveQueueURL)
}

func (s *SQSService) IndexQueueURL() string {
	return s.indexQueueURL
}

func (s *SQSService) ResetQueueURL() string {
	return s.resetQueueURL
}

func (s *SQSService) ArchiveQueueURL() string {
	return s.archiveQueueURL
}

func (s *SQSService) sendMessage(ctx context.Context, msg Message, queueURL string) error {
	body, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("marshal %s message: %w", msg.Type, err)
	}

	_, err = s.client.SendMessage(ctx, &sqs.SendMessageInput{
		QueueUrl:    aws.String(queueURL),
		MessageBody: aws.String(string(body)),
		MessageAttributes: map[string]types.MessageAttributeValue{
			typeAttribute: {DataType: aws.String("String"), StringValue: aws.String(string(msg.Type))},
		},
	})
	if err != nil {
		return fmt.Errorf("send %s message: %w", msg.Type, err)
	}

	return nil
}

func (s *SQSService) ReceiveMessages(ctx context.Context, queueURL string, maxMessages int32, waitTimeSeconds int32) ([]ReceivedMessage, error) {
	input := &sqs.ReceiveMessageInput{
		QueueUrl:              aws.String(queueURL),
		MaxNumberOfMessages:   maxMessages,
		WaitTimeSeconds:       waitTimeSeconds,
		MessageAttributeNames: []string{typeAttribute},
	}

	output, err := s.client.ReceiveMessage(ctx, input)
	if err != nil {
		return nil, fmt.Errorf("receive from %s: %w", queueURL, err)
	}

	// An undecodable body is left on the queue so the redrive policy moves it
	// to the dead letter queue instead of blocking the rest of the batch.
	messages := make([]ReceivedMessage, 0, len(output.Messages))
	var errs []error
	for _, msg := range output.Messages {
		var message Message
		if err := json.Unmarshal([]byte(aws.ToString(msg.Body)), &message); err != nil {
			errs = append(errs, fmt.Errorf("decode message %s: %w", aws.ToString(msg.MessageId), err))
			continue
		}
		messages = append(messages, ReceivedMessage{
			Message:       message,
			ReceiptHandle: msg.ReceiptHandle,
		})
	}

	return messages, errors.Join(errs...)
}

func (s *SQSService) DeleteMessage(ctx context.Context, queueURL string, receiptHandle *string) error {
	input := &sqs.DeleteMessageInput{
		QueueUrl:      aws.String(queueURL),
		ReceiptHandle: receiptHandle,
	}

	if _, err := s.client.DeleteMessage(ctx, input); err != nil {
		return fmt.Errorf("delete from %s: %w", queueURL, err)
	}

	return nil
}
