package aws

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sqs"
)

type SQSAPI interface {
	GetQueueUrl(ctx context.Context, params *sqs.GetQueueUrlInput, optFns ...func(*sqs.Options)) (*sqs.GetQueueUrlOutput, error)
	SendMessage(ctx context.Context, params *sqs.SendMessageInput, optFns ...func(*sqs.Options)) (*sqs.SendMessageOutput, error)
}

// QueuedMail is the message a mail worker picks from the email queue.
type QueuedMail struct {
	From     string   `json:"from"`
	FromName string   `json:"from-name"`
	To       []string `json:"to"`
	Subject  string   `json:"subject"`
	Body     string   `json:"body"`
	Html     bool     `json:"html"`
}

// SQSNotifier hands mails to a queue instead of sending them. Acceptance by
// the queue counts as delivery.
type SQSNotifier struct {
	client   SQSAPI
	queue    string
	from     string
	fromName string

	mu       sync.Mutex
	queueURL *string
}

func NewSQSNotifier(client SQSAPI, queue, from, fromName string) *SQSNotifier {
	return &SQSNotifier{client: client, queue: queue, from: from, fromName: fromName}
}

func (s *SQSNotifier) Name() string {
	return "sqs"
}

func (s *SQSNotifier) Send(ctx context.Context, to, subject, body string) error {
	qurl, err := s.resolveQueueURL(ctx)
	if err != nil {
		return err
	}
	msg, err := json.Marshal(&QueuedMail{
		From:     s.from,
		FromName: s.fromName,
		To:       []string{to},
		Subject:  subject,
		Body:     body,
		Html:     true,
	})
	if err != nil {
		return err
	}
	if _, err := s.client.SendMessage(ctx, &sqs.SendMessageInput{
		QueueUrl:    qurl,
		MessageBody: aws.String(string(msg)),
	}); err != nil {
		return fmt.Errorf("error sending message to queue: %w", err)
	}
	return nil
}

func (s *SQSNotifier) resolveQueueURL(ctx context.Context) (*string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.queueURL != nil {
		return s.queueURL, nil
	}
	out, err := s.client.GetQueueUrl(ctx, &sqs.GetQueueUrlInput{
		QueueName: aws.String(s.queue),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to retrieve queue URL for %s: %w", s.queue, err)
	}
	s.queueURL = out.QueueUrl
	return s.queueURL, nil
}
