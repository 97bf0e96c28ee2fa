package aws

import (
	"admitgate/src/models"
	"context"
	"encoding/json"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sns"
	log "github.com/sirupsen/logrus"
)

type SNSAPI interface {
	Publish(ctx context.Context, params *sns.PublishInput, optFns ...func(*sns.Options)) (*sns.PublishOutput, error)
}

// SNSFailureReporter publishes failed deliveries to an alert topic.
type SNSFailureReporter struct {
	client   SNSAPI
	topicArn string
}

type deliveryFailedAlert struct {
	ScheduleID   string `json:"scheduleId"`
	TicketID     string `json:"ticketId"`
	Recipient    string `json:"recipient"`
	ScheduledFor string `json:"scheduledFor"`
	Error        string `json:"error"`
}

func NewSNSFailureReporter(client SNSAPI, topicArn string) *SNSFailureReporter {
	return &SNSFailureReporter{client: client, topicArn: topicArn}
}

func (s *SNSFailureReporter) ReportFailure(ctx context.Context, schedule *models.DeliverySchedule, cause error) {
	msg, err := json.Marshal(&deliveryFailedAlert{
		ScheduleID:   schedule.ID.String(),
		TicketID:     schedule.TicketID,
		Recipient:    schedule.Recipient,
		ScheduledFor: schedule.ScheduledFor.Format("2006-01-02T15:04:05Z07:00"),
		Error:        cause.Error(),
	})
	if err != nil {
		log.Printf("[SNS] Could not encode alert: %s\n", err.Error())
		return
	}
	_, err = s.client.Publish(ctx, &sns.PublishInput{
		TopicArn: aws.String(s.topicArn),
		Subject:  aws.String(fmt.Sprintf("Ticket delivery failed: %s", schedule.TicketID)),
		Message:  aws.String(string(msg)),
	})
	if err != nil {
		log.Printf("[SNS] Error publishing alert for schedule [%s]: %s\n", schedule.ID.String(), err.Error())
	}
}
