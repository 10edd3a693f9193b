package communication

import (
	"context"
	"fmt"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/ses"
	"github.com/aws/aws-sdk-go-v2/service/ses/types"
	"github.com/slack-go/slack"
)

// Notifier delivers the attendance summary somewhere people read it.
type Notifier interface {
	Info(ctx context.Context, subject, message string) error
	Error(ctx context.Context, subject, message string) error
}

type SlackAPI interface {
	PostMessageContext(ctx context.Context, channelID string, options ...slack.MsgOption) (string, string, error)
}

type Slack struct {
	client  SlackAPI
	options SlackOption
}

type SlackOption struct {
	InfoChannelID  string
	ErrorChannelID string
}

func NewSlack(token string, options SlackOption) *Slack {
	return NewSlackWithClient(slack.New(token), options)
}

func NewSlackWithClient(client SlackAPI, options SlackOption) *Slack {
	if options.ErrorChannelID == "" {
		options.ErrorChannelID = options.InfoChannelID
	}
	return &Slack{client: client, options: options}
}

func (s *Slack) postMessage(ctx context.Context, channelID, subject, message string) error {
	text := message
	if subject != "" {
		text = fmt.Sprintf("*%s*\n%s", subject, message)
	}
	_, _, err := s.client.PostMessageContext(ctx,
		channelID,
		slack.MsgOptionText(text, false),
		slack.MsgOptionAsUser(true),
	)
	if err != nil {
		return fmt.Errorf("failed to post message to Slack: %w", err)
	}
	return nil
}

func (s *Slack) Info(ctx context.Context, subject, message string) error {
	return s.postMessage(ctx, s.options.InfoChannelID, subject, message)
}

func (s *Slack) Error(ctx context.Context, subject, message string) error {
	return s.postMessage(ctx, s.options.ErrorChannelID, subject, message)
}

type EmailAPI interface {
	SendEmail(ctx context.Context, params *ses.SendEmailInput, optFns ...func(*ses.Options)) (*ses.SendEmailOutput, error)
}

// Email sends plain text mail through SES.
type Email struct {
	client EmailAPI
	from   string
	to     []string
}

func NewEmail(client EmailAPI, from string, to []string) *Email {
	return &Email{client: client, from: from, to: to}
}

func ConnectEmail(ctx context.Context, from string, to []string) (*Email, error) {
	cfg, err := config.LoadDefaultConfig(ctx)
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}
	return NewEmail(ses.NewFromConfig(cfg), from, to), nil
}

func (e *Email) send(ctx context.Context, subject, message string) error {
	_, err := e.client.SendEmail(ctx, &ses.SendEmailInput{
		Source:      aws.String(e.from),
		Destination: &types.Destination{ToAddresses: e.to},
		Message: &types.Message{
			Subject: &types.Content{Data: aws.String(subject), Charset: aws.String("UTF-8")},
			Body: &types.Body{
				Text: &types.Content{Data: aws.String(message), Charset: aws.String("UTF-8")},
			},
		},
	})
	if err != nil {
		return fmt.Errorf("failed to send email to %s: %w", strings.Join(e.to, ", "), err)
	}
	return nil
}

func (e *Email) Info(ctx context.Context, subject, message string) error {
	return e.send(ctx, subject, message)
}

func (e *Email) Error(ctx context.Context, subject, message string) error {
	return e.send(ctx, "[error] "+subject, message)
}

// Multi fans a message out to every notifier and joins the failures.
type Multi []Notifier

func (m Multi) Info(ctx context.Context, subject, message string) error {
	return m.each(func(n Notifier) error { return n.Info(ctx, subject, message) })
}

func (m Multi) Error(ctx context.Context, subject, message string) error {
	return m.each(func(n Notifier) error { return n.Error(ctx, subject, message) })
}

func (m Multi) each(fn func(Notifier) error) error {
	var errs []string
	for _, n := range m {
		if err := fn(n); err != nil {
			errs = append(errs, err.Error())
		}
	}
	if len(errs) > 0 {
		return fmt.Errorf("notify: %s", strings.Join(errs, "; "))
	}
	return nil
}
