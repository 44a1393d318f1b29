package mail

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	sesv2 "github.com/aws/aws-sdk-go-v2/service/sesv2"
	sestypes "github.com/aws/aws-sdk-go-v2/service/sesv2/types"
	"github.com/shashiranjanraj/rigparts/config"
)

// SESAPI is the slice of the SESv2 client the transport uses.
type SESAPI interface {
	SendEmail(ctx context.Context, in *sesv2.SendEmailInput, optFns ...func(*sesv2.Options)) (*sesv2.SendEmailOutput, error)
}

// SESTransport delivers through Amazon SES (v2 API).
type SESTransport struct {
	client SESAPI
}

func NewSES(client SESAPI) *SESTransport {
	return &SESTransport{client: client}
}

// NewSESFromEnv uses SES_REGION and either S3-style static keys
// (SES_KEY/SES_SECRET) or the default AWS credential chain.
func NewSESFromEnv(ctx context.Context) (*SESTransport, error) {
	opts := []func(*awsconfig.LoadOptions) error{
		awsconfig.WithRegion(config.Get("SES_REGION", "us-east-1")),
	}
	if key := config.Get("SES_KEY", ""); key != "" {
		opts = append(opts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(key, config.Get("SES_SECRET", ""), ""),
		))
	}

	cfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("mail/ses: load aws config: %w", err)
	}
	return NewSES(sesv2.NewFromConfig(cfg)), nil
}

func (t *SESTransport) Send(ctx context.Context, msg Message) error {
	in := &sesv2.SendEmailInput{
		FromEmailAddress: aws.String(msg.From),
		Destination:      &sestypes.Destination{ToAddresses: msg.To},
		Content: &sestypes.EmailContent{
			Simple: &sestypes.Message{
				Subject: &sestypes.Content{Data: aws.String(msg.Subject), Charset: aws.String("UTF-8")},
				Body:    &sestypes.Body{Html: &sestypes.Content{Data: aws.String(msg.HTML), Charset: aws.String("UTF-8")}},
			},
		},
	}
	if msg.ReplyTo != "" {
		in.ReplyToAddresses = []string{msg.ReplyTo}
	}
	for k, v := range msg.Headers {
		in.Content.Simple.Headers = append(in.Content.Simple.Headers, sestypes.MessageHeader{
			Name: aws.String(k), Value: aws.String(v),
		})
	}

	if _, err := t.client.SendEmail(ctx, in); err != nil {
		return fmt.Errorf("mail/ses: send: %w", err)
	}
	return nil
}
