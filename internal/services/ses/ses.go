// Package ses provides the worklist digest email via AWS SES. This is the
// notification collaborator around the engine; the engine itself never sends
// anything.
package ses

import (
	"bytes"
	"context"
	"fmt"
	"html/template"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/ses"
	"github.com/aws/aws-sdk-go-v2/service/ses/types"
	"go.uber.org/zap"

	appConfig "credit-opportunity-engine/internal/config"
	"credit-opportunity-engine/internal/engine"
	"credit-opportunity-engine/internal/utils"
)

// Service handles SES email operations
type Service struct {
	client    *ses.Client
	fromEmail string
}

// EmailParams represents parameters for sending an email
type EmailParams struct {
	To       string
	Subject  string
	HTMLBody string
	TextBody string
	CC       []string
}

// SendEmailResult contains the result of sending an email
type SendEmailResult struct {
	MessageID string
	SentAt    time.Time
}

// NewService creates a new SES service
func NewService(ctx context.Context) (*Service, error) {
	cfg, err := config.LoadDefaultConfig(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	appCfg, err := appConfig.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load app config: %w", err)
	}

	return &Service{
		client:    ses.NewFromConfig(cfg),
		fromEmail: appCfg.SESSenderEmail,
	}, nil
}

// SendEmail sends a basic email
func (s *Service) SendEmail(ctx context.Context, params EmailParams) (*SendEmailResult, error) {
	input := &ses.SendEmailInput{
		Source: aws.String(s.fromEmail),
		Destination: &types.Destination{
			ToAddresses: []string{params.To},
		},
		Message: &types.Message{
			Subject: &types.Content{
				Data:    aws.String(params.Subject),
				Charset: aws.String("UTF-8"),
			},
			Body: &types.Body{},
		},
	}

	if params.HTMLBody != "" {
		input.Message.Body.Html = &types.Content{
			Data:    aws.String(params.HTMLBody),
			Charset: aws.String("UTF-8"),
		}
	}

	if params.TextBody != "" {
		input.Message.Body.Text = &types.Content{
			Data:    aws.String(params.TextBody),
			Charset: aws.String("UTF-8"),
		}
	}

	if len(params.CC) > 0 {
		input.Destination.CcAddresses = params.CC
	}

	result, err := s.client.SendEmail(ctx, input)
	if err != nil {
		utils.Logger.Error("Failed to send email",
			zap.String("to", params.To),
			zap.String("subject", params.Subject),
			zap.Error(err),
		)
		return nil, fmt.Errorf("failed to send email: %w", err)
	}

	utils.Logger.Info("Email sent",
		zap.String("to", params.To),
		zap.String("message_id", aws.ToString(result.MessageId)),
	)

	return &SendEmailResult{
		MessageID: aws.ToString(result.MessageId),
		SentAt:    time.Now().UTC(),
	}, nil
}

// digestTemplate renders the daily worklist summary. Top banks are already
// sorted by eligible-now count when the view is built.
var digestTemplate = template.Must(template.New("digest").Parse(`
<html>
<body style="font-family: Arial, sans-serif; color: #222;">
	<h2>Opportunity worklist for {{.AsOf.Format "02/01/2006"}}</h2>
	<p>
		<strong>{{.Stats.EligibleNow}}</strong> contracts eligible now
		({{.Stats.PortabilityEligible}} portability, {{.Stats.RefinancingEligible}} refinancing),
		<strong>{{.Stats.EligibleSoon}}</strong> reaching eligibility within 5 days,
		<strong>{{.Stats.EligibleToday}}</strong> crossing the threshold today.
	</p>
	<p>{{.Stats.TotalMonitored}} contracts monitored in total.</p>
	<h3>Top banks</h3>
	<table border="1" cellpadding="6" cellspacing="0">
		<tr><th>Bank</th><th>Contracts</th><th>Eligible now</th><th>Soon</th><th>Potential value</th></tr>
		{{range .TopBanks}}
		<tr>
			<td>{{.BankName}}</td>
			<td>{{.TotalContracts}}</td>
			<td>{{.EligibleNow}}</td>
			<td>{{.EligibleSoon}}</td>
			<td>R$ {{printf "%.2f" .PotentialValue}}</td>
		</tr>
		{{end}}
	</table>
</body>
</html>`))

// digestData is the template payload for the worklist digest.
type digestData struct {
	AsOf     time.Time
	Stats    engine.Stats
	TopBanks []engine.BankRollup
}

// SendWorklistDigest emails the aggregate opportunity summary to the sales
// team. At most the top 10 banks are included.
func (s *Service) SendWorklistDigest(ctx context.Context, to string, view *engine.OpportunityView) (*SendEmailResult, error) {
	topBanks := view.ByBank
	if len(topBanks) > 10 {
		topBanks = topBanks[:10]
	}

	var body bytes.Buffer
	err := digestTemplate.Execute(&body, digestData{
		AsOf:     view.AsOf,
		Stats:    view.Stats,
		TopBanks: topBanks,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to render digest: %w", err)
	}

	subject := fmt.Sprintf("Opportunity worklist: %d eligible, %d soon", view.Stats.EligibleNow, view.Stats.EligibleSoon)

	textBody := fmt.Sprintf(
		"Eligible now: %d\nEligible within 5 days: %d\nCrossing today: %d\nTotal monitored: %d\n",
		view.Stats.EligibleNow, view.Stats.EligibleSoon, view.Stats.EligibleToday, view.Stats.TotalMonitored,
	)

	return s.SendEmail(ctx, EmailParams{
		To:       to,
		Subject:  subject,
		HTMLBody: body.String(),
		TextBody: textBody,
	})
}
