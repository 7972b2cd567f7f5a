package bot

import (
	"context"
	"errors"
	"fmt"
	"github.com/asaskevich/EventBus"
	botApi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/maxaizer/jobscout/internal/domain/events"
	"github.com/maxaizer/jobscout/internal/domain/models"
	"github.com/maxaizer/jobscout/internal/logger"
	"github.com/maxaizer/jobscout/internal/services"
	log "github.com/sirupsen/logrus"
	"strconv"
	"strings"
)

const (
	defaultTopLimit = 10
	maxTopLimit     = 50
)

type sender interface {
	Send(c botApi.Chattable) (botApi.Message, error)
}

type rankedJobs interface {
	List(ctx context.Context, filter models.RankFilter) ([]models.JobRecord, error)
}

type jobActions interface {
	ForceRescore(ctx context.Context, id string) (services.Outcome, error)
	AnalyzeJob(ctx context.Context, id string) (models.Analysis, error)
}

// Bot pushes high-scoring jobs to a single chat and answers a few commands
// from that chat.
type Bot struct {
	api      *botApi.BotAPI
	sender   sender
	chatID   int64
	minScore float64
	ranking  rankedJobs
	actions  jobActions
}

func NewBot(token string, chatID int64, minScore float64, bus EventBus.Bus, ranking rankedJobs, actions jobActions) (*Bot, error) {

	api, err := botApi.NewBotAPI(token)
	if err != nil {
		return nil, err
	}
	log.Infof("Authorized on account %s", api.Self.UserName)

	err = botApi.SetLogger(log.StandardLogger())
	if err != nil {
		return nil, err
	}

	b, err := newBot(api, chatID, minScore, bus, ranking, actions)
	if err != nil {
		return nil, err
	}
	b.api = api
	return b, nil
}

func newBot(sender sender, chatID int64, minScore float64, bus EventBus.Bus, ranking rankedJobs, actions jobActions) (*Bot, error) {

	if bus == nil {
		return nil, errors.New("bus is nil")
	}
	if ranking == nil || actions == nil {
		return nil, errors.New("ranking and job actions are required")
	}

	b := &Bot{sender: sender, chatID: chatID, minScore: minScore, ranking: ranking, actions: actions}

	if err := bus.SubscribeAsync(events.JobScoredTopic, b.onJobScored, false); err != nil {
		return nil, err
	}
	return b, nil
}

func (b *Bot) Run(ctx context.Context) {

	updateConfig := botApi.NewUpdate(0)
	updateConfig.Timeout = 60

	updates := b.api.GetUpdatesChan(updateConfig)

	for update := range updates {

		if update.Message == nil || update.Message.Chat == nil {
			continue
		}
		if update.Message.Chat.ID != b.chatID {
			continue
		}

		go b.handleMessage(ctx, update.Message)
	}
}

func (b *Bot) Stop() {
	if b.api != nil {
		b.api.StopReceivingUpdates()
	}
}

func (b *Bot) handleMessage(ctx context.Context, message *botApi.Message) {

	text := b.handleCommand(ctx, message.Command(), strings.TrimSpace(message.CommandArguments()))
	b.send(botApi.NewMessage(message.Chat.ID, text))
}

func (b *Bot) handleCommand(ctx context.Context, command, args string) string {

	switch command {
	case "start", "help":
		return "Commands:\n/top [n] - best ranked jobs\n/rescore <id> - rescreen and rescore a job\n/analyze <id> - deep analysis of a job"
	case "top":
		return b.top(ctx, args)
	case "rescore":
		if args == "" {
			return "Usage: /rescore <id>"
		}
		outcome, err := b.actions.ForceRescore(ctx, args)
		if err != nil {
			log.Errorf("rescore of %s failed: %v", args, err)
			return fmt.Sprintf("Rescore failed: %v", err)
		}
		return fmt.Sprintf("Job %s: %s", args, outcome)
	case "analyze":
		if args == "" {
			return "Usage: /analyze <id>"
		}
		analysis, err := b.actions.AnalyzeJob(ctx, args)
		if err != nil {
			log.Errorf("analysis of %s failed: %v", args, err)
			return fmt.Sprintf("Analysis failed: %v", err)
		}
		return formatAnalysis(args, analysis)
	default:
		return "Unknown command!"
	}
}

func (b *Bot) top(ctx context.Context, args string) string {

	limit := defaultTopLimit
	if args != "" {
		n, err := strconv.Atoi(args)
		if err != nil || n < 1 {
			return "Usage: /top [n]"
		}
		limit = min(n, maxTopLimit)
	}

	records, err := b.ranking.List(ctx, models.RankFilter{Limit: limit})
	if err != nil {
		log.WithField(logger.ErrorTypeField, logger.ErrorTypeDb).Errorf("failed to list ranked jobs: %v", err)
		return "Internal error!"
	}
	if len(records) == 0 {
		return "No scored jobs yet."
	}

	var sb strings.Builder
	for i, r := range records {
		fmt.Fprintf(&sb, "%d. %.2f %s at %s\n%s\nid: %s\n", i+1, r.FinalScore, r.Title, r.Company, r.URL, r.ID)
	}
	return strings.TrimSpace(sb.String())
}

func (b *Bot) onJobScored(event events.JobScored) {

	if event.Rescored || event.IsAggregator || event.FinalScore < b.minScore {
		return
	}

	text := fmt.Sprintf("New match %.2f: %s at %s", event.FinalScore, event.Title, event.Company)
	if event.Location != "" {
		text += " (" + event.Location + ")"
	}
	text += "\n" + event.URL + "\nid: " + event.ID

	b.send(botApi.NewMessage(b.chatID, text))
}

func (b *Bot) send(msg botApi.Chattable) {
	if _, err := b.sender.Send(msg); err != nil {
		log.WithField(logger.ErrorTypeField, logger.ErrorTypeTgApi).Errorf("error occured while sending message: %v", err)
	}
}

func formatAnalysis(id string, analysis models.Analysis) string {

	verdict := "skip"
	if analysis.ShouldApply {
		verdict = "apply"
	}

	text := fmt.Sprintf("Job %s: qualification %d, %s", id, analysis.QualificationScore, verdict)
	if len(analysis.Strengths) > 0 {
		text += "\nStrengths: " + strings.Join(analysis.Strengths, ", ")
	}
	if len(analysis.Gaps) > 0 {
		text += "\nGaps: " + strings.Join(analysis.Gaps, ", ")
	}
	if analysis.Recommendation != "" {
		text += "\n" + analysis.Recommendation
	}
	return text
}
