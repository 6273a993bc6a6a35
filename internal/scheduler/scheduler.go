package scheduler

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"MarketLens/internal/collector"
	"MarketLens/internal/config"
	"MarketLens/internal/model"
	"MarketLens/internal/notifier"
	"MarketLens/internal/recorder"

	"github.com/robfig/cron/v3"
)

// Sender delivers a report to the chat.
type Sender interface {
	SendWithRetry(ctx context.Context, text string, maxRetries int) error
}

// Scheduler runs the configured watch jobs on their cron specs.
type Scheduler struct {
	Cron      *cron.Cron
	Collector *collector.Collector
	Notifier  Sender
	Recorder  recorder.Recorder
	Ctx       context.Context

	requests []model.Request
}

// NewScheduler creates a new Scheduler.
func NewScheduler(ctx context.Context, col *collector.Collector, n Sender, rec recorder.Recorder) *Scheduler {
	if rec == nil {
		rec = recorder.NewNoopRecorder()
	}
	return &Scheduler{
		Cron:      cron.New(cron.WithSeconds()),
		Collector: col,
		Notifier:  n,
		Recorder:  rec,
		Ctx:       ctx,
	}
}

// Register adds one cron entry per watch job.
func (s *Scheduler) Register(jobs []config.WatchJob) error {
	for i, job := range jobs {
		req, err := job.Request()
		if err != nil {
			return fmt.Errorf("watch job %d: %w", i, err)
		}
		if err := req.Validate(); err != nil {
			return fmt.Errorf("watch job %d: %w", i, err)
		}
		if _, err := s.Cron.AddFunc(job.Cron, func() { s.runJob(req) }); err != nil {
			return fmt.Errorf("register %s (%s): %w", req, job.Cron, err)
		}
		s.requests = append(s.requests, req)
		log.Printf("[INFO] registered %s at %q", req, job.Cron)
	}
	return nil
}

// Start starts the cron scheduler.
func (s *Scheduler) Start() {
	s.Cron.Start()
	log.Println("[INFO] scheduler started")
}

// Stop stops the cron scheduler gracefully.
func (s *Scheduler) Stop() {
	<-s.Cron.Stop().Done()
	log.Println("[INFO] scheduler stopped")
}

// RunAllNow executes every registered job immediately, one after another.
func (s *Scheduler) RunAllNow() {
	for _, req := range s.requests {
		s.runJob(req)
	}
}

// runJob collects req, records it and sends the report.
func (s *Scheduler) runJob(req model.Request) {
	log.Printf("[INFO] running watch job %s", req)
	fetchedAt := time.Now()

	if req.Kind == model.KindQuote {
		t := s.Collector.Loader.Load(s.Ctx, req)
		if t.Empty() {
			s.trySend(fmt.Sprintf("❌ %s: no data", req))
			return
		}
		s.record(req, t, nil, fetchedAt)
		s.trySend(notifier.FormatQuote(t))
		return
	}

	t, snap, err := s.Collector.CollectSnapshot(s.Ctx, req)
	if err != nil {
		log.Printf("[ERROR] watch job %s: %v", req, err)
		s.trySend(fmt.Sprintf("❌ %s: %v", req, err))
		return
	}
	s.record(req, t, snap, fetchedAt)
	s.trySend(notifier.FormatIndicatorReport(snap, s.Collector.Params))
}

func (s *Scheduler) record(req model.Request, t *model.Table, snap *model.IndicatorSnapshot, fetchedAt time.Time) {
	runID, err := s.Recorder.RecordSeries(&recorder.SeriesSnapshot{Table: t, Request: req, FetchedAt: fetchedAt})
	if err != nil {
		log.Printf("[ERROR] record %s: %v", req, err)
		return
	}
	if snap == nil || runID == "" {
		return
	}
	if err := s.Recorder.RecordIndicators(runID, snap); err != nil {
		log.Printf("[ERROR] record indicators %s: %v", req, err)
	}
}

const helpText = `Available commands:
• /quote SYMBOL
• /daily SYMBOL
• /weekly SYMBOL
• /monthly SYMBOL
• /weekly_adjusted SYMBOL
• /intraday SYMBOL [interval]
• /jobs`

// HandleCommand processes a chat command and returns a reply.
func (s *Scheduler) HandleCommand(command string) string {
	fields := strings.Fields(command)
	if len(fields) == 0 {
		return helpText
	}
	// Group chats address bots as /cmd@BotName.
	cmd := strings.ToLower(strings.SplitN(fields[0], "@", 2)[0])
	args := fields[1:]

	if cmd == "/jobs" {
		if len(s.requests) == 0 {
			return "no watch jobs configured"
		}
		var b strings.Builder
		b.WriteString("Watch jobs:\n")
		for _, r := range s.requests {
			b.WriteString("• " + r.String() + "\n")
		}
		return b.String()
	}

	kinds := map[string]model.SeriesKind{
		"/quote":    model.KindQuote,
		"/daily":    model.KindDaily,
		"/weekly":   model.KindWeekly,
		"/monthly":  model.KindMonthly,
		"/intraday": model.KindIntraday,

		"/weekly_adjusted": model.KindWeeklyAdjusted,
	}
	kind, ok := kinds[cmd]
	if !ok {
		return helpText
	}
	if len(args) == 0 {
		return fmt.Sprintf("usage: %s SYMBOL", cmd)
	}

	req := model.Request{Kind: kind, Symbol: strings.ToUpper(args[0])}
	if kind == model.KindIntraday && len(args) > 1 {
		req.Interval = args[1]
	}
	req = req.WithDefaults()
	if err := req.Validate(); err != nil {
		return fmt.Sprintf("❌ %v", err)
	}

	if kind == model.KindQuote {
		return notifier.FormatQuote(s.Collector.Loader.Load(s.Ctx, req))
	}
	_, snap, err := s.Collector.CollectSnapshot(s.Ctx, req)
	if err != nil {
		return fmt.Sprintf("❌ %s: %v", req, err)
	}
	return notifier.FormatIndicatorReport(snap, s.Collector.Params)
}

func (s *Scheduler) trySend(text string) {
	if s.Notifier == nil {
		log.Printf("[INFO] report (no notifier configured):\n%s", text)
		return
	}
	if err := s.Notifier.SendWithRetry(s.Ctx, text, 3); err != nil {
		log.Printf("[ERROR] send notification: %v", err)
	}
}
