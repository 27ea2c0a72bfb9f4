package monitor

import (
	"context"
	"fmt"

	"redditbot/internal/components/assert"
	"redditbot/internal/components/telemetry"
	"redditbot/internal/match"
	"redditbot/internal/reddit"
	"redditbot/internal/store"
)

const (
	report_responder_check  = "responder.check"
	report_responder_reply  = "responder.reply"
	report_responder_record = "responder.record"
	report_responder_unread = "responder.unread"
)

type PlanStatus string

const (
	PlanNoRule  PlanStatus = "no_rule"
	PlanPlanned PlanStatus = "planned"
	PlanSent    PlanStatus = "sent"
	PlanSkipped PlanStatus = "already_replied"
	PlanFailed  PlanStatus = "failed"
)

// Plan is what the responder decided (and possibly did) for one message.
type Plan struct {
	Message reddit.Message
	Rule    string
	Reply   string
	Status  PlanStatus
	Err     error
}

// Inbox is the part of the reddit client the responder uses.
//
// note: fault injection point
type Inbox interface {
	Unread(ctx context.Context, limit int) ([]reddit.Message, error)
	Reply(ctx context.Context, fullname, text string) error
	MarkRead(ctx context.Context, fullnames ...string) error
}

type replyStore interface {
	HasReplied(ctx context.Context, messageId string) (bool, error)
	RecordReply(ctx context.Context, reply store.Reply) error
}

type Responder struct {
	inbox Inbox
	rules match.Rules
	store replyStore
	tel   telemetry.API
}

// NewResponder creates a responder, `replies` may be nil.
func NewResponder(inbox Inbox, rules []match.Rule, replies replyStore, tel telemetry.API) Responder {
	assert.NotNil(inbox)
	assert.NotNil(tel)
	return Responder{
		inbox: inbox,
		rules: match.Rules(rules),
		store: replies,
		tel:   telemetry.NewScopedAPI("monitor", tel),
	}
}

// Check reads every unread message and plans a reply for each by rule.
// Replies are only sent, and messages only marked read, when send is true.
func (r Responder) Check(ctx context.Context, send bool) ([]Plan, error) {
	unread, err := r.inbox.Unread(ctx, 0)
	if err != nil {
		r.tel.ReportBroken(report_responder_check, err)
		return nil, fmt.Errorf("read inbox: %w", err)
	}
	r.tel.ReportCount(report_responder_unread, int64(len(unread)))

	plans := make([]Plan, 0, len(unread))
	for _, message := range unread {
		plan := Plan{Message: message, Status: PlanNoRule}

		rule, ok := r.rules.Reply(message.Body)
		if ok {
			plan.Rule = rule.Name
			plan.Reply = rule.Reply
			plan.Status = PlanPlanned
		}
		if !ok || !send {
			plans = append(plans, plan)
			continue
		}

		if r.store != nil {
			replied, err := r.store.HasReplied(ctx, message.Name)
			if err != nil {
				r.tel.ReportBroken(report_responder_record, err, message.Name)
				plan.Status = PlanFailed
				plan.Err = fmt.Errorf("check reply history: %w", err)
				plans = append(plans, plan)
				continue
			}
			if replied {
				// a previous run replied but failed to mark it read
				r.markRead(ctx, message.Name)
				plan.Status = PlanSkipped
				plans = append(plans, plan)
				continue
			}
		}

		err := r.inbox.Reply(ctx, message.Name, rule.Reply)
		if err != nil {
			r.tel.ReportBroken(report_responder_reply, err, message.Name)
			plan.Status = PlanFailed
			plan.Err = err
			plans = append(plans, plan)
			continue
		}
		r.markRead(ctx, message.Name)
		if r.store != nil {
			err = r.store.RecordReply(ctx, store.Reply{
				MessageID: message.Name,
				Author:    message.Author,
				Rule:      rule.Name,
				Reply:     rule.Reply,
			})
			if err != nil {
				r.tel.ReportBroken(report_responder_record, err, message.Name)
			}
		}
		plan.Status = PlanSent
		plans = append(plans, plan)
	}

	return plans, nil
}

func (r Responder) markRead(ctx context.Context, fullname string) {
	err := r.inbox.MarkRead(ctx, fullname)
	if err != nil {
		r.tel.ReportWarning(report_responder_reply, fmt.Errorf("mark read: %w", err), fullname)
	}
}
