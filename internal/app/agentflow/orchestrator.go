package agentflow

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/havenlabs/haven-agent/internal/app/tone"
	"github.com/havenlabs/haven-agent/internal/app/tools"
	"github.com/havenlabs/haven-agent/internal/app/triggers"
	"github.com/havenlabs/haven-agent/internal/domain"
	"github.com/havenlabs/haven-agent/internal/observability"
)

// analysisClient is the optional upgrade for LLM adapters with a native
// JSON-constrained output mode. Adapters without it get the analysis
// prompt through the plain Complete call.
type analysisClient interface {
	CompleteAnalysis(ctx context.Context, systemPrompt string, convCtx domain.ConversationContext) (string, error)
}

// Result is the outcome of one conversational turn.
type Result struct {
	Reply string
	// Degraded marks replies produced by the fallback responder because
	// the LLM collaborator failed.
	Degraded bool
	// Evaluation is set when the turn answered an assessment question.
	Evaluation *triggers.Evaluation
	// Analysis is set when the LLM risk analysis was accepted.
	Analysis *domain.TriggerAnalysis
}

// Orchestrator merges the response evaluator, the LLM risk analysis and
// the tone analyzer into the conversation flow. It mutates the session's
// phase, tracker and tone memory; the caller serializes turns per session.
type Orchestrator struct {
	llm        domain.LLMClient
	responder  domain.Responder
	assessTool tools.Tool

	questionCadence int
	analysisTimeout time.Duration
	now             func() time.Time
}

// NewOrchestrator builds the trigger orchestrator. The assessment tool may
// be nil; assessments are then simply not persisted.
func NewOrchestrator(
	llmClient domain.LLMClient,
	responder domain.Responder,
	assessTool tools.Tool,
	questionCadence int,
	analysisTimeout time.Duration,
) *Orchestrator {
	if questionCadence <= 0 {
		questionCadence = 3
	}
	if analysisTimeout <= 0 {
		analysisTimeout = 15 * time.Second
	}
	return &Orchestrator{
		llm:             llmClient,
		responder:       responder,
		assessTool:      assessTool,
		questionCadence: questionCadence,
		analysisTimeout: analysisTimeout,
		now:             time.Now,
	}
}

// Run processes one user turn. LLM failures never surface as errors: the
// turn degrades to a fallback reply instead.
func (o *Orchestrator) Run(
	ctx context.Context,
	userMessage string,
	session *domain.Session,
	convCtx domain.ConversationContext,
) Result {
	log := observability.LoggerFromContext(ctx).With("user_id", session.UserID)

	toneReading := tone.AnalyzeText(userMessage)
	mem := tone.NewMemory(&session.Tone)
	mem.AddTemporary(toneReading, o.now())
	if toneReading.Confidence != domain.ConfidenceLow {
		mem.Add(toneReading, o.now())
	}
	trend := mem.EmotionalTrend(true)
	toneFragment := tone.Respond(toneReading, trend)

	log.Info("turn started",
		"phase", session.Phase,
		"tone", toneReading.PrimaryEmotion,
		"tone_intensity", toneReading.Intensity)

	if session.Phase == domain.PhaseAwaitingAnswer {
		return o.runQuestionMode(ctx, userMessage, session, convCtx, toneFragment, log)
	}
	return o.runNormalMode(ctx, userMessage, session, convCtx, toneFragment, log)
}

// runQuestionMode evaluates the user's answer to the pending question.
func (o *Orchestrator) runQuestionMode(
	ctx context.Context,
	userMessage string,
	session *domain.Session,
	convCtx domain.ConversationContext,
	toneFragment string,
	log interface{ Info(string, ...any) },
) Result {
	q, ok := triggers.QuestionByID(session.PendingQuestionID)
	if !ok {
		// Pending question vanished from the catalog (deploy skew);
		// recover to idle rather than getting stuck.
		session.Phase = domain.PhaseIdle
		session.PendingQuestionID = ""
		session.ClarifyCount = 0
		return o.runNormalMode(ctx, userMessage, session, convCtx, toneFragment, log)
	}

	ev := triggers.Evaluate(userMessage, *q)
	tracker := triggers.NewTracker(&session.Tracker)

	log.Info("answer evaluated",
		"question_id", q.ID,
		"confidence", ev.Confidence,
		"conclusive", ev.Triggered != nil)

	if ev.Triggered == nil {
		// Inconclusive: re-prompt once, then let the conversation move on.
		if session.ClarifyCount == 0 {
			session.ClarifyCount = 1
			return Result{
				Reply:      "I'd like to understand better. Could you tell me more about how you feel in those situations?",
				Evaluation: &ev,
			}
		}
		session.Phase = domain.PhaseIdle
		session.PendingQuestionID = ""
		session.ClarifyCount = 0
		return Result{
			Reply:      "That's okay, we can come back to this another time. What else is on your mind today?",
			Evaluation: &ev,
		}
	}

	tracker.MarkAnswered(q.ID)
	session.Phase = domain.PhaseIdle
	session.PendingQuestionID = ""
	session.ClarifyCount = 0
	o.recordEvaluation(ctx, session, ev)

	var reply string
	if *ev.Triggered {
		strategies := triggers.StrategiesFor(ev.Category)
		reply = fmt.Sprintf(
			"I understand that %s can be challenging. Here are some strategies that might help:\n\n%s\n\nHow are you feeling about this?",
			ev.CategoryName, strings.Join(strategies, "\n\n"))
	} else {
		reply = fmt.Sprintf(
			"That's great! It sounds like you're handling %s well. What other areas of your recovery would you like to discuss?",
			ev.CategoryName)
	}

	if toneFragment != "" {
		reply = toneFragment + "\n\n" + reply
	}
	return Result{Reply: reply, Evaluation: &ev}
}

// runNormalMode asks the LLM for a risk analysis, branches on it, and
// drives the proactive question cadence.
func (o *Orchestrator) runNormalMode(
	ctx context.Context,
	userMessage string,
	session *domain.Session,
	convCtx domain.ConversationContext,
	toneFragment string,
	log interface{ Info(string, ...any) },
) Result {
	session.UserTurns++

	analysis, err := o.analyzeTriggers(ctx, convCtx)
	if err != nil {
		log.Info("trigger analysis unavailable, degrading", "error", err.Error())
		return o.degrade(userMessage)
	}

	res := Result{}
	accepted := analysis.TriggerDetected && analysis.Confidence != domain.ConfidenceLow
	if accepted {
		res.Analysis = analysis
		o.recordAnalysis(ctx, session, analysis)

		switch analysis.NextAction {
		case domain.ActionSupport:
			res.Reply = analysis.SupportMessage
		case domain.ActionQuestion:
			res.Reply = analysis.SuggestedQuestion
		}
	}

	if res.Reply == "" {
		reply, err := o.llm.Complete(ctx, companionSystemPrompt, convCtx)
		if err != nil {
			log.Info("chat completion failed, degrading", "error", err.Error())
			return o.degrade(userMessage)
		}
		if toneFragment != "" {
			reply = toneFragment + "\n\n" + reply
		}
		res.Reply = reply
	}

	if accepted && (analysis.TriggerIntensity == domain.IntensityMedium || analysis.TriggerIntensity == domain.IntensityHigh) {
		strategies := triggers.StrategiesFor(analysis.TriggerCategory)
		res.Reply += fmt.Sprintf(
			"\n\nI noticed this might relate to %s. Some strategies that can help:\n\n%s",
			triggers.CategoryNames[analysis.TriggerCategory], strings.Join(strategies, "\n\n"))
	}

	// Proactive assessment sweep: every Nth user turn, pose the next
	// unasked question. Tracker exhaustion simply skips the step.
	if session.UserTurns%o.questionCadence == 0 {
		tracker := triggers.NewTracker(&session.Tracker)
		if q := tracker.NextQuestion(); q != nil {
			session.Phase = domain.PhaseAwaitingAnswer
			session.PendingQuestionID = q.ID
			session.ClarifyCount = 0
			res.Reply += "\n\nI'd like to understand your triggers better. " + q.Text
			log.Info("proactive question posed", "question_id", q.ID)
		}
	}

	return res
}

// analyzeTriggers calls the LLM with a hard timeout and parses the
// structured result defensively.
func (o *Orchestrator) analyzeTriggers(ctx context.Context, convCtx domain.ConversationContext) (*domain.TriggerAnalysis, error) {
	actx, cancel := context.WithTimeout(ctx, o.analysisTimeout)
	defer cancel()

	var (
		raw string
		err error
	)
	if ac, ok := o.llm.(analysisClient); ok {
		raw, err = ac.CompleteAnalysis(actx, triggerAnalysisSystemPrompt, convCtx)
	} else {
		raw, err = o.llm.Complete(actx, triggerAnalysisSystemPrompt, convCtx)
	}
	if err != nil {
		return nil, err
	}
	return parseAnalysis(raw)
}

// degrade produces the fallback reply for a turn the LLM could not serve.
func (o *Orchestrator) degrade(userMessage string) Result {
	reply := o.responder.Respond(userMessage)
	return Result{
		Reply:    reply.Text,
		Degraded: true,
	}
}

func (o *Orchestrator) recordEvaluation(ctx context.Context, session *domain.Session, ev triggers.Evaluation) {
	if o.assessTool == nil {
		return
	}
	tctx := tools.ToolContext{
		UserID:    string(session.UserID),
		SessionID: string(session.ID),
	}
	// The assessment record is best-effort; a store hiccup must not break
	// the turn.
	_, _ = o.assessTool.Call(ctx, tctx, map[string]any{
		"category":      string(ev.Category),
		"category_name": ev.CategoryName,
		"triggered":     ev.Triggered,
		"confidence":    string(ev.Confidence),
		"reasoning":     ev.Reasoning,
		"source":        "question",
	})
}

func (o *Orchestrator) recordAnalysis(ctx context.Context, session *domain.Session, a *domain.TriggerAnalysis) {
	if o.assessTool == nil {
		return
	}
	tctx := tools.ToolContext{
		UserID:    string(session.UserID),
		SessionID: string(session.ID),
	}
	_, _ = o.assessTool.Call(ctx, tctx, map[string]any{
		"category":      string(a.TriggerCategory),
		"category_name": triggers.CategoryNames[a.TriggerCategory],
		"triggered":     a.TriggerDetected,
		"confidence":    string(a.Confidence),
		"intensity":     string(a.TriggerIntensity),
		"reasoning":     a.Reasoning,
		"source":        "analysis",
	})
}
