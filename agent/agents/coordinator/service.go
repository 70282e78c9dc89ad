package coordinator

import (
	"context"
	"errors"
	"time"

	"github.com/cloudwego/eino/compose"
	"github.com/rs/zerolog/log"

	contractx "github.com/verdanthealth/wellness-agent/agent/contract"
	nodex "github.com/verdanthealth/wellness-agent/agent/nodes/coordinator"
	statex "github.com/verdanthealth/wellness-agent/agent/state"
)

var (
	ErrInvalidText    = nodex.ErrInvalidText
	ErrInvalidSession = nodex.ErrInvalidSession
)

const (
	defaultHistoryLimit = 40

	refusalReply     = "I can't share that information with your current role."
	unavailableReply = "Something went wrong on our side. Please try again in a moment."
)

type Config struct {
	HistoryLimit int
}

// Coordinator is the single entry point for conversational requests. It owns
// session resolution, role pinning, handle minting, and dispatch; handlers
// below it never see raw identity and the generator never sees denied data.
type Coordinator struct {
	store      statex.Store
	handlers   contractx.Registry
	classifier contractx.Classifier
	generator  contractx.Generator

	sequencer *statex.Sequencer

	graphRunner compose.Runnable[nodex.GraphInput, nodex.GraphOutput]

	historyLimit int
	now          func() time.Time
}

func New(
	store statex.Store,
	handlers contractx.Registry,
	classifier contractx.Classifier,
	generator contractx.Generator,
	cfg Config,
) (*Coordinator, error) {
	if store == nil {
		return nil, errors.New("session store is required")
	}
	if handlers == nil {
		return nil, errors.New("handler registry is required")
	}
	if classifier == nil {
		return nil, errors.New("classifier is required")
	}
	if generator == nil {
		return nil, errors.New("generator is required")
	}

	historyLimit := cfg.HistoryLimit
	if historyLimit <= 0 {
		historyLimit = defaultHistoryLimit
	}

	c := &Coordinator{
		store:        store,
		handlers:     handlers,
		classifier:   classifier,
		generator:    generator,
		sequencer:    statex.NewSequencer(),
		historyLimit: historyLimit,
		now:          time.Now,
	}

	graphRunner, err := c.compileHandleRequestGraph(context.Background())
	if err != nil {
		return nil, err
	}
	c.graphRunner = graphRunner

	return c, nil
}

// HandleRequest processes one request end to end. Requests for the same
// session are serialized; distinct sessions run concurrently.
//
// Privacy denials and store outages are converted to safe canned replies
// here, never phrased by the generator. Role mismatches and invalid requests
// surface as errors to the transport layer.
func (c *Coordinator) HandleRequest(ctx context.Context, req contractx.Request) (contractx.Response, error) {
	release := c.sequencer.Acquire(req.SessionID)
	defer release()

	out, err := c.graphRunner.Invoke(ctx, nodex.GraphInput{Request: req})
	if err == nil {
		return out.Response, nil
	}

	switch {
	case errors.Is(err, contractx.ErrPrivacyViolation):
		log.Warn().
			Str("session_id", req.SessionID).
			Str("claimed_role", req.ClaimedRole).
			Msg("request denied by policy")
		return contractx.Response{Text: refusalReply, SessionID: req.SessionID}, nil
	case errors.Is(err, contractx.ErrStoreUnavailable):
		log.Error().
			Str("session_id", req.SessionID).
			Err(err).
			Msg("store unavailable")
		return contractx.Response{Text: unavailableReply, SessionID: req.SessionID}, nil
	default:
		return contractx.Response{}, err
	}
}
