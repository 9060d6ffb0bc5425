package oj

import (
	"context"

	"ojclient/internal/api"
	"ojclient/internal/client/poll"
	"ojclient/internal/judge/report"
	"ojclient/pkg/utils/logger"

	"go.uber.org/zap"
)

func (c *Client) pollOptions() []poll.Option {
	return []poll.Option{
		poll.WithInterval(c.cfg.PollInterval),
		poll.WithMaxAttempts(c.cfg.PollMaxAttempts),
	}
}

// RunCustomTest starts a custom test and polls until its report is available.
func (c *Client) RunCustomTest(ctx context.Context, form api.CustomTestForm) (*report.TaskReport, error) {
	msg, err := c.StartCustomTest(ctx, form)
	if err != nil {
		return nil, err
	}
	logger.Debug(ctx, "custom test started", zap.String("lang", string(form.Lang)), zap.String("reply", msg))
	return poll.Until(ctx, func(ctx context.Context) (*report.TaskReport, error) {
		res, err := c.CustomTestResult(ctx)
		if err != nil {
			return nil, err
		}
		return res.Result, nil
	}, c.pollOptions()...)
}

// WaitJudged polls the detail of sid until phase has been reported.
func (c *Client) WaitJudged(ctx context.Context, sid uint64, phase report.Phase) (*report.SubmissionDetail, error) {
	return poll.Until(ctx, func(ctx context.Context) (*report.SubmissionDetail, error) {
		detail, err := c.SubmissionDetail(ctx, sid)
		if err != nil {
			return nil, err
		}
		if detail.Report().Phase(phase) == nil {
			return nil, nil
		}
		return &detail, nil
	}, c.pollOptions()...)
}
