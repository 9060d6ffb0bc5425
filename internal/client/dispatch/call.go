package dispatch

import (
	"context"

	"ojclient/internal/api"
	"ojclient/pkg/utils/contextkey"
	"ojclient/pkg/utils/logger"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Call issues one request and returns the decoded answer. The shared fetching flag of
// the endpoint stays raised until the call settles.
func Call[P, R any](ctx context.Context, d *Dispatcher, e api.Endpoint[P, R], payload P) (R, error) {
	flag := d.Flag(e.Signature())
	flag.start()
	defer flag.done()
	return send(ctx, d, e, payload)
}

func send[P, R any](ctx context.Context, d *Dispatcher, e api.Endpoint[P, R], payload P) (R, error) {
	sig := e.Signature()
	ctx = callContext(ctx, sig)

	var zero R
	req, err := encodeRequest(sig, payload)
	if err != nil {
		return zero, err
	}
	resp, err := d.sender.Do(ctx, req)
	if err != nil {
		return zero, err
	}
	out, err := decodeResponse[R](resp)
	if err != nil {
		logger.Debug(ctx, "call failed", zap.Int("status", resp.StatusCode), zap.Error(err))
		return zero, err
	}
	return out, nil
}

func callContext(ctx context.Context, sig api.Signature) context.Context {
	ctx = context.WithValue(ctx, contextkey.Signature, sig.Key())
	if id, _ := ctx.Value(contextkey.RequestID).(string); id == "" {
		ctx = context.WithValue(ctx, contextkey.RequestID, uuid.NewString())
	}
	return ctx
}
