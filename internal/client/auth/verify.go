package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/cenkalti/backoff/v5"
	"github.com/dmitrijs2005/gophadmin/internal/client/models"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

var errEmptyProfile = errors.New("profile call returned no user")

// Verify checks the session against the server and returns the view after
// the result is applied. A call made while a check is in flight waits for
// that check instead of starting another one. Failures are returned wrapped
// in ErrVerificationUnauthorized or ErrVerificationTransient; nothing is
// shown to the user.
func (r *Reconciler) Verify(ctx context.Context) (models.AuthView, error) {
	waiter := make(chan verifyResult, 1)
	if err := r.send(ctx, func(actx context.Context) { r.trigger(actx, "explicit", waiter) }); err != nil {
		return models.AuthView{}, err
	}
	select {
	case res := <-waiter:
		return res.view, res.err
	case <-r.done:
		return models.AuthView{}, ErrStopped
	case <-ctx.Done():
		return models.AuthView{}, ctx.Err()
	}
}

// Focus asks for a re-check without waiting. It is dropped when the mailbox
// is full.
func (r *Reconciler) Focus() {
	select {
	case r.mailbox <- func(ctx context.Context) { r.trigger(ctx, "focus", nil) }:
	default:
	}
}

// trigger starts a verification when there is anything to verify.
func (r *Reconciler) trigger(ctx context.Context, reason string, waiter chan verifyResult) {
	if r.cache.User() == nil && !r.credentialsPresent(ctx) {
		r.pending.Store(false)
		view := r.publish(ctx)
		if waiter != nil {
			waiter <- verifyResult{view: view}
		}
		return
	}

	if v := r.inflight; v != nil {
		if waiter != nil {
			v.waiters = append(v.waiters, waiter)
		}
		return
	}

	v := &verification{epoch: r.epoch, reason: reason}
	if waiter != nil {
		v.waiters = append(v.waiters, waiter)
	}
	r.inflight = v
	r.pending.Store(true)
	r.publish(ctx)

	r.logger.Debug(ctx, "verifying session", "trigger", reason)
	r.wg.Add(1)
	go r.verify(ctx, v)
}

func (r *Reconciler) verify(ctx context.Context, v *verification) {
	defer r.wg.Done()

	ctx, span := r.tracer.Start(ctx, "auth.verify", trace.WithAttributes(attribute.String("auth.trigger", v.reason)))
	defer span.End()

	attempts := 0
	profile, err := backoff.Retry(ctx,
		func() (*models.UserProfile, error) {
			attempts++
			p, err := r.api.GetProfile(ctx)
			if err == nil && p == nil {
				err = errEmptyProfile
			}
			if err != nil && Classify(err) == models.Unauthorized {
				return nil, backoff.Permanent(err)
			}
			return p, err
		},
		backoff.WithBackOff(backoff.NewConstantBackOff(r.opts.VerifyBackoff)),
		backoff.WithMaxTries(uint(r.opts.VerifyAttempts)),
		backoff.WithNotify(func(err error, d time.Duration) {
			r.logger.Debug(ctx, "profile check failed, retrying", "error", err, "backoff", d)
		}),
	)

	span.SetAttributes(attribute.Int("auth.attempts", attempts))
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, Classify(err).String())
	}

	apply := func(actx context.Context) { r.applyVerification(actx, v, profile, err) }
	select {
	case r.mailbox <- apply:
	case <-r.done:
	}
}

func (r *Reconciler) applyVerification(ctx context.Context, v *verification, profile *models.UserProfile, verr error) {
	if r.inflight == v {
		r.inflight = nil
	}

	err := r.settle(ctx, v, profile, verr)
	view := r.publish(ctx)
	for _, w := range v.waiters {
		w <- verifyResult{view: view, err: err}
	}
}

// settle applies a verification outcome. Results of a check started before
// the last login or logout, or arriving when the store has no credentials,
// are dropped. A failure clears credentials only when it is Unauthorized and
// no profile is cached.
func (r *Reconciler) settle(ctx context.Context, v *verification, profile *models.UserProfile, verr error) error {
	log := r.logger.With("trigger", v.reason)

	if v.epoch != r.epoch {
		log.Debug(ctx, "dropping superseded verification")
		return nil
	}
	if !r.credentialsPresent(ctx) {
		log.Debug(ctx, "dropping verification, credentials are gone")
		r.pending.Store(false)
		return nil
	}

	if verr == nil {
		if err := r.cache.Store(ctx, profile); err != nil {
			log.Error(ctx, "failed to store session profile", "error", err)
			r.pending.Store(r.cache.User() == nil)
			return fmt.Errorf("%w: %w", ErrVerificationTransient, err)
		}
		r.pending.Store(false)
		log.Debug(ctx, "session verified", "user_id", profile.ID)
		return nil
	}

	cached := r.cache.User() != nil
	kind := Classify(verr)
	switch {
	case kind == models.Unauthorized && !cached:
		log.Warn(ctx, "session rejected, clearing credentials", "error", verr)
		if err := r.creds.Clear(ctx); err != nil {
			log.Error(ctx, "failed to clear credentials", "error", err)
		}
		r.pending.Store(false)
		return fmt.Errorf("%w: %w", ErrVerificationUnauthorized, verr)
	case kind == models.Unauthorized:
		log.Warn(ctx, "session check rejected, keeping cached profile", "error", verr)
		r.pending.Store(false)
		return fmt.Errorf("%w: %w", ErrVerificationUnauthorized, verr)
	default:
		log.Warn(ctx, "session check failed", "error", verr)
		// Without a profile the view keeps "checking session" until a
		// later trigger succeeds.
		r.pending.Store(!cached)
		return fmt.Errorf("%w: %w", ErrVerificationTransient, verr)
	}
}
