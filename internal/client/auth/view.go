package auth

import (
	"context"
	"sync"

	"github.com/dmitrijs2005/gophadmin/internal/client/models"
)

// Subscribe returns a channel of view changes. Each subscriber holds at most
// one undelivered view; a slow reader only sees the latest.
func (r *Reconciler) Subscribe() (<-chan models.AuthView, func()) {
	ch := make(chan models.AuthView, 1)

	r.subMu.Lock()
	id := r.nextSub
	r.nextSub++
	r.subs[id] = ch
	r.subMu.Unlock()

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			r.subMu.Lock()
			delete(r.subs, id)
			close(ch)
			r.subMu.Unlock()
		})
	}
}

// publish derives the view and hands it to subscribers if it changed.
func (r *Reconciler) publish(ctx context.Context) models.AuthView {
	v := r.View(ctx)

	r.subMu.Lock()
	defer r.subMu.Unlock()

	if r.last != nil && sameView(*r.last, v) {
		return v
	}
	r.last = &v

	for _, ch := range r.subs {
		select {
		case ch <- v:
		default:
			select {
			case <-ch:
			default:
			}
			select {
			case ch <- v:
			default:
			}
		}
	}
	return v
}

func sameView(a, b models.AuthView) bool {
	return a.IsAuthenticated == b.IsAuthenticated &&
		a.IsLoading == b.IsLoading &&
		a.State == b.State &&
		a.User.Equal(b.User)
}
