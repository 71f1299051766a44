package identity

import (
	"context"
	"sync"

	"github.com/secmon-lab/leetwatch/pkg/domain/model"
	"github.com/secmon-lab/leetwatch/pkg/utils/async"
)

type subscriber struct {
	handler   func(*model.Account)
	delivered bool
	last      *model.Account
}

// observable holds the signed-in account and notifies subscribers once per
// transition (signed out, signed in, or switched account). Deliveries are
// serialized and always carry the latest state, so a subscriber never sees
// an older state after a newer one. Handlers must not sign in or out.
type observable struct {
	mu          sync.Mutex
	current     *model.Account
	subscribers map[int]*subscriber
	nextID      int

	notifyMu sync.Mutex
}

func newObservable() *observable {
	return &observable{
		subscribers: make(map[int]*subscriber),
	}
}

func (o *observable) Current() *model.Account {
	o.mu.Lock()
	defer o.mu.Unlock()
	return copyAccount(o.current)
}

func (o *observable) Subscribe(handler func(*model.Account)) func() {
	sub := &subscriber{handler: handler}

	o.mu.Lock()
	id := o.nextID
	o.nextID++
	o.subscribers[id] = sub
	o.mu.Unlock()

	async.Dispatch(context.Background(), "identity_initial_state", func(ctx context.Context) error {
		o.notifyMu.Lock()
		defer o.notifyMu.Unlock()

		if !o.isSubscribed(id) {
			return nil
		}
		current := o.Current()
		sub.delivered = true
		sub.last = current
		sub.handler(copyAccount(current))
		return nil
	})

	return func() {
		o.mu.Lock()
		defer o.mu.Unlock()
		delete(o.subscribers, id)
	}
}

func (o *observable) set(account *model.Account) {
	o.mu.Lock()
	o.current = copyAccount(account)
	o.mu.Unlock()

	o.notifyMu.Lock()
	defer o.notifyMu.Unlock()

	current := o.Current()
	for _, sub := range o.activeSubscribers() {
		// the pending initial delivery will report the latest state
		if !sub.delivered || sameAccount(sub.last, current) {
			continue
		}
		sub.last = current
		sub.handler(copyAccount(current))
	}
}

func (o *observable) isSubscribed(id int) bool {
	o.mu.Lock()
	defer o.mu.Unlock()
	_, ok := o.subscribers[id]
	return ok
}

func (o *observable) activeSubscribers() []*subscriber {
	o.mu.Lock()
	defer o.mu.Unlock()

	subs := make([]*subscriber, 0, len(o.subscribers))
	for id := 0; id < o.nextID; id++ {
		if sub, ok := o.subscribers[id]; ok {
			subs = append(subs, sub)
		}
	}
	return subs
}

func sameAccount(a, b *model.Account) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return a.ID == b.ID
}

func copyAccount(a *model.Account) *model.Account {
	if a == nil {
		return nil
	}
	c := *a
	return &c
}
