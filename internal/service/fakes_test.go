package service

import (
	"context"
	"sort"
	"sync"
	"time"

	"finance_tracker/internal/model"
	"finance_tracker/internal/repository"
)

var fixedNow = time.Date(2026, 10, 7, 15, 30, 0, 0, time.UTC) // a Wednesday

func fixedClock() time.Time { return fixedNow }

type fakeUserRepo struct {
	mu    sync.Mutex
	users map[string]*model.User
}

func newFakeUserRepo(users ...*model.User) *fakeUserRepo {
	r := &fakeUserRepo{users: map[string]*model.User{}}
	for _, u := range users {
		r.users[u.ID] = u
	}
	return r
}

func (r *fakeUserRepo) Create(_ context.Context, user *model.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.Email == user.Email {
			return repository.ErrDuplicate
		}
	}
	cp := *user
	r.users[user.ID] = &cp
	return nil
}

func (r *fakeUserRepo) FindByEmail(_ context.Context, email string) (*model.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.Email == email {
			cp := *u
			return &cp, nil
		}
	}
	return nil, nil
}

func (r *fakeUserRepo) FindByID(_ context.Context, id string) (*model.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if u, ok := r.users[id]; ok {
		cp := *u
		return &cp, nil
	}
	return nil, nil
}

func (r *fakeUserRepo) ListAdvisors(_ context.Context) ([]model.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := []model.User{}
	for _, u := range r.users {
		if u.Role == model.RoleAdvisor {
			out = append(out, *u)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (r *fakeUserRepo) ListClients(_ context.Context, advisorID string) ([]model.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := []model.User{}
	for _, u := range r.users {
		if u.AssignedAdvisor != nil && *u.AssignedAdvisor == advisorID {
			out = append(out, *u)
		}
	}
	return out, nil
}

func (r *fakeUserRepo) AssignAdvisor(_ context.Context, userID, advisorID string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[userID]
	if !ok || u.AssignedAdvisor != nil {
		return false, nil
	}
	id := advisorID
	u.AssignedAdvisor = &id
	return true, nil
}

func (r *fakeUserRepo) get(id string) model.User {
	r.mu.Lock()
	defer r.mu.Unlock()
	return *r.users[id]
}

type fakeCardRepo struct {
	mu    sync.Mutex
	cards map[string]*model.Card
}

func newFakeCardRepo() *fakeCardRepo {
	return &fakeCardRepo{cards: map[string]*model.Card{}}
}

func (r *fakeCardRepo) Create(_ context.Context, card *model.Card) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *card
	r.cards[card.ID] = &cp
	return nil
}

func (r *fakeCardRepo) FindByID(_ context.Context, id string) (*model.Card, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if c, ok := r.cards[id]; ok {
		cp := *c
		return &cp, nil
	}
	return nil, nil
}

func (r *fakeCardRepo) ListByUser(_ context.Context, userID string) ([]model.Card, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := []model.Card{}
	for _, c := range r.cards {
		if c.UserID == userID {
			out = append(out, *c)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (r *fakeCardRepo) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.cards[id]; !ok {
		return repository.ErrNotFound
	}
	delete(r.cards, id)
	return nil
}

type fakeSpendingRepo struct {
	mu        sync.Mutex
	spendings []model.Spending
	queries   []model.SpendingFilter
}

func (r *fakeSpendingRepo) Create(_ context.Context, s *model.Spending) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.spendings = append(r.spendings, *s)
	return nil
}

func (r *fakeSpendingRepo) FindByUser(_ context.Context, userID string, filter model.SpendingFilter) ([]model.Spending, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.queries = append(r.queries, filter)
	out := []model.Spending{}
	for _, s := range r.spendings {
		if s.UserID != userID {
			continue
		}
		if filter.Type != "" && s.Type != filter.Type {
			continue
		}
		if !filter.Since.IsZero() && s.Date.Before(filter.Since) {
			continue
		}
		out = append(out, s)
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Date.After(out[j].Date) })
	if filter.Limit > 0 && len(out) > filter.Limit {
		out = out[:filter.Limit]
	}
	return out, nil
}

type fakeRequestRepo struct {
	mu       sync.Mutex
	requests map[string]*model.AdvisorRequest
}

func newFakeRequestRepo() *fakeRequestRepo {
	return &fakeRequestRepo{requests: map[string]*model.AdvisorRequest{}}
}

func (r *fakeRequestRepo) Create(_ context.Context, req *model.AdvisorRequest) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *req
	r.requests[req.ID] = &cp
	return nil
}

func (r *fakeRequestRepo) FindByID(_ context.Context, id string) (*model.AdvisorRequest, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if req, ok := r.requests[id]; ok {
		cp := *req
		return &cp, nil
	}
	return nil, nil
}

func (r *fakeRequestRepo) FindPending(_ context.Context, userID, advisorID string) (*model.AdvisorRequest, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, req := range r.requests {
		if req.UserID == userID && req.AdvisorID == advisorID && req.Status == model.RequestPending {
			cp := *req
			return &cp, nil
		}
	}
	return nil, nil
}

func (r *fakeRequestRepo) List(_ context.Context, filter repository.AdvisorRequestFilter) ([]model.AdvisorRequest, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := []model.AdvisorRequest{}
	for _, req := range r.requests {
		if filter.UserID != "" && req.UserID != filter.UserID {
			continue
		}
		if filter.AdvisorID != "" && req.AdvisorID != filter.AdvisorID {
			continue
		}
		if filter.Status != "" && req.Status != filter.Status {
			continue
		}
		out = append(out, *req)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].RequestedAt.After(out[j].RequestedAt) })
	return out, nil
}

func (r *fakeRequestRepo) Transition(_ context.Context, id string, from, to model.RequestStatus, at time.Time) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	req, ok := r.requests[id]
	if !ok || req.Status != from {
		return false, nil
	}
	req.Status = to
	t := at
	req.RespondedAt = &t
	return true, nil
}

func (r *fakeRequestRepo) DeclinePendingForUser(_ context.Context, userID, exceptID string, at time.Time) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var n int64
	for _, req := range r.requests {
		if req.UserID == userID && req.ID != exceptID && req.Status == model.RequestPending {
			req.Status = model.RequestDeclined
			t := at
			req.RespondedAt = &t
			n++
		}
	}
	return n, nil
}

func (r *fakeRequestRepo) DeletePending(_ context.Context, id, userID string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	req, ok := r.requests[id]
	if !ok || req.UserID != userID || req.Status != model.RequestPending {
		return false, nil
	}
	delete(r.requests, id)
	return true, nil
}

func (r *fakeRequestRepo) get(id string) model.AdvisorRequest {
	r.mu.Lock()
	defer r.mu.Unlock()
	return *r.requests[id]
}

type publishedEvent struct {
	queue string
	event any
}

type recordingPublisher struct {
	mu     sync.Mutex
	events []publishedEvent
}

func (p *recordingPublisher) Publish(_ context.Context, queue string, event any) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, publishedEvent{queue: queue, event: event})
	return nil
}

func (p *recordingPublisher) Close() error { return nil }
