package service

import (
	"context"
	"fmt"
	"time"

	"finance_tracker/internal/logger"
	"finance_tracker/internal/model"
	"finance_tracker/internal/queue"
	"finance_tracker/internal/repository"

	"go.uber.org/zap"
)

const publishTimeout = 3 * time.Second

// AdvisorService runs the advisor request lifecycle. A request starts pending
// and moves once, to approved or declined. Approval is the only operation that
// sets a user's assigned advisor.
type AdvisorService interface {
	ListAvailable(ctx context.Context) ([]model.AdvisorSummary, error)
	RequestAdvisor(ctx context.Context, caller model.Caller, req model.CreateAdvisorRequest) (*model.AdvisorRequest, error)
	Status(ctx context.Context, caller model.Caller) (*model.AdvisorStatus, error)
	Cancel(ctx context.Context, caller model.Caller, requestID string) error
	ListRequests(ctx context.Context, caller model.Caller, status string) ([]model.AdvisorRequest, error)
	Respond(ctx context.Context, caller model.Caller, requestID, action string) (*model.AdvisorRequest, error)
	ListClients(ctx context.Context, caller model.Caller, advisorID string) ([]model.User, error)
}

type advisorService struct {
	users     repository.UserRepository
	requests  repository.AdvisorRequestRepository
	publisher queue.Publisher
	now       func() time.Time
}

// NewAdvisorService creates a new AdvisorService
func NewAdvisorService(users repository.UserRepository, requests repository.AdvisorRequestRepository, publisher queue.Publisher) AdvisorService {
	return &advisorService{users: users, requests: requests, publisher: publisher, now: time.Now}
}

func (s *advisorService) ListAvailable(ctx context.Context) ([]model.AdvisorSummary, error) {
	advisors, err := s.users.ListAdvisors(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list advisors: %w", err)
	}
	out := make([]model.AdvisorSummary, 0, len(advisors))
	for i := range advisors {
		if advisors[i].AdvisorProfile.AcceptsClients() {
			out = append(out, advisors[i].AdvisorSummary())
		}
	}
	return out, nil
}

func (s *advisorService) RequestAdvisor(ctx context.Context, caller model.Caller, req model.CreateAdvisorRequest) (*model.AdvisorRequest, error) {
	userID, err := model.ParseID(caller.UserID)
	if err != nil {
		return nil, err
	}
	if req.AdvisorID == "" {
		return nil, ErrAdvisorIDRequired
	}
	advisorID, err := model.ParseID(req.AdvisorID)
	if err != nil {
		return nil, err
	}

	advisor, err := s.users.FindByID(ctx, advisorID)
	if err != nil {
		return nil, fmt.Errorf("failed to load advisor: %w", err)
	}
	if advisor == nil || advisor.Role != model.RoleAdvisor {
		return nil, ErrAdvisorNotFound
	}
	if !advisor.AdvisorProfile.AcceptsClients() {
		return nil, ErrAdvisorNotAccepting
	}

	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to load user: %w", err)
	}
	if user == nil {
		return nil, ErrUserNotFound
	}
	if user.AssignedAdvisor != nil {
		return nil, ErrAdvisorAlreadyAssigned
	}

	existing, err := s.requests.FindPending(ctx, userID, advisorID)
	if err != nil {
		return nil, fmt.Errorf("failed to check pending requests: %w", err)
	}
	if existing != nil {
		return nil, ErrRequestAlreadyPending
	}

	request := &model.AdvisorRequest{
		ID:          model.NewID(),
		UserID:      userID,
		AdvisorID:   advisorID,
		Status:      model.RequestPending,
		Message:     req.Message,
		RequestedAt: s.now().UTC(),
	}
	if err := s.requests.Create(ctx, request); err != nil {
		return nil, fmt.Errorf("failed to create advisor request: %w", err)
	}

	s.publish(ctx, queue.AdvisorRequestCreatedQueue, request, 0)
	return request, nil
}

func (s *advisorService) Status(ctx context.Context, caller model.Caller) (*model.AdvisorStatus, error) {
	userID, err := model.ParseID(caller.UserID)
	if err != nil {
		return nil, err
	}
	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to load user: %w", err)
	}
	if user == nil {
		return nil, ErrUserNotFound
	}

	status := &model.AdvisorStatus{}
	if user.AssignedAdvisor != nil {
		advisor, err := s.users.FindByID(ctx, *user.AssignedAdvisor)
		if err != nil {
			return nil, fmt.Errorf("failed to load assigned advisor: %w", err)
		}
		if advisor != nil {
			summary := advisor.AdvisorSummary()
			status.AssignedAdvisor = &summary
		}
	}

	pending, err := s.requests.List(ctx, repository.AdvisorRequestFilter{UserID: userID, Status: model.RequestPending})
	if err != nil {
		return nil, fmt.Errorf("failed to list pending requests: %w", err)
	}
	status.PendingRequests = pending
	return status, nil
}

// Cancel deletes a request the caller made, as long as it is still pending.
func (s *advisorService) Cancel(ctx context.Context, caller model.Caller, requestID string) error {
	userID, err := model.ParseID(caller.UserID)
	if err != nil {
		return err
	}
	requestID, err = model.ParseID(requestID)
	if err != nil {
		return err
	}
	deleted, err := s.requests.DeletePending(ctx, requestID, userID)
	if err != nil {
		return fmt.Errorf("failed to cancel advisor request: %w", err)
	}
	if !deleted {
		return ErrRequestNotFound
	}
	return nil
}

func (s *advisorService) ListRequests(ctx context.Context, caller model.Caller, status string) ([]model.AdvisorRequest, error) {
	advisorID, err := model.ParseID(caller.UserID)
	if err != nil {
		return nil, err
	}
	filter := repository.AdvisorRequestFilter{AdvisorID: advisorID}
	if status != "" {
		filter.Status = model.RequestStatus(status)
		if !filter.Status.Valid() {
			return nil, ErrInvalidStatusFilter
		}
	}
	requests, err := s.requests.List(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to list advisor requests: %w", err)
	}
	return requests, nil
}

// Respond approves or declines a pending request addressed to the caller.
//
// Approval writes in this order: the request moves pending -> approved, then
// the user's advisor is set only if still unset, then the user's other pending
// requests are declined. Each step is a conditional write, so when two
// advisors approve the same user at once exactly one assignment lands. The
// loser's request is moved to declined and the call fails with a conflict.
func (s *advisorService) Respond(ctx context.Context, caller model.Caller, requestID, action string) (*model.AdvisorRequest, error) {
	advisorID, err := model.ParseID(caller.UserID)
	if err != nil {
		return nil, err
	}
	if action != model.ActionApprove && action != model.ActionDecline {
		return nil, ErrInvalidAction
	}
	requestID, err = model.ParseID(requestID)
	if err != nil {
		return nil, err
	}

	request, err := s.requests.FindByID(ctx, requestID)
	if err != nil {
		return nil, fmt.Errorf("failed to load advisor request: %w", err)
	}
	if request == nil || request.AdvisorID != advisorID || request.Status != model.RequestPending {
		return nil, ErrRequestNotFound
	}

	now := s.now().UTC()
	if action == model.ActionDecline {
		if err := s.transition(ctx, request, model.RequestDeclined, now); err != nil {
			return nil, err
		}
		s.publish(ctx, queue.AdvisorRequestRespondedQueue, request, 0)
		return request, nil
	}

	if err := s.transition(ctx, request, model.RequestApproved, now); err != nil {
		return nil, err
	}

	assigned, err := s.users.AssignAdvisor(ctx, request.UserID, advisorID)
	if err != nil || !assigned {
		s.revertApproval(ctx, request, now)
		if err != nil {
			return nil, fmt.Errorf("failed to assign advisor: %w", err)
		}
		return nil, ErrClientAlreadyAssigned
	}

	declined, err := s.requests.DeclinePendingForUser(ctx, request.UserID, request.ID, now)
	if err != nil {
		// The assignment stands; leftover pending requests can no longer be
		// approved because the user is assigned.
		logger.Get().Error("failed to decline remaining advisor requests",
			zap.String("user_id", request.UserID), zap.String("request_id", request.ID), zap.Error(err))
	}

	s.publish(ctx, queue.AdvisorRequestRespondedQueue, request, declined)
	return request, nil
}

func (s *advisorService) transition(ctx context.Context, request *model.AdvisorRequest, to model.RequestStatus, at time.Time) error {
	moved, err := s.requests.Transition(ctx, request.ID, model.RequestPending, to, at)
	if err != nil {
		return fmt.Errorf("failed to update advisor request: %w", err)
	}
	if !moved {
		return ErrRequestNotFound
	}
	request.Status = to
	request.RespondedAt = &at
	return nil
}

// revertApproval declines a request whose approval could not be applied to the user.
func (s *advisorService) revertApproval(ctx context.Context, request *model.AdvisorRequest, at time.Time) {
	if _, err := s.requests.Transition(ctx, request.ID, model.RequestApproved, model.RequestDeclined, at); err != nil {
		logger.Get().Error("failed to decline unassignable request",
			zap.String("request_id", request.ID), zap.Error(err))
		return
	}
	request.Status = model.RequestDeclined
}

// ListClients returns the users assigned to an advisor. Advisors always get
// their own clients and advisorID is ignored; administrators must name one.
func (s *advisorService) ListClients(ctx context.Context, caller model.Caller, advisorID string) ([]model.User, error) {
	target := caller.UserID
	if caller.Role.Can(model.CapAdminister) {
		if advisorID == "" {
			return nil, ErrAdvisorIDRequired
		}
		target = advisorID
	}
	advisorID, err := model.ParseID(target)
	if err != nil {
		return nil, err
	}
	clients, err := s.users.ListClients(ctx, advisorID)
	if err != nil {
		return nil, fmt.Errorf("failed to list clients: %w", err)
	}
	return clients, nil
}

func (s *advisorService) publish(ctx context.Context, name string, request *model.AdvisorRequest, autoDeclined int64) {
	event := queue.AdvisorRequestEvent{
		RequestID:    request.ID,
		UserID:       request.UserID,
		AdvisorID:    request.AdvisorID,
		Status:       string(request.Status),
		AutoDeclined: autoDeclined,
		OccurredAt:   s.now().UTC().Format(time.RFC3339),
	}
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), publishTimeout)
	defer cancel()
	if err := s.publisher.Publish(ctx, name, event); err != nil {
		logger.Get().Warn("failed to publish advisor event", zap.String("queue", name), zap.Error(err))
	}
}
