package service

import (
	"context"
	"sync"
	"testing"

	"finance_tracker/internal/apperr"
	"finance_tracker/internal/model"
	"finance_tracker/internal/queue"
	"finance_tracker/internal/repository"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	clientID   = "65a1f0c2e4b0a1b2c3d4e601"
	advisorAID = "65a1f0c2e4b0a1b2c3d4e6a1"
	advisorBID = "65a1f0c2e4b0a1b2c3d4e6b2"
	advisorCID = "65a1f0c2e4b0a1b2c3d4e6c3"
)

type advisorFixture struct {
	svc       *advisorService
	users     *fakeUserRepo
	requests  *fakeRequestRepo
	published *recordingPublisher
}

func plainUser(id string, role model.Role) *model.User {
	return &model.User{ID: id, Name: id, Email: id + "@example.com", Role: role, Status: model.StatusActive, CreatedAt: fixedNow}
}

func newAdvisorFixture() advisorFixture {
	closed := false
	advisorC := plainUser(advisorCID, model.RoleAdvisor)
	advisorC.AdvisorProfile = &model.AdvisorProfile{IsAcceptingClients: &closed}

	users := newFakeUserRepo(
		plainUser(clientID, model.RoleUser),
		plainUser(advisorAID, model.RoleAdvisor),
		plainUser(advisorBID, model.RoleAdvisor),
		advisorC,
	)
	requests := newFakeRequestRepo()
	published := &recordingPublisher{}
	svc := NewAdvisorService(users, requests, published).(*advisorService)
	svc.now = fixedClock
	return advisorFixture{svc: svc, users: users, requests: requests, published: published}
}

func (f advisorFixture) request(t *testing.T, advisorID string) *model.AdvisorRequest {
	t.Helper()
	req, err := f.svc.RequestAdvisor(context.Background(), model.Caller{UserID: clientID, Role: model.RoleUser},
		model.CreateAdvisorRequest{AdvisorID: advisorID, Message: "please help"})
	require.NoError(t, err)
	return req
}

func TestAdvisorService_RequestAdvisor(t *testing.T) {
	f := newAdvisorFixture()

	req := f.request(t, advisorAID)
	assert.Equal(t, model.RequestPending, req.Status)
	assert.Equal(t, clientID, req.UserID)
	assert.Nil(t, req.RespondedAt)

	require.Len(t, f.published.events, 1)
	assert.Equal(t, queue.AdvisorRequestCreatedQueue, f.published.events[0].queue)
}

func TestAdvisorService_RequestAdvisor_Preconditions(t *testing.T) {
	f := newAdvisorFixture()
	ctx := context.Background()
	caller := model.Caller{UserID: clientID, Role: model.RoleUser}
	f.request(t, advisorAID)

	_, err := f.svc.RequestAdvisor(ctx, caller, model.CreateAdvisorRequest{AdvisorID: advisorAID})
	assert.ErrorIs(t, err, ErrRequestAlreadyPending)
	assert.Equal(t, apperr.KindConflict, apperr.KindOf(err))

	_, err = f.svc.RequestAdvisor(ctx, caller, model.CreateAdvisorRequest{AdvisorID: advisorCID})
	assert.ErrorIs(t, err, ErrAdvisorNotAccepting)

	_, err = f.svc.RequestAdvisor(ctx, caller, model.CreateAdvisorRequest{AdvisorID: clientID})
	assert.ErrorIs(t, err, ErrAdvisorNotFound)

	_, err = f.svc.RequestAdvisor(ctx, caller, model.CreateAdvisorRequest{})
	assert.ErrorIs(t, err, ErrAdvisorIDRequired)

	_, err = f.svc.RequestAdvisor(ctx, caller, model.CreateAdvisorRequest{AdvisorID: "bogus"})
	assert.ErrorIs(t, err, model.ErrInvalidIdentifier)

	pending, err := f.requests.List(ctx, repositoryFilterForUser(clientID))
	require.NoError(t, err)
	assert.Len(t, pending, 1)
}

func TestAdvisorService_RequestAdvisor_AlreadyAssigned(t *testing.T) {
	f := newAdvisorFixture()
	_, err := f.users.AssignAdvisor(context.Background(), clientID, advisorAID)
	require.NoError(t, err)

	_, err = f.svc.RequestAdvisor(context.Background(), model.Caller{UserID: clientID},
		model.CreateAdvisorRequest{AdvisorID: advisorBID})
	assert.ErrorIs(t, err, ErrAdvisorAlreadyAssigned)
}

func TestAdvisorService_Approve_AssignsAndCascades(t *testing.T) {
	f := newAdvisorFixture()
	ctx := context.Background()
	toA := f.request(t, advisorAID)
	toB := f.request(t, advisorBID)

	got, err := f.svc.Respond(ctx, model.Caller{UserID: advisorAID, Role: model.RoleAdvisor}, toA.ID, model.ActionApprove)
	require.NoError(t, err)
	assert.Equal(t, model.RequestApproved, got.Status)
	require.NotNil(t, got.RespondedAt)
	assert.Equal(t, fixedNow, *got.RespondedAt)

	user := f.users.get(clientID)
	require.NotNil(t, user.AssignedAdvisor)
	assert.Equal(t, advisorAID, *user.AssignedAdvisor)

	other := f.requests.get(toB.ID)
	assert.Equal(t, model.RequestDeclined, other.Status)
	assert.NotNil(t, other.RespondedAt)

	last := f.published.events[len(f.published.events)-1]
	assert.Equal(t, queue.AdvisorRequestRespondedQueue, last.queue)
	assert.Equal(t, int64(1), last.event.(queue.AdvisorRequestEvent).AutoDeclined)

	// Terminal: neither request can be answered again.
	_, err = f.svc.Respond(ctx, model.Caller{UserID: advisorAID}, toA.ID, model.ActionDecline)
	assert.ErrorIs(t, err, ErrRequestNotFound)
	_, err = f.svc.Respond(ctx, model.Caller{UserID: advisorBID}, toB.ID, model.ActionApprove)
	assert.ErrorIs(t, err, ErrRequestNotFound)
}

func TestAdvisorService_Decline_NoAssignment(t *testing.T) {
	f := newAdvisorFixture()
	toA := f.request(t, advisorAID)
	toB := f.request(t, advisorBID)

	got, err := f.svc.Respond(context.Background(), model.Caller{UserID: advisorAID}, toA.ID, model.ActionDecline)
	require.NoError(t, err)
	assert.Equal(t, model.RequestDeclined, got.Status)
	assert.Nil(t, f.users.get(clientID).AssignedAdvisor)
	assert.Equal(t, model.RequestPending, f.requests.get(toB.ID).Status)
}

func TestAdvisorService_Respond_WrongAdvisorOrAction(t *testing.T) {
	f := newAdvisorFixture()
	toA := f.request(t, advisorAID)

	_, err := f.svc.Respond(context.Background(), model.Caller{UserID: advisorBID}, toA.ID, model.ActionApprove)
	assert.ErrorIs(t, err, ErrRequestNotFound)

	_, err = f.svc.Respond(context.Background(), model.Caller{UserID: advisorAID}, toA.ID, "maybe")
	assert.ErrorIs(t, err, ErrInvalidAction)

	assert.Equal(t, model.RequestPending, f.requests.get(toA.ID).Status)
}

func TestAdvisorService_Approve_LoserIsDeclined(t *testing.T) {
	f := newAdvisorFixture()
	toA := f.request(t, advisorAID)
	toB := f.request(t, advisorBID)

	// Another approval already assigned the user, but the cascade has not yet
	// reached this request.
	_, err := f.users.AssignAdvisor(context.Background(), clientID, advisorAID)
	require.NoError(t, err)

	_, err = f.svc.Respond(context.Background(), model.Caller{UserID: advisorBID}, toB.ID, model.ActionApprove)
	assert.ErrorIs(t, err, ErrClientAlreadyAssigned)
	assert.Equal(t, model.RequestDeclined, f.requests.get(toB.ID).Status)
	assert.Equal(t, advisorAID, *f.users.get(clientID).AssignedAdvisor)
	assert.Equal(t, model.RequestPending, f.requests.get(toA.ID).Status)
}

func TestAdvisorService_ConcurrentApprovals(t *testing.T) {
	f := newAdvisorFixture()
	toA := f.request(t, advisorAID)
	toB := f.request(t, advisorBID)

	var wg sync.WaitGroup
	errs := make([]error, 2)
	for i, pair := range [][2]string{{advisorAID, toA.ID}, {advisorBID, toB.ID}} {
		wg.Add(1)
		go func(i int, advisorID, requestID string) {
			defer wg.Done()
			_, errs[i] = f.svc.Respond(context.Background(), model.Caller{UserID: advisorID}, requestID, model.ActionApprove)
		}(i, pair[0], pair[1])
	}
	wg.Wait()

	succeeded := 0
	for _, err := range errs {
		if err == nil {
			succeeded++
		}
	}
	assert.Equal(t, 1, succeeded)

	user := f.users.get(clientID)
	require.NotNil(t, user.AssignedAdvisor)
	a, b := f.requests.get(toA.ID), f.requests.get(toB.ID)
	approved := a
	if b.Status == model.RequestApproved {
		approved = b
	}
	assert.Equal(t, model.RequestApproved, approved.Status)
	assert.Equal(t, approved.AdvisorID, *user.AssignedAdvisor)
	assert.NotEqual(t, a.Status, b.Status)
}

func TestAdvisorService_Cancel(t *testing.T) {
	f := newAdvisorFixture()
	ctx := context.Background()
	toA := f.request(t, advisorAID)

	assert.ErrorIs(t, f.svc.Cancel(ctx, model.Caller{UserID: advisorAID}, toA.ID), ErrRequestNotFound)
	require.NoError(t, f.svc.Cancel(ctx, model.Caller{UserID: clientID}, toA.ID))
	assert.ErrorIs(t, f.svc.Cancel(ctx, model.Caller{UserID: clientID}, toA.ID), ErrRequestNotFound)

	toB := f.request(t, advisorBID)
	_, err := f.svc.Respond(ctx, model.Caller{UserID: advisorBID}, toB.ID, model.ActionDecline)
	require.NoError(t, err)
	assert.ErrorIs(t, f.svc.Cancel(ctx, model.Caller{UserID: clientID}, toB.ID), ErrRequestNotFound)
}

func TestAdvisorService_StatusAndListings(t *testing.T) {
	f := newAdvisorFixture()
	ctx := context.Background()
	client := model.Caller{UserID: clientID, Role: model.RoleUser}
	toA := f.request(t, advisorAID)
	f.request(t, advisorBID)

	status, err := f.svc.Status(ctx, client)
	require.NoError(t, err)
	assert.Nil(t, status.AssignedAdvisor)
	assert.Len(t, status.PendingRequests, 2)

	available, err := f.svc.ListAvailable(ctx)
	require.NoError(t, err)
	assert.Len(t, available, 2)

	inbox, err := f.svc.ListRequests(ctx, model.Caller{UserID: advisorAID}, "pending")
	require.NoError(t, err)
	assert.Len(t, inbox, 1)
	_, err = f.svc.ListRequests(ctx, model.Caller{UserID: advisorAID}, "archived")
	assert.ErrorIs(t, err, ErrInvalidStatusFilter)

	_, err = f.svc.Respond(ctx, model.Caller{UserID: advisorAID}, toA.ID, model.ActionApprove)
	require.NoError(t, err)

	status, err = f.svc.Status(ctx, client)
	require.NoError(t, err)
	require.NotNil(t, status.AssignedAdvisor)
	assert.Equal(t, advisorAID, status.AssignedAdvisor.ID)
	assert.Empty(t, status.PendingRequests)

	clients, err := f.svc.ListClients(ctx, model.Caller{UserID: advisorAID, Role: model.RoleAdvisor}, "")
	require.NoError(t, err)
	require.Len(t, clients, 1)
	assert.Equal(t, clientID, clients[0].ID)
}

func TestAdvisorService_ListClients_ByRole(t *testing.T) {
	f := newAdvisorFixture()
	ctx := context.Background()
	toA := f.request(t, advisorAID)
	_, err := f.svc.Respond(ctx, model.Caller{UserID: advisorAID, Role: model.RoleAdvisor}, toA.ID, model.ActionApprove)
	require.NoError(t, err)

	admin := model.Caller{UserID: "65a1f0c2e4b0a1b2c3d4e6ff", Role: model.RoleAdmin}
	clients, err := f.svc.ListClients(ctx, admin, advisorAID)
	require.NoError(t, err)
	require.Len(t, clients, 1)
	assert.Equal(t, clientID, clients[0].ID)

	_, err = f.svc.ListClients(ctx, admin, "")
	assert.ErrorIs(t, err, ErrAdvisorIDRequired)
	_, err = f.svc.ListClients(ctx, admin, "nope")
	assert.ErrorIs(t, err, model.ErrInvalidIdentifier)

	// an advisor cannot look at another advisor's clients
	clients, err = f.svc.ListClients(ctx, model.Caller{UserID: advisorBID, Role: model.RoleAdvisor}, advisorAID)
	require.NoError(t, err)
	assert.Empty(t, clients)
}

func repositoryFilterForUser(userID string) repository.AdvisorRequestFilter {
	return repository.AdvisorRequestFilter{UserID: userID, Status: model.RequestPending}
}
