package application

import (
	"context"
	"errors"
	"net/http"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/bnema/teams-cli/internal/adapters/api"
	"github.com/bnema/teams-cli/internal/adapters/api/apitest"
	tomlrepo "github.com/bnema/teams-cli/internal/adapters/repo/toml"
	filevault "github.com/bnema/teams-cli/internal/adapters/secrets/file"
	"github.com/bnema/teams-cli/internal/cache"
	"github.com/bnema/teams-cli/internal/domain"
	"github.com/bnema/teams-cli/internal/ports"
	"github.com/bnema/teams-cli/internal/ports/mocks"
	"github.com/bnema/teams-cli/internal/session"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

var loginTime = time.Date(2026, 10, 18, 9, 30, 0, 0, time.UTC)

type mockedService struct {
	service  *Service
	gateway  *mocks.MockGateway
	sessions *mocks.MockSessionRepository
	vault    *mocks.MockTokenVault
}

func newMockedService(t *testing.T) mockedService {
	t.Helper()

	gateway := mocks.NewMockGateway(t)
	sessions := mocks.NewMockSessionRepository(t)
	vault := mocks.NewMockTokenVault(t)
	clock := mocks.NewMockClock(t)
	clock.EXPECT().Now().Return(loginTime).Maybe()

	service := NewService(Dependencies{Gateway: gateway, Sessions: sessions, Vault: vault, Clock: clock})
	t.Cleanup(service.Close)
	return mockedService{service: service, gateway: gateway, sessions: sessions, vault: vault}
}

func ada() domain.User {
	return domain.User{ID: 7, Username: "ada", Email: "ada@example.com"}
}

func adaRecord() domain.SessionRecord {
	return domain.SessionRecord{UserID: 7, Email: "ada@example.com", TokenRef: "teams/users/7/token", LoggedInAt: loginTime}
}

func mockAnyContext() interface{} {
	return mock.Anything
}

func TestServiceLoginPersistsTokenThenSession(t *testing.T) {
	m := newMockedService(t)

	m.gateway.EXPECT().Login(mockAnyContext(), "ada@example.com", "hunter2").
		Return(domain.LoginResult{Token: "tok-1", User: ada()}, nil)
	m.vault.EXPECT().Store(mockAnyContext(), "teams/users/7/token", "tok-1").Return(nil)
	m.sessions.EXPECT().Save(mockAnyContext(), adaRecord()).Return(nil)

	user, err := m.service.Login(context.Background(), LoginCommand{Email: " ada@example.com ", Password: "hunter2"})
	require.NoError(t, err)
	assert.Equal(t, ada(), user)

	current := m.service.SessionStore().Snapshot()
	assert.Equal(t, domain.Session{Token: "tok-1", UserID: 7, LoggedIn: true}, current)

	entry, ok := m.service.Cache().Entry(domain.UserKey(7))
	require.True(t, ok)
	assert.Equal(t, domain.StatusFresh, entry.Status)
}

func TestServiceLoginRejectedLeavesNothingBehind(t *testing.T) {
	m := newMockedService(t)
	authErr := &domain.AuthError{Status: http.StatusUnauthorized, Message: "invalid email or password"}
	m.gateway.EXPECT().Login(mockAnyContext(), "ada@example.com", "nope").Return(domain.LoginResult{}, authErr)

	_, err := m.service.Login(context.Background(), LoginCommand{Email: "ada@example.com", Password: "nope"})

	var got *domain.AuthError
	require.ErrorAs(t, err, &got)
	assert.False(t, m.service.SessionStore().Snapshot().LoggedIn)
}

func TestServiceLoginSaveFailureErasesStoredToken(t *testing.T) {
	m := newMockedService(t)
	saveErr := errors.New("disk full")

	m.gateway.EXPECT().Login(mockAnyContext(), "ada@example.com", "hunter2").
		Return(domain.LoginResult{Token: "tok-1", User: ada()}, nil)
	m.vault.EXPECT().Store(mockAnyContext(), "teams/users/7/token", "tok-1").Return(nil)
	m.sessions.EXPECT().Save(mockAnyContext(), adaRecord()).Return(saveErr)
	m.vault.EXPECT().Erase(mockAnyContext(), "teams/users/7/token").Return(nil)

	_, err := m.service.Login(context.Background(), LoginCommand{Email: "ada@example.com", Password: "hunter2"})
	require.ErrorIs(t, err, saveErr)
	assert.ErrorContains(t, err, "save session")
	assert.False(t, m.service.SessionStore().Snapshot().LoggedIn)
	_, cached := m.service.Cache().Peek(domain.UserKey(7))
	assert.False(t, cached)
}

func TestServiceLoginSaveAndRollbackFailuresAreJoined(t *testing.T) {
	m := newMockedService(t)
	saveErr := errors.New("disk full")
	eraseErr := errors.New("vault locked")

	m.gateway.EXPECT().Login(mockAnyContext(), "ada@example.com", "hunter2").
		Return(domain.LoginResult{Token: "tok-1", User: ada()}, nil)
	m.vault.EXPECT().Store(mockAnyContext(), "teams/users/7/token", "tok-1").Return(nil)
	m.sessions.EXPECT().Save(mockAnyContext(), mock.Anything).Return(saveErr)
	m.vault.EXPECT().Erase(mockAnyContext(), "teams/users/7/token").Return(eraseErr)

	_, err := m.service.Login(context.Background(), LoginCommand{Email: "ada@example.com", Password: "hunter2"})
	require.ErrorIs(t, err, saveErr)
	require.ErrorIs(t, err, eraseErr)
	assert.ErrorContains(t, err, "rollback stored token")
}

func TestServiceRegisterEstablishesSession(t *testing.T) {
	m := newMockedService(t)
	grace := domain.User{ID: 8, Username: "grace", Email: "grace@example.com"}

	m.gateway.EXPECT().Register(mockAnyContext(), ports.RegisterRequest{Username: "grace", Email: "grace@example.com", Password: "cobol"}).Return(domain.LoginResult{Token: "tok-8", User: grace}, nil)
	m.vault.EXPECT().Store(mockAnyContext(), "teams/users/8/token", "tok-8").Return(nil)
	m.sessions.EXPECT().Save(mockAnyContext(), mock.Anything).Return(nil)

	user, err := m.service.Register(context.Background(), RegisterCommand{Username: " grace ", Email: "grace@example.com", Password: "cobol"})
	require.NoError(t, err)
	assert.Equal(t, grace, user)
	assert.True(t, m.service.SessionStore().Snapshot().IsSelf(8))
}

func TestServiceLogoutErasesTokenAndRecord(t *testing.T) {
	m := newMockedService(t)
	require.NoError(t, m.service.SessionStore().Login("tok-1", ada()))
	m.service.Cache().Put(ada())

	m.sessions.EXPECT().Load(mockAnyContext()).Return(adaRecord(), nil)
	m.vault.EXPECT().Erase(mockAnyContext(), "teams/users/7/token").Return(nil)
	m.sessions.EXPECT().Delete(mockAnyContext()).Return(nil)

	require.NoError(t, m.service.Logout(context.Background()))

	assert.Equal(t, domain.Session{}, m.service.SessionStore().Snapshot())
	entry, ok := m.service.Cache().Entry(domain.UserKey(7))
	require.True(t, ok)
	assert.Equal(t, domain.StatusStale, entry.Status)
}

func TestServiceLogoutWithoutSavedSession(t *testing.T) {
	m := newMockedService(t)
	m.sessions.EXPECT().Load(mockAnyContext()).Return(domain.SessionRecord{}, domain.ErrNoSession)

	require.NoError(t, m.service.Logout(context.Background()))
}

func TestServiceLogoutReportsEveryFailure(t *testing.T) {
	m := newMockedService(t)
	eraseErr := errors.New("vault locked")
	deleteErr := errors.New("read-only fs")

	m.sessions.EXPECT().Load(mockAnyContext()).Return(adaRecord(), nil)
	m.vault.EXPECT().Erase(mockAnyContext(), "teams/users/7/token").Return(eraseErr)
	m.sessions.EXPECT().Delete(mockAnyContext()).Return(deleteErr)

	err := m.service.Logout(context.Background())
	require.ErrorIs(t, err, eraseErr)
	require.ErrorIs(t, err, deleteErr)
}

func TestServiceRestore(t *testing.T) {
	testCases := []struct {
		name       string
		record     domain.SessionRecord
		loadErr    error
		token      string
		tokenErr   error
		wantActive bool
		wantErr    bool
	}{
		{name: "saved session", record: adaRecord(), token: "tok-1", wantActive: true},
		{name: "nothing saved", loadErr: domain.ErrNoSession},
		{name: "token gone", record: adaRecord(), tokenErr: domain.ErrTokenNotFound},
		{name: "unreadable record", loadErr: errors.New("decode session file"), wantErr: true},
		{name: "vault failure", record: adaRecord(), tokenErr: errors.New("gpg locked"), wantErr: true},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			m := newMockedService(t)
			m.sessions.EXPECT().Load(mockAnyContext()).Return(tc.record, tc.loadErr)
			if tc.loadErr == nil {
				m.vault.EXPECT().Load(mockAnyContext(), tc.record.TokenRef).Return(tc.token, tc.tokenErr)
			}

			active, err := m.service.Restore(context.Background())
			if tc.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.wantActive, active)
			assert.Equal(t, tc.wantActive, m.service.SessionStore().Snapshot().LoggedIn)
		})
	}
}

func TestServiceRequiresLogin(t *testing.T) {
	m := newMockedService(t)

	_, err := m.service.Whoami(context.Background())
	require.ErrorIs(t, err, domain.ErrNotLoggedIn)
	_, err = m.service.Profile(context.Background(), 0)
	require.ErrorIs(t, err, domain.ErrNotLoggedIn)
	require.ErrorIs(t, m.service.RenameSelf(context.Background(), "x"), domain.ErrNotLoggedIn)
	_, err = m.service.ChangeAvatar(context.Background(), "/tmp/me.jpg")
	require.ErrorIs(t, err, domain.ErrNotLoggedIn)
}

func TestServiceChangeAvatarEmptyHandleIsNoop(t *testing.T) {
	m := newMockedService(t)

	url, err := m.service.ChangeAvatar(context.Background(), "  ")
	require.NoError(t, err)
	assert.Empty(t, url)
}

func TestServiceRenameSelfRejectsBlankName(t *testing.T) {
	m := newMockedService(t)

	require.ErrorIs(t, m.service.RenameSelf(context.Background(), "   "), ErrEmptyUsername)
}

// harness runs the service against the in-memory backend with file-backed
// persistence.
type harness struct {
	server  *apitest.Server
	service *Service
	dir     string
}

func newHarness(t *testing.T) harness {
	t.Helper()

	server := apitest.New(t)
	server.AddUser(ada(), "hunter2")
	dir := t.TempDir()
	return harness{server: server, dir: dir, service: newHarnessService(t, server, dir)}
}

func newHarnessService(t *testing.T, server *apitest.Server, dir string) *Service {
	t.Helper()

	store := session.NewStore()
	sessions, err := tomlrepo.NewSessionRepository(filepath.Join(dir, "session.toml"))
	require.NoError(t, err)

	service := NewService(Dependencies{
		Session:  store,
		Gateway:  api.Client{BaseURL: server.URL, HTTPClient: server.Client(), Tokens: store},
		Sessions: sessions,
		Vault:    filevault.NewVault(filepath.Join(dir, "secrets")),
	})
	t.Cleanup(service.Close)
	return service
}

func (h harness) login(t *testing.T) {
	t.Helper()

	_, err := h.service.Login(context.Background(), LoginCommand{Email: "ada@example.com", Password: "hunter2"})
	require.NoError(t, err)
}

func TestServiceLoginProfileLogoutAgainstBackend(t *testing.T) {
	h := newHarness(t)
	h.login(t)

	view, err := h.service.Profile(context.Background(), 0)
	require.NoError(t, err)
	assert.Equal(t, "ada", view.User.Username)
	assert.True(t, view.IsSelf)
	assert.Zero(t, h.server.Calls(apitest.RouteUser), "login primes the cache")

	require.NoError(t, h.service.Logout(context.Background()))
	assert.False(t, h.service.SessionStore().Snapshot().LoggedIn)
	_, err = os.Stat(filepath.Join(h.dir, "session.toml"))
	assert.ErrorIs(t, err, os.ErrNotExist)

	view, err = h.service.Profile(context.Background(), 7)
	require.NoError(t, err)
	assert.False(t, view.IsSelf)
	assert.Equal(t, 1, h.server.Calls(apitest.RouteUser), "former self is refetched after logout")
}

func TestServiceSessionSurvivesRestart(t *testing.T) {
	h := newHarness(t)
	h.login(t)

	restarted := newHarnessService(t, h.server, h.dir)
	active, err := restarted.Restore(context.Background())
	require.NoError(t, err)
	require.True(t, active)

	require.NoError(t, restarted.RenameSelf(context.Background(), "countess"))
	stored, _ := h.server.User(7)
	assert.Equal(t, "countess", stored.Username)
}

func TestServiceSyncSessionFollowsOtherProcess(t *testing.T) {
	h := newHarness(t)
	other := newHarnessService(t, h.server, h.dir)

	_, err := other.Login(context.Background(), LoginCommand{Email: "ada@example.com", Password: "hunter2"})
	require.NoError(t, err)

	current, err := h.service.SyncSession(context.Background())
	require.NoError(t, err)
	assert.True(t, current.IsSelf(7))

	require.NoError(t, other.Logout(context.Background()))
	current, err = h.service.SyncSession(context.Background())
	require.NoError(t, err)
	assert.False(t, current.LoggedIn)
}

func TestServiceRenameSelfSuccess(t *testing.T) {
	h := newHarness(t)
	h.login(t)

	var (
		mu    sync.Mutex
		kinds []cache.EventKind
	)
	h.service.Cache().Subscribe(func(e cache.Event) {
		mu.Lock()
		defer mu.Unlock()
		kinds = append(kinds, e.Kind)
	})

	require.NoError(t, h.service.RenameSelf(context.Background(), "countess"))

	user, err := h.service.Whoami(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "countess", user.Username)
	mu.Lock()
	assert.Equal(t, []cache.EventKind{cache.EventUpdated}, kinds)
	mu.Unlock()
}

func TestServiceRenameSelfFailureReverts(t *testing.T) {
	h := newHarness(t)
	h.login(t)
	h.server.FailNext(apitest.RouteUsername, http.StatusServiceUnavailable, "maintenance")

	var rollbacks int
	var mu sync.Mutex
	h.service.Cache().Subscribe(func(e cache.Event) {
		if e.Kind == cache.EventRolledBack {
			mu.Lock()
			rollbacks++
			mu.Unlock()
		}
	})

	err := h.service.RenameSelf(context.Background(), "countess")

	var writeErr *domain.RemoteWriteError
	require.ErrorAs(t, err, &writeErr)
	assert.ErrorContains(t, err, "could not update username")
	user, err := h.service.Whoami(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "ada", user.Username)
	mu.Lock()
	assert.Equal(t, 1, rollbacks)
	mu.Unlock()

	view, err := h.service.Profile(context.Background(), 0)
	require.NoError(t, err)
	assert.Empty(t, view.Pending)
}

func TestServiceChangeAvatarUploadsAndStoresCanonicalURL(t *testing.T) {
	h := newHarness(t)
	h.login(t)

	path := filepath.Join(t.TempDir(), "me.jpg")
	require.NoError(t, os.WriteFile(path, []byte("jpeg"), 0o600))

	imageURL, err := h.service.ChangeAvatar(context.Background(), "file://"+path)
	require.NoError(t, err)
	assert.Equal(t, h.server.URL+"/uploads/7/me.jpg", imageURL)

	user, err := h.service.Whoami(context.Background())
	require.NoError(t, err)
	assert.Equal(t, imageURL, user.Image)
}

func TestServiceConcurrentProfileFetchesShareOneRequest(t *testing.T) {
	h := newHarness(t)
	release := h.server.Hold(apitest.RouteUser)

	const callers = 8
	var wg sync.WaitGroup
	results := make(chan error, callers)
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			view, err := h.service.Profile(context.Background(), 7)
			if err == nil && view.User.Username != "ada" {
				err = errors.New("unexpected user " + view.User.Username)
			}
			results <- err
		}()
	}

	require.Eventually(t, func() bool { return h.server.Calls(apitest.RouteUser) == 1 }, 2*time.Second, 5*time.Millisecond)
	time.Sleep(20 * time.Millisecond)
	release()
	wg.Wait()
	close(results)

	for err := range results {
		require.NoError(t, err)
	}
	assert.Equal(t, 1, h.server.Calls(apitest.RouteUser))
}

func TestServiceProfileFetchFailureIsRemoteFetchError(t *testing.T) {
	h := newHarness(t)

	_, err := h.service.Profile(context.Background(), 404)

	var fetchErr *domain.RemoteFetchError
	require.ErrorAs(t, err, &fetchErr)
	assert.Equal(t, domain.EntityID(404), fetchErr.ID)
	entry, ok := h.service.Cache().Entry(domain.UserKey(404))
	require.True(t, ok)
	assert.Equal(t, domain.StatusFailed, entry.Status)
}

func TestServiceRefreshProfileRefetches(t *testing.T) {
	h := newHarness(t)

	_, err := h.service.Profile(context.Background(), 7)
	require.NoError(t, err)
	_, err = h.service.Profile(context.Background(), 7)
	require.NoError(t, err)
	assert.Equal(t, 1, h.server.Calls(apitest.RouteUser))

	_, err = h.service.RefreshProfile(context.Background(), 7)
	require.NoError(t, err)
	assert.Equal(t, 2, h.server.Calls(apitest.RouteUser))
}

func TestServiceProjectAndTeam(t *testing.T) {
	h := newHarness(t)
	h.server.AddUser(domain.User{ID: 8, Username: "grace", Email: "grace@example.com"}, "cobol")
	h.server.AddUser(domain.User{ID: 9, Username: "linus", Email: "linus@example.com"}, "git")
	h.server.AddProject(domain.Project{ID: 3, Name: "Apollo", OwnerID: 7, Members: []domain.EntityID{8, 7, 9}})
	h.login(t)

	project, err := h.service.Project(context.Background(), 3)
	require.NoError(t, err)
	assert.Equal(t, "Apollo", project.Project.Name)
	assert.Equal(t, "ada", project.Owner.Username)
	assert.True(t, project.IsOwner)

	team, err := h.service.Team(context.Background(), 3)
	require.NoError(t, err)
	names := make([]string, 0, len(team.Members))
	for _, member := range team.Members {
		names = append(names, member.Username)
	}
	assert.Equal(t, []string{"ada", "grace", "linus"}, names)
	assert.Equal(t, 1, h.server.Calls(apitest.RouteProject))
	assert.Equal(t, 2, h.server.Calls(apitest.RouteUser), "self comes from the login response")

	require.NoError(t, h.service.Logout(context.Background()))
	entry, ok := h.service.Cache().Entry(domain.ProjectKey(3))
	require.True(t, ok)
	assert.Equal(t, domain.StatusFresh, entry.Status, "project entries are kept across sessions")
}

func TestServiceTeamFailsWhenAMemberFails(t *testing.T) {
	h := newHarness(t)
	h.server.AddProject(domain.Project{ID: 3, Name: "Apollo", OwnerID: 7, Members: []domain.EntityID{404}})

	_, err := h.service.Team(context.Background(), 3)

	var fetchErr *domain.RemoteFetchError
	require.ErrorAs(t, err, &fetchErr)
	assert.Equal(t, domain.EntityID(404), fetchErr.ID)
}
