// Package application wires the session store, the resource cache and the
// mutation controller to the gateway and the persistence adapters.
package application

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/bnema/teams-cli/internal/cache"
	"github.com/bnema/teams-cli/internal/domain"
	"github.com/bnema/teams-cli/internal/mutation"
	"github.com/bnema/teams-cli/internal/ports"
	"github.com/bnema/teams-cli/internal/session"
	"golang.org/x/sync/errgroup"
)

const teamFetchConcurrency = 4

var ErrEmptyUsername = errors.New("username must not be empty")

type Dependencies struct {
	// Session is the store the gateway reads its bearer token from. A new
	// store is created when nil.
	Session  *session.Store
	Gateway  ports.Gateway
	Sessions ports.SessionRepository
	Vault    ports.TokenVault
	Clock    ports.Clock
	Logger   *slog.Logger
}

type Service struct {
	gateway  ports.Gateway
	sessions ports.SessionRepository
	vault    ports.TokenVault
	clock    ports.Clock
	logger   *slog.Logger

	session   *session.Store
	cache     *cache.Cache
	mutations *mutation.Controller
	unbind    func()
}

func NewService(deps Dependencies) *Service {
	clock := deps.Clock
	if clock == nil {
		clock = ports.SystemClock{}
	}
	logger := deps.Logger
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	store := deps.Session
	if store == nil {
		store = session.NewStore()
	}

	s := &Service{
		gateway:  deps.Gateway,
		sessions: deps.Sessions,
		vault:    deps.Vault,
		clock:    clock,
		logger:   logger,
		session:  store,
	}
	s.cache = cache.New(gatewayLoader{gateway: deps.Gateway}, cache.WithLogger(logger.With(slog.String("component", "cache"))))
	s.mutations = mutation.NewController(s.cache, gatewayWriter{gateway: deps.Gateway},
		mutation.WithLogger(logger.With(slog.String("component", "mutation"))),
		mutation.WithClock(clock),
	)
	s.unbind = s.session.Subscribe(s.forgetFormerSelf)
	return s
}

// forgetFormerSelf keeps one user's profile from leaking into the next
// session. Project entries are left alone.
func (s *Service) forgetFormerSelf(change session.Change) {
	previous := change.Previous
	if !previous.LoggedIn || change.Current.UserID == previous.UserID {
		return
	}
	key := domain.UserKey(previous.UserID)
	s.cache.Invalidate(key)
	logSelfInvalidated(s.logger, key)
}

func (s *Service) SessionStore() *session.Store {
	return s.session
}

func (s *Service) Cache() *cache.Cache {
	return s.cache
}

func (s *Service) Mutations() *mutation.Controller {
	return s.mutations
}

// Close waits for outstanding writes and detaches the cache from the session.
func (s *Service) Close() {
	s.mutations.Wait()
	s.unbind()
}

func (s *Service) Login(ctx context.Context, cmd LoginCommand) (domain.User, error) {
	result, err := s.gateway.Login(ctx, strings.TrimSpace(cmd.Email), cmd.Password)
	if err != nil {
		return domain.User{}, err
	}
	return s.establish(ctx, result, cmd.Email)
}

func (s *Service) Register(ctx context.Context, cmd RegisterCommand) (domain.User, error) {
	result, err := s.gateway.Register(ctx, ports.RegisterRequest{
		Username: strings.TrimSpace(cmd.Username),
		Email:    strings.TrimSpace(cmd.Email),
		Password: cmd.Password,
	})
	if err != nil {
		return domain.User{}, err
	}
	return s.establish(ctx, result, cmd.Email)
}

// establish persists the token and the session record, then switches the
// in-memory session. Nothing is switched if persistence fails.
func (s *Service) establish(ctx context.Context, result domain.LoginResult, email string) (domain.User, error) {
	if result.Token == "" || result.User.ID <= 0 {
		return domain.User{}, fmt.Errorf("establish session: %w", domain.ErrInvalidSession)
	}

	ref := TokenRef(result.User.ID)
	if err := s.vault.Store(ctx, ref, result.Token); err != nil {
		return domain.User{}, fmt.Errorf("store session token: %w", err)
	}

	if result.User.Email != "" {
		email = result.User.Email
	}
	record := domain.SessionRecord{
		UserID:     result.User.ID,
		Email:      strings.TrimSpace(email),
		TokenRef:   ref,
		LoggedInAt: s.clock.Now(),
	}
	if err := s.sessions.Save(ctx, record); err != nil {
		if rollbackErr := s.vault.Erase(ctx, ref); rollbackErr != nil {
			return domain.User{}, fmt.Errorf("save session and rollback stored token: %w", errors.Join(err, rollbackErr))
		}
		return domain.User{}, fmt.Errorf("save session: %w", err)
	}

	if err := s.session.Login(result.Token, result.User); err != nil {
		return domain.User{}, err
	}
	s.cache.Put(result.User)
	logLoggedIn(s.logger, result.User)

	return result.User, nil
}

// Logout always clears the in-memory session, then removes the saved record
// and its token. Logging out with nothing saved is not an error.
func (s *Service) Logout(ctx context.Context) error {
	previous := s.session.Snapshot()
	s.session.Logout()
	if previous.LoggedIn {
		logLoggedOut(s.logger, previous.UserID)
	}

	record, loadErr := s.sessions.Load(ctx)
	if errors.Is(loadErr, domain.ErrNoSession) {
		return nil
	}

	var errs []error
	if loadErr != nil {
		errs = append(errs, fmt.Errorf("read session: %w", loadErr))
	} else if err := s.vault.Erase(ctx, record.TokenRef); err != nil {
		errs = append(errs, fmt.Errorf("erase session token: %w", err))
	}
	if err := s.sessions.Delete(ctx); err != nil {
		errs = append(errs, fmt.Errorf("delete session: %w", err))
	}

	return errors.Join(errs...)
}

// Restore loads the saved session, if any, into the session store. It
// reports whether a session is active afterwards. A record whose token is
// gone is treated as logged out.
func (s *Service) Restore(ctx context.Context) (bool, error) {
	record, err := s.sessions.Load(ctx)
	if errors.Is(err, domain.ErrNoSession) {
		s.session.Logout()
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("read session: %w", err)
	}

	token, err := s.vault.Load(ctx, record.TokenRef)
	if errors.Is(err, domain.ErrTokenNotFound) {
		logRestoreSkipped(s.logger, "token missing from vault", err)
		s.session.Logout()
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("load session token: %w", err)
	}

	if err := s.session.Login(token, domain.User{ID: record.UserID, Email: record.Email}); err != nil {
		return false, err
	}
	return true, nil
}

// SyncSession re-reads the saved session after another process changed it
// and returns the resulting session.
func (s *Service) SyncSession(ctx context.Context) (domain.Session, error) {
	if _, err := s.Restore(ctx); err != nil {
		return s.session.Snapshot(), err
	}
	return s.session.Snapshot(), nil
}

func (s *Service) requireSelf() (domain.EntityID, error) {
	current := s.session.Snapshot()
	if !current.LoggedIn {
		return 0, domain.ErrNotLoggedIn
	}
	return current.UserID, nil
}

func (s *Service) Whoami(ctx context.Context) (domain.User, error) {
	self, err := s.requireSelf()
	if err != nil {
		return domain.User{}, err
	}
	return s.fetchUser(ctx, self)
}

// Profile shows a user. A zero id means the logged-in user.
func (s *Service) Profile(ctx context.Context, id domain.EntityID) (ProfileView, error) {
	if id == 0 {
		self, err := s.requireSelf()
		if err != nil {
			return ProfileView{}, err
		}
		id = self
	}

	user, err := s.fetchUser(ctx, id)
	if err != nil {
		return ProfileView{}, err
	}
	return s.profileView(user), nil
}

// RefreshProfile drops the cached copy first so the backend is asked again.
func (s *Service) RefreshProfile(ctx context.Context, id domain.EntityID) (ProfileView, error) {
	if id == 0 {
		self, err := s.requireSelf()
		if err != nil {
			return ProfileView{}, err
		}
		id = self
	}

	s.cache.Invalidate(domain.UserKey(id))
	return s.Profile(ctx, id)
}

func (s *Service) profileView(user domain.User) ProfileView {
	view := ProfileView{User: user, IsSelf: s.session.Snapshot().IsSelf(user.ID)}
	for _, field := range []string{domain.FieldUsername, domain.FieldImage} {
		view.Pending = append(view.Pending, s.mutations.Pending(user.Key(), field)...)
	}
	return view
}

func (s *Service) Project(ctx context.Context, id domain.EntityID) (ProjectView, error) {
	project, err := s.fetchProject(ctx, id)
	if err != nil {
		return ProjectView{}, err
	}

	view := ProjectView{Project: project, IsOwner: s.session.Snapshot().IsSelf(project.OwnerID)}
	if project.OwnerID > 0 {
		owner, err := s.fetchUser(ctx, project.OwnerID)
		if err != nil {
			return ProjectView{}, fmt.Errorf("load project owner: %w", err)
		}
		view.Owner = owner
	}
	return view, nil
}

// Team loads a project and every member through the cache concurrently.
func (s *Service) Team(ctx context.Context, projectID domain.EntityID) (TeamView, error) {
	project, err := s.fetchProject(ctx, projectID)
	if err != nil {
		return TeamView{}, err
	}

	ids := project.TeamIDs()
	members := make([]domain.User, len(ids))
	group, groupCtx := errgroup.WithContext(ctx)
	group.SetLimit(teamFetchConcurrency)
	for i, id := range ids {
		group.Go(func() error {
			user, err := s.fetchUser(groupCtx, id)
			if err != nil {
				return err
			}
			members[i] = user
			return nil
		})
	}
	if err := group.Wait(); err != nil {
		return TeamView{}, fmt.Errorf("load team of project %s: %w", projectID, err)
	}

	return TeamView{Project: project, Members: members}, nil
}

// RenameSelf changes the logged-in user's name optimistically and waits for
// the backend. On failure the cached name has already been reverted.
func (s *Service) RenameSelf(ctx context.Context, name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return ErrEmptyUsername
	}

	self, err := s.requireSelf()
	if err != nil {
		return err
	}
	if _, err := s.fetchUser(ctx, self); err != nil {
		return err
	}

	return s.mutations.Mutate(ctx, domain.UserKey(self), domain.FieldUsername, name)
}

// ChangeAvatar uploads a new profile image and returns the URL the backend
// stored it under. An empty handle means the picker was cancelled and is a
// no-op.
func (s *Service) ChangeAvatar(ctx context.Context, fileHandle string) (string, error) {
	fileHandle = strings.TrimSpace(fileHandle)
	if fileHandle == "" {
		return "", nil
	}

	self, err := s.requireSelf()
	if err != nil {
		return "", err
	}
	if _, err := s.fetchUser(ctx, self); err != nil {
		return "", err
	}

	ticket, err := s.mutations.Submit(ctx, domain.UserKey(self), domain.FieldImage, fileHandle)
	if err != nil {
		return "", err
	}
	if err := ticket.Wait(ctx); err != nil {
		return "", err
	}
	return ticket.Confirmed(), nil
}

func (s *Service) fetchUser(ctx context.Context, id domain.EntityID) (domain.User, error) {
	entity, err := s.cache.Fetch(ctx, domain.UserKey(id))
	if err != nil {
		return domain.User{}, err
	}
	user, ok := entity.(domain.User)
	if !ok {
		return domain.User{}, fmt.Errorf("cached %s is %T, not a user", domain.UserKey(id), entity)
	}
	return user, nil
}

func (s *Service) fetchProject(ctx context.Context, id domain.EntityID) (domain.Project, error) {
	entity, err := s.cache.Fetch(ctx, domain.ProjectKey(id))
	if err != nil {
		return domain.Project{}, err
	}
	project, ok := entity.(domain.Project)
	if !ok {
		return domain.Project{}, fmt.Errorf("cached %s is %T, not a project", domain.ProjectKey(id), entity)
	}
	return project, nil
}
