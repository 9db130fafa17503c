package services

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/mkowalczyk/allerlog/internal/client/api"
	"github.com/mkowalczyk/allerlog/internal/client/cache"
	"github.com/mkowalczyk/allerlog/internal/client/models"
	"github.com/mkowalczyk/allerlog/internal/client/repositories"
	"github.com/mkowalczyk/allerlog/internal/client/token"
	"github.com/mkowalczyk/allerlog/internal/common"
	"github.com/mkowalczyk/allerlog/internal/logging"
)

type nopLogger struct{}

func (n nopLogger) Debug(context.Context, string, ...any) {}
func (n nopLogger) Info(context.Context, string, ...any)  {}
func (n nopLogger) Warn(context.Context, string, ...any)  {}
func (n nopLogger) Error(context.Context, string, ...any) {}
func (n nopLogger) With(...any) logging.Logger            { return n }

// fakeHTTP lets each test script the transport per method/path.
type fakeHTTP struct {
	getFn    func(ctx context.Context, path string, out any) error
	postFn   func(ctx context.Context, path string, body, out any) error
	putFn    func(ctx context.Context, path string, body, out any) error
	deleteFn func(ctx context.Context, path string) error
}

func (f *fakeHTTP) Get(ctx context.Context, path string, out any) error {
	if f.getFn == nil {
		return fmt.Errorf("unexpected GET %s", path)
	}
	return f.getFn(ctx, path, out)
}

func (f *fakeHTTP) Post(ctx context.Context, path string, body, out any) error {
	if f.postFn == nil {
		return fmt.Errorf("unexpected POST %s", path)
	}
	return f.postFn(ctx, path, body, out)
}

func (f *fakeHTTP) Put(ctx context.Context, path string, body, out any) error {
	if f.putFn == nil {
		return fmt.Errorf("unexpected PUT %s", path)
	}
	return f.putFn(ctx, path, body, out)
}

func (f *fakeHTTP) Delete(ctx context.Context, path string) error {
	if f.deleteFn == nil {
		return fmt.Errorf("unexpected DELETE %s", path)
	}
	return f.deleteFn(ctx, path)
}

type fakeJournal struct {
	entries  []models.Entry
	getErr   error
	replaced [][]models.Entry
	cleared  bool
}

func (f *fakeJournal) Replace(ctx context.Context, entries []models.Entry) error {
	f.replaced = append(f.replaced, entries)
	f.entries = entries
	return nil
}

func (f *fakeJournal) GetAll(ctx context.Context) ([]models.Entry, error) {
	return f.entries, f.getErr
}

func (f *fakeJournal) Clear(ctx context.Context) error {
	f.cleared = true
	f.entries = nil
	return nil
}

type fakeState struct {
	email    string
	syncedAt time.Time
	cleared  bool
}

func (f *fakeState) SetLastSyncedAt(ctx context.Context, t time.Time) error {
	f.syncedAt = t
	return nil
}

func (f *fakeState) LastSyncedAt(ctx context.Context) (time.Time, bool, error) {
	return f.syncedAt, !f.syncedAt.IsZero(), nil
}

func (f *fakeState) SetAccountEmail(ctx context.Context, email string) error {
	f.email = email
	return nil
}

func (f *fakeState) AccountEmail(ctx context.Context) (string, error) {
	return f.email, nil
}

func (f *fakeState) Clear(ctx context.Context) error {
	f.cleared = true
	f.email = ""
	f.syncedAt = time.Time{}
	return nil
}

func newTestAuth(t *testing.T, httpc HTTPClient) (AuthService, *token.Store, *cache.Cache, *fakeJournal, *fakeState) {
	t.Helper()
	tokens := token.NewStore(filepath.Join(t.TempDir(), "token"))
	c := cache.New()
	j := &fakeJournal{}
	s := &fakeState{}
	repos := &repositories.Repositories{Journal: j, State: s}
	svc := NewAuthService(httpc, tokens, c, repos, nopLogger{})
	return svc, tokens, c, j, s
}

func TestAuthService_Login(t *testing.T) {
	httpc := &fakeHTTP{
		postFn: func(ctx context.Context, path string, body, out any) error {
			require.Equal(t, common.PathLogin, path)
			creds, ok := body.(models.Credentials)
			require.True(t, ok)
			require.Equal(t, "ada@example.com", creds.Email)
			*out.(*models.LoginResponse) = models.LoginResponse{
				AccessToken: "tok-1",
				User:        models.User{ID: "u1", Email: "ada@example.com"},
			}
			return nil
		},
	}
	svc, tokens, c, _, state := newTestAuth(t, httpc)
	c.Set(cache.KeyEntries, []models.Entry{{ID: "stale"}})

	user, err := svc.Login(context.Background(), "ada@example.com", "secret")
	require.NoError(t, err)
	require.Equal(t, "u1", user.ID)
	require.Equal(t, "tok-1", tokens.Get())
	require.Equal(t, "ada@example.com", state.email)

	// The previous session's cache must not leak into the new one.
	_, fresh := c.Get(cache.KeyEntries)
	require.False(t, fresh)
}

func TestAuthService_Login_Failure(t *testing.T) {
	httpc := &fakeHTTP{
		postFn: func(ctx context.Context, path string, body, out any) error {
			return &api.HTTPError{Status: http.StatusUnauthorized}
		},
	}
	svc, tokens, _, _, _ := newTestAuth(t, httpc)

	_, err := svc.Login(context.Background(), "ada@example.com", "wrong")
	require.Error(t, err)
	require.Empty(t, tokens.Get())
}

func TestAuthService_Register(t *testing.T) {
	httpc := &fakeHTTP{
		postFn: func(ctx context.Context, path string, body, out any) error {
			require.Equal(t, common.PathRegister, path)
			*out.(*models.LoginResponse) = models.LoginResponse{
				AccessToken: "tok-2",
				User:        models.User{ID: "u2", Email: "new@example.com"},
			}
			return nil
		},
	}
	svc, tokens, _, _, _ := newTestAuth(t, httpc)

	user, err := svc.Register(context.Background(), "new@example.com", "secret")
	require.NoError(t, err)
	require.Equal(t, "u2", user.ID)
	require.Equal(t, "tok-2", tokens.Get())
}

func TestAuthService_Logout_WipesLocalState(t *testing.T) {
	notified := false
	httpc := &fakeHTTP{
		postFn: func(ctx context.Context, path string, body, out any) error {
			require.Equal(t, common.PathLogout, path)
			notified = true
			return nil
		},
	}
	svc, tokens, c, j, state := newTestAuth(t, httpc)
	require.NoError(t, tokens.Set("tok-1"))
	c.Set(cache.KeyEntries, []models.Entry{{ID: "e1"}})
	j.entries = []models.Entry{{ID: "e1"}}
	state.email = "ada@example.com"

	require.NoError(t, svc.Logout(context.Background()))
	require.True(t, notified)
	require.Empty(t, tokens.Get())
	require.True(t, j.cleared)
	require.True(t, state.cleared)
	v, _ := c.Get(cache.KeyEntries)
	require.Nil(t, v)
}

func TestAuthService_Logout_ServerUnreachable(t *testing.T) {
	httpc := &fakeHTTP{
		postFn: func(ctx context.Context, path string, body, out any) error {
			return fmt.Errorf("%w: connection refused", common.ErrNetwork)
		},
	}
	svc, tokens, _, j, state := newTestAuth(t, httpc)
	require.NoError(t, tokens.Set("tok-1"))

	// Local wipe proceeds even when the server cannot be told.
	require.NoError(t, svc.Logout(context.Background()))
	require.Empty(t, tokens.Get())
	require.True(t, j.cleared)
	require.True(t, state.cleared)
}

func TestAuthService_Me(t *testing.T) {
	httpc := &fakeHTTP{
		getFn: func(ctx context.Context, path string, out any) error {
			require.Equal(t, common.PathMe, path)
			*out.(*models.MeResponse) = models.MeResponse{User: models.User{ID: "u1", Email: "ada@example.com"}}
			return nil
		},
	}
	svc, _, _, _, _ := newTestAuth(t, httpc)

	user, err := svc.Me(context.Background())
	require.NoError(t, err)
	require.Equal(t, "ada@example.com", user.Email)
}

func TestLoginErrorMessage(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{"unauthorized", &api.HTTPError{Status: http.StatusUnauthorized}, "Invalid email or password."},
		{"bad request", &api.HTTPError{Status: http.StatusBadRequest}, "Invalid login details."},
		{"server message", &api.HTTPError{Status: http.StatusLocked, Body: []byte(`{"message":"Account locked"}`)}, "Account locked"},
		{"network", fmt.Errorf("%w: dial tcp", common.ErrNetwork), "Login failed. Please try again."},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.want, LoginErrorMessage(tt.err))
		})
	}
}

func TestRegisterErrorMessage(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{"conflict", &api.HTTPError{Status: http.StatusConflict}, "This email address is already in use."},
		{"bad request", &api.HTTPError{Status: http.StatusBadRequest}, "Invalid registration details."},
		{"network", fmt.Errorf("%w: dial tcp", common.ErrNetwork), "Registration failed. Please try again."},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.want, RegisterErrorMessage(tt.err))
		})
	}
}

func newTestEntries(httpc HTTPClient, j *fakeJournal, s *fakeState) EntryService {
	c := cache.New()
	sync := cache.NewSynchronizer(c, NewEntryAPI(httpc))
	return NewEntryService(sync, j, s, nopLogger{})
}

func TestEntryService_List_PersistsSnapshot(t *testing.T) {
	serverEntries := []models.Entry{{ID: "e1", Total: 3}, {ID: "e2", Total: 5}}
	httpc := &fakeHTTP{
		getFn: func(ctx context.Context, path string, out any) error {
			require.Equal(t, common.PathEntries, path)
			*out.(*[]models.Entry) = serverEntries
			return nil
		},
	}
	j := &fakeJournal{}
	s := &fakeState{}
	svc := newTestEntries(httpc, j, s)

	entries, offline, err := svc.List(context.Background())
	require.NoError(t, err)
	require.False(t, offline)
	require.Equal(t, serverEntries, entries)
	require.Equal(t, serverEntries, j.entries)
	require.False(t, s.syncedAt.IsZero())
}

func TestEntryService_List_OfflineFallback(t *testing.T) {
	httpc := &fakeHTTP{
		getFn: func(ctx context.Context, path string, out any) error {
			return fmt.Errorf("%w: connection refused", common.ErrNetwork)
		},
	}
	j := &fakeJournal{entries: []models.Entry{{ID: "e1", Total: 3}}}
	svc := newTestEntries(httpc, j, &fakeState{})

	entries, offline, err := svc.List(context.Background())
	require.NoError(t, err)
	require.True(t, offline)
	require.Equal(t, j.entries, entries)
}

func TestEntryService_List_NonNetworkErrorPropagates(t *testing.T) {
	httpc := &fakeHTTP{
		getFn: func(ctx context.Context, path string, out any) error {
			return &api.HTTPError{Status: http.StatusInternalServerError}
		},
	}
	j := &fakeJournal{entries: []models.Entry{{ID: "e1"}}}
	svc := newTestEntries(httpc, j, &fakeState{})

	_, offline, err := svc.List(context.Background())
	require.Error(t, err)
	require.False(t, offline)
	var httpErr *api.HTTPError
	require.ErrorAs(t, err, &httpErr)
}

func TestEntryService_List_OfflineSnapshotUnavailable(t *testing.T) {
	netErr := fmt.Errorf("%w: connection refused", common.ErrNetwork)
	httpc := &fakeHTTP{
		getFn: func(ctx context.Context, path string, out any) error {
			return netErr
		},
	}
	j := &fakeJournal{getErr: errors.New("database is locked")}
	svc := newTestEntries(httpc, j, &fakeState{})

	_, _, err := svc.List(context.Background())
	require.Error(t, err)
	require.ErrorIs(t, err, common.ErrNetwork)
}

func TestEntryService_WritesGoThroughTransport(t *testing.T) {
	var gotPut, gotDelete string
	httpc := &fakeHTTP{
		postFn: func(ctx context.Context, path string, body, out any) error {
			require.Equal(t, common.PathEntries, path)
			ne, ok := body.(models.NewEntry)
			require.True(t, ok)
			*out.(*models.Entry) = ne.Entry("srv-1")
			return nil
		},
		putFn: func(ctx context.Context, path string, body, out any) error {
			gotPut = path
			ne := body.(models.NewEntry)
			*out.(*models.Entry) = ne.Entry("e1")
			return nil
		},
		deleteFn: func(ctx context.Context, path string) error {
			gotDelete = path
			return nil
		},
	}
	svc := newTestEntries(httpc, &fakeJournal{}, &fakeState{})

	created, err := svc.Create(context.Background(), models.NewEntry{Total: 4})
	require.NoError(t, err)
	require.Equal(t, "srv-1", created.ID)

	updated, err := svc.Update(context.Background(), "e1", models.NewEntry{Total: 7})
	require.NoError(t, err)
	require.Equal(t, "e1", updated.ID)
	require.Equal(t, common.PathEntries+"/e1", gotPut)

	require.NoError(t, svc.Delete(context.Background(), "e1"))
	require.Equal(t, common.PathEntries+"/e1", gotDelete)
	require.False(t, svc.Pending())
}

func TestExposureTypeService_List(t *testing.T) {
	httpc := &fakeHTTP{
		getFn: func(ctx context.Context, path string, out any) error {
			require.Equal(t, common.PathExposureTypes, path)
			*out.(*[]models.ExposureType) = []models.ExposureType{
				{ID: "x1", Name: "Milk"},
				{ID: "x2", Name: "Pollen"},
			}
			return nil
		},
	}
	svc := NewExposureTypeService(httpc)

	types, err := svc.List(context.Background())
	require.NoError(t, err)
	require.Len(t, types, 2)
}

func TestExposureTypeService_Create(t *testing.T) {
	httpc := &fakeHTTP{
		postFn: func(ctx context.Context, path string, body, out any) error {
			require.Equal(t, common.PathExposureTypes, path)
			nt := body.(models.NewExposureType)
			*out.(*models.ExposureType) = models.ExposureType{ID: "x9", Name: nt.Name, Description: nt.Description}
			return nil
		},
	}
	svc := NewExposureTypeService(httpc)

	created, err := svc.Create(context.Background(), models.NewExposureType{Name: "Dust"})
	require.NoError(t, err)
	require.Equal(t, "x9", created.ID)
	require.Equal(t, "Dust", created.Name)
}

func TestExposureTypeService_NameToID(t *testing.T) {
	httpc := &fakeHTTP{
		getFn: func(ctx context.Context, path string, out any) error {
			*out.(*[]models.ExposureType) = []models.ExposureType{
				{ID: "x1", Name: "Milk"},
				{ID: "x2", Name: "Pollen"},
			}
			return nil
		},
	}
	svc := NewExposureTypeService(httpc)

	index, err := svc.NameToID(context.Background())
	require.NoError(t, err)
	require.Equal(t, map[string]string{"Milk": "x1", "Pollen": "x2"}, index)
}
