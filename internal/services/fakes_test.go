package services

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"

	"vpn-bus-api/internal/models"
	"vpn-bus-api/internal/storage"
	"vpn-bus-api/pkg/vpnclient"
)

const testConfigFile = "client-config-text"

// fakeVPN is an in-memory remote VPN server speaking the envelope protocol
type fakeVPN struct {
	mu          sync.Mutex
	accounts    map[string]string
	configs     map[string][]models.RemoteConfig
	calls       []string
	nextID      int
	failActions bool
	failDeletes bool
	srv         *httptest.Server
}

func newFakeVPN(t *testing.T) *fakeVPN {
	f := &fakeVPN{
		accounts: map[string]string{},
		configs:  map[string][]models.RemoteConfig{},
	}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/account/{chatId}", func(w http.ResponseWriter, r *http.Request) {
		id, ok := f.accounts[r.PathValue("chatId")]
		if !ok {
			writeEnvelope(w, http.StatusNotFound, nil)
			return
		}
		writeEnvelope(w, http.StatusOK, id)
	})
	mux.HandleFunc("POST /api/account/{chatId}", func(w http.ResponseWriter, r *http.Request) {
		f.nextID++
		id := fmt.Sprintf("acc-%d", f.nextID)
		f.accounts[r.PathValue("chatId")] = id
		writeEnvelope(w, http.StatusOK, id)
	})
	mux.HandleFunc("DELETE /api/account/{id}", func(w http.ResponseWriter, r *http.Request) {
		if f.failDeletes {
			writeEnvelope(w, http.StatusInternalServerError, nil)
			return
		}
		for chatID, id := range f.accounts {
			if id == r.PathValue("id") {
				delete(f.accounts, chatID)
			}
		}
		writeEnvelope(w, http.StatusOK, true)
	})
	for _, action := range []string{"block", "unblock", "restart"} {
		mux.HandleFunc("POST /api/account/"+action+"/{id}", func(w http.ResponseWriter, r *http.Request) {
			if f.failActions {
				writeEnvelope(w, http.StatusInternalServerError, nil)
				return
			}
			writeEnvelope(w, http.StatusOK, true)
		})
	}
	mux.HandleFunc("GET /api/user/{acc}", func(w http.ResponseWriter, r *http.Request) {
		configs := f.configs[r.PathValue("acc")]
		if configs == nil {
			configs = []models.RemoteConfig{}
		}
		writeEnvelope(w, http.StatusOK, configs)
	})
	mux.HandleFunc("GET /api/user/{acc}/{name}", func(w http.ResponseWriter, r *http.Request) {
		for _, config := range f.configs[r.PathValue("acc")] {
			if config.Name == r.PathValue("name") {
				writeEnvelope(w, http.StatusOK, config.ID)
				return
			}
		}
		writeEnvelope(w, http.StatusNotFound, nil)
	})
	mux.HandleFunc("POST /api/user/{acc}/{name}", func(w http.ResponseWriter, r *http.Request) {
		f.nextID++
		id := fmt.Sprintf("cfg-%d", f.nextID)
		acc := r.PathValue("acc")
		f.configs[acc] = append(f.configs[acc], models.RemoteConfig{ID: id, Name: r.PathValue("name")})
		writeEnvelope(w, http.StatusOK, id)
	})
	mux.HandleFunc("PUT /api/user/{acc}/{cfg}/{newName}", func(w http.ResponseWriter, r *http.Request) {
		configs := f.configs[r.PathValue("acc")]
		for i := range configs {
			if configs[i].ID == r.PathValue("cfg") {
				configs[i].Name = r.PathValue("newName")
				writeEnvelope(w, http.StatusOK, true)
				return
			}
		}
		writeEnvelope(w, http.StatusNotFound, nil)
	})
	mux.HandleFunc("DELETE /api/user/{acc}/{cfg}", func(w http.ResponseWriter, r *http.Request) {
		acc := r.PathValue("acc")
		kept := []models.RemoteConfig{}
		for _, config := range f.configs[acc] {
			if config.ID != r.PathValue("cfg") {
				kept = append(kept, config)
			}
		}
		f.configs[acc] = kept
		writeEnvelope(w, http.StatusOK, true)
	})
	mux.HandleFunc("GET /api/user/config/{acc}/{cfg}", func(w http.ResponseWriter, r *http.Request) {
		writeEnvelope(w, http.StatusOK, testConfigFile)
	})

	f.srv = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		f.mu.Lock()
		defer f.mu.Unlock()
		f.calls = append(f.calls, r.Method+" "+r.URL.Path)
		mux.ServeHTTP(w, r)
	}))
	t.Cleanup(f.srv.Close)
	return f
}

func writeEnvelope(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	envelope := models.Success("ok", data)
	if status >= http.StatusBadRequest {
		envelope = models.Envelope[any]{Status: models.EnvelopeError, Message: "failed"}
	}
	_ = json.NewEncoder(w).Encode(envelope)
}

func (f *fakeVPN) Calls() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.calls...)
}

func (f *fakeVPN) ResetCalls() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = nil
}

func (f *fakeVPN) SetAccount(chatID, id string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.accounts[chatID] = id
}

func (f *fakeVPN) SetFailActions(fail bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.failActions = fail
}

func (f *fakeVPN) SetFailDeletes(fail bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.failDeletes = fail
}

// harness wires the services to a sqlite store and a fake remote server
type harness struct {
	ctx      context.Context
	vpn      *fakeVPN
	server   models.VPNProxy
	user     models.User
	servers  *storage.ServerRepository
	accounts *storage.AccountRepository
	users    *storage.UserRepository
	serverSv *ServerService
	userSv   *UserService
	account  *AccountService
	config   *ConfigService
}

func newHarness(t *testing.T) *harness {
	t.Helper()

	logger := logrus.New()
	logger.SetOutput(io.Discard)

	db, err := storage.Open(storage.DriverSQLite, filepath.Join(t.TempDir(), "bus.db"), logger)
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	h := &harness{ctx: context.Background(), vpn: newFakeVPN(t)}
	h.servers = storage.NewServerRepository(db)
	h.accounts = storage.NewAccountRepository(db)
	h.users = storage.NewUserRepository(db, h.accounts)

	remote := vpnclient.NewClient(5*time.Second, false, logger)
	locks := NewKeyedLocker()

	h.serverSv = NewServerService(h.servers, h.accounts, logger)
	h.userSv = NewUserService(h.users, logger)
	h.account = NewAccountService(h.accounts, h.users, h.servers, remote, locks, logger)
	h.config = NewConfigService(h.accounts, h.servers, remote, locks, logger)

	server, err := h.serverSv.Save(h.ctx, &models.VPNProxy{URL: h.vpn.srv.URL, Token: "tok", Country: "NL", MaxConnection: 100})
	require.NoError(t, err)
	h.server = *server

	user, err := h.userSv.Save(h.ctx, &models.User{ChatID: "100", UserName: "alice"})
	require.NoError(t, err)
	h.user = *user

	return h
}

// createAccount provisions an account for the harness user
func (h *harness) createAccount(t *testing.T) *models.Account {
	t.Helper()
	account, err := h.account.Save(h.ctx, &models.Account{ChatID: h.user.ChatID, ServerID: h.server.ID})
	require.NoError(t, err)
	h.vpn.ResetCalls()
	return account
}
