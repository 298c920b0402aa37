package service

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"lingo_learn_client/internal/client"
	"lingo_learn_client/internal/config"
	"lingo_learn_client/internal/model"
	"lingo_learn_client/internal/repository"
	"lingo_learn_client/pkg/kvstore"
)

func newUpstream(t *testing.T, mux *http.ServeMux) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func newAPIClient(srv *httptest.Server, tokens client.TokenSource) *client.Client {
	return client.New(&config.APIConfig{
		BaseURL:       srv.URL,
		Timeout:       2 * time.Second,
		DeviceName:    "test-device",
		RatePerSecond: 1000,
	}, tokens)
}

func emptyTokens() *repository.TokenStore {
	return repository.NewTokenStore(kvstore.NewMemory(), "")
}

func writeJSON(w http.ResponseWriter, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(v)
}

// seedProfile 构造带默认上限红心的profile，各用例按需覆写字段
func seedProfile(hearts, xp int, lastActive time.Time, streak int) *model.UserProfile {
	p := model.DefaultProfile()
	p.User = model.User{ID: "u1", Name: "Ana"}
	p.Stats.Hearts = hearts
	p.Stats.SetXP(xp)
	p.Stats.LastActiveDate = lastActive
	p.Stats.Streak = streak
	p.Stats.LongestStreak = streak
	return p
}
