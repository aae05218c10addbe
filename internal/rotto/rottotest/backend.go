// Package rottotest provides an in-process fake of the Rotto backend.
package rottotest

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/Veraticus/rotto/internal/model"
	"github.com/Veraticus/rotto/internal/rotto"
)

// Request is one call the backend received.
type Request struct {
	Method        string
	Path          string
	Authorization string
	RequestID     string
}

type wireItem struct {
	AccountTime         string `json:"accountTime"`
	TransferName        string `json:"transferName"`
	DepositOrWithdrawal int    `json:"depositOrWithdrawal"`
	Amount              int64  `json:"amount"`
}

// Backend serves the auth and history endpoints from memory.
type Backend struct {
	failures     map[string][]int
	PhoneNum     string
	Password     string
	AccountCode  string
	accessToken  string
	refreshToken string
	Records      []model.TransactionRecord
	requests     []Request
	Latency      time.Duration
	issued       int
	mu           sync.Mutex
	// RequireAuth rejects history reads without the current access token.
	RequireAuth bool
}

// NewBackend creates a backend that knows one account.
func NewBackend(accountCode string, records []model.TransactionRecord) *Backend {
	return &Backend{
		AccountCode: accountCode,
		Records:     records,
		PhoneNum:    "01012345678",
		Password:    "rotto1234",
		failures:    make(map[string][]int),
	}
}

// FailNext makes the next calls to path answer with the given status codes.
func (b *Backend) FailNext(path string, statuses ...int) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.failures[path] = append(b.failures[path], statuses...)
}

// ExpireAccessToken invalidates the current access token but keeps the refresh token.
func (b *Backend) ExpireAccessToken() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.accessToken = "expired"
}

// IssueTokens mints a token pair as if the user had logged in.
func (b *Backend) IssueTokens() *model.TokenPair {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.issueLocked()
}

// Requests returns a copy of every request received.
func (b *Backend) Requests() []Request {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make([]Request, len(b.requests))
	copy(out, b.requests)
	return out
}

func (b *Backend) issueLocked() *model.TokenPair {
	b.issued++
	b.accessToken = fmt.Sprintf("access-%d", b.issued)
	if b.refreshToken == "" {
		b.refreshToken = fmt.Sprintf("refresh-%d", b.issued)
	}
	return &model.TokenPair{
		GrantType:    "Bearer",
		AccessToken:  b.accessToken,
		RefreshToken: b.refreshToken,
	}
}

// ServeHTTP implements http.Handler.
func (b *Backend) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	b.mu.Lock()
	b.requests = append(b.requests, Request{
		Method:        r.Method,
		Path:          r.URL.Path,
		Authorization: r.Header.Get("Authorization"),
		RequestID:     r.Header.Get(rotto.RequestIDHeader),
	})
	var status int
	if queued := b.failures[r.URL.Path]; len(queued) > 0 {
		status = queued[0]
		b.failures[r.URL.Path] = queued[1:]
	}
	latency := b.Latency
	b.mu.Unlock()

	if latency > 0 {
		select {
		case <-time.After(latency):
		case <-r.Context().Done():
			return
		}
	}

	if status != 0 {
		http.Error(w, http.StatusText(status), status)
		return
	}

	switch {
	case r.URL.Path == rotto.LoginPath && r.Method == http.MethodPost:
		b.login(w, r)
	case r.URL.Path == rotto.RefreshPath && r.Method == http.MethodPost:
		b.refresh(w, r)
	case r.URL.Path == rotto.LogoutPath && r.Method == http.MethodGet:
		b.logout(w, r.URL.Query())
	case strings.HasPrefix(r.URL.Path, "/account/") && r.Method == http.MethodGet:
		b.history(w, r)
	default:
		http.NotFound(w, r)
	}
}

func (b *Backend) login(w http.ResponseWriter, r *http.Request) {
	var req rotto.LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "bad request", http.StatusBadRequest)
		return
	}

	b.mu.Lock()
	ok := req.PhoneNum == b.PhoneNum && req.Password == b.Password
	var pair *model.TokenPair
	if ok {
		pair = b.issueLocked()
	}
	b.mu.Unlock()

	if !ok {
		http.Error(w, "로그인 도중 오류 발생.", http.StatusUnauthorized)
		return
	}
	writeTokens(w, pair)
}

func (b *Backend) refresh(w http.ResponseWriter, r *http.Request) {
	token := strings.TrimPrefix(r.Header.Get("Authorization"), "Bearer ")

	b.mu.Lock()
	ok := token != "" && token == b.refreshToken
	var pair *model.TokenPair
	if ok {
		pair = b.issueLocked()
	}
	b.mu.Unlock()

	if !ok {
		http.Error(w, "invalid refresh token", http.StatusUnauthorized)
		return
	}
	writeTokens(w, pair)
}

func (b *Backend) logout(w http.ResponseWriter, q url.Values) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if q.Get("refreshToken") == "" || q.Get("refreshToken") != b.refreshToken {
		http.Error(w, "유효하지 않은 토큰입니다.", http.StatusBadRequest)
		return
	}
	b.accessToken = ""
	b.refreshToken = ""
	_, _ = w.Write([]byte("로그아웃 성공!"))
}

func (b *Backend) history(w http.ResponseWriter, r *http.Request) {
	b.mu.Lock()
	authorized := !b.RequireAuth ||
		(b.accessToken != "" && r.Header.Get("Authorization") == "Bearer "+b.accessToken)
	account := b.AccountCode
	records := b.Records
	b.mu.Unlock()

	if !authorized {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}

	var filter model.Filter
	switch r.URL.Path {
	case rotto.HistoryPath(account, model.FilterAll):
		filter = model.FilterAll
	case rotto.HistoryPath(account, model.FilterDeposit):
		filter = model.FilterDeposit
	case rotto.HistoryPath(account, model.FilterWithdrawal):
		filter = model.FilterWithdrawal
	default:
		http.Error(w, "account not found", http.StatusNotFound)
		return
	}

	items := make([]wireItem, 0, len(records))
	for _, rec := range records {
		if !filter.Matches(rec) {
			continue
		}
		items = append(items, wireItem{
			AccountTime:         rec.Time.UTC().Format(rotto.AccountTimeLayout),
			TransferName:        rec.Counterparty,
			DepositOrWithdrawal: rec.Direction.Code(),
			Amount:              rec.Amount,
		})
	}

	writeJSON(w, map[string]any{"accountHistoryListDtoss": items})
}

func writeTokens(w http.ResponseWriter, pair *model.TokenPair) {
	writeJSON(w, rotto.TokenResponse{
		GrantType:    pair.GrantType,
		AccessToken:  pair.AccessToken,
		RefreshToken: pair.RefreshToken,
	})
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(v)
}
