package integration

import (
	"fmt"
	"net/http"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func (a *testApp) tokenFor(t *testing.T) string {
	t.Helper()
	token, _, err := a.tokens.Generate(uuid.New())
	require.NoError(t, err)
	return token
}

// TestConcurrentCreates_DistinctActors verifies that entries from different
// members never block each other and every one of them is stored.
func TestConcurrentCreates_DistinctActors(t *testing.T) {
	app := newTestApp(t)

	const concurrency = 50
	tokens := make([]string, concurrency)
	for i := range tokens {
		tokens[i] = app.tokenFor(t)
	}

	var (
		wg      sync.WaitGroup
		created atomic.Int64
		failed  atomic.Int64
	)

	for i := 0; i < concurrency; i++ {
		wg.Add(1)
		go func(idx int) {
			defer wg.Done()
			code, _ := app.callAs(t, tokens[idx], http.MethodPost, "/api/v1/transactions",
				income("2025-04-01", fmt.Sprintf("%d", idx+1), fmt.Sprintf("Gift %d", idx)))
			if code == http.StatusCreated {
				created.Add(1)
			} else {
				failed.Add(1)
			}
		}(i)
	}
	wg.Wait()

	assert.Equal(t, int64(concurrency), created.Load())
	assert.Zero(t, failed.Load())
	assert.Equal(t, concurrency, app.txRepo.count())

	// 1 + 2 + ... + 50
	d := app.dashboard(t, 2025)
	assert.Equal(t, "1275", d.Cash.TotalBalance.String())
	assert.Len(t, d.Transactions, concurrency)
}

// TestConcurrentCreates_SameActor verifies that a member cannot double
// submit: racing submits either succeed or are rejected with 409, and only
// the successful ones are stored.
func TestConcurrentCreates_SameActor(t *testing.T) {
	app := newTestApp(t)

	const concurrency = 20
	var (
		wg        sync.WaitGroup
		created   atomic.Int64
		conflicts atomic.Int64
		other     atomic.Int64
	)

	for i := 0; i < concurrency; i++ {
		wg.Add(1)
		go func(idx int) {
			defer wg.Done()
			code, env := app.call(t, http.MethodPost, "/api/v1/transactions",
				income("2025-04-02", "10", fmt.Sprintf("Entry %d", idx)))
			switch {
			case code == http.StatusCreated:
				created.Add(1)
			case code == http.StatusConflict && env.ErrorCode == "FORM_001":
				conflicts.Add(1)
			default:
				other.Add(1)
			}
		}(i)
	}
	wg.Wait()

	assert.Zero(t, other.Load())
	assert.GreaterOrEqual(t, created.Load(), int64(1))
	assert.Equal(t, int64(concurrency), created.Load()+conflicts.Load())
	assert.Equal(t, int(created.Load()), app.txRepo.count())
}

// TestConcurrentBankUpdates verifies that every update appends its own
// snapshot and none is lost.
func TestConcurrentBankUpdates(t *testing.T) {
	app := newTestApp(t)

	const concurrency = 25
	tokens := make([]string, concurrency)
	for i := range tokens {
		tokens[i] = app.tokenFor(t)
	}

	var (
		wg sync.WaitGroup
		ok atomic.Int64
	)

	for i := 0; i < concurrency; i++ {
		wg.Add(1)
		go func(idx int) {
			defer wg.Done()
			code, _ := app.callAs(t, tokens[idx], http.MethodPost, "/api/v1/balances/bank",
				map[string]interface{}{"amount": 1000 + idx, "year": 2025})
			if code == http.StatusCreated {
				ok.Add(1)
			}
		}(i)
	}
	wg.Wait()

	assert.Equal(t, int64(concurrency), ok.Load())
	assert.Equal(t, concurrency, app.bankRepo.count())

	code, env := app.call(t, http.MethodGet, "/api/v1/balances/bank/history?limit=100", nil)
	require.Equal(t, http.StatusOK, code)
	assert.Contains(t, string(env.Data), `"amount"`)

	// The dashboard reflects one of the written snapshots.
	d := app.dashboard(t, 2025)
	assert.True(t, d.Bank.Known)
	assert.True(t, d.Bank.Amount.IntPart() >= 1000 && d.Bank.Amount.IntPart() < 1000+concurrency)
}
