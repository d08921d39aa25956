package sessions_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/jrsteele09/go-api-client/internal/errors"
	"github.com/jrsteele09/go-api-client/sessions"
	"github.com/jrsteele09/go-api-client/token"
	"github.com/stretchr/testify/require"
)

const testSessionID = "session-1"

func TestGetUnknownSessionReturnsEmptyRecord(t *testing.T) {
	repo := sessions.NewInMemoryRepo(time.Hour)

	rec := repo.Get(testSessionID)
	require.Equal(t, testSessionID, rec.ID)
	require.False(t, rec.HasToken())
	require.Empty(t, rec.PendingReturnPath)
	require.Zero(t, rec.Version)
	require.Zero(t, repo.Len())
}

func TestSetTokenReplacesWholesale(t *testing.T) {
	repo := sessions.NewInMemoryRepo(time.Hour)
	expiry := time.Now().Add(time.Hour)

	_, err := repo.SetToken(testSessionID, token.New("access-1", "refresh-1", expiry))
	require.NoError(t, err)
	rec, err := repo.SetToken(testSessionID, token.New("access-2", "", expiry))
	require.NoError(t, err)

	require.Equal(t, uint64(2), rec.Version)
	got := repo.Get(testSessionID)
	require.True(t, got.HasToken())
	require.Equal(t, "access-2", got.Token.AccessToken())
	require.Empty(t, got.Token.RefreshToken(), "tokens are replaced, never merged")
}

func TestSetTokenRequiresSessionID(t *testing.T) {
	repo := sessions.NewInMemoryRepo(time.Hour)
	_, err := repo.SetToken("", token.New("a", "r", time.Time{}))
	require.True(t, errors.Is(err, errors.ErrSessionIDRequired))
}

func TestGetReturnsCopy(t *testing.T) {
	repo := sessions.NewInMemoryRepo(time.Hour)
	_, err := repo.SetToken(testSessionID, token.New("access-1", "refresh-1", time.Time{}))
	require.NoError(t, err)

	rec := repo.Get(testSessionID)
	replacement := token.New("mutated", "", time.Time{})
	*rec.Token = replacement
	rec.PendingReturnPath = "/mutated"

	got := repo.Get(testSessionID)
	require.Equal(t, "access-1", got.Token.AccessToken())
	require.Empty(t, got.PendingReturnPath)
}

func TestCompareAndSwapToken(t *testing.T) {
	repo := sessions.NewInMemoryRepo(time.Hour)
	rec, err := repo.SetToken(testSessionID, token.New("access-1", "refresh-1", time.Time{}))
	require.NoError(t, err)

	swapped, ok, err := repo.CompareAndSwapToken(testSessionID, rec.Version, token.New("access-2", "refresh-2", time.Time{}))
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, "access-2", swapped.Token.AccessToken())

	// A writer still holding the old version loses and sees the newer token.
	current, ok, err := repo.CompareAndSwapToken(testSessionID, rec.Version, token.New("access-stale", "", time.Time{}))
	require.NoError(t, err)
	require.False(t, ok)
	require.Equal(t, "access-2", current.Token.AccessToken())
	require.Equal(t, "access-2", repo.Get(testSessionID).Token.AccessToken())
}

func TestConcurrentCompareAndSwapKeepsOneOutcome(t *testing.T) {
	repo := sessions.NewInMemoryRepo(time.Hour)
	rec, err := repo.SetToken(testSessionID, token.New("stale", "refresh-1", time.Time{}))
	require.NoError(t, err)

	outcomes := []string{"access-a", "access-b"}
	var wg sync.WaitGroup
	wins := make(chan string, len(outcomes))
	for _, access := range outcomes {
		wg.Add(1)
		go func(access string) {
			defer wg.Done()
			_, ok, err := repo.CompareAndSwapToken(testSessionID, rec.Version, token.New(access, "refresh-"+access, time.Time{}))
			if err == nil && ok {
				wins <- access
			}
		}(access)
	}
	wg.Wait()
	close(wins)

	var winners []string
	for w := range wins {
		winners = append(winners, w)
	}
	require.Len(t, winners, 1)

	final := repo.Get(testSessionID)
	require.Equal(t, winners[0], final.Token.AccessToken())
	require.Equal(t, "refresh-"+winners[0], final.Token.RefreshToken(), "no hybrid of the two outcomes")
}

func TestClearToken(t *testing.T) {
	repo := sessions.NewInMemoryRepo(time.Hour)
	_, err := repo.SetToken(testSessionID, token.New("access-1", "refresh-1", time.Time{}))
	require.NoError(t, err)
	require.NoError(t, repo.SetPendingReturn(testSessionID, "/userCall"))

	require.NoError(t, repo.ClearToken(testSessionID))
	rec := repo.Get(testSessionID)
	require.False(t, rec.HasToken())
	require.Equal(t, "/userCall", rec.PendingReturnPath)

	require.NoError(t, repo.ClearToken("unknown"))
}

func TestPendingReturnIsTakenOnce(t *testing.T) {
	repo := sessions.NewInMemoryRepo(time.Hour)
	require.NoError(t, repo.SetPendingReturn(testSessionID, "/retrieveVatObligations"))

	path, ok := repo.TakePendingReturn(testSessionID)
	require.True(t, ok)
	require.Equal(t, "/retrieveVatObligations", path)

	_, ok = repo.TakePendingReturn(testSessionID)
	require.False(t, ok)

	_, ok = repo.TakePendingReturn("unknown")
	require.False(t, ok)
}

func TestConcurrentTakePendingReturn(t *testing.T) {
	repo := sessions.NewInMemoryRepo(time.Hour)
	require.NoError(t, repo.SetPendingReturn(testSessionID, "/userCall"))

	var wg sync.WaitGroup
	var mu sync.Mutex
	taken := 0
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, ok := repo.TakePendingReturn(testSessionID); ok {
				mu.Lock()
				taken++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()
	require.Equal(t, 1, taken)
}

func TestSessionExpiry(t *testing.T) {
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	repo := sessions.NewInMemoryRepo(time.Hour).WithClock(func() time.Time { return now })

	_, err := repo.SetToken(testSessionID, token.New("access-1", "refresh-1", time.Time{}))
	require.NoError(t, err)
	require.True(t, repo.Get(testSessionID).HasToken())

	now = now.Add(time.Hour)
	require.False(t, repo.Get(testSessionID).HasToken(), "expired sessions read as empty")

	require.Equal(t, 1, repo.DeleteExpired(now))
	require.Zero(t, repo.Len())
}

func TestDelete(t *testing.T) {
	repo := sessions.NewInMemoryRepo(time.Hour)
	_, err := repo.SetToken(testSessionID, token.New("access-1", "", time.Time{}))
	require.NoError(t, err)

	require.NoError(t, repo.Delete(testSessionID))
	require.False(t, repo.Get(testSessionID).HasToken())
	require.True(t, errors.Is(repo.Delete(""), errors.ErrSessionIDRequired))
}

func TestRunJanitorStopsOnCancel(t *testing.T) {
	repo := sessions.NewInMemoryRepo(time.Millisecond)
	_, err := repo.SetToken(testSessionID, token.New("access-1", "", time.Time{}))
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		sessions.RunJanitor(ctx, repo, 5*time.Millisecond)
		close(done)
	}()

	require.Eventually(t, func() bool { return repo.Len() == 0 }, time.Second, 5*time.Millisecond)
	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("janitor did not stop")
	}
}

func TestClearTokenIfVersion(t *testing.T) {
	repo := sessions.NewInMemoryRepo(time.Hour)
	rec, err := repo.SetToken(testSessionID, token.New("access-1", "refresh-1", time.Time{}))
	require.NoError(t, err)
	_, err = repo.SetToken(testSessionID, token.New("access-2", "refresh-2", time.Time{}))
	require.NoError(t, err)

	require.False(t, repo.ClearTokenIfVersion(testSessionID, rec.Version), "newer token must survive")
	require.True(t, repo.Get(testSessionID).HasToken())

	current := repo.Get(testSessionID)
	require.True(t, repo.ClearTokenIfVersion(testSessionID, current.Version))
	require.False(t, repo.Get(testSessionID).HasToken())
	require.False(t, repo.ClearTokenIfVersion("unknown", 0))
}
