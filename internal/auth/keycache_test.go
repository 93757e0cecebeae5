package auth

import (
	"context"
	"crypto/rsa"
	"sync"
	"testing"
	"time"

	"github.com/SscSPs/family_bank/internal/apperrors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestKeyCacheFetchesOnceAndCaches(t *testing.T) {
	a, _ := testKeys(t)
	fetcher := newFakeFetcher(map[string]*rsa.PublicKey{"k1": &a.PublicKey})
	cache := NewKeyCache(fetcher)

	for i := 0; i < 3; i++ {
		k, err := cache.Key(context.Background(), testIssuer, testJWKSURL, "k1")
		require.NoError(t, err)
		assert.Equal(t, &a.PublicKey, k)
	}
	assert.EqualValues(t, 1, fetcher.calls.Load())
}

func TestKeyCacheUnknownKidRefreshesThenFails(t *testing.T) {
	a, _ := testKeys(t)
	fetcher := newFakeFetcher(map[string]*rsa.PublicKey{"k1": &a.PublicKey})
	cache := NewKeyCache(fetcher)

	_, err := cache.Key(context.Background(), testIssuer, testJWKSURL, "k1")
	require.NoError(t, err)

	_, err = cache.Key(context.Background(), testIssuer, testJWKSURL, "nope")
	assert.ErrorIs(t, err, apperrors.ErrKeyNotFound)
	assert.EqualValues(t, 2, fetcher.calls.Load())
}

func TestKeyCacheRefreshesAfterInterval(t *testing.T) {
	a, b := testKeys(t)
	clock := &fakeClock{now: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)}
	fetcher := newFakeFetcher(map[string]*rsa.PublicKey{"k1": &a.PublicKey})
	cache := NewKeyCache(fetcher, WithClock(clock.Now), WithRefreshInterval(time.Hour))

	_, err := cache.Key(context.Background(), testIssuer, testJWKSURL, "k1")
	require.NoError(t, err)

	clock.Advance(30 * time.Minute)
	_, err = cache.Key(context.Background(), testIssuer, testJWKSURL, "k1")
	require.NoError(t, err)
	assert.EqualValues(t, 1, fetcher.calls.Load())

	fetcher.set(map[string]*rsa.PublicKey{"k1": &b.PublicKey}, nil)
	clock.Advance(31 * time.Minute)
	k, err := cache.Key(context.Background(), testIssuer, testJWKSURL, "k1")
	require.NoError(t, err)
	assert.Equal(t, &b.PublicKey, k)
	assert.EqualValues(t, 2, fetcher.calls.Load())
}

func TestKeyCacheFallsBackToStaleSetOnFetchFailure(t *testing.T) {
	a, _ := testKeys(t)
	clock := &fakeClock{now: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)}
	fetcher := newFakeFetcher(map[string]*rsa.PublicKey{"k1": &a.PublicKey})
	cache := NewKeyCache(fetcher, WithClock(clock.Now))

	_, err := cache.Key(context.Background(), testIssuer, testJWKSURL, "k1")
	require.NoError(t, err)

	fetcher.set(nil, errFetch)
	clock.Advance(2 * time.Hour)

	k, err := cache.Key(context.Background(), testIssuer, testJWKSURL, "k1")
	require.NoError(t, err)
	assert.Equal(t, &a.PublicKey, k)

	_, err = cache.Key(context.Background(), testIssuer, testJWKSURL, "k2")
	assert.ErrorIs(t, err, apperrors.ErrKeyNotFound)
	assert.Contains(t, err.Error(), errFetch.Error())
}

func TestKeyCacheSingleFlight(t *testing.T) {
	a, _ := testKeys(t)
	fetcher := newFakeFetcher(map[string]*rsa.PublicKey{"k1": &a.PublicKey})
	fetcher.started = make(chan struct{}, 1)
	fetcher.release = make(chan struct{})
	cache := NewKeyCache(fetcher)

	const callers = 20
	var wg sync.WaitGroup
	errs := make(chan error, callers)

	call := func() {
		defer wg.Done()
		_, err := cache.Key(context.Background(), testIssuer, testJWKSURL, "k1")
		errs <- err
	}

	wg.Add(1)
	go call()
	<-fetcher.started

	wg.Add(callers - 1)
	for i := 1; i < callers; i++ {
		go call()
	}
	time.Sleep(20 * time.Millisecond)
	close(fetcher.release)

	wg.Wait()
	close(errs)
	for err := range errs {
		assert.NoError(t, err)
	}
	assert.EqualValues(t, 1, fetcher.calls.Load())
}

func TestKeyCacheWaiterHonoursContext(t *testing.T) {
	a, _ := testKeys(t)
	fetcher := newFakeFetcher(map[string]*rsa.PublicKey{"k1": &a.PublicKey})
	fetcher.started = make(chan struct{}, 1)
	fetcher.release = make(chan struct{})
	cache := NewKeyCache(fetcher)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		_, err := cache.Key(ctx, testIssuer, testJWKSURL, "k1")
		done <- err
	}()
	<-fetcher.started
	cancel()

	select {
	case err := <-done:
		assert.ErrorIs(t, err, apperrors.ErrKeyNotFound)
	case <-time.After(2 * time.Second):
		t.Fatal("waiter did not return after cancellation")
	}

	close(fetcher.release)
	require.Eventually(t, func() bool {
		_, err := cache.Key(context.Background(), testIssuer, testJWKSURL, "k1")
		return err == nil
	}, 2*time.Second, 10*time.Millisecond)
}
