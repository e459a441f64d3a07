// Copyright (c) 2025 The Babylon developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package chainfee

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/babylonlabs-io/vault-collateral/pkg/btcunit"
	"github.com/lightningnetwork/lnd/ticker"
)

const (
	// DefaultPollInterval is how often the web source refreshes its
	// quote.
	DefaultPollInterval = time.Minute

	// defaultRequestTimeout bounds a single quote fetch.
	defaultRequestTimeout = 10 * time.Second
)

// Tier selects which confirmation-urgency estimate to use from the
// recommended-fees response.
type Tier uint8

const (
	// TierFastest targets inclusion in the next block.
	TierFastest Tier = iota

	// TierHalfHour targets inclusion within roughly three blocks.
	TierHalfHour

	// TierHour targets inclusion within roughly six blocks.
	TierHour

	// TierEconomy tolerates longer confirmation times.
	TierEconomy

	// TierMinimum is the lowest rate the network currently relays.
	TierMinimum
)

// recommendedFees mirrors the JSON body of a mempool.space-style
// `fees/recommended` endpoint. Rates are in sat/vB and may be fractional.
type recommendedFees struct {
	FastestFee  float64 `json:"fastestFee"`
	HalfHourFee float64 `json:"halfHourFee"`
	HourFee     float64 `json:"hourFee"`
	EconomyFee  float64 `json:"economyFee"`
	MinimumFee  float64 `json:"minimumFee"`
}

// forTier returns the rate for the given tier, defaulting to the half-hour
// estimate for unknown tiers.
func (r *recommendedFees) forTier(tier Tier) float64 {
	switch tier {
	case TierFastest:
		return r.FastestFee
	case TierHalfHour:
		return r.HalfHourFee
	case TierHour:
		return r.HourFee
	case TierEconomy:
		return r.EconomyFee
	case TierMinimum:
		return r.MinimumFee
	default:
		return r.HalfHourFee
	}
}

// WebAPISource polls a public fee-estimation endpoint and caches the last
// good quote. A fetch failure keeps the previous quote in place; there is no
// retry schedule beyond the regular polling cadence.
type WebAPISource struct {
	url    string
	tier   Tier
	client *http.Client
	ticker ticker.Ticker

	mtx      sync.RWMutex
	rate     btcunit.SatPerVByte
	haveRate bool

	started sync.Once
	stopped sync.Once
	quit    chan struct{}
	wg      sync.WaitGroup
}

// NewWebAPISource creates a web source polling the given URL. The ticker
// drives the refresh cadence; pass ticker.New(DefaultPollInterval) for the
// standard one-minute refresh.
func NewWebAPISource(url string, tier Tier, t ticker.Ticker) *WebAPISource {
	return &WebAPISource{
		url:    url,
		tier:   tier,
		client: &http.Client{Timeout: defaultRequestTimeout},
		ticker: t,
		quit:   make(chan struct{}),
	}
}

// Start performs an initial fetch and begins the polling loop. A failure of
// the initial fetch is logged but not fatal; the source serves ErrNoQuote
// until the first successful poll.
func (w *WebAPISource) Start(ctx context.Context) {
	w.started.Do(func() {
		if err := w.refresh(ctx); err != nil {
			log.Warnf("Initial fee rate fetch from %s failed: %v",
				w.url, err)
		}

		w.ticker.Resume()

		w.wg.Add(1)
		go w.pollLoop(ctx)
	})
}

// Stop halts the polling loop and releases the ticker.
func (w *WebAPISource) Stop() {
	w.stopped.Do(func() {
		close(w.quit)
		w.ticker.Stop()
		w.wg.Wait()
	})
}

// FeeRate returns the most recently fetched quote, or ErrNoQuote if no
// successful fetch has happened yet.
func (w *WebAPISource) FeeRate() (btcunit.SatPerVByte, error) {
	w.mtx.RLock()
	defer w.mtx.RUnlock()

	if !w.haveRate {
		return btcunit.ZeroSatPerVByte, ErrNoQuote
	}

	return w.rate, nil
}

// pollLoop refreshes the quote on every tick until the source is stopped.
func (w *WebAPISource) pollLoop(ctx context.Context) {
	defer w.wg.Done()

	for {
		select {
		case <-w.ticker.Ticks():
			if err := w.refresh(ctx); err != nil {
				log.Warnf("Fee rate refresh from %s failed, "+
					"keeping previous quote: %v",
					w.url, err)
			}

		case <-ctx.Done():
			return

		case <-w.quit:
			return
		}
	}
}

// refresh fetches the endpoint and swaps in the new quote.
func (w *WebAPISource) refresh(ctx context.Context) error {
	req, err := http.NewRequestWithContext(
		ctx, http.MethodGet, w.url, nil,
	)
	if err != nil {
		return fmt.Errorf("building fee request: %w", err)
	}

	resp, err := w.client.Do(req)
	if err != nil {
		return fmt.Errorf("fetching fee rates: %w", err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("fee endpoint returned status %d",
			resp.StatusCode)
	}

	var fees recommendedFees
	if err := json.NewDecoder(resp.Body).Decode(&fees); err != nil {
		return fmt.Errorf("decoding fee response: %w", err)
	}

	rate := btcunit.SatPerVByteFromFloat(fees.forTier(w.tier))
	if rate.LessThanOrEqual(btcunit.ZeroSatPerVByte) {
		return fmt.Errorf("endpoint reported non-positive rate %v",
			fees.forTier(w.tier))
	}

	w.mtx.Lock()
	w.rate = rate
	w.haveRate = true
	w.mtx.Unlock()

	log.Debugf("Fee rate updated to %s", rate)

	return nil
}
