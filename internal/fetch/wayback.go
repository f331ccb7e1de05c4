// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package fetch

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"

	"go.uber.org/zap"

	"github.com/pdiddy/linknotes/internal/httputil"
)

// waybackAPIBase is the Wayback Machine availability endpoint. Declared as
// a var so tests can substitute an httptest server.
var waybackAPIBase = "https://archive.org/wayback/available"

// ErrNoSnapshot is returned when the Wayback Machine has no usable snapshot.
var ErrNoSnapshot = errors.New("no archived snapshot available")

// availabilityResponse captures the fields we need from the availability API.
type availabilityResponse struct {
	ArchivedSnapshots struct {
		Closest *waybackSnapshot `json:"closest"`
	} `json:"archived_snapshots"`
}

// waybackSnapshot describes the closest archived capture of a URL.
type waybackSnapshot struct {
	Available bool   `json:"available"`
	URL       string `json:"url"`
	Timestamp string `json:"timestamp"`
	Status    string `json:"status"`
}

// Snapshot looks up the closest Wayback Machine capture of rawURL and
// fetches it. The returned Result's URL is the snapshot URL; RequestedURL is
// rawURL. It returns ErrNoSnapshot when no capture is available.
func (f *Fetcher) Snapshot(ctx context.Context, rawURL string) (*Result, error) {
	snap, err := f.closestSnapshot(ctx, rawURL)
	if err != nil {
		return nil, err
	}
	f.log.Debug("snapshot found",
		zap.String("url", rawURL),
		zap.String("snapshot", snap.URL),
		zap.String("timestamp", snap.Timestamp))

	res, err := f.Page(ctx, snap.URL)
	if err != nil {
		return nil, fmt.Errorf("fetching snapshot %s: %w", snap.URL, err)
	}
	res.RequestedURL = rawURL
	return res, nil
}

func (f *Fetcher) closestSnapshot(ctx context.Context, rawURL string) (*waybackSnapshot, error) {
	apiURL := f.waybackAPI + "?url=" + url.QueryEscape(rawURL)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, apiURL, nil)
	if err != nil {
		return nil, fmt.Errorf("creating Wayback request: %w", err)
	}
	req.Header.Set("User-Agent", f.cfg.UserAgent)
	req.Header.Set("Accept", "application/json")

	resp, err := httputil.DoWithRetry(ctx, f.client, req, f.cfg.MaxRetries)
	if err != nil {
		return nil, fmt.Errorf("Wayback API request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("Wayback API returned HTTP %d", resp.StatusCode)
	}

	var ar availabilityResponse
	if err := json.NewDecoder(resp.Body).Decode(&ar); err != nil {
		return nil, fmt.Errorf("parsing Wayback response: %w", err)
	}

	snap := ar.ArchivedSnapshots.Closest
	if snap == nil || !snap.Available || snap.URL == "" {
		return nil, ErrNoSnapshot
	}
	return snap, nil
}
