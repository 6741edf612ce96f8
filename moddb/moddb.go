// Package moddb turns ModDB download pages into direct download links.
package moddb

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/cenkalti/backoff/v4"
	"github.com/itchio/httpkit/timeout"
	"github.com/itchio/wharf/state"
	"github.com/pkg/errors"
)

const host = "moddb.com"

const maxRetries = 3

// IsModDBURL returns true for pages hosted on ModDB
func IsModDBURL(rawurl string) bool {
	u, err := url.Parse(rawurl)
	if err != nil {
		return false
	}
	return strings.TrimPrefix(strings.ToLower(u.Hostname()), "www.") == host
}

// Helper follows ModDB's download pages until it finds the file
type Helper struct {
	Client   *http.Client
	Consumer *state.Consumer

	// BaseBackOff is used between retries, defaults to exponential
	BaseBackOff func() backoff.BackOff
}

func NewHelper(consumer *state.Consumer) *Helper {
	return &Helper{
		Client:   timeout.NewDefaultClient(),
		Consumer: consumer,
	}
}

// Matches returns true for ModDB pages that aren't direct links already
func (h *Helper) Matches(rawurl string) bool {
	if !IsModDBURL(rawurl) {
		return false
	}
	return !strings.Contains(rawurl, "/downloads/mirror/")
}

// Rewrite returns the direct download link for a ModDB page: the
// first mirror of the "start download" page it links to.
func (h *Helper) Rewrite(ctx context.Context, pageURL string) (string, error) {
	startURL, err := h.findLink(ctx, pageURL, `a[href*="/downloads/start/"]`)
	if err != nil {
		return "", err
	}
	if startURL == "" {
		if strings.Contains(pageURL, "/downloads/start/") {
			startURL = pageURL
		} else {
			return "", errors.Errorf("no download link found on %s", pageURL)
		}
	}

	mirrorURL, err := h.findLink(ctx, startURL, `a[href*="/downloads/mirror/"]`)
	if err != nil {
		return "", err
	}
	if mirrorURL == "" {
		// some pages redirect straight to the file
		return startURL, nil
	}

	h.consumer().Debugf("Resolved %s to %s", pageURL, mirrorURL)
	return mirrorURL, nil
}

func (h *Helper) consumer() *state.Consumer {
	if h.Consumer == nil {
		return &state.Consumer{}
	}
	return h.Consumer
}

func (h *Helper) newBackOff(ctx context.Context) backoff.BackOff {
	var b backoff.BackOff
	if h.BaseBackOff != nil {
		b = h.BaseBackOff()
	} else {
		eb := backoff.NewExponentialBackOff()
		eb.InitialInterval = 500 * time.Millisecond
		eb.MaxElapsedTime = 30 * time.Second
		b = eb
	}
	return backoff.WithContext(backoff.WithMaxRetries(b, maxRetries), ctx)
}

// findLink fetches a page and returns the absolute href of the first
// element matching selector, or "" if there is none.
func (h *Helper) findLink(ctx context.Context, pageURL string, selector string) (string, error) {
	base, err := url.Parse(pageURL)
	if err != nil {
		return "", errors.WithStack(err)
	}

	var doc *goquery.Document
	op := func() error {
		req, err := http.NewRequest("GET", pageURL, nil)
		if err != nil {
			return backoff.Permanent(errors.WithStack(err))
		}
		req = req.WithContext(ctx)

		res, err := h.Client.Do(req)
		if err != nil {
			h.consumer().Debugf("Fetching %s failed: %s", pageURL, err.Error())
			return err
		}
		defer res.Body.Close()

		if res.StatusCode >= 500 {
			return fmt.Errorf("%s returned HTTP %d", pageURL, res.StatusCode)
		}
		if res.StatusCode != 200 {
			return backoff.Permanent(errors.Errorf("%s returned HTTP %d", pageURL, res.StatusCode))
		}

		doc, err = goquery.NewDocumentFromReader(res.Body)
		if err != nil {
			return backoff.Permanent(errors.Wrapf(err, "parsing %s", pageURL))
		}
		return nil
	}

	err = backoff.Retry(op, h.newBackOff(ctx))
	if err != nil {
		return "", err
	}

	href, ok := doc.Find(selector).First().Attr("href")
	if !ok || href == "" {
		return "", nil
	}

	link, err := base.Parse(href)
	if err != nil {
		return "", errors.WithStack(err)
	}
	return link.String(), nil
}
