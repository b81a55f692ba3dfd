// Package coingecko fetches live coin prices from the CoinGecko public API.
//
// Prices flow one way: the Client fetches quotes in USD, and a PriceBook
// keeps the latest quote per coin for lock-free-ish concurrent reads.
package coingecko

import (
	"bufio"
	"bytes"
	"crypto/sha1"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httputil"
	"net/url"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/PaesslerAG/jsonpath"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"

	coinflip "github.com/avi-xyz/CoinFlip-sub001"
)

// DefaultBaseURL is the public CoinGecko API root.
const DefaultBaseURL = "https://api.coingecko.com/api/v3"

// Client queries CoinGecko for spot prices.
type Client struct {
	baseURL string
	http    *http.Client
}

// NewClient returns a client against the public API, caching responses
// on disk for cacheTTL so bursts of refreshes do not hammer the free tier.
func NewClient(cacheTTL time.Duration) *Client {
	return &Client{
		baseURL: DefaultBaseURL,
		http:    cached(cacheTTL),
	}
}

// NewClientWith returns a client against a custom endpoint with a plain
// http.Client. Used by tests and self-hosted mirrors.
func NewClientWith(baseURL string, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = new(http.Client)
	}
	return &Client{baseURL: strings.TrimRight(baseURL, "/"), http: httpClient}
}

// SimplePrices fetches the current USD price for each coin ID.
// Coins unknown to CoinGecko are silently absent from the result.
func (c *Client) SimplePrices(ids []string) (map[string]coinflip.Money, error) {
	if len(ids) == 0 {
		return map[string]coinflip.Money{}, nil
	}
	sorted := append([]string(nil), ids...)
	sort.Strings(sorted)

	addr := fmt.Sprintf("%s/simple/price?ids=%s&vs_currencies=usd",
		c.baseURL, url.QueryEscape(strings.Join(sorted, ",")))

	var jobj any
	if err := jwget(c.http, addr, &jobj); err != nil {
		return nil, fmt.Errorf("coingecko simple/price: %w", err)
	}

	prices := make(map[string]coinflip.Money, len(sorted))
	for _, id := range sorted {
		path := fmt.Sprintf("$[%q][%q]", id, "usd")
		jval, err := jsonpath.Get(path, jobj)
		if err != nil {
			// unknown id: the API just omits the key
			continue
		}
		val, ok := jval.(float64)
		if !ok {
			return nil, fmt.Errorf("coingecko simple/price: %q is not a number: %v", id, jval)
		}
		prices[id] = coinflip.M(decimal.NewFromFloat(val))
	}
	return prices, nil
}

// diskCache is a cheap response cache keyed by URL and time bucket, so
// a cached entry expires after roughly ttl.
type diskCache struct {
	base http.RoundTripper
	ttl  time.Duration
}

func (c *diskCache) RoundTrip(req *http.Request) (resp *http.Response, err error) {
	bucket := time.Now().Truncate(c.ttl).Format(time.RFC3339)
	key := fmt.Sprintf("%s %s %s", bucket, req.Method, req.URL.String())
	key = fmt.Sprintf("cfs-%x", sha1.Sum([]byte(key)))

	cachedResp, err := c.get(key, req)
	if err == nil { // Cache hit
		return cachedResp, nil
	}

	resp, err = c.base.RoundTrip(req)
	if err != nil {
		return nil, err
	}
	log.Debug().
		Str("method", resp.Request.Method).
		Str("host", resp.Request.URL.Host).
		Str("path", resp.Request.URL.Path).
		Str("status", resp.Status).
		Msg("coingecko fetch")
	if resp.StatusCode >= 300 {
		return resp, nil
	}

	if err := c.put(key, resp); err != nil {
		log.Warn().Err(err).Msg("price cache write failed (ignored)")
	}
	return resp, nil
}

func (c *diskCache) get(key string, req *http.Request) (resp *http.Response, err error) {
	file := filepath.Join(os.TempDir(), key)
	content, err := os.ReadFile(file)
	if err != nil {
		return nil, err
	}
	return http.ReadResponse(bufio.NewReader(bytes.NewBuffer(content)), req)
}

func (c *diskCache) put(key string, resp *http.Response) (err error) {
	file := filepath.Join(os.TempDir(), key)

	content, err := httputil.DumpResponse(resp, true)
	if err != nil {
		return err
	}

	f, err := os.Create(file)
	if err != nil {
		return err
	}

	_, err = f.Write(content)
	f.Close()
	return err
}

// cached returns an http client whose responses expire after ttl.
func cached(ttl time.Duration) *http.Client {
	if ttl <= 0 {
		ttl = time.Minute
	}
	client := new(http.Client)
	client.Transport = &diskCache{base: http.DefaultTransport, ttl: ttl}
	return client
}

// jwget performs an HTTP GET request and unmarshals the JSON response
// into the provided data structure.
func jwget(client *http.Client, addr string, data any) error {
	resp, err := client.Get(addr)
	if err != nil {
		return err
	}
	if resp.StatusCode != 200 {
		return fmt.Errorf("cannot http GET %v/%v: %v", resp.Request.URL.Host, resp.Request.URL.Path, resp.Status)
	}
	var buf bytes.Buffer
	_, err = io.Copy(&buf, resp.Body)
	if err != nil {
		return err
	}
	resp.Body.Close()
	return json.Unmarshal(buf.Bytes(), data)
}
