package http

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sync/atomic"
	"time"

	"github.com/ValentinKolb/aKV/rpc/common"
	"github.com/ValentinKolb/aKV/rpc/transport"
	"github.com/sethvargo/go-retry"
)

func NewHttpClientTransport() transport.IRPCClientTransport {
	return &httpClientTransport{}
}

type httpClientTransport struct {
	serverURLs []*url.URL
	client     *http.Client
	counter    uint32
	retryCount int
}

// --------------------------------------------------------------------------
// Interface Methods (docu see transport.IRPCClientTransport)
// --------------------------------------------------------------------------

func (t *httpClientTransport) Connect(config common.ClientConfig) error {
	// Parse each server URL
	parsedURLs := make([]*url.URL, len(config.Endpoints))
	for i, server := range config.Endpoints {
		parsedURL, err := url.Parse(server)
		if err != nil {
			return err
		}
		parsedURLs[i] = parsedURL
	}

	// Create client with default transport
	client := &http.Client{
		Transport: &http.Transport{
			MaxIdleConns:        100,
			MaxIdleConnsPerHost: 10,
			IdleConnTimeout:     time.Duration(config.TimeoutSecond) * time.Second,
		},
	}

	// Set the client and server URLs
	t.client = client
	t.serverURLs = parsedURLs
	t.counter = 0
	t.retryCount = config.RetryCount

	// No error
	return nil
}

func (t *httpClientTransport) Send(shardId uint64, req []byte) (resp []byte, err error) {
	// Check if the transport is initialized
	if t.client == nil {
		return nil, fmt.Errorf("http transport not initialized")
	}

	// Select the next server via round-robin
	idx := atomic.AddUint32(&t.counter, 1) % uint32(len(t.serverURLs))
	serverURL := t.serverURLs[idx]

	// Create the complete URL (the shard ID is the request path)
	requestURL := fmt.Sprintf("%s/%v", serverURL.String(), shardId)

	// Send the request with exponential backoff, the request body is
	// recreated per attempt since http.Client consumes it
	maxRetries := t.retryCount
	if maxRetries < 1 {
		maxRetries = 1
	}
	backoff := retry.WithMaxRetries(uint64(maxRetries-1), retry.WithJitterPercent(10, retry.NewExponential(50*time.Millisecond)))

	var body []byte
	err = retry.Do(context.Background(), backoff, func(_ context.Context) error {
		httpRequest, reqErr := http.NewRequest(http.MethodPost, requestURL, bytes.NewReader(req))
		if reqErr != nil {
			return reqErr
		}

		httpResponse, sendErr := t.client.Do(httpRequest)
		if sendErr != nil {
			return retry.RetryableError(sendErr)
		}
		defer func() {
			if closeErr := httpResponse.Body.Close(); closeErr != nil {
				Logger.Errorf("Failed to close response body: %v", closeErr)
			}
		}()

		// Check if the response status code is OK
		if httpResponse.StatusCode != http.StatusOK {
			return fmt.Errorf("http error: %s", httpResponse.Status)
		}

		// Read the response body
		body, sendErr = io.ReadAll(httpResponse.Body)
		return sendErr
	})
	if err != nil {
		return nil, err
	}

	return body, nil
}

func (t *httpClientTransport) Close() error {
	// Close the client
	if t.client != nil {
		t.client.CloseIdleConnections()
	}

	// Reset the client and server URLs
	t.client = nil
	t.serverURLs = nil

	return nil
}
