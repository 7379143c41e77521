package httpclient

import (
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/linkflow-ai/insights/internal/pkg/circuitbreaker"
)

type Config struct {
	MaxIdleConns        int
	MaxIdleConnsPerHost int
	MaxConnsPerHost     int
	IdleConnTimeout     time.Duration
	TLSHandshakeTimeout time.Duration
	ResponseTimeout     time.Duration
	KeepAlive           time.Duration
	Breaker             circuitbreaker.Config
}

func DefaultConfig() Config {
	return Config{
		MaxIdleConns:        100,
		MaxIdleConnsPerHost: 10,
		MaxConnsPerHost:     100,
		IdleConnTimeout:     90 * time.Second,
		TLSHandshakeTimeout: 10 * time.Second,
		ResponseTimeout:     30 * time.Second,
		KeepAlive:           30 * time.Second,
		Breaker: circuitbreaker.Config{
			MaxRequests:      3,
			Timeout:          30 * time.Second,
			FailureThreshold: 5,
			SuccessThreshold: 2,
		},
	}
}

// ServerError is returned for 5xx responses. The body is closed.
type ServerError struct {
	StatusCode int
}

func (e *ServerError) Error() string {
	return fmt.Sprintf("upstream returned %d", e.StatusCode)
}

// PooledClient is a shared-transport HTTP client with one circuit breaker per host.
type PooledClient struct {
	client   *http.Client
	breakers *circuitbreaker.Manager
}

func NewPooledClient(config Config) *PooledClient {
	transport := &http.Transport{
		Proxy: http.ProxyFromEnvironment,
		DialContext: (&net.Dialer{
			Timeout:   30 * time.Second,
			KeepAlive: config.KeepAlive,
		}).DialContext,
		MaxIdleConns:        config.MaxIdleConns,
		MaxIdleConnsPerHost: config.MaxIdleConnsPerHost,
		MaxConnsPerHost:     config.MaxConnsPerHost,
		IdleConnTimeout:     config.IdleConnTimeout,
		TLSHandshakeTimeout: config.TLSHandshakeTimeout,
		ForceAttemptHTTP2:   true,
	}

	return &PooledClient{
		client: &http.Client{
			Transport: transport,
			Timeout:   config.ResponseTimeout,
		},
		breakers: circuitbreaker.NewManager(config.Breaker),
	}
}

// Do sends req through the breaker of its host. Transport errors and 5xx
// responses count against the breaker; 4xx responses are returned as-is.
func (p *PooledClient) Do(req *http.Request) (*http.Response, error) {
	cb := p.breakers.Get(req.URL.Host)

	return circuitbreaker.Execute(cb, func() (*http.Response, error) {
		resp, err := p.client.Do(req)
		if err != nil {
			return nil, err
		}
		if resp.StatusCode >= http.StatusInternalServerError {
			resp.Body.Close()
			return nil, &ServerError{StatusCode: resp.StatusCode}
		}
		return resp, nil
	})
}

func (p *PooledClient) CircuitStates() map[string]circuitbreaker.State {
	return p.breakers.States()
}

func (p *PooledClient) CloseIdleConnections() {
	p.client.CloseIdleConnections()
}
