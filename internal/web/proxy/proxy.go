// Package proxy forwards requests from the public origin to the API
// service so the frontend and the API share one origin.
package proxy

import (
	"bytes"
	"io"
	"net/http"
	"strings"
	"time"

	errors "github.com/Laisky/errors/v2"
	ginMw "github.com/Laisky/gin-middlewares/v7"
	gutils "github.com/Laisky/go-utils/v6"
	"github.com/Laisky/zap"
	"github.com/gin-gonic/gin"

	"github.com/ssfz/history-vault/library/log"
)

// headers never forwarded upstream
var skipHeaders = map[string]bool{
	"Host":       true,
	"Connection": true,
}

// corsHeaders overridden on every relayed response
var corsHeaders = map[string]string{
	"Access-Control-Allow-Origin":  "*",
	"Access-Control-Allow-Methods": "GET, POST, PUT, DELETE, OPTIONS",
	"Access-Control-Allow-Headers": "Content-Type, X-Upload-Key, X-Delete-Key",
}

// Proxy relays requests verbatim to a fixed upstream base URL.
type Proxy struct {
	upstream string
	httpcli  *http.Client
}

// New creates a proxy for the upstream base URL.
func New(upstream string) (*Proxy, error) {
	if upstream == "" {
		return nil, errors.New("upstream must be configured")
	}

	httpcli, err := gutils.NewHTTPClient(
		gutils.WithHTTPClientTimeout(30 * time.Second),
	)
	if err != nil {
		return nil, errors.Wrap(err, "new http client")
	}

	return &Proxy{
		upstream: strings.TrimRight(upstream, "/"),
		httpcli:  httpcli,
	}, nil
}

// NewServer assembles the proxy engine; every route is relayed.
func NewServer(p *Proxy) *gin.Engine {
	server := gin.New()
	server.Use(
		gin.Recovery(),
		ginMw.NewLoggerMiddleware(
			ginMw.WithLoggerMwColored(),
			ginMw.WithLevel(log.Logger.Level().String()),
			ginMw.WithLogger(log.Logger.Named("gin")),
		),
	)
	server.NoRoute(p.Forward)

	return server
}

// RunServer runs the proxy server until it exits.
func RunServer(addr string, p *Proxy) {
	server := NewServer(p)
	log.Logger.Info("proxying", zap.String("addr", addr), zap.String("upstream", p.upstream))
	log.Logger.Panic("proxyServer exit", zap.Error(server.Run(addr)))
}

// Forward relays one request: method, headers (minus host/connection),
// and body are passed upstream; the upstream response is streamed back
// with the CORS headers overridden. Upstream connection failures map
// to a 502 JSON envelope, single attempt, no retry.
func (p *Proxy) Forward(ctx *gin.Context) {
	target := p.upstream + ctx.Request.URL.Path
	if ctx.Request.URL.RawQuery != "" {
		target += "?" + ctx.Request.URL.RawQuery
	}

	body, err := p.requestBody(ctx.Request)
	if err != nil {
		ctx.JSON(http.StatusBadGateway, gin.H{
			"error":   "Failed to connect to API server",
			"message": err.Error(),
		})
		return
	}

	req, err := http.NewRequestWithContext(ctx.Request.Context(),
		ctx.Request.Method, target, body)
	if err != nil {
		ctx.JSON(http.StatusBadGateway, gin.H{
			"error":   "Failed to connect to API server",
			"message": err.Error(),
		})
		return
	}
	for key, vals := range ctx.Request.Header {
		if skipHeaders[http.CanonicalHeaderKey(key)] {
			continue
		}
		for _, val := range vals {
			req.Header.Add(key, val)
		}
	}

	resp, err := p.httpcli.Do(req)
	if err != nil {
		log.Logger.Error("forward request",
			zap.String("target", target), zap.Error(err))
		ctx.JSON(http.StatusBadGateway, gin.H{
			"error":   "Failed to connect to API server",
			"message": err.Error(),
		})
		return
	}
	defer resp.Body.Close() //nolint:errcheck

	header := ctx.Writer.Header()
	for key, vals := range resp.Header {
		header[key] = vals
	}
	for key, val := range corsHeaders {
		header.Set(key, val)
	}

	ctx.Status(resp.StatusCode)
	if _, err = io.Copy(ctx.Writer, resp.Body); err != nil {
		log.Logger.Error("relay response body",
			zap.String("target", target), zap.Error(err))
	}
}

// requestBody prepares the forwarded body. JSON bodies are read fully
// and re-sent as text so the stream cannot be consumed twice; other
// content types (multipart uploads) are passed through unbuffered.
func (p *Proxy) requestBody(req *http.Request) (io.Reader, error) {
	if req.Method == http.MethodGet || req.Method == http.MethodHead {
		return nil, nil
	}

	if strings.Contains(req.Header.Get("Content-Type"), "application/json") {
		raw, err := io.ReadAll(req.Body)
		if err != nil {
			return nil, errors.Wrap(err, "read request body")
		}
		return bytes.NewReader(raw), nil
	}

	return req.Body, nil
}
