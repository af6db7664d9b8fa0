// Package live measures the indirection workflow against a running MCP
// endpoint instead of static catalogs: real tool definitions, real response
// payload sizes, same cost model.
package live

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/client"
	"github.com/mark3labs/mcp-go/client/transport"
	"github.com/mark3labs/mcp-go/mcp"

	"github.com/toolgauge/toolgauge/internal/common"
)

// ErrMissingCredential is returned when no usable credential was obtained.
var ErrMissingCredential = errors.New("no credential provided: pass -token, set TOOLGAUGE_TOKEN, or configure live.token_file")

// RemoteError is a typed error object returned by the remote endpoint,
// surfaced with its code and message verbatim.
type RemoteError struct {
	Code    int
	Message string
}

func (e *RemoteError) Error() string {
	if e.Code != 0 {
		return fmt.Sprintf("remote error %d: %s", e.Code, e.Message)
	}
	return "remote error: " + e.Message
}

// Session is the slice of the remote tool protocol the measurement needs:
// list available tools and invoke one by name, returning its response
// payload as text.
type Session interface {
	ListTools(ctx context.Context) ([]mcp.Tool, error)
	CallTool(ctx context.Context, name string, args map[string]any) (string, error)
	Close() error
}

// mcpSession is the MCP-backed Session over streamable HTTP.
type mcpSession struct {
	client *client.Client
	logger *common.Logger
}

// Dial connects to an MCP endpoint and completes the initialization
// handshake. The credential is injected as a bearer Authorization header on
// every request.
func Dial(ctx context.Context, serverURL, token string, logger *common.Logger) (Session, error) {
	if serverURL == "" {
		return nil, errors.New("no server URL configured")
	}
	if token == "" {
		return nil, ErrMissingCredential
	}
	if logger == nil {
		logger = common.NewSilentLogger()
	}

	t, err := transport.NewStreamableHTTP(serverURL,
		transport.WithHTTPHeaders(map[string]string{
			"Authorization": "Bearer " + token,
		}))
	if err != nil {
		return nil, fmt.Errorf("cannot reach %s: %w", serverURL, err)
	}

	c := client.NewClient(t)
	if err := c.Start(ctx); err != nil {
		return nil, fmt.Errorf("cannot reach %s: %w", serverURL, err)
	}

	initReq := mcp.InitializeRequest{}
	initReq.Params.ProtocolVersion = mcp.LATEST_PROTOCOL_VERSION
	initReq.Params.ClientInfo = mcp.Implementation{
		Name:    "toolgauge",
		Version: common.GetVersion(),
	}
	if _, err := c.Initialize(ctx, initReq); err != nil {
		_ = c.Close()
		return nil, fmt.Errorf("initialize handshake with %s failed: %w", serverURL, err)
	}

	logger.Debug().Str("server", serverURL).Msg("mcp session initialized")
	return &mcpSession{client: c, logger: logger}, nil
}

func (s *mcpSession) ListTools(ctx context.Context) ([]mcp.Tool, error) {
	res, err := s.client.ListTools(ctx, mcp.ListToolsRequest{})
	if err != nil {
		return nil, fmt.Errorf("list tools: %w", err)
	}
	s.logger.Debug().Int("count", len(res.Tools)).Msg("listed remote tools")
	return res.Tools, nil
}

func (s *mcpSession) CallTool(ctx context.Context, name string, args map[string]any) (string, error) {
	req := mcp.CallToolRequest{}
	req.Params.Name = name
	req.Params.Arguments = args

	res, err := s.client.CallTool(ctx, req)
	if err != nil {
		return "", fmt.Errorf("call %s: %w", name, err)
	}

	text := textContent(res.Content)
	if res.IsError {
		return "", &RemoteError{Message: text}
	}
	s.logger.Debug().Str("tool", name).Int("bytes", len(text)).Msg("tool call returned")
	return text, nil
}

func (s *mcpSession) Close() error {
	return s.client.Close()
}

// textContent concatenates the text parts of a tool call response.
func textContent(content []mcp.Content) string {
	var sb strings.Builder
	for _, item := range content {
		switch v := item.(type) {
		case mcp.TextContent:
			sb.WriteString(v.Text)
		case *mcp.TextContent:
			sb.WriteString(v.Text)
		}
	}
	return sb.String()
}
