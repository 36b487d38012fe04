package driver

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rotisserie/eris"

	"github.com/sells-group/outreach-cli/internal/resilience"
)

// CDPDriver drives a page in an already-running browser over the
// DevTools protocol. The browser must be started with remote debugging
// enabled; the driver attaches to the first page target it finds.
type CDPDriver struct {
	conn *websocket.Conn

	mu     sync.Mutex // serializes command round-trips
	nextID int
}

type cdpTarget struct {
	Type                 string `json:"type"`
	URL                  string `json:"url"`
	WebSocketDebuggerURL string `json:"webSocketDebuggerUrl"`
}

type cdpMessage struct {
	ID     int             `json:"id,omitempty"`
	Method string          `json:"method,omitempty"`
	Params json.RawMessage `json:"params,omitempty"`
	Result json.RawMessage `json:"result,omitempty"`
	Error  *cdpError       `json:"error,omitempty"`
}

type cdpError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

// NewCDP attaches to the browser's devtools endpoint, e.g.
// "http://localhost:9222".
func NewCDP(ctx context.Context, devtoolsURL string) (*CDPDriver, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, strings.TrimRight(devtoolsURL, "/")+"/json", nil)
	if err != nil {
		return nil, eris.Wrap(err, "driver: build target request")
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return nil, resilience.Categorize(resilience.CategoryNetwork,
			eris.Wrap(err, "driver: list browser targets"))
	}
	defer resp.Body.Close()

	var targets []cdpTarget
	if err := json.NewDecoder(resp.Body).Decode(&targets); err != nil {
		return nil, eris.Wrap(err, "driver: decode browser targets")
	}

	var wsURL string
	for _, t := range targets {
		if t.Type == "page" && t.WebSocketDebuggerURL != "" {
			wsURL = t.WebSocketDebuggerURL
			break
		}
	}
	if wsURL == "" {
		return nil, eris.New("driver: no debuggable page target found")
	}

	dialer := websocket.Dialer{HandshakeTimeout: 10 * time.Second}
	conn, _, err := dialer.DialContext(ctx, wsURL, nil)
	if err != nil {
		return nil, resilience.Categorize(resilience.CategoryNetwork,
			eris.Wrap(err, "driver: attach to page"))
	}
	return &CDPDriver{conn: conn}, nil
}

// Close detaches from the page. The browser keeps running.
func (d *CDPDriver) Close() error {
	return d.conn.Close()
}

// command performs one request/response round-trip, skipping protocol
// events interleaved on the socket.
func (d *CDPDriver) command(ctx context.Context, method string, params any) (json.RawMessage, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.nextID++
	id := d.nextID

	raw, err := json.Marshal(params)
	if err != nil {
		return nil, eris.Wrapf(err, "driver: marshal %s params", method)
	}
	if deadline, ok := ctx.Deadline(); ok {
		_ = d.conn.SetWriteDeadline(deadline)
		_ = d.conn.SetReadDeadline(deadline)
	} else {
		_ = d.conn.SetWriteDeadline(time.Now().Add(30 * time.Second))
		_ = d.conn.SetReadDeadline(time.Now().Add(30 * time.Second))
	}

	if err := d.conn.WriteJSON(cdpMessage{ID: id, Method: method, Params: raw}); err != nil {
		return nil, resilience.Categorize(resilience.CategoryNetwork,
			eris.Wrapf(err, "driver: send %s", method))
	}

	for {
		var msg cdpMessage
		if err := d.conn.ReadJSON(&msg); err != nil {
			return nil, resilience.Categorize(resilience.CategoryNetwork,
				eris.Wrapf(err, "driver: read %s response", method))
		}
		if msg.ID != id {
			// Event or stale response.
			continue
		}
		if msg.Error != nil {
			return nil, eris.Errorf("driver: %s failed: %s", method, msg.Error.Message)
		}
		return msg.Result, nil
	}
}

// Load navigates the page to the given URL.
func (d *CDPDriver) Load(ctx context.Context, url string) error {
	_, err := d.command(ctx, "Page.navigate", map[string]string{"url": url})
	return err
}

// IsLoading reports whether the document is still loading.
func (d *CDPDriver) IsLoading(ctx context.Context) (bool, error) {
	result, err := d.Evaluate(ctx, `document.readyState`)
	if err != nil {
		return false, err
	}
	state, _ := result.(string)
	return state != "complete", nil
}

// Evaluate runs a script in the page and returns its JSON value.
func (d *CDPDriver) Evaluate(ctx context.Context, script string) (any, error) {
	raw, err := d.command(ctx, "Runtime.evaluate", map[string]any{
		"expression":    script,
		"returnByValue": true,
		"awaitPromise":  true,
	})
	if err != nil {
		return nil, err
	}

	var result struct {
		Result struct {
			Type  string          `json:"type"`
			Value json.RawMessage `json:"value"`
		} `json:"result"`
		ExceptionDetails *struct {
			Text string `json:"text"`
		} `json:"exceptionDetails"`
	}
	if err := json.Unmarshal(raw, &result); err != nil {
		return nil, eris.Wrap(err, "driver: decode evaluate result")
	}
	if result.ExceptionDetails != nil {
		return nil, eris.Errorf("driver: script exception: %s", result.ExceptionDetails.Text)
	}
	if result.Result.Value == nil {
		return nil, nil
	}

	var value any
	if err := json.Unmarshal(result.Result.Value, &value); err != nil {
		return nil, eris.Wrap(err, "driver: decode evaluate value")
	}
	return value, nil
}

var _ PageDriver = (*CDPDriver)(nil)
