package rabbit

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"
)

// MaxPageSize is the upper page size limit of the management REST API.
const MaxPageSize = 500

// Queue describes one queue as listed by the management API.
type Queue struct {
	Vhost    string `json:"vhost"`
	Name     string `json:"name"`
	Messages int    `json:"messages"`
}

// Client talks to the RabbitMQ management HTTP API. It is safe for concurrent
// use; requests are stateless and authenticated per call.
type Client struct {
	BaseURL  string
	User     string
	Password string
	// PageSize is the page size used for queue listing. Defaults to
	// MaxPageSize, exposed so tests can force multi-page listings.
	PageSize int
	HTTP     *http.Client
}

func NewClient(host string, port int, user string, password string) *Client {
	return &Client{
		BaseURL:  fmt.Sprintf("http://%s:%d/api", host, port),
		User:     user,
		Password: password,
		PageSize: MaxPageSize,
		HTTP:     &http.Client{Timeout: 5 * time.Minute},
	}
}

func (c *Client) pageSize() int {
	if c.PageSize > 0 {
		return c.PageSize
	}
	return MaxPageSize
}

func (c *Client) do(method string, path string, body io.Reader) ([]byte, error) {
	req, err := http.NewRequest(method, c.BaseURL+"/"+path, body)
	if err != nil {
		return nil, err
	}
	req.SetBasicAuth(c.User, c.Password)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	resp, err := c.HTTP.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode/100 != 2 {
		return nil, fmt.Errorf("%s %s: %s", method, path, resp.Status)
	}
	return data, nil
}

// Ping checks that the management API is reachable and the credentials work.
func (c *Client) Ping() error {
	_, err := c.do(http.MethodGet, "overview", nil)
	return err
}

// ListQueues pages through the queue listing until a short or empty page
// signals the end of the data. Any transport error aborts the whole listing.
func (c *Client) ListQueues() ([]Queue, error) {
	var queues []Queue
	for page := 1; ; page++ {
		items, err := c.queuePage(page)
		if err != nil {
			return nil, err
		}
		if len(items) == 0 {
			break
		}
		queues = append(queues, items...)
		if len(items) < c.pageSize() {
			break
		}
	}
	return queues, nil
}

func (c *Client) queuePage(page int) ([]Queue, error) {
	path := fmt.Sprintf(
		"queues?page=%d&page_size=%d&pagination=true&disable_stats=true&enable_queue_totals=true",
		page, c.pageSize())
	data, err := c.do(http.MethodGet, path, nil)
	if err != nil {
		return nil, err
	}
	var paged struct {
		Items []Queue `json:"items"`
	}
	if err := json.Unmarshal(data, &paged); err == nil && paged.Items != nil {
		return paged.Items, nil
	}
	// older brokers answer with a bare array
	var items []Queue
	if err := json.Unmarshal(data, &items); err != nil {
		return nil, fmt.Errorf("decoding queue page %d: %w", page, err)
	}
	return items, nil
}

// getRequest is the body of a non-destructive single message read. Count stays
// at 1: with ack_requeue_true larger batches risk reordering artifacts.
var getRequest = map[string]interface{}{
	"count":    1,
	"ackmode":  "ack_requeue_true",
	"encoding": "auto",
}

// GetMessages performs one non-destructive read against a queue. The message
// is acked back into the queue, so it may be observed again on a later read.
func (c *Client) GetMessages(vhost string, queue string) ([]json.RawMessage, error) {
	body, err := json.Marshal(getRequest)
	if err != nil {
		return nil, err
	}
	path := fmt.Sprintf("queues/%s/%s/get", url.PathEscape(vhost), url.PathEscape(queue))
	data, err := c.do(http.MethodPost, path, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	var msgs []json.RawMessage
	if err := json.Unmarshal(data, &msgs); err != nil {
		return nil, fmt.Errorf("decoding messages from %s/%s: %w", vhost, queue, err)
	}
	return msgs, nil
}
