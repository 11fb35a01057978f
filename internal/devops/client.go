package devops

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/harsha86604/Backlog-excellence-bot/internal/model"
)

const apiVersion = "6.0"

// BackendError is a non-2xx reply from the work-item backend. The raw body
// is kept for the remediation path; it is never shown to the end user.
type BackendError struct {
	StatusCode int
	Body       string
}

func (e *BackendError) Error() string {
	return fmt.Sprintf("devops: backend returned %d: %s", e.StatusCode, e.Body)
}

type Options struct {
	// BaseURL overrides the dev.azure.com endpoint, for tests.
	BaseURL string
	Org     string
	Project string
	PAT     string
	Timeout time.Duration
}

// Client talks to the Azure DevOps work-item REST API. One instance is
// shared by all turns; it holds no per-turn state.
type Client struct {
	baseURL string
	project string
	pat     string
	http    *http.Client
}

func New(opts Options) *Client {
	base := opts.BaseURL
	if base == "" {
		base = "https://dev.azure.com/" + opts.Org
	}
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	return &Client{
		baseURL: strings.TrimRight(base, "/"),
		project: url.PathEscape(opts.Project),
		pat:     opts.PAT,
		http:    &http.Client{Timeout: timeout},
	}
}

// FetchAll returns every work item in the project: a WIQL query for the
// IDs, then one batch details request. An empty project is not an error.
func (c *Client) FetchAll(ctx context.Context) ([]model.WorkItem, error) {
	wiql := fmt.Sprintf("SELECT [System.Id] FROM WorkItems WHERE [System.TeamProject] = '%s'", c.project)
	refs, err := c.QueryWorkItems(ctx, wiql)
	if err != nil {
		return nil, err
	}
	if len(refs) == 0 {
		return []model.WorkItem{}, nil
	}

	ids := make([]string, 0, len(refs))
	for _, ref := range refs {
		ids = append(ids, strconv.Itoa(ref.ID))
	}
	detailsURL := fmt.Sprintf("%s/%s/_apis/wit/workitems?ids=%s&api-version=%s",
		c.baseURL, c.project, strings.Join(ids, ","), apiVersion)

	var out struct {
		Value []model.WorkItem `json:"value"`
	}
	if err := c.do(ctx, http.MethodGet, detailsURL, "", nil, &out); err != nil {
		return nil, err
	}
	return out.Value, nil
}

// QueryWorkItems runs a custom WIQL query and returns bare references.
func (c *Client) QueryWorkItems(ctx context.Context, wiql string) ([]model.WorkItemRef, error) {
	wiqlURL := fmt.Sprintf("%s/%s/_apis/wit/wiql?api-version=%s", c.baseURL, c.project, apiVersion)
	body := map[string]string{"query": wiql}

	var out struct {
		WorkItems []model.WorkItemRef `json:"workItems"`
	}
	if err := c.do(ctx, http.MethodPost, wiqlURL, "application/json", body, &out); err != nil {
		return nil, err
	}
	return out.WorkItems, nil
}

type patchOp struct {
	Op    string `json:"op"`
	Path  string `json:"path"`
	Value any    `json:"value"`
}

func addField(field string, value any) patchOp {
	return patchOp{Op: "add", Path: "/fields/" + field, Value: value}
}

func replaceField(field string, value any) patchOp {
	return patchOp{Op: "replace", Path: "/fields/" + field, Value: value}
}

// Create opens a new Task work item and returns its backend ID. Status
// defaults to "To Do"; the due date is a plain date, stored midnight UTC.
func (c *Client) Create(ctx context.Context, title, description, assignee, dueDate, status string) (int, error) {
	if status == "" {
		status = "To Do"
	}
	doc := []patchOp{
		addField(model.FieldTitle, title),
		addField(model.FieldDescription, description),
		addField(model.FieldState, status),
		addField(model.FieldCompletedWork, 1.0),
		addField(model.FieldRemainingWork, 2.0),
		addField(model.FieldOriginalEst, 8.0),
	}
	if assignee != "" {
		doc = append(doc, addField(model.FieldAssignedTo, assignee))
	}
	if dueDate != "" {
		doc = append(doc, addField(model.FieldDueDate, dueDate+"T00:00:00Z"))
	}

	createURL := fmt.Sprintf("%s/%s/_apis/wit/workitems/$Task?api-version=%s", c.baseURL, c.project, apiVersion)
	var out struct {
		ID int `json:"id"`
	}
	if err := c.do(ctx, http.MethodPatch, createURL, "application/json-patch+json", doc, &out); err != nil {
		return 0, err
	}
	return out.ID, nil
}

func (c *Client) UpdateAssignment(ctx context.Context, id int, assignee string) error {
	return c.patch(ctx, id, []patchOp{addField(model.FieldAssignedTo, assignee)})
}

// UpdateTimeFields writes time spent and remaining. "replace" is tried
// first; if the backend rejects it (fields not initialized on that item),
// one retry is made with "add". A second rejection propagates.
func (c *Client) UpdateTimeFields(ctx context.Context, id int, spent, remaining float64) error {
	err := c.patch(ctx, id, []patchOp{
		replaceField(model.FieldTimeSpent, spent),
		replaceField(model.FieldRemainingWork, remaining),
	})
	var be *BackendError
	if err == nil || !errors.As(err, &be) {
		return err
	}
	return c.patch(ctx, id, []patchOp{
		addField(model.FieldCompletedWork, spent),
		addField(model.FieldRemainingWork, remaining),
	})
}

func (c *Client) UpdateStatus(ctx context.Context, id int, status string) error {
	return c.patch(ctx, id, []patchOp{addField(model.FieldState, status)})
}

func (c *Client) Delete(ctx context.Context, id int) error {
	deleteURL := fmt.Sprintf("%s/%s/_apis/wit/workitems/%d?api-version=%s", c.baseURL, c.project, id, apiVersion)
	return c.do(ctx, http.MethodDelete, deleteURL, "", nil, nil)
}

func (c *Client) patch(ctx context.Context, id int, doc []patchOp) error {
	updateURL := fmt.Sprintf("%s/%s/_apis/wit/workitems/%d?api-version=%s", c.baseURL, c.project, id, apiVersion)
	return c.do(ctx, http.MethodPatch, updateURL, "application/json-patch+json", doc, nil)
}

func (c *Client) do(ctx context.Context, method, rawURL, contentType string, body, out any) error {
	var reader io.Reader
	if body != nil {
		buf, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reader = bytes.NewReader(buf)
	}

	req, err := http.NewRequestWithContext(ctx, method, rawURL, reader)
	if err != nil {
		return err
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	req.SetBasicAuth("", c.pat)

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return &BackendError{StatusCode: resp.StatusCode, Body: string(raw)}
	}
	if out != nil {
		return json.NewDecoder(resp.Body).Decode(out)
	}
	return nil
}
