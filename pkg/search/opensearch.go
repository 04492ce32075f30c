package search

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/Gobusters/ectologger"
	"github.com/opensearch-project/opensearch-go/v2"
	"github.com/opensearch-project/opensearch-go/v2/opensearchapi"
	"github.com/pkg/errors"

	"github.com/Ramsey-B/clover/pkg/metrics"
	"github.com/Ramsey-B/clover/pkg/query"
	"github.com/Ramsey-B/clover/pkg/tracing"
)

// OpenSearchConfig holds the configuration for the OpenSearch gateway.
type OpenSearchConfig struct {
	Addresses    []string
	Username     string
	Password     string
	Index        string
	MaxRetries   int
	RetryBackoff time.Duration
}

// OpenSearch is a Gateway backed by an OpenSearch index. Expressions are run
// as query_string queries: clauses are ORed and the terms inside a clause are
// ANDed.
type OpenSearch struct {
	client    *opensearch.Client
	transport *http.Transport
	index     string
	logger    ectologger.Logger
}

// NewOpenSearch creates a new OpenSearch gateway.
func NewOpenSearch(cfg OpenSearchConfig, logger ectologger.Logger) (*OpenSearch, error) {
	if len(cfg.Addresses) == 0 {
		return nil, errors.New("opensearch addresses are required")
	}
	if cfg.Index == "" {
		return nil, errors.New("opensearch index is required")
	}
	if cfg.MaxRetries == 0 {
		cfg.MaxRetries = 3
	}
	if cfg.RetryBackoff == 0 {
		cfg.RetryBackoff = 100 * time.Millisecond
	}

	transport := &http.Transport{MaxIdleConnsPerHost: 10}
	client, err := opensearch.NewClient(opensearch.Config{
		Addresses:     cfg.Addresses,
		Username:      cfg.Username,
		Password:      cfg.Password,
		MaxRetries:    cfg.MaxRetries,
		RetryBackoff:  func(int) time.Duration { return cfg.RetryBackoff },
		RetryOnStatus: []int{502, 503, 504, 429},
		Transport:     transport,
	})
	if err != nil {
		return nil, errors.Wrap(err, "failed to create opensearch client")
	}

	return &OpenSearch{client: client, transport: transport, index: cfg.Index, logger: logger}, nil
}

// GetName implements startup.StartupDependency.
func (o *OpenSearch) GetName() string { return "opensearch" }

// DependsOn implements startup.StartupDependency.
func (o *OpenSearch) DependsOn() []string { return nil }

// Start verifies the cluster is reachable.
func (o *OpenSearch) Start(ctx context.Context) error {
	if err := o.Ping(ctx); err != nil {
		return err
	}
	o.logger.WithContext(ctx).WithField("index", o.index).Info("Connected to OpenSearch")
	return nil
}

// Stop releases idle connections.
func (o *OpenSearch) Stop(context.Context) error {
	o.transport.CloseIdleConnections()
	return nil
}

// Ping checks the connection to OpenSearch.
func (o *OpenSearch) Ping(ctx context.Context) error {
	resp, err := o.client.Ping(o.client.Ping.WithContext(ctx))
	if err != nil {
		return errors.Wrap(err, "opensearch ping failed")
	}
	defer resp.Body.Close()

	if resp.IsError() {
		return fmt.Errorf("opensearch ping returned status %d", resp.StatusCode)
	}
	return nil
}

// Search runs the expression and returns a page of matching entity ids.
func (o *OpenSearch) Search(ctx context.Context, expr query.Expression, opts Options) (_ Page, err error) {
	ctx, span := tracing.StartSpan(ctx, "search.OpenSearch.Search")
	defer func() {
		tracing.RecordError(span, err)
		span.End()
	}()

	opts = opts.withDefaults()
	log := o.logger.WithContext(ctx).WithFields(map[string]any{
		"query":    expr.String(),
		"per_page": opts.PerPage,
		"page":     opts.Page,
	})

	if expr.IsEmpty() {
		return Page{}, nil
	}

	body, err := json.Marshal(buildSearchBody(expr, opts))
	if err != nil {
		return Page{}, errors.Wrap(err, "failed to marshal search body")
	}

	start := time.Now()
	req := opensearchapi.SearchRequest{
		Index: []string{o.index},
		Body:  bytes.NewReader(body),
	}
	resp, err := req.Do(ctx, o.client)
	if err != nil {
		metrics.RecordSearch("error", time.Since(start).Seconds())
		log.WithError(err).Error("Search request failed")
		return Page{}, errors.Wrap(err, "search request failed")
	}
	defer resp.Body.Close()

	if resp.IsError() {
		metrics.RecordSearch("error", time.Since(start).Seconds())
		err := responseError(resp.StatusCode, resp.Body)
		log.WithError(err).Error("Search returned an error")
		return Page{}, err
	}
	metrics.RecordSearch("ok", time.Since(start).Seconds())

	page, err := parseSearchResponse(resp.Body, opts)
	if err != nil {
		return Page{}, err
	}

	log.WithFields(map[string]any{
		"took_ms": time.Since(start).Milliseconds(),
		"hits":    page.Total,
	}).Debug("Search executed")

	return page, nil
}

// Index writes a document into the index, replacing any previous version.
func (o *OpenSearch) Index(ctx context.Context, doc Document) error {
	ctx, span := tracing.StartSpan(ctx, "search.OpenSearch.Index")
	defer span.End()

	body, err := json.Marshal(doc)
	if err != nil {
		return errors.Wrap(err, "failed to marshal document")
	}

	req := opensearchapi.IndexRequest{
		Index:      o.index,
		DocumentID: strconv.FormatInt(doc.ID, 10),
		Body:       bytes.NewReader(body),
	}
	resp, err := req.Do(ctx, o.client)
	if err != nil {
		return errors.Wrapf(err, "failed to index document %d", doc.ID)
	}
	defer resp.Body.Close()

	if resp.IsError() {
		return responseError(resp.StatusCode, resp.Body)
	}
	return nil
}

func buildSearchBody(expr query.Expression, opts Options) map[string]any {
	boolQuery := map[string]any{
		"must": []any{
			map[string]any{
				"query_string": map[string]any{
					"query":            QueryString(expr),
					"fields":           opts.Fields,
					"default_operator": "AND",
					"analyze_wildcard": true,
				},
			},
		},
	}

	if opts.Kind != "" {
		boolQuery["filter"] = []any{
			map[string]any{"term": map[string]any{"kind": opts.Kind}},
		}
	}

	if len(opts.ExcludeIDs) > 0 {
		ids := make([]string, len(opts.ExcludeIDs))
		for i, id := range opts.ExcludeIDs {
			ids[i] = strconv.FormatInt(id, 10)
		}
		boolQuery["must_not"] = []any{
			map[string]any{"ids": map[string]any{"values": ids}},
		}
	}

	return map[string]any{
		"from":    (opts.Page - 1) * opts.PerPage,
		"size":    opts.PerPage,
		"_source": false,
		"query":   map[string]any{"bool": boolQuery},
	}
}

// QueryString translates an expression into query_string syntax. Terms keep
// their wildcards; every other reserved character is escaped.
func QueryString(expr query.Expression) string {
	clauses := expr.Clauses()
	out := make([]string, 0, len(clauses))
	for _, clause := range clauses {
		terms := strings.Fields(clause)
		for i, t := range terms {
			terms[i] = escapeTerm(t)
		}
		if len(terms) > 0 {
			out = append(out, "("+strings.Join(terms, " ")+")")
		}
	}
	return strings.Join(out, " OR ")
}

const reservedChars = `+-=&|><!(){}[]^"~?:\/`

func escapeTerm(term string) string {
	var b strings.Builder
	for _, r := range term {
		if strings.ContainsRune(reservedChars, r) {
			b.WriteRune('\\')
		}
		b.WriteRune(r)
	}
	return b.String()
}

type searchResponse struct {
	Hits struct {
		Total struct {
			Value int64 `json:"value"`
		} `json:"total"`
		Hits []struct {
			ID string `json:"_id"`
		} `json:"hits"`
	} `json:"hits"`
}

func parseSearchResponse(body io.Reader, opts Options) (Page, error) {
	var resp searchResponse
	if err := json.NewDecoder(body).Decode(&resp); err != nil {
		return Page{}, errors.Wrap(err, "failed to decode search response")
	}

	page := Page{Total: resp.Hits.Total.Value, IDs: make([]int64, 0, len(resp.Hits.Hits))}
	for _, hit := range resp.Hits.Hits {
		id, err := strconv.ParseInt(hit.ID, 10, 64)
		if err != nil {
			return Page{}, errors.Wrapf(err, "search hit has a non-numeric id %q", hit.ID)
		}
		if opts.excluded(id) {
			continue
		}
		page.IDs = append(page.IDs, id)
	}
	return page, nil
}

func responseError(status int, body io.Reader) error {
	raw, _ := io.ReadAll(body)
	var errResp struct {
		Error struct {
			Type   string `json:"type"`
			Reason string `json:"reason"`
		} `json:"error"`
	}
	if err := json.Unmarshal(raw, &errResp); err == nil && errResp.Error.Reason != "" {
		return fmt.Errorf("opensearch error %d: %s - %s", status, errResp.Error.Type, errResp.Error.Reason)
	}
	return fmt.Errorf("opensearch error status: %d", status)
}
