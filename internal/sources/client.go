package sources

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/azure/brand-pulse/internal/models"
	"github.com/go-resty/resty/v2"
	"github.com/sirupsen/logrus"
)

const (
	searchPath   = "/reddit/search/keywords"
	analyzePath  = "/reddit/analyze/sentiment"
	healthPath   = "/health"
	userAgent    = "Brand-Pulse/1.0"
	missingLabel = "N/A"
)

// APIClient talks to the backend that wraps the Reddit search and
// sentiment APIs.
type APIClient struct {
	client *resty.Client
}

var (
	_ Searcher      = (*APIClient)(nil)
	_ Analyzer      = (*APIClient)(nil)
	_ HealthChecker = (*APIClient)(nil)
)

type apiResponse[T any] struct {
	Success  bool   `json:"success"`
	Data     T      `json:"data"`
	Message  string `json:"message,omitempty"`
	Metadata *struct {
		TotalResults   int    `json:"totalResults"`
		ProcessingTime string `json:"processingTime"`
		Timestamp      string `json:"timestamp"`
	} `json:"metadata,omitempty"`
}

type errorBody struct {
	Message string `json:"message"`
	Error   string `json:"error"`
}

// NewAPIClient creates a client for the service at baseURL
func NewAPIClient(baseURL string, timeout time.Duration) *APIClient {
	client := resty.New().
		SetBaseURL(baseURL).
		SetTimeout(timeout).
		SetHeader("Content-Type", "application/json").
		SetHeader("User-Agent", userAgent)

	client.OnBeforeRequest(func(_ *resty.Client, req *resty.Request) error {
		logrus.Debugf("API request: %s %s", req.Method, req.URL)
		return nil
	})
	client.OnAfterResponse(func(_ *resty.Client, resp *resty.Response) error {
		logrus.Debugf("API response: %s %s (%d) in %v",
			resp.Request.Method, resp.Request.URL, resp.StatusCode(), resp.Time())
		return nil
	})

	return &APIClient{client: client}
}

// SearchKeywords runs one keyword search, optionally scoped to a subreddit
func (c *APIClient) SearchKeywords(ctx context.Context, req SearchRequest) (*models.SearchPage, error) {
	resp, err := c.client.R().
		SetContext(ctx).
		SetBody(req).
		Post(searchPath)
	if err := checkResponse(resp, err); err != nil {
		return nil, err
	}

	var body apiResponse[[]models.Post]
	if err := json.Unmarshal(resp.Body(), &body); err != nil {
		return nil, &models.ServiceError{Kind: models.KindServer, StatusCode: resp.StatusCode(), Message: "malformed search response", Err: err}
	}

	page := &models.SearchPage{
		Posts:          body.Data,
		ProcessingTime: missingLabel,
	}
	if body.Metadata != nil && body.Metadata.ProcessingTime != "" {
		page.ProcessingTime = body.Metadata.ProcessingTime
	}

	return page, nil
}

// AnalyzeBrand requests a sentiment report for brand
func (c *APIClient) AnalyzeBrand(ctx context.Context, brand string, opts AnalyzeOptions) (*models.AnalysisReport, error) {
	payload := struct {
		BrandName string `json:"brandName"`
		AnalyzeOptions
	}{
		BrandName:      brand,
		AnalyzeOptions: opts,
	}

	resp, err := c.client.R().
		SetContext(ctx).
		SetBody(payload).
		Post(analyzePath)
	if err := checkResponse(resp, err); err != nil {
		return nil, err
	}

	var body apiResponse[models.AnalysisReport]
	if err := json.Unmarshal(resp.Body(), &body); err != nil {
		return nil, &models.ServiceError{Kind: models.KindServer, StatusCode: resp.StatusCode(), Message: "malformed analysis response", Err: err}
	}

	if body.Data.Insights.SentimentDistribution == nil {
		return nil, &models.ServiceError{Kind: models.KindServer, StatusCode: resp.StatusCode(), Message: "malformed analysis response: missing sentiment distribution"}
	}

	return &body.Data, nil
}

// HealthCheck returns nil when the service answers its health endpoint
func (c *APIClient) HealthCheck(ctx context.Context) error {
	resp, err := c.client.R().
		SetContext(ctx).
		Get(healthPath)
	return checkResponse(resp, err)
}

// checkResponse maps transport failures and non-2xx statuses onto the
// service error taxonomy.
func checkResponse(resp *resty.Response, err error) error {
	if err != nil {
		if errors.Is(err, context.Canceled) {
			return &models.ServiceError{Kind: models.KindCanceled, Message: models.MsgCanceled, Err: err}
		}
		var netErr net.Error
		if errors.Is(err, context.DeadlineExceeded) || (errors.As(err, &netErr) && netErr.Timeout()) {
			return &models.ServiceError{Kind: models.KindTimeout, Message: models.MsgTimeout, Err: err}
		}
		return &models.ServiceError{Kind: models.KindNetwork, Message: models.MsgNetwork, Err: err}
	}

	status := resp.StatusCode()
	switch {
	case status == http.StatusTooManyRequests:
		return &models.ServiceError{Kind: models.KindRateLimited, StatusCode: status, Message: models.MsgRateLimited}
	case status >= http.StatusInternalServerError:
		return &models.ServiceError{Kind: models.KindServer, StatusCode: status, Message: models.MsgServer}
	case status >= http.StatusBadRequest:
		return &models.ServiceError{Kind: models.KindClient, StatusCode: status, Message: clientMessage(resp)}
	}

	return nil
}

func clientMessage(resp *resty.Response) string {
	var body errorBody
	if err := json.Unmarshal(resp.Body(), &body); err == nil {
		if body.Message != "" {
			return body.Message
		}
		if body.Error != "" {
			return body.Error
		}
	}
	return fmt.Sprintf("Request failed with status %d", resp.StatusCode())
}
