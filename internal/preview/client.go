package preview

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/tidwall/gjson"
	"github.com/yockii/notion_blog/internal/constant"
)

// 预览接口响应体上限
const maxResponseSize = 1 << 20

// Client 调用链接预览服务，GET <endpoint>?url=<目标地址>
type Client struct {
	endpoint   string
	httpClient *http.Client
}

// NewClient 创建预览客户端，endpoint为空时所有请求直接失败
func NewClient(endpoint string, timeout time.Duration) *Client {
	return &Client{
		endpoint: endpoint,
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

func (c *Client) buildGetRequest(ctx context.Context, target string) (*http.Request, error) {
	u, err := url.Parse(c.endpoint)
	if err != nil {
		return nil, err
	}
	q := u.Query()
	q.Set("url", target)
	u.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")
	return req, nil
}

// Fetch 获取预览信息，网络错误、非2xx或响应不是JSON时返回ErrPreviewUnavailable
func (c *Client) Fetch(ctx context.Context, target string) (*Preview, error) {
	if c.endpoint == "" {
		return nil, fmt.Errorf("%w: endpoint not configured", constant.ErrPreviewUnavailable)
	}
	req, err := c.buildGetRequest(ctx, target)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", constant.ErrPreviewUnavailable, err)
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", constant.ErrPreviewUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		return nil, fmt.Errorf("%w: status %d", constant.ErrPreviewUnavailable, resp.StatusCode)
	}
	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", constant.ErrPreviewUnavailable, err)
	}
	if !gjson.ValidBytes(body) {
		return nil, fmt.Errorf("%w: malformed response", constant.ErrPreviewUnavailable)
	}

	respJson := gjson.ParseBytes(body)
	siteName := respJson.Get("siteName").String()
	if siteName == "" {
		siteName = respJson.Get("site_name").String()
	}
	return &Preview{
		URL:         target,
		Title:       respJson.Get("title").String(),
		Description: respJson.Get("description").String(),
		Image:       respJson.Get("image").String(),
		SiteName:    siteName,
	}, nil
}
