package pinata

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"strings"
	"time"
)

var (
	ErrConfigInvalid   = errors.New("pinata config invalid")
	ErrRequestFailed   = errors.New("pinata request failed")
	ErrResponseInvalid = errors.New("pinata response invalid")
)

const defaultTimeout = 15 * time.Second

// Config Pinata 固定服务配置
type Config struct {
	JWT        string // API 访问令牌
	APIBase    string // API 地址
	GatewayURL string // 公共网关地址（拼接访问 URL 用）
	TimeoutMS  int
}

// Client Pinata 客户端。文件固定到 IPFS 后以 CID 作为存储 ID，
// 访问地址 = 网关地址 + CID。
type Client struct {
	cfg        Config
	httpClient *http.Client
}

// New 创建 Pinata 客户端
func New(cfg Config) *Client {
	timeout := defaultTimeout
	if cfg.TimeoutMS > 0 {
		timeout = time.Duration(cfg.TimeoutMS) * time.Millisecond
	}
	return &Client{
		cfg:        cfg,
		httpClient: &http.Client{Timeout: timeout},
	}
}

// Enabled 判断是否已配置令牌
func (c *Client) Enabled() bool {
	return c != nil && strings.TrimSpace(c.cfg.JWT) != ""
}

// StoreResult 固定结果
type StoreResult struct {
	ID  string // 内容寻址 ID（IPFS CID）
	URL string // 网关访问地址
}

// Store 上传并固定文件
func (c *Client) Store(ctx context.Context, data []byte, name, mimeType string) (*StoreResult, error) {
	if !c.Enabled() {
		return nil, fmt.Errorf("%w: jwt is required", ErrConfigInvalid)
	}
	if len(data) == 0 {
		return nil, fmt.Errorf("%w: empty file", ErrRequestFailed)
	}

	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)
	header := make(textproto.MIMEHeader)
	header.Set("Content-Disposition", fmt.Sprintf(`form-data; name="file"; filename=%q`, name))
	if mimeType != "" {
		header.Set("Content-Type", mimeType)
	}
	part, err := writer.CreatePart(header)
	if err != nil {
		return nil, err
	}
	if _, err := part.Write(data); err != nil {
		return nil, err
	}
	if err := writer.Close(); err != nil {
		return nil, err
	}

	endpoint := c.endpoint("/pinning/pinFileToIPFS")
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, body)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())
	req.Header.Set("Authorization", "Bearer "+strings.TrimSpace(c.cfg.JWT))

	respBytes, err := c.do(req)
	if err != nil {
		return nil, err
	}

	var resp struct {
		IpfsHash string `json:"IpfsHash"`
	}
	if err := json.Unmarshal(respBytes, &resp); err != nil {
		return nil, ErrResponseInvalid
	}
	cid := strings.TrimSpace(resp.IpfsHash)
	if cid == "" {
		return nil, ErrResponseInvalid
	}
	return &StoreResult{
		ID:  cid,
		URL: strings.TrimRight(strings.TrimSpace(c.cfg.GatewayURL), "/") + "/" + cid,
	}, nil
}

// Remove 解除文件固定
func (c *Client) Remove(ctx context.Context, id string) error {
	if !c.Enabled() {
		return fmt.Errorf("%w: jwt is required", ErrConfigInvalid)
	}
	id = strings.TrimSpace(id)
	if id == "" {
		return nil
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodDelete, c.endpoint("/pinning/unpin/"+id), nil)
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+strings.TrimSpace(c.cfg.JWT))
	_, err = c.do(req)
	return err
}

func (c *Client) endpoint(path string) string {
	base := strings.TrimRight(strings.TrimSpace(c.cfg.APIBase), "/")
	if base == "" {
		base = "https://api.pinata.cloud"
	}
	return base + path
}

func (c *Client) do(req *http.Request) ([]byte, error) {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrRequestFailed, err)
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("%w: status %d", ErrRequestFailed, resp.StatusCode)
	}
	return body, nil
}
