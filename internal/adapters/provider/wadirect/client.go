// Package wadirect implements the direct-API gateway provider.
//
// Personal messages go to the base endpoint with a country-code-stripped "phone_no";
// group messages go to a dedicated group endpoint with the raw group id.
package wadirect

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"golang-wa-dispatch/internal/adapters/provider/providerhttp"
	"golang-wa-dispatch/internal/domain"
	"golang-wa-dispatch/internal/phone"
	"golang-wa-dispatch/internal/ports"
)

// Client implements ports.ProviderAdapter for the direct-API provider.
type Client struct {
	http *providerhttp.Client
}

// New creates a Client. A nil http.Client uses a default one.
func New(hc *http.Client) *Client {
	return &Client{http: providerhttp.New(hc)}
}

// Code returns domain.ProviderDirect.
func (c *Client) Code() domain.ProviderCode {
	return domain.ProviderDirect
}

type textRequest struct {
	Token   string `json:"token"`
	Sender  string `json:"sender"`
	PhoneNo string `json:"phone_no,omitempty"`
	GroupID string `json:"group_id,omitempty"`
	Message string `json:"message"`
}

type mediaRequest struct {
	Token     string `json:"token"`
	Sender    string `json:"sender"`
	GroupID   string `json:"group_id"`
	MediaURL  string `json:"media_url"`
	MediaType string `json:"media_type"`
	FileName  string `json:"file_name,omitempty"`
	Caption   string `json:"caption,omitempty"`
	Message   string `json:"message,omitempty"`
}

// SendOnce makes one text-message attempt.
func (c *Client) SendOnce(ctx context.Context, gw domain.GatewayConfig, channel domain.Channel, target, message string) ports.AttemptResult {
	if res, ok := checkCredentials(gw); !ok {
		return res
	}

	req := textRequest{
		Token:   gw.Token,
		Sender:  gw.SenderNumber,
		Message: withFooter(message, gw.ExtraString("footer")),
	}

	var endpoint string
	switch channel {
	case domain.ChannelGroup:
		endpoint = strings.TrimSpace(gw.GroupURL)
		if endpoint == "" {
			return precondition("group endpoint not configured")
		}
		req.GroupID = strings.TrimSpace(target)
	default:
		endpoint = strings.TrimSpace(gw.BaseURL)
		if endpoint == "" {
			return precondition("base endpoint not configured")
		}
		req.PhoneNo = phone.ToLocal(target)
		if req.PhoneNo == "" {
			return precondition(fmt.Sprintf("invalid phone number %q", target))
		}
	}

	resp, err := c.http.PostJSON(ctx, endpoint, nil, req, timeout(gw))
	return result(resp, err)
}

// SendMediaOnce makes one media-message attempt. Only the group channel is supported.
func (c *Client) SendMediaOnce(ctx context.Context, gw domain.GatewayConfig, channel domain.Channel, target, message, mediaURL string, opts ports.MediaOptions) ports.AttemptResult {
	if channel != domain.ChannelGroup {
		return precondition(domain.ErrMediaChannel.Error())
	}
	if res, ok := checkCredentials(gw); !ok {
		return res
	}
	endpoint := strings.TrimSpace(gw.GroupURL)
	if endpoint == "" {
		return precondition("group endpoint not configured")
	}

	req := mediaRequest{
		Token:     gw.Token,
		Sender:    gw.SenderNumber,
		GroupID:   strings.TrimSpace(target),
		MediaURL:  mediaURL,
		MediaType: string(providerhttp.ClassifyMedia(mediaURL, opts)),
		FileName:  providerhttp.FileName(mediaURL),
	}
	text := withFooter(message, gw.ExtraString("footer"))
	if opts.SendAsCaption {
		req.Caption = text
	} else {
		req.Message = text
	}

	resp, err := c.http.PostJSON(ctx, endpoint, nil, req, timeout(gw))
	return result(resp, err)
}

// IsSuccess requires HTTP 200. When the body decodes to an object with a status or
// code field, that field must also indicate success. Bodies without a recognizable
// field are accepted, since older provider versions answer with plain text.
func IsSuccess(statusCode int, body string) bool {
	if statusCode != http.StatusOK {
		return false
	}
	decoded, ok := providerhttp.DecodeBody(body)
	if !ok {
		return true
	}
	for _, key := range []string{"status", "code"} {
		v, present := decoded[key]
		if !present {
			continue
		}
		if success, recognized := providerhttp.Indicator(v); recognized {
			return success
		}
	}
	return true
}

func result(resp providerhttp.Response, err error) ports.AttemptResult {
	if err != nil {
		return ports.AttemptResult{Raw: resp.Body, Error: err.Error()}
	}
	if IsSuccess(resp.StatusCode, resp.Body) {
		return ports.AttemptResult{OK: true, Raw: resp.Body}
	}
	reason := fmt.Sprintf("http %d", resp.StatusCode)
	if decoded, ok := providerhttp.DecodeBody(resp.Body); ok {
		if msg := providerhttp.ErrorMessage(decoded); msg != "" {
			reason += ": " + msg
		}
	} else if excerpt := providerhttp.BodyExcerpt(resp.Body); excerpt != "" {
		reason += ": " + excerpt
	}
	return ports.AttemptResult{Raw: resp.Body, Error: reason}
}

func checkCredentials(gw domain.GatewayConfig) (ports.AttemptResult, bool) {
	switch {
	case strings.TrimSpace(gw.Token) == "":
		return precondition("token not configured"), false
	case strings.TrimSpace(gw.SenderNumber) == "":
		return precondition("sender number not configured"), false
	}
	return ports.AttemptResult{}, true
}

func precondition(reason string) ports.AttemptResult {
	return ports.AttemptResult{Error: string(domain.ProviderDirect) + ": " + reason, Precondition: true}
}

func withFooter(message, footer string) string {
	if footer == "" {
		return message
	}
	return message + "\n\n" + footer
}

func timeout(gw domain.GatewayConfig) time.Duration {
	sec := gw.TimeoutSec
	if sec < 1 {
		sec = domain.DefaultTimeoutSec
	}
	return time.Duration(sec) * time.Second
}
