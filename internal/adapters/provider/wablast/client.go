// Package wablast implements the broadcaster-API gateway provider.
package wablast

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang-wa-dispatch/internal/adapters/provider/providerhttp"
	"golang-wa-dispatch/internal/domain"
	"golang-wa-dispatch/internal/phone"
	"golang-wa-dispatch/internal/ports"
)

const (
	textPath  = "send-message"
	mediaPath = "send-media"
	imagePath = "send-image"
)

// Client implements ports.ProviderAdapter for the broadcaster-API provider.
type Client struct {
	http *providerhttp.Client
}

// New creates a Client. A nil http.Client uses a default one.
func New(hc *http.Client) *Client {
	return &Client{http: providerhttp.New(hc)}
}

// Code returns domain.ProviderBroadcast.
func (c *Client) Code() domain.ProviderCode {
	return domain.ProviderBroadcast
}

// SendOnce makes one text-message attempt.
func (c *Client) SendOnce(ctx context.Context, gw domain.GatewayConfig, channel domain.Channel, target, message string) ports.AttemptResult {
	if res, ok := checkCredentials(gw); !ok {
		return res
	}

	endpoint, number, res, ok := textEndpoint(gw, channel, target)
	if !ok {
		return res
	}

	fields := c.baseFields(gw, number)
	fields.Set("message", message)
	if footer := gw.ExtraString("footer"); footer != "" {
		fields.Set("footer", footer)
	}

	resp, err := c.http.PostForm(ctx, endpoint, nil, fields, timeout(gw))
	return result(resp, err)
}

// SendMediaOnce makes one media-message attempt to a group. When the message is
// not sent as the caption it follows as a separate text message, and both must succeed.
func (c *Client) SendMediaOnce(ctx context.Context, gw domain.GatewayConfig, channel domain.Channel, target, message, mediaURL string, opts ports.MediaOptions) ports.AttemptResult {
	if channel != domain.ChannelGroup {
		return precondition(domain.ErrMediaChannel.Error())
	}
	if res, ok := checkCredentials(gw); !ok {
		return res
	}

	kind := providerhttp.ClassifyMedia(mediaURL, opts)
	endpoint := MediaEndpoint(groupEndpoint(gw), kind, opts.GroupFileURL, gw.ExtraString("media_base_url"))
	if endpoint == "" {
		return precondition("media endpoint could not be resolved")
	}

	fields := c.baseFields(gw, strings.TrimSpace(target))
	fields.Set("url", mediaURL)
	if kind == ports.MediaImage {
		fields.Set("media_type", "image")
	} else {
		fields.Set("media_type", "document")
		if name := providerhttp.FileName(mediaURL); name != "" {
			fields.Set("filename", name)
		}
	}
	if opts.SendAsCaption {
		fields.Set("caption", message)
	}

	resp, err := c.http.PostForm(ctx, endpoint, nil, fields, timeout(gw))
	media := result(resp, err)
	if !media.OK || opts.SendAsCaption || strings.TrimSpace(message) == "" {
		return media
	}

	text := c.SendOnce(ctx, gw, domain.ChannelGroup, target, message)
	text.Raw = strings.TrimSpace(media.Raw + "\n" + text.Raw)
	if !text.OK {
		text.Error = "media sent, text follow-up failed: " + text.Error
	}
	return text
}

// MediaEndpoint resolves the file-send or image-send endpoint for group media.
// Order: explicit override (files only), substitution of the text path in the group
// endpoint, then the seed URL (or the group endpoint's origin) plus the media path.
func MediaEndpoint(groupEndpoint string, kind ports.MediaKind, fileOverride, seed string) string {
	path := mediaPath
	if kind == ports.MediaImage {
		path = imagePath
	}

	if kind == ports.MediaFile && strings.TrimSpace(fileOverride) != "" {
		return strings.TrimSpace(fileOverride)
	}
	if strings.Contains(groupEndpoint, textPath) {
		return strings.Replace(groupEndpoint, textPath, path, 1)
	}

	base := strings.TrimRight(strings.TrimSpace(seed), "/")
	if base == "" {
		base = providerhttp.Origin(groupEndpoint)
	}
	if base == "" {
		return ""
	}
	return base + "/" + path
}

// IsSuccess trusts the HTTP exchange's own success flag, narrowed by a status or
// success field when the decoded body carries one. A field with an unrecognized
// value counts as failure.
func IsSuccess(httpOK bool, body string) bool {
	if !httpOK {
		return false
	}
	decoded, ok := providerhttp.DecodeBody(body)
	if !ok {
		return true
	}
	for _, key := range []string{"status", "success"} {
		v, present := decoded[key]
		if !present {
			continue
		}
		success, _ := providerhttp.Indicator(v)
		return success
	}
	return true
}

func (c *Client) baseFields(gw domain.GatewayConfig, number string) url.Values {
	fields := url.Values{}
	fields.Set("api_key", gw.Token)
	fields.Set("sender", gw.SenderNumber)
	fields.Set("number", number)
	return fields
}

func textEndpoint(gw domain.GatewayConfig, channel domain.Channel, target string) (string, string, ports.AttemptResult, bool) {
	if channel == domain.ChannelGroup {
		endpoint := groupEndpoint(gw)
		if endpoint == "" {
			return "", "", precondition("group endpoint not configured"), false
		}
		return endpoint, strings.TrimSpace(target), ports.AttemptResult{}, true
	}

	endpoint := strings.TrimSpace(gw.BaseURL)
	if endpoint == "" {
		return "", "", precondition("base endpoint not configured"), false
	}
	number := strings.TrimSpace(target)
	if !strings.Contains(number, "@") {
		number = phone.ToInternational(number)
	}
	if number == "" {
		return "", "", precondition(fmt.Sprintf("invalid phone number %q", target)), false
	}
	return endpoint, number, ports.AttemptResult{}, true
}

// groupEndpoint falls back to the base endpoint, which accepts group ids as the number.
func groupEndpoint(gw domain.GatewayConfig) string {
	if g := strings.TrimSpace(gw.GroupURL); g != "" {
		return g
	}
	return strings.TrimSpace(gw.BaseURL)
}

func result(resp providerhttp.Response, err error) ports.AttemptResult {
	if err != nil {
		return ports.AttemptResult{Raw: resp.Body, Error: err.Error()}
	}
	if IsSuccess(resp.Success(), resp.Body) {
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
		return precondition("api key not configured"), false
	case strings.TrimSpace(gw.SenderNumber) == "":
		return precondition("sender number not configured"), false
	}
	return ports.AttemptResult{}, true
}

func precondition(reason string) ports.AttemptResult {
	return ports.AttemptResult{Error: string(domain.ProviderBroadcast) + ": " + reason, Precondition: true}
}

func timeout(gw domain.GatewayConfig) time.Duration {
	sec := gw.TimeoutSec
	if sec < 1 {
		sec = domain.DefaultTimeoutSec
	}
	return time.Duration(sec) * time.Second
}
