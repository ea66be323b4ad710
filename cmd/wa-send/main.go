// Command wa-send dispatches a single message and prints the outcome. It exits non-zero
// when the message was not sent, so cron jobs can alert on it.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"time"

	"golang-wa-dispatch/internal/adapters/db/sqlstore"
	"golang-wa-dispatch/internal/bootstrap"
	"golang-wa-dispatch/internal/config"
	"golang-wa-dispatch/internal/domain"
	"golang-wa-dispatch/internal/logging"
	"golang-wa-dispatch/internal/ports"
)

type outcomeJSON struct {
	ID        string    `json:"id"`
	Status    string    `json:"status"`
	Channel   string    `json:"channel"`
	Target    string    `json:"target"`
	Provider  string    `json:"provider,omitempty"`
	GatewayID int64     `json:"gateway_id,omitempty"`
	Attempts  int       `json:"attempts"`
	Error     string    `json:"error,omitempty"`
	Response  string    `json:"response,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

func main() {
	var (
		tenantID      = flag.Int64("tenant", 0, "tenant id")
		channel       = flag.String("channel", "personal", "personal or group")
		target        = flag.String("to", "", "phone number or group id")
		message       = flag.String("message", "", "message text")
		mediaURL      = flag.String("media", "", "attachment URL (group only)")
		platform      = flag.String("platform", "wa-send", "label stored with the delivery log")
		forceProvider = flag.String("provider", "", "only use gateways of this provider")
		forceFailover = flag.Bool("failover", false, "try every gateway even in manual mode")
		mediaKind     = flag.String("media-kind", "", "image or file")
		noCaption     = flag.Bool("no-caption", false, "send the message as a separate text after the media")
		timeout       = flag.Duration("timeout", 5*time.Minute, "overall deadline")
	)
	flag.Parse()

	conf := config.FromEnv()
	log := logging.New(conf.LogLevel, conf.LogFile)

	db, err := bootstrap.OpenDB(conf)
	if err != nil {
		log.Error("connect database", "err", err)
		os.Exit(2)
	}
	defer sqlstore.Close(db)

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	out := bootstrap.NewEngine(db, log).Dispatch(ctx, ports.SendRequest{
		TenantID: *tenantID,
		Channel:  *channel,
		Target:   *target,
		Message:  *message,
		MediaURL: *mediaURL,
		Options: map[string]any{
			"log_platform":    *platform,
			"force_provider":  *forceProvider,
			"force_failover":  *forceFailover,
			"media_kind":      *mediaKind,
			"send_as_caption": !*noCaption,
		},
	})

	if err := printOutcome(out); err != nil {
		fmt.Fprintln(os.Stderr, err)
	}
	if !out.Sent() {
		cancel()
		sqlstore.Close(db)
		os.Exit(1)
	}
}

func printOutcome(out domain.DispatchOutcome) error {
	o := outcomeJSON{
		ID:        out.ID.String(),
		Status:    string(out.Status),
		Channel:   string(out.Channel),
		Target:    out.Target,
		Provider:  string(out.Provider),
		Attempts:  out.Attempts,
		Error:     out.Error,
		Response:  out.Raw,
		CreatedAt: out.CreatedAt,
	}
	if out.Gateway != nil {
		o.GatewayID = out.Gateway.ID
	}
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(o)
}
