// cmd/tools/push-sender/main.go
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"time"

	redispush "push-lifecycle/internal/collaborators/redis-push"
	"push-lifecycle/internal/collaborators/trigger"
	awsclient "push-lifecycle/internal/common/aws"
	"push-lifecycle/internal/common/config"
	"push-lifecycle/internal/common/database"
	"push-lifecycle/internal/common/firebase"
	"push-lifecycle/internal/common/logger"
)

func main() {
	provider := flag.String("provider", "", "Delivery provider (sns, fcm, redis); defaults to sender.provider")
	token := flag.String("token", "", "Device registration token; defaults to sender.device_token")
	title := flag.String("title", "", "Call title")
	body := flag.String("body", "", "Call body")
	screen := flag.String("screen", "", "Deep-link screen")
	callID := flag.String("callId", "", "Call ID; generated when empty")
	delivery := flag.String("delivery", string(trigger.DeliveryForeground), "Redis delivery path (foreground, opened, coldstart)")
	dryRun := flag.Bool("dry-run", false, "Print the message instead of sending it")
	timeout := flag.Duration("timeout", 15*time.Second, "Send timeout")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		fmt.Printf("Error loading config: %v\n", err)
		os.Exit(1)
	}
	log := logger.NewStructured(cfg.Logging.Level, cfg.Logging.Format)

	if *provider == "" {
		*provider = cfg.Sender.Provider
	}
	if *token == "" {
		*token = cfg.Sender.DeviceToken
	}

	msg, err := trigger.BuildCallMessage(trigger.CallInput{
		Token:         *token,
		CallID:        *callID,
		Title:         *title,
		Body:          *body,
		Screen:        *screen,
		CallChannelID: cfg.Presentation.CallChannelID,
	})
	if err != nil {
		fmt.Printf("Error building message: %v\n", err)
		os.Exit(1)
	}

	if *dryRun {
		out, _ := json.MarshalIndent(msg, "", "  ")
		fmt.Println(string(out))
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	sender, cleanup, err := newSender(ctx, cfg, *provider, trigger.Delivery(*delivery), log)
	if err != nil {
		fmt.Printf("Error creating %s sender: %v\n", *provider, err)
		os.Exit(1)
	}
	defer cleanup()

	result, err := sender.Send(ctx, msg)
	if err != nil {
		fmt.Printf("Error sending call message: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("Sent via %s, message ID %s\n", result.Provider, result.MessageID)
}

func newSender(ctx context.Context, cfg *config.Config, provider string, delivery trigger.Delivery, log logger.Logger) (trigger.Sender, func(), error) {
	noop := func() {}

	switch provider {
	case trigger.ProviderSNS:
		client, err := awsclient.NewSNSClient(ctx, cfg.Sender.AWS.Region)
		if err != nil {
			return nil, noop, err
		}
		return trigger.NewSNSSender(client, cfg.Sender.AWS.PlatformEndpointARN, log), noop, nil

	case trigger.ProviderFCM:
		client, err := firebase.NewMessagingClient(ctx, cfg.Sender.FCM.CredentialsFile)
		if err != nil {
			return nil, noop, err
		}
		return trigger.NewFCMSender(client, log), noop, nil

	case trigger.ProviderRedis:
		rdb, err := database.NewRedis(cfg.Redis)
		if err != nil {
			return nil, noop, err
		}
		if err := rdb.Ping(ctx); err != nil {
			rdb.Close()
			return nil, noop, err
		}
		publisher := redispush.NewPublisher(rdb.Client, redispush.LoadConfig(cfg.Push))
		return trigger.NewRedisSender(publisher, delivery, log), func() { rdb.Close() }, nil

	default:
		return nil, noop, fmt.Errorf("unknown provider %q", provider)
	}
}
