// Copyright The Linux Foundation and each contributor to LFX.
// SPDX-License-Identifier: MIT

package service

import (
	"context"
	"log"
	"log/slog"
	"os"
	"sync"

	"github.com/linuxfoundation/lfx-v2-calendar-event-service/internal/domain/port"
	"github.com/linuxfoundation/lfx-v2-calendar-event-service/internal/infrastructure/auth"
	"github.com/linuxfoundation/lfx-v2-calendar-event-service/internal/infrastructure/mailgateway"
	infrastructure "github.com/linuxfoundation/lfx-v2-calendar-event-service/internal/infrastructure/mock"
	"github.com/linuxfoundation/lfx-v2-calendar-event-service/internal/infrastructure/nats"
)

var (
	natsClient      *nats.NATSClient
	natsStorage     port.EventStore
	natsDirectory   port.AddressDirectory
	natsEntitlement port.EntitlementChecker
	natsCapability  port.GroupCapabilityChecker
	natsPublisher   port.MessagePublisher

	natsDoOnce sync.Once
)

func natsInit(ctx context.Context) {
	natsDoOnce.Do(func() {
		config := nats.NewConfigFromEnv()

		client, errNewClient := nats.NewClient(ctx, config)
		if errNewClient != nil {
			log.Fatalf("failed to create NATS client: %v", errNewClient)
		}

		natsClient = client
		natsStorage = nats.NewStorage(client)
		natsDirectory = nats.NewAddressDirectory(client)
		natsEntitlement = nats.NewEntitlementChecker(client)
		natsCapability = nats.NewGroupCapabilityChecker(client)
		natsPublisher = nats.NewMessagePublisher(client)
	})
}

// GetNATSClient returns the shared NATS client used for subscriptions
func GetNATSClient(ctx context.Context) *nats.NATSClient {
	natsInit(ctx)
	return natsClient
}

// EventStorage returns the NATS KV backed event store
func EventStorage(ctx context.Context) port.EventStore {
	natsInit(ctx)
	return natsStorage
}

// AddressDirectory returns the NATS backed recipient type resolver
func AddressDirectory(ctx context.Context) port.AddressDirectory {
	natsInit(ctx)
	return natsDirectory
}

// EntitlementChecker returns the NATS backed entitlement checker
func EntitlementChecker(ctx context.Context) port.EntitlementChecker {
	natsInit(ctx)
	return natsEntitlement
}

// CapabilityChecker returns the NATS backed permission oracle
func CapabilityChecker(ctx context.Context) port.GroupCapabilityChecker {
	natsInit(ctx)
	return natsCapability
}

// MessagePublisher returns the NATS backed indexer and access publisher
func MessagePublisher(ctx context.Context) port.MessagePublisher {
	natsInit(ctx)
	return natsPublisher
}

// NotificationDistributor initializes the notification distributor based on
// the configured delivery source
func NotificationDistributor(ctx context.Context) port.NotificationDistributor {
	var distributor port.NotificationDistributor

	notificationSource := os.Getenv("NOTIFICATION_SOURCE")
	if notificationSource == "" {
		notificationSource = "mailgateway"
	}

	switch notificationSource {
	case "mock":
		slog.InfoContext(ctx, "initializing mock notification distributor")
		distributor = infrastructure.NewMockDistributor()
	case "mailgateway":
		slog.InfoContext(ctx, "initializing mail gateway notification distributor")
		distributor = mailgateway.NewNotificationDistributor(mailgateway.NewConfigFromEnv())
	default:
		log.Fatalf("unsupported notification distributor implementation: %s", notificationSource)
	}

	return distributor
}

// AuthService initializes the authentication service implementation
func AuthService(ctx context.Context) port.Authenticator {
	var authService port.Authenticator

	authSource := os.Getenv("AUTH_SOURCE")
	if authSource == "" {
		authSource = "jwt"
	}

	switch authSource {
	case "mock":
		slog.InfoContext(ctx, "initializing mock authentication service")
		authService = infrastructure.NewMockAuthService()
	case "jwt":
		slog.InfoContext(ctx, "initializing JWT authentication service")
		jwtConfig := auth.JWTAuthConfig{
			JWKSURL:  os.Getenv("JWKS_URL"),
			Audience: os.Getenv("JWT_AUDIENCE"),
		}
		jwtAuth, err := auth.NewJWTAuth(jwtConfig)
		if err != nil {
			log.Fatalf("failed to initialize JWT authentication service: %v", err)
		}
		authService = jwtAuth
	default:
		log.Fatalf("unsupported authentication service implementation: %s", authSource)
	}

	return authService
}
