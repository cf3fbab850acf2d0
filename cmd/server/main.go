package main

import (
	"context"
	"fmt"
	"log"
	"net/http"

	"github.com/mommamia-caters/api/internal/cart"
	"github.com/mommamia-caters/api/internal/config"
	"github.com/mommamia-caters/api/internal/menu"
	"github.com/mommamia-caters/api/internal/router"
	"github.com/mommamia-caters/api/internal/webhook"
	"github.com/mommamia-caters/api/internal/ws"
)

func main() {
	cfg := config.Load()

	upstream := &http.Client{Timeout: cfg.UpstreamTimeout}

	catalog := menu.NewClient(cfg.MenuWebhookURL,
		menu.WithTTL(cfg.MenuCacheTTL),
		menu.WithHTTPClient(upstream),
	)
	chatClient := webhook.NewChatClient(cfg.ChatWebhookURL, nil)
	contactClient := webhook.NewContactClient(cfg.ContactWebhookURL, upstream)

	carts := cart.NewStore(cart.WithTTL(cfg.CartTTL))
	go carts.Run(context.Background(), cfg.CartSweepInterval)

	hub := ws.NewHub()
	go hub.Run()

	// Warm the catalog cache; a cold start still serves, just slower on
	// the first request.
	if _, err := catalog.GetAll(context.Background(), false); err != nil {
		log.Printf("WARNING: initial menu fetch failed: %v", err)
	}

	r := router.New(cfg, catalog, carts, chatClient, contactClient, hub)

	log.Printf("Starting server on :%s", cfg.Port)
	if err := http.ListenAndServe(fmt.Sprintf(":%s", cfg.Port), r); err != nil {
		log.Fatal(err)
	}
}
