// Command menucheck fetches the live catalog from the menu webhook and
// prints per-category dish counts and the reference prices used for box
// pricing. Exits non-zero when the catalog is empty or unreachable, so it
// doubles as a deploy-time smoke test.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/mommamia-caters/api/internal/allocation"
	"github.com/mommamia-caters/api/internal/config"
	"github.com/mommamia-caters/api/internal/enum"
	"github.com/mommamia-caters/api/internal/menu"
)

func main() {
	webhookURL := flag.String("url", "", "Menu webhook URL (defaults to MENU_WEBHOOK_URL)")
	timeout := flag.Duration("timeout", 15*time.Second, "Fetch timeout")
	flag.Parse()

	if *webhookURL == "" {
		*webhookURL = config.Load().MenuWebhookURL
	}

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	catalog := menu.NewClient(*webhookURL)
	data, err := catalog.GetAll(ctx, true)
	if err != nil {
		log.Fatalf("Unable to fetch menu from %s: %v", *webhookURL, err)
	}

	total := 0
	for _, category := range enum.MenuCategories {
		byType := data.ByCategory(category)
		fmt.Printf("%s:\n", category)
		for _, dishType := range enum.Categories {
			items := byType.ByType(dishType)
			total += len(items)
			fmt.Printf("  %-8s %d dish(es)\n", dishType, len(items))
		}

		ref := allocation.ReferencePricesFrom(byType)
		fmt.Printf("  reference prices: main %s, side %s, starch %s\n",
			ref.Main.StringFixed(2), ref.Side.StringFixed(2), ref.Starch.StringFixed(2))
		for _, plan := range enum.BoxPlans {
			fmt.Printf("  %-20s %s\n", plan, allocation.BoxPrice(plan, ref).StringFixed(2))
		}
	}

	if total == 0 {
		fmt.Fprintln(os.Stderr, "Catalog is empty")
		os.Exit(1)
	}
	fmt.Printf("OK: %d dish(es) total\n", total)
}
