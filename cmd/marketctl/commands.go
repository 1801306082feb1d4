package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"time"

	"timber-market/config"
	"timber-market/internal/broker"
	"timber-market/internal/models"
	"timber-market/internal/service"
	"timber-market/internal/storage"
	"timber-market/internal/util"

	"github.com/urfave/cli/v2"
)

// openStore wires the configured KV backend. Each marketctl invocation is an
// independent, uncoordinated client of the shared store, exactly like one
// more open view of the marketplace.
func openStore() (*storage.Store, *config.Config, error) {
	cfg := config.Load()
	if err := util.InitLogger(cfg.Server.Env); err != nil {
		return nil, nil, err
	}

	kv, err := storage.Open(storage.Options{
		Backend:       cfg.Storage.Backend,
		DatabaseURL:   cfg.Storage.DatabaseURL,
		RedisAddr:     cfg.Redis.Addr,
		RedisPassword: cfg.Redis.Password,
		RedisDB:       cfg.Redis.DB,
	})
	if err != nil {
		return nil, nil, err
	}
	return storage.NewStore(kv), cfg, nil
}

func loadSuggestions(path string) ([]models.MatchSuggestion, error) {
	payload, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read suggestion file: %w", err)
	}
	return service.DecodeSuggestions(payload)
}

var seedCmd = &cli.Command{
	Name:  "seed",
	Usage: "Seed demo companies, demands and stock, and write a sample suggestion payload",
	Flags: []cli.Flag{
		&cli.StringFlag{
			Name:  "out",
			Value: "suggestions.json",
			Usage: "where to write the sample suggestion payload",
		},
	},
	Action: func(c *cli.Context) error {
		store, _, err := openStore()
		if err != nil {
			return err
		}
		defer store.Close()

		ctx := context.Background()
		now := time.Now()

		companies := []models.Company{
			{ID: "comp-cust-01", Name: "Fahid Kft", Role: models.RoleCustomer, Email: "info@fahid.example"},
			{ID: "comp-manu-01", Name: "Erdo Zrt", Role: models.RoleManufacturer, Email: "sales@erdo.example"},
			{ID: "comp-admin", Name: "Marketplace Admin", Role: models.RoleAdmin},
		}
		demands := []models.DemandItem{
			{
				ID: "dem-01", DiameterMinCm: 20, DiameterMaxCm: 30, LengthM: 4,
				Quantity: 120, CubicMeters: 8.25, Notes: "Bridge beams",
				SubmittedAt: now, Status: models.DemandStatusReceived, CompanyID: "comp-cust-01",
			},
			{
				ID: "dem-02", DiameterMinCm: 10, DiameterMaxCm: 15, LengthM: 3,
				Quantity: 200, CubicMeters: 5.4, Notes: "Fence posts",
				SubmittedAt: now, Status: models.DemandStatusReceived, CompanyID: "comp-cust-01",
			},
		}
		stocks := []models.StockItem{
			{
				ID: "stk-01", DiameterMinCm: 22, DiameterMaxCm: 28, LengthM: 4,
				Quantity: 150, CubicMeters: 10.1, Price: "120 EUR/m³",
				Sustainability: "PEFC certified", UploadedAt: now,
				Status: models.StockStatusAvailable, CompanyID: "comp-manu-01",
			},
			{
				ID: "stk-02", DiameterMinCm: 10, DiameterMaxCm: 16, LengthM: 3,
				Quantity: 300, CubicMeters: 6.2, Price: "15 EUR/db",
				UploadedAt: now, Status: models.StockStatusAvailable, CompanyID: "comp-manu-01",
			},
		}

		if err := store.SaveCompanies(ctx, companies); err != nil {
			return err
		}
		if err := store.SaveDemands(ctx, demands); err != nil {
			return err
		}
		if err := store.SaveStocks(ctx, stocks); err != nil {
			return err
		}

		suggestions := []models.MatchSuggestion{
			{
				ID: "sug-01", DemandID: "dem-01", StockID: "stk-01",
				Reason:   "Diameter and length ranges overlap, volume covers the demand",
				Strength: models.StrengthHigh, Score: 0.92,
			},
			{
				ID: "sug-02", DemandID: "dem-02", StockID: "stk-02",
				Reason:   "Piece count sufficient, dimensions within tolerance",
				Strength: models.StrengthMedium, Score: 0.71,
			},
		}
		payload, err := json.MarshalIndent(suggestions, "", "  ")
		if err != nil {
			return err
		}
		if err := os.WriteFile(c.String("out"), payload, 0o644); err != nil {
			return err
		}

		fmt.Printf("Seeded %d companies, %d demands, %d stock items\n",
			len(companies), len(demands), len(stocks))
		fmt.Printf("Sample suggestion payload written to %s\n", c.String("out"))
		return nil
	},
}

var suggestionsCmd = &cli.Command{
	Name:  "suggestions",
	Usage: "Show the suggestions relevant to a company",
	Flags: []cli.Flag{
		&cli.StringFlag{
			Name:     "company",
			Required: true,
			Usage:    "viewing company id",
		},
		&cli.StringFlag{
			Name:  "file",
			Value: "suggestions.json",
			Usage: "suggestion payload from the recommendation provider",
		},
	},
	Action: func(c *cli.Context) error {
		store, cfg, err := openStore()
		if err != nil {
			return err
		}
		defer store.Close()

		ctx := context.Background()
		suggestions, err := loadSuggestions(c.String("file"))
		if err != nil {
			return err
		}

		directory := service.NewCompanyDirectory(store, models.Company{
			ID:   cfg.Business.DefaultCounterpartyID,
			Role: models.RoleAdmin,
		})
		viewerPtr := directory.FindByID(ctx, c.String("company"))
		if viewerPtr == nil {
			return errors.New("unknown company id")
		}
		viewer := *viewerPtr

		filter := service.NewRelevanceFilter(store)
		relevant := filter.Relevant(ctx, viewer, suggestions)

		fmt.Printf("%d relevant suggestion(s) for %s (%s)\n", len(relevant), viewer.Name, viewer.Role)
		for _, sug := range relevant {
			fmt.Printf("  %s  demand=%s stock=%s score=%.2f  %s\n",
				sug.ID, sug.DemandID, sug.StockID, sug.Score, sug.Reason)
		}
		return nil
	},
}

var interestCmd = &cli.Command{
	Name:  "interest",
	Usage: "Declare a party's interest in a suggestion and resolve if both sides converged",
	Flags: []cli.Flag{
		&cli.StringFlag{
			Name:     "suggestion",
			Required: true,
			Usage:    "suggestion id from the payload file",
		},
		&cli.StringFlag{
			Name:     "party",
			Required: true,
			Usage:    "declaring company id",
		},
		&cli.StringFlag{
			Name:  "file",
			Value: "suggestions.json",
			Usage: "suggestion payload from the recommendation provider",
		},
	},
	Action: func(c *cli.Context) error {
		store, cfg, err := openStore()
		if err != nil {
			return err
		}
		defer store.Close()

		ctx := context.Background()
		suggestions, err := loadSuggestions(c.String("file"))
		if err != nil {
			return err
		}

		var suggestion *models.MatchSuggestion
		for i := range suggestions {
			if suggestions[i].ID == c.String("suggestion") {
				suggestion = &suggestions[i]
				break
			}
		}
		if suggestion == nil {
			return errors.New("suggestion not found in payload file")
		}

		producer := broker.NewProducer(cfg.Kafka.Brokers, cfg.Kafka.TopicDeals)
		defer producer.Close()
		publisher := broker.NewEventPublisher(producer)

		ledger := service.NewInterestLedger(store, publisher)
		calculator := service.NewCommissionCalculator(cfg.Business.CommissionRate)
		resolver := service.NewMatchResolver(store, ledger, calculator, publisher, cfg.Business.DefaultCounterpartyID)

		resolution, err := resolver.ConsiderInterest(ctx, *suggestion, c.String("party"))
		if errors.Is(err, service.ErrItemNotFound) {
			return errors.New("matching failed: the referenced demand or stock no longer exists")
		}
		if err != nil {
			return err
		}

		switch resolution.Outcome {
		case service.OutcomeDealConfirmed:
			fmt.Printf("Deal confirmed: %s (commission %.2f)\n",
				resolution.Deal.ID, resolution.Deal.CommissionAmount)
		default:
			fmt.Println("Interest recorded, waiting for the counterparty")
		}
		return nil
	},
}

var withdrawCmd = &cli.Command{
	Name:  "withdraw",
	Usage: "Withdraw a party's interest in a suggestion before the counterparty converges",
	Flags: []cli.Flag{
		&cli.StringFlag{
			Name:     "suggestion",
			Required: true,
			Usage:    "suggestion id",
		},
		&cli.StringFlag{
			Name:     "party",
			Required: true,
			Usage:    "withdrawing company id",
		},
	},
	Action: func(c *cli.Context) error {
		store, _, err := openStore()
		if err != nil {
			return err
		}
		defer store.Close()

		ctx := context.Background()
		ledger := service.NewInterestLedger(store, nil)

		if !ledger.Has(ctx, c.String("suggestion"), c.String("party")) {
			fmt.Println("No recorded interest to withdraw")
			return nil
		}
		if err := ledger.Withdraw(ctx, c.String("suggestion"), c.String("party")); err != nil {
			return err
		}

		fmt.Println("Interest withdrawn")
		return nil
	},
}

var dealsCmd = &cli.Command{
	Name:  "deals",
	Usage: "List confirmed deals, newest first",
	Flags: []cli.Flag{
		&cli.StringFlag{
			Name:  "party",
			Usage: "filter to deals involving this company id",
		},
	},
	Action: func(c *cli.Context) error {
		store, _, err := openStore()
		if err != nil {
			return err
		}
		defer store.Close()

		ctx := context.Background()
		settlement := service.NewSettlementService(store, nil)
		deals := settlement.DealsFor(ctx, c.String("party"))

		fmt.Printf("%d deal(s)\n", len(deals))
		for _, d := range deals {
			billed := " "
			if d.Billed {
				billed = "billed " + d.InvoiceID
			}
			fmt.Printf("  %s  %s  demand=%s stock=%s commission=%.2f %s\n",
				d.MatchedAt.Format(time.RFC3339), d.ID, d.DemandID, d.StockID,
				d.CommissionAmount, billed)
		}
		return nil
	},
}
