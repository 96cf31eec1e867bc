package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"strconv"
	"time"

	"github.com/ManuelReschke/PlanCard/app/models"
	"github.com/ManuelReschke/PlanCard/app/repository"
	"github.com/ManuelReschke/PlanCard/internal/pkg/billing"
	"github.com/ManuelReschke/PlanCard/internal/pkg/database"
	"github.com/ManuelReschke/PlanCard/internal/pkg/entitlements"
	"github.com/ManuelReschke/PlanCard/internal/pkg/env"
)

func main() {
	env.SetupEnvFile()

	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	database.SetupDatabase()
	repo := repository.NewRepositories(database.GetDB()).Account

	switch os.Args[1] {
	case "create":
		if len(os.Args) < 4 {
			log.Fatalf("create needs a name and an email")
		}
		account, err := models.NewAccount(os.Args[2], os.Args[3])
		if err != nil {
			log.Fatalf("invalid account: %v", err)
		}
		rawKey, err := account.IssueAPIKey()
		if err != nil {
			log.Fatalf("issuing api key: %v", err)
		}
		if err := repo.Create(account); err != nil {
			log.Fatalf("creating account: %v", err)
		}
		fmt.Printf("account %d created\napi key: %s\n", account.ID, rawKey)

	case "rotate-key":
		account := loadAccount(repo)
		rawKey, err := account.IssueAPIKey()
		if err != nil {
			log.Fatalf("issuing api key: %v", err)
		}
		if err := repo.Update(account); err != nil {
			log.Fatalf("saving account: %v", err)
		}
		fmt.Printf("api key: %s\n", rawKey)

	case "revoke-key":
		account := loadAccount(repo)
		account.RevokeAPIKey()
		if err := repo.Update(account); err != nil {
			log.Fatalf("saving account: %v", err)
		}
		log.Printf("api key of account %d revoked", account.ID)

	case "grant":
		// grant <id> <plan label> [expires-on]
		account := loadAccount(repo)
		if len(os.Args) < 4 {
			log.Fatalf("grant needs a plan label")
		}
		in := billing.NormalizedSubscription{
			AccountID:              account.ID,
			Provider:               models.BillingProviderManual,
			ProviderSubscriptionID: fmt.Sprintf("manual-%d", account.ID),
			PlanLabel:              os.Args[3],
			Status:                 models.BillingStatusActive,
		}
		if len(os.Args) > 4 {
			in.PlanExpiresAt = entitlements.ParseTimestamp(os.Args[4])
			if in.PlanExpiresAt == nil {
				log.Fatalf("invalid expiry %q", os.Args[4])
			}
		}

		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		svc := billing.NewServiceFromDB(database.GetDB())
		if _, err := svc.SyncSubscription(ctx, in); err != nil {
			log.Fatalf("syncing subscription: %v", err)
		}
		snap, err := svc.SnapshotForAccount(ctx, account.ID, time.Now())
		if err != nil {
			log.Fatalf("loading snapshot: %v", err)
		}
		d := entitlements.Resolve(snap, entitlements.PlanPremium)
		log.Printf("account %d: premium access=%t state=%s", account.ID, d.HasPremiumAccess, d.UIState)

	default:
		printUsage()
		os.Exit(1)
	}
}

func loadAccount(repo repository.AccountRepository) *models.Account {
	if len(os.Args) < 3 {
		log.Fatalf("missing account id")
	}
	id, err := strconv.ParseUint(os.Args[2], 10, 64)
	if err != nil {
		log.Fatalf("invalid account id %q: %v", os.Args[2], err)
	}
	account, err := repo.GetByID(uint(id))
	if err != nil {
		log.Fatalf("loading account %d: %v", id, err)
	}
	return account
}

func printUsage() {
	fmt.Println("Usage: go run cmd/account/main.go [command]")
	fmt.Println("Commands:")
	fmt.Println("  create NAME EMAIL            - create an account and print its api key")
	fmt.Println("  rotate-key ID                - issue a new api key")
	fmt.Println("  revoke-key ID                - revoke the current api key")
	fmt.Println("  grant ID PLAN [EXPIRES_ON]   - record a manual subscription")
}
