// Package main seeds the initial admin account and, when no price has
// been recorded yet, a manual price snapshot so the platform can quote
// before the first vendor fetch.
package main

import (
	"errors"
	"log"
	"os"

	"github.com/oureum/oureum-backend/internal/config"
	"github.com/oureum/oureum-backend/internal/models"
	"github.com/oureum/oureum-backend/internal/repositories"
	"github.com/oureum/oureum-backend/internal/validation"

	"github.com/shopspring/decimal"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

func main() {
	config.LoadEnv()

	adminWallet := os.Getenv("ADMIN_WALLET")
	adminPassword := os.Getenv("ADMIN_PASSWORD")
	if adminWallet == "" || adminPassword == "" {
		log.Fatal("ADMIN_WALLET and ADMIN_PASSWORD must be set in environment")
	}

	wallet, err := validation.NormalizeWallet(adminWallet)
	if err != nil {
		log.Fatalf("Invalid ADMIN_WALLET: %v", err)
	}

	if err := repositories.InitDB(); err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	defer func() {
		if repositories.DB != nil {
			sqlDB, err := repositories.DB.DB()
			if err == nil {
				sqlDB.Close()
			}
		}
		if repositories.CacheService != nil {
			repositories.CacheService.Close()
		}
	}()

	seedAdmin(repositories.DB, wallet, adminPassword)
	seedPrice(repositories.DB)
}

func seedAdmin(db *gorm.DB, wallet, password string) {
	var existing models.User
	if err := db.Where("wallet = ?", wallet).First(&existing).Error; err == nil {
		log.Println("Admin user already exists")
		return
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		log.Fatalf("Failed to look up admin user: %v", err)
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		log.Fatal("Failed to hash password:", err)
	}
	hash := string(hashed)

	admin := models.User{
		Wallet:       wallet,
		Role:         models.RoleAdmin,
		PasswordHash: &hash,
	}
	if err := db.Create(&admin).Error; err != nil {
		log.Fatal("Failed to create admin user:", err)
	}
	log.Println("Admin account created")
}

// seedPrice inserts a manual snapshot derived from the configured base
// price when no complete snapshot exists yet.
func seedPrice(db *gorm.DB) {
	var count int64
	if err := db.Model(&models.PriceSnapshot{}).
		Where("buy_per_gram > 0 AND sell_per_gram > 0").
		Count(&count).Error; err != nil {
		log.Fatalf("Failed to count price snapshots: %v", err)
	}
	if count > 0 {
		log.Println("Price snapshot already present, skipping seed")
		return
	}

	cfg := config.PricingFromEnv()
	snapshot := models.PriceSnapshot{
		Source:        models.SourceManual,
		BasePerGram:   cfg.ManualBasePerGram,
		BuyPerGram:    applyBps(cfg.ManualBasePerGram, cfg.BuyMarkupBps),
		SellPerGram:   applyBps(cfg.ManualBasePerGram, cfg.SellMarkupBps),
		BuyMarkupBps:  cfg.BuyMarkupBps,
		SellMarkupBps: cfg.SellMarkupBps,
		Note:          "seeded",
	}
	if err := db.Create(&snapshot).Error; err != nil {
		log.Fatal("Failed to seed price snapshot:", err)
	}
	log.Printf("Seeded manual price snapshot: buy=%s sell=%s", snapshot.BuyPerGram, snapshot.SellPerGram)
}

func applyBps(base decimal.Decimal, bps int) decimal.Decimal {
	factor := decimal.NewFromInt(10000 + int64(bps)).Div(decimal.NewFromInt(10000))
	return base.Mul(factor).Round(6)
}
