package main

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"time"

	"folio/internal/fred"
	"folio/internal/handlers"
	"folio/internal/proxy"
	"folio/internal/quote"
	"folio/internal/refresher"
	"folio/internal/sheet"
	"folio/internal/store"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
)

func main() {
	logger := logrus.New()
	logger.SetLevel(logrus.InfoLevel)

	// Load .env file if it exists, but don't fail if it's missing (e.g. in production)
	_ = godotenv.Load()

	dbPath := os.Getenv("DB_PATH")
	if dbPath == "" {
		dbPath = "folio.db"
	}
	settings, err := store.Open(dbPath, logger)
	if err != nil {
		logger.Fatalf("open settings store: %v", err)
	}
	defer settings.Close()

	// the persisted URL survives restarts; SHEET_URL only seeds a fresh store
	sheetURL, err := settings.SheetURL(context.Background())
	if err != nil {
		logger.Fatalf("load sheet url: %v", err)
	}
	if sheetURL == "" {
		if v := os.Getenv("SHEET_URL"); v != "" {
			sheetURL = v
			if err := settings.SetSheetURL(context.Background(), v); err != nil {
				logger.Warnf("persist seeded sheet url: %v", err)
			}
		}
	}

	interval := 60
	if v := os.Getenv("REFRESH_INTERVAL"); v != "" {
		if iv, err := strconv.Atoi(v); err == nil && iv > 0 {
			interval = iv
		}
	}

	relays := proxy.New(logger)
	quotes := quote.New(relays, logger)
	macro := fred.New(os.Getenv("FRED_API_KEY"), relays, logger)
	if !macro.Configured() {
		logger.Info("FRED_API_KEY not set; macro overlay disabled")
	}

	ref := refresher.New(sheet.New(logger), quotes, macro, settings, sheetURL, time.Duration(interval)*time.Second, logger)

	// initial fill without blocking startup
	go ref.Refresh(context.Background(), false)
	ref.Start()
	defer ref.Stop()

	h := handlers.NewHandler(ref, logger)
	rg := gin.Default()
	h.Register(rg)

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}

	logger.Infof("server starting on :%s", port)
	if err := rg.Run(fmt.Sprintf(":%s", port)); err != nil {
		logger.Fatalf("server stopped: %v", err)
	}
}
