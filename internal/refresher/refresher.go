// Package refresher owns the application state and the polling cadence.
// It is the only writer; handlers read snapshots.
package refresher

import (
	"context"
	"fmt"
	"sync"
	"time"

	"folio/internal/fred"
	"folio/internal/metrics"
	"folio/internal/models"
	"folio/internal/normalize"
	"folio/internal/quote"
	"folio/internal/series"
	"folio/internal/sheet"
	"folio/internal/store"

	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"
)

const (
	indexSymbol  = "^TWII"
	indexName    = "台股加權"
	spxSymbol    = "^GSPC"
	m2Series     = "M2SL"
	macroRange   = "5y"
	macroMaxAge  = time.Hour
	macroYears = 5
)

// currencyPair maps a display code onto its Yahoo symbol.
type currencyPair struct {
	Code   string
	Symbol string
	Name   string
}

var currencyPairs = []currencyPair{
	{"USD", "USDTWD=X", "美金"},
	{"EUR", "EURTWD=X", "歐元"},
	{"JPY", "JPYTWD=X", "日圓"},
	{"CNY", "CNYTWD=X", "人民幣"},
}

// Snapshot is a point-in-time copy of everything the API serves.
type Snapshot struct {
	SheetURL        string
	Holdings        []models.Holding
	History         []models.HistoryPoint
	Stats           models.PerformanceStats
	Market          []models.QuoteRecord
	Rates           map[string]models.QuoteRecord
	Macro           []models.MacroPoint
	MacroConfigured bool
	Loading         bool
	Error           string
	LastRefreshed   time.Time
}

type Refresher struct {
	log      *logrus.Logger
	sheets   *sheet.Client
	quotes   *quote.Client
	macro    *fred.Client
	settings *store.Store
	interval time.Duration

	cron    *cron.Cron
	entryID cron.EntryID

	mu             sync.RWMutex
	sheetURL       string
	holdings       []models.Holding
	history        []models.HistoryPoint
	stats          models.PerformanceStats
	sheetMarket    []models.QuoteRecord
	indexQuote     *models.QuoteRecord
	rates          map[string]models.QuoteRecord
	macroPoints    []models.MacroPoint
	macroFetchedAt time.Time
	loading        bool
	lastErr        string
	lastRefreshed  time.Time
}

func New(sheets *sheet.Client, quotes *quote.Client, macro *fred.Client, settings *store.Store, sheetURL string, interval time.Duration, log *logrus.Logger) *Refresher {
	return &Refresher{
		log:      log,
		sheets:   sheets,
		quotes:   quotes,
		macro:    macro,
		settings: settings,
		interval: interval,
		sheetURL: sheetURL,
		rates:    map[string]models.QuoteRecord{},
	}
}

// Start schedules background refreshes on the configured cadence.
func (r *Refresher) Start() {
	r.cron = cron.New()
	r.schedule()
	r.cron.Start()
}

func (r *Refresher) Stop() {
	if r.cron != nil {
		r.cron.Stop()
	}
}

func (r *Refresher) schedule() {
	id, err := r.cron.AddFunc(fmt.Sprintf("@every %s", r.interval), func() {
		ctx, cancel := context.WithTimeout(context.Background(), r.interval)
		defer cancel()
		r.Refresh(ctx, true)
	})
	if err != nil {
		r.log.Errorf("schedule background refresh: %v", err)
		return
	}
	r.entryID = id
}

// Refresh runs one full cycle. The sheet fetch and the public-data fetch
// are issued together and isolated from each other; background cycles
// never touch the loading flag or the surfaced error.
func (r *Refresher) Refresh(ctx context.Context, background bool) {
	if !background {
		r.mu.Lock()
		r.loading = true
		r.lastErr = ""
		r.mu.Unlock()
	}

	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		r.refreshSheet(ctx, background)
	}()
	go func() {
		defer wg.Done()
		r.refreshPublic(ctx)
	}()
	wg.Wait()

	r.mu.Lock()
	if !background {
		r.loading = false
	}
	r.lastRefreshed = time.Now()
	r.mu.Unlock()
}

func (r *Refresher) refreshSheet(ctx context.Context, background bool) {
	r.mu.RLock()
	url := r.sheetURL
	r.mu.RUnlock()
	if url == "" {
		return
	}

	payload, err := r.sheets.Fetch(ctx, url)
	if err != nil {
		if background {
			r.log.Warnf("background sheet refresh failed: %v", err)
			return
		}
		r.mu.Lock()
		r.lastErr = err.Error()
		r.mu.Unlock()
		return
	}

	holdings := normalize.Holdings(payload.Stocks)
	history, stats := normalize.History(payload.History, payload.Stats)
	if stats == nil {
		stats = metrics.ComputeStats(history)
	}
	market := normalize.Market(payload.Market)

	r.mu.Lock()
	r.holdings = holdings
	r.history = history
	r.stats = stats
	r.sheetMarket = market
	r.mu.Unlock()
}

// refreshPublic updates the market index, exchange rates and the macro
// overlay. These are enhancement data: every failure is logged and the
// previous value kept, regardless of foreground or background.
func (r *Refresher) refreshPublic(ctx context.Context) {
	if rec, err := r.quotes.Quote(ctx, indexSymbol, indexName); err != nil {
		r.log.Warnf("index quote %s: %v", indexSymbol, err)
	} else {
		r.mu.Lock()
		r.indexQuote = &rec
		r.mu.Unlock()
	}

	for _, pair := range currencyPairs {
		rec, err := r.quotes.Quote(ctx, pair.Symbol, pair.Name)
		if err != nil {
			r.log.Warnf("currency quote %s: %v", pair.Symbol, err)
			continue
		}
		rec.Code = pair.Code
		r.mu.Lock()
		r.rates[pair.Code] = rec
		r.mu.Unlock()
	}

	r.refreshMacro(ctx)
}

func (r *Refresher) refreshMacro(ctx context.Context) {
	if !r.macro.Configured() {
		return
	}
	r.mu.RLock()
	fresh := time.Since(r.macroFetchedAt) < macroMaxAge && len(r.macroPoints) > 0
	r.mu.RUnlock()
	// monthly data, no point refetching every cycle
	if fresh {
		return
	}

	closes, err := r.quotes.DailyCloses(ctx, spxSymbol, macroRange)
	if err != nil {
		r.log.Warnf("macro closes %s: %v", spxSymbol, err)
		return
	}
	start := time.Now().AddDate(-macroYears, 0, 0)
	obs, err := r.macro.Observations(ctx, m2Series, start)
	if err != nil {
		r.log.Warnf("macro observations %s: %v", m2Series, err)
		return
	}

	merged := series.Merge(closes, obs)
	points := make([]models.MacroPoint, len(merged))
	for i, p := range merged {
		points[i] = models.MacroPoint{Date: p.Date, SP500: p.A, M2: p.B, Timestamp: p.Timestamp}
	}

	r.mu.Lock()
	r.macroPoints = points
	r.macroFetchedAt = time.Now()
	r.mu.Unlock()
}

// SetSheetURL persists the new endpoint, restarts the timer and runs an
// immediate foreground refresh against it.
func (r *Refresher) SetSheetURL(ctx context.Context, url string) error {
	if err := r.settings.SetSheetURL(ctx, url); err != nil {
		return err
	}
	r.mu.Lock()
	r.sheetURL = url
	r.mu.Unlock()

	if r.cron != nil {
		r.cron.Remove(r.entryID)
		r.schedule()
	}
	r.Refresh(ctx, false)
	return nil
}

func (r *Refresher) Snapshot() Snapshot {
	r.mu.RLock()
	defer r.mu.RUnlock()

	snap := Snapshot{
		SheetURL:        r.sheetURL,
		Holdings:        append([]models.Holding(nil), r.holdings...),
		History:         append([]models.HistoryPoint(nil), r.history...),
		Stats:           r.stats,
		Macro:           append([]models.MacroPoint(nil), r.macroPoints...),
		MacroConfigured: r.macro.Configured(),
		Loading:         r.loading,
		Error:           r.lastErr,
		LastRefreshed:   r.lastRefreshed,
		Rates:           make(map[string]models.QuoteRecord, len(r.rates)),
	}
	for k, v := range r.rates {
		snap.Rates[k] = v
	}

	// sheet-provided market rows win; the Yahoo index quote fills in when
	// the sheet has no market tab
	if len(r.sheetMarket) > 0 {
		snap.Market = append([]models.QuoteRecord(nil), r.sheetMarket...)
	} else if r.indexQuote != nil {
		snap.Market = []models.QuoteRecord{*r.indexQuote}
	}
	return snap
}
