// Package extractor produces raw appointment candidates from the ICBC
// booking site. The browser flow mirrors the site's Angular UI: log in
// with the driver-licence form, open the road-test booking page, pick
// the licence class, search preferred centers, then harvest slot
// buttons from the rendered page.
//
// Only login and navigation failures abort a run; the in-between steps
// are best-effort because the page structure shifts frequently and a
// missed optional step still often leaves harvestable slots on screen.
package extractor

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/chromedp/chromedp"
	"github.com/rs/zerolog"
	"golang.org/x/time/rate"

	"icbcwatch/internal/monitor"
)

type Config struct {
	LoginURL   string
	BookingURL string

	LastName      string
	LicenceNumber string
	Keyword       string

	LicenseType      string
	PreferredCenters []string

	Headless  bool
	Timeout   time.Duration
	UserAgent string
	// ActionsPerMinute paces page interactions so the site is not
	// hammered. 0 means the default of 12.
	ActionsPerMinute int
}

const defaultUserAgent = "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"

// Browser drives a headless Chrome session per extraction run. Each
// run gets a fresh browser so a wedged page never poisons later
// cycles.
type Browser struct {
	cfg     Config
	log     zerolog.Logger
	limiter *rate.Limiter
}

func NewBrowser(cfg Config, log zerolog.Logger) *Browser {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Second
	}
	if cfg.UserAgent == "" {
		cfg.UserAgent = defaultUserAgent
	}
	apm := cfg.ActionsPerMinute
	if apm <= 0 {
		apm = 12
	}
	return &Browser{
		cfg:     cfg,
		log:     log.With().Str("component", "extractor").Logger(),
		limiter: rate.NewLimiter(rate.Limit(float64(apm)/60.0), 1),
	}
}

// Extract runs the full login-and-harvest flow and returns the slots
// visible on the booking page.
func (b *Browser) Extract(ctx context.Context) ([]monitor.RawCandidate, error) {
	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", b.cfg.Headless),
		chromedp.Flag("disable-gpu", true),
		chromedp.Flag("no-sandbox", true),
		chromedp.Flag("disable-dev-shm-usage", true),
		chromedp.WindowSize(1920, 1080),
		chromedp.UserAgent(b.cfg.UserAgent),
	)
	allocCtx, cancelAlloc := chromedp.NewExecAllocator(ctx, opts...)
	defer cancelAlloc()

	browserCtx, cancelBrowser := chromedp.NewContext(allocCtx)
	defer cancelBrowser()

	if err := b.login(browserCtx); err != nil {
		return nil, fmt.Errorf("login: %w", err)
	}
	if err := b.openBookingPage(browserCtx); err != nil {
		return nil, fmt.Errorf("open booking page: %w", err)
	}
	b.selectLicenseType(browserCtx)
	b.searchLocations(browserCtx)

	return b.harvestSlots(browserCtx)
}

// pace blocks until the next page interaction is allowed.
func (b *Browser) pace(ctx context.Context) error {
	return b.limiter.Wait(ctx)
}

func (b *Browser) step(ctx context.Context, timeout time.Duration, actions ...chromedp.Action) error {
	if err := b.pace(ctx); err != nil {
		return err
	}
	stepCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	return chromedp.Run(stepCtx, actions...)
}

func (b *Browser) login(ctx context.Context) error {
	b.log.Debug().Str("url", b.cfg.LoginURL).Msg("logging in")
	if err := b.step(ctx, b.cfg.Timeout,
		chromedp.Navigate(b.cfg.LoginURL),
		chromedp.WaitVisible(`input[type="text"]`, chromedp.ByQuery),
	); err != nil {
		return err
	}

	// Last name, licence number and keyword map onto the form's text,
	// tel and password inputs.
	if err := b.step(ctx, b.cfg.Timeout,
		chromedp.SendKeys(`input[type="text"]`, b.cfg.LastName, chromedp.ByQuery),
		chromedp.SendKeys(`input[type="tel"]`, b.cfg.LicenceNumber, chromedp.ByQuery),
		chromedp.SendKeys(`input[type="password"]`, b.cfg.Keyword, chromedp.ByQuery),
	); err != nil {
		return err
	}

	// The terms checkbox may be absent on some variants of the page.
	if err := b.step(ctx, 5*time.Second,
		chromedp.Click(`input[type="checkbox"]`, chromedp.ByQuery),
	); err != nil {
		b.log.Debug().Err(err).Msg("terms checkbox not found, continuing")
	}

	if err := b.step(ctx, b.cfg.Timeout,
		chromedp.Click(`button[type="submit"]`, chromedp.ByQuery),
	); err != nil {
		return err
	}

	// Give the post-login redirect a moment to settle.
	return b.step(ctx, b.cfg.Timeout, chromedp.WaitReady(`body`, chromedp.ByQuery))
}

func (b *Browser) openBookingPage(ctx context.Context) error {
	b.log.Debug().Str("url", b.cfg.BookingURL).Msg("opening booking page")
	return b.step(ctx, b.cfg.Timeout,
		chromedp.Navigate(b.cfg.BookingURL),
		chromedp.WaitReady(`body`, chromedp.ByQuery),
	)
}

// selectLicenseType picks the road-test class radio. Best-effort.
func (b *Browser) selectLicenseType(ctx context.Context) {
	sel := fmt.Sprintf(`input[type="radio"][value*=%q]`, "Class 7")
	if strings.EqualFold(b.cfg.LicenseType, "5") {
		sel = fmt.Sprintf(`input[type="radio"][value*=%q]`, "Class 5")
	}
	if err := b.step(ctx, 10*time.Second, chromedp.Click(sel, chromedp.ByQuery)); err != nil {
		b.log.Debug().Err(err).Str("license_type", b.cfg.LicenseType).Msg("license type radio not found, continuing")
	}
}

// searchLocations types each preferred center into the location search
// box and accepts the first suggestion. Best-effort; the first center
// that yields a suggestion wins.
func (b *Browser) searchLocations(ctx context.Context) {
	const searchBox = `input[placeholder*="location" i], input[placeholder*="city" i], input[type="text"]`
	for _, center := range b.cfg.PreferredCenters {
		err := b.step(ctx, 10*time.Second,
			chromedp.SetValue(searchBox, "", chromedp.ByQuery),
			chromedp.SendKeys(searchBox, center, chromedp.ByQuery),
			chromedp.Sleep(2*time.Second),
			chromedp.Click(`[role="option"], .dropdown-item, .suggestion-item`, chromedp.ByQuery),
		)
		if err == nil {
			b.log.Debug().Str("center", center).Msg("selected location suggestion")
			return
		}
		b.log.Debug().Err(err).Str("center", center).Msg("no suggestion for center")
	}
}

// slotDTO is the JSON shape produced by the in-page harvest script.
type slotDTO struct {
	Time     string `json:"time"`
	Date     string `json:"date"`
	Location string `json:"location"`
}

func (b *Browser) harvestSlots(ctx context.Context) ([]monitor.RawCandidate, error) {
	if err := b.step(ctx, b.cfg.Timeout, chromedp.Sleep(3*time.Second)); err != nil {
		return nil, err
	}

	var slots []slotDTO
	if err := b.step(ctx, b.cfg.Timeout, chromedp.Evaluate(harvestScript, &slots)); err != nil {
		return nil, fmt.Errorf("harvest slots: %w", err)
	}

	out := make([]monitor.RawCandidate, 0, len(slots))
	for _, s := range slots {
		out = append(out, monitor.RawCandidate{
			Time:        strings.TrimSpace(s.Time),
			Date:        strings.TrimSpace(s.Date),
			Location:    strings.TrimSpace(s.Location),
			LicenseType: b.cfg.LicenseType,
		})
	}
	b.log.Debug().Int("slots", len(out)).Msg("harvested slots")
	return out, nil
}
