// Package sheets reads price observations from, and appends subscribers to,
// a Google Sheets spreadsheet.
package sheets

import (
	"context"
	"fmt"
	"slices"
	"strings"
	"time"

	"golang.org/x/oauth2/google"
	"golang.org/x/oauth2/jwt"
	"google.golang.org/api/option"
	gsheets "google.golang.org/api/sheets/v4"

	"github.com/kjannette/avaline-backend/internal/ingest"
	"github.com/kjannette/avaline-backend/internal/models"
)

type Options struct {
	SheetID         string
	PriceRange      string // e.g. "OasisData!A:D"
	SubscriberRange string // e.g. "Emails!A:B"
}

type Store struct {
	svc  *gsheets.Service
	opts Options
}

// NewServiceAccountStore authenticates as a service account.
func NewServiceAccountStore(ctx context.Context, clientEmail, privateKey string, opts Options) (*Store, error) {
	conf := &jwt.Config{
		Email:      clientEmail,
		PrivateKey: []byte(privateKey),
		Scopes:     []string{gsheets.SpreadsheetsScope},
		TokenURL:   google.JWTTokenURL,
	}
	return New(ctx, opts, option.WithHTTPClient(conf.Client(context.Background())))
}

func New(ctx context.Context, opts Options, clientOpts ...option.ClientOption) (*Store, error) {
	if opts.SheetID == "" {
		return nil, fmt.Errorf("sheet id is required")
	}
	svc, err := gsheets.NewService(ctx, clientOpts...)
	if err != nil {
		return nil, fmt.Errorf("create sheets service: %w", err)
	}
	return &Store{svc: svc, opts: opts}, nil
}

func (s *Store) Name() string { return "sheets" }

// ListSheets returns the tab titles of the spreadsheet.
func (s *Store) ListSheets(ctx context.Context) ([]string, error) {
	ss, err := s.svc.Spreadsheets.Get(s.opts.SheetID).Fields("sheets.properties.title").Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("get spreadsheet: %w", err)
	}
	titles := make([]string, 0, len(ss.Sheets))
	for _, sh := range ss.Sheets {
		if sh.Properties != nil {
			titles = append(titles, sh.Properties.Title)
		}
	}
	return titles, nil
}

// FetchObservations loads the price range, verifying its tab exists first.
func (s *Store) FetchObservations(ctx context.Context) ([]models.Observation, error) {
	if tab, _, ok := strings.Cut(s.opts.PriceRange, "!"); ok {
		tabs, err := s.ListSheets(ctx)
		if err != nil {
			return nil, err
		}
		if !slices.Contains(tabs, tab) {
			return nil, fmt.Errorf("sheet %q not found, available sheets: %s", tab, strings.Join(tabs, ", "))
		}
	}

	resp, err := s.svc.Spreadsheets.Values.Get(s.opts.SheetID, s.opts.PriceRange).Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("get values %s: %w", s.opts.PriceRange, err)
	}

	obs := ingest.ParseRows(resp.Values)
	fmt.Printf("[SHEETS] Loaded %d observations from %d rows\n", len(obs), len(resp.Values))
	return obs, nil
}

// AddSubscriber appends [email, RFC3339 UTC time] to the subscriber range.
func (s *Store) AddSubscriber(ctx context.Context, email string) error {
	vr := &gsheets.ValueRange{
		Values: [][]any{{email, time.Now().UTC().Format(time.RFC3339)}},
	}
	_, err := s.svc.Spreadsheets.Values.Append(s.opts.SheetID, s.opts.SubscriberRange, vr).
		ValueInputOption("RAW").
		InsertDataOption("INSERT_ROWS").
		Context(ctx).
		Do()
	if err != nil {
		return fmt.Errorf("append subscriber: %w", err)
	}
	return nil
}

// Ping checks the spreadsheet is reachable.
func (s *Store) Ping(ctx context.Context) error {
	_, err := s.ListSheets(ctx)
	return err
}
