package querygate

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/querygate/internal/aci"
	"github.com/kailas-cloud/querygate/internal/config"
	"github.com/kailas-cloud/querygate/internal/domain/search/request"
	"github.com/kailas-cloud/querygate/internal/domain/search/result"
	databasesuc "github.com/kailas-cloud/querygate/internal/usecase/databases"
	healthuc "github.com/kailas-cloud/querygate/internal/usecase/health"
	searchuc "github.com/kailas-cloud/querygate/internal/usecase/search"
)

const defaultTimeout = 30 * time.Second

// Internal interfaces, swapped out in tests.
type searchUseCase interface {
	Query(ctx context.Context, req request.Request) (result.Documents[result.Result], error)
	QueryPromotions(ctx context.Context, req request.Request) (result.Documents[result.Result], error)
	FindSimilar(ctx context.Context, req request.SimilarRequest) (result.Documents[result.Result], error)
	GetContent(ctx context.Context, req request.ContentRequest) (result.Documents[result.Result], error)
	StateToken(ctx context.Context, restrictions request.Restrictions, maxResults int) (string, error)
	RelatedConcepts(ctx context.Context, req request.RelatedConceptsRequest) ([]result.Concept, error)
}

type databasesUseCase interface {
	List(ctx context.Context) ([]string, error)
}

type pinger interface {
	Ping(ctx context.Context) error
}

// Client is the querygate SDK entry point.
type Client struct {
	searchSvc searchUseCase
	dbSvc     databasesUseCase
	healthSvc healthUseCase
	content   pinger
	obs       *observer
}

// New creates a Client and checks the content backend is reachable.
// The provided context is used for that initial check.
func New(ctx context.Context, opts ...Option) (*Client, error) {
	cfg := &clientConfig{timeout: defaultTimeout}
	for _, o := range opts {
		o.apply(cfg)
	}

	if cfg.contentURL == "" {
		return nil, errors.New("querygate: content server address required (use WithContentServer)")
	}

	snap, err := runtimeSnapshot(cfg)
	if err != nil {
		return nil, fmt.Errorf("querygate: %w", err)
	}

	obs, err := newObserver(cfg.logger, cfg.metricsReg)
	if err != nil {
		return nil, err
	}

	c, err := wireClient(cfg, snap, obs)
	if err != nil {
		return nil, err
	}

	if err := c.content.Ping(ctx); err != nil {
		return nil, fmt.Errorf("querygate: content server not ready: %w", err)
	}
	return c, nil
}

func runtimeSnapshot(cfg *clientConfig) (*config.Snapshot, error) {
	rt := config.Runtime{
		QueryManipulation: config.QueryManipulationConfig{
			Enabled:     cfg.qmEnabled,
			Blacklist:   cfg.blacklist,
			ExpandQuery: cfg.expandQuery,
		},
	}
	for _, f := range cfg.fields {
		fc := config.FieldConfig{
			ID:            f.ID,
			DisplayName:   f.DisplayName,
			Names:         f.Names,
			Type:          string(f.Type),
			RedactUnknown: f.RedactUnknown,
		}
		for _, v := range f.Values {
			fc.Values = append(fc.Values, config.KnownValueConfig{Value: v.Value, Display: v.Display})
		}
		rt.Fields = append(rt.Fields, fc)
	}
	return rt.Snapshot()
}

func wireClient(cfg *clientConfig, snap *config.Snapshot, obs *observer) (*Client, error) {
	// Internals log through zap; SDK operations are observed through slog.
	logger := zap.NewNop()

	content, err := aci.NewClient(&aci.Config{
		Channel:    aci.Content,
		BaseURL:    cfg.contentURL,
		Timeout:    cfg.timeout,
		HTTPClient: cfg.httpClient,
		Logger:     logger,
	})
	if err != nil {
		return nil, fmt.Errorf("querygate: %w", err)
	}
	router := aci.NewRouter(content)

	var qmsPinger healthuc.Pinger
	if cfg.qmsURL != "" {
		qms, err := aci.NewClient(&aci.Config{
			Channel:    aci.QMS,
			BaseURL:    cfg.qmsURL,
			Timeout:    cfg.timeout,
			HTTPClient: cfg.httpClient,
			Logger:     logger,
		})
		if err != nil {
			return nil, fmt.Errorf("querygate: %w", err)
		}
		router.Register(aci.QMS, qms)
		qmsPinger = qms
	}

	dbSvc := databasesuc.New(databasesuc.NewStatusSource(router), databasesuc.DefaultRefresh, logger)

	return &Client{
		searchSvc: searchuc.New(router, snap, snap, dbSvc, logger),
		dbSvc:     dbSvc,
		healthSvc: healthuc.New(content, qmsPinger, nil),
		content:   content,
		obs:       obs,
	}, nil
}

// Ping checks content backend connectivity.
func (c *Client) Ping(ctx context.Context) (err error) {
	start := time.Now()
	defer func() { c.obs.observe("ping", start, err) }()

	if err = c.content.Ping(ctx); err != nil {
		return fmt.Errorf("ping: %w", err)
	}
	return nil
}

// Databases lists the databases the content backend serves.
func (c *Client) Databases(ctx context.Context) (dbs []string, err error) {
	start := time.Now()
	defer func() { c.obs.observe("databases", start, err) }()

	dbs, err = c.dbSvc.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list databases: %w", err)
	}
	return dbs, nil
}
