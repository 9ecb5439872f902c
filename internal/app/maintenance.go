package app

import (
	"context"
	"fmt"

	dbpkg "github.com/yungbote/gradebridge-backend/internal/data/db"
	"github.com/yungbote/gradebridge-backend/internal/platform/logger"
	"github.com/yungbote/gradebridge-backend/internal/services"
)

// Toolkit is the subset of the app the maintenance CLI needs. It never starts
// the HTTP server and only builds the embedding client when a command asks for it.
type Toolkit struct {
	Log         *logger.Logger
	Cfg         Config
	DB          *dbpkg.Service
	Repos       Repos
	Maintenance services.MaintenanceService
}

func NewToolkit() (*Toolkit, error) {
	cfg, err := LoadConfig()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	log, err := logger.New(cfg.LogMode)
	if err != nil {
		return nil, fmt.Errorf("init logger: %w", err)
	}
	dbs, err := openDatabase(log, cfg)
	if err != nil {
		log.Sync()
		return nil, err
	}
	reposet := wireRepos(dbs.DB(), log)
	return &Toolkit{
		Log:         log,
		Cfg:         cfg,
		DB:          dbs,
		Repos:       reposet,
		Maintenance: services.NewMaintenanceService(dbs.DB(), log, reposet.Evaluation, reposet.Guideline),
	}, nil
}

// Guidelines wires the guideline service with the configured embedder and vector mirror.
func (t *Toolkit) Guidelines(ctx context.Context) (services.GuidelineService, func(), error) {
	vcfg, err := resolveVectorProviderConfig(t.Cfg.VectorProvider, t.Cfg.DBDriver)
	if err != nil {
		return nil, nil, err
	}
	vb, err := buildVectorBackend(ctx, t.Log, vcfg, t.Repos.Guideline)
	if err != nil {
		return nil, nil, err
	}
	clients, err := wireClients(ctx, t.Log, t.Cfg)
	if err != nil {
		return nil, nil, err
	}
	svc := services.NewGuidelineService(t.Log, t.Repos.Guideline, clients.OpenAI, vb.Mirror, clients.Bus, clients.OCR)
	return svc, func() { _ = clients.Close() }, nil
}

func (t *Toolkit) Close() {
	if t == nil {
		return
	}
	if err := t.DB.Close(); err != nil {
		t.Log.Warn("database close failed", "error", err)
	}
	t.Log.Sync()
}
