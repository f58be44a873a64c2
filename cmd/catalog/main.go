package main

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.uber.org/zap"

	"CatalogAdmin/internal/catalog"
	"CatalogAdmin/internal/config"
	"CatalogAdmin/pkg/kit"
)

func main() {
	service := "catalog"

	cfg, err := config.Load()
	if err != nil {
		log := kit.NewLogger(service, "")
		log.Fatal("load config", zap.Error(err))
	}

	log := kit.NewLogger(service, cfg.LogLevel)
	defer func() { _ = log.Sync() }()

	uploads, err := catalog.NewUploader(cfg.UploadDir)
	if err != nil {
		log.Fatal("prepare upload dir", zap.Error(err), zap.String("dir", cfg.UploadDir))
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	s := &catalog.Server{
		Store:         catalog.NewStore(),
		Uploads:       uploads,
		UploadLimiter: kit.NewIPRateLimiter(cfg.UploadLimitPerMin, time.Minute),
		Log:           log,
	}

	h := catalog.NewHandler(s, catalog.HTTPDeps{
		Log:            log,
		Service:        service,
		Registry:       reg,
		MetricsEnabled: cfg.MetricsEnabled,
		MetricsToken:   cfg.MetricsToken,
		CORSOrigins:    cfg.CORSOrigins,
	})

	log.Info("catalog configured",
		zap.String("upload_dir", cfg.UploadDir),
		zap.Bool("metrics", cfg.MetricsEnabled),
		zap.Int("upload_limit_per_min", cfg.UploadLimitPerMin),
	)

	if err := kit.RunHTTPServer(cfg.Addr(), h, log, cfg.ShutdownTimeout); err != nil {
		log.Fatal("http server stopped", zap.Error(err))
	}
}
