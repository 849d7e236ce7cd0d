//go:build wireinject
// +build wireinject

package main

import (
	"github.com/google/wire"

	"github.com/yanqian/faq-kb/internal/bootstrap"
	"github.com/yanqian/faq-kb/internal/domain/faq"
	"github.com/yanqian/faq-kb/internal/domain/media"
	"github.com/yanqian/faq-kb/internal/infra/config"
	httpiface "github.com/yanqian/faq-kb/internal/interface/http"
	"github.com/yanqian/faq-kb/pkg/logger"
)

func initializeApp() (*bootstrap.App, error) {
	wire.Build(
		config.Load,
		logger.New,
		provideFAQConfig,
		provideMediaConfig,
		provideFAQRepository,
		provideFAQCache,
		provideObjectStorage,
		faq.NewService,
		media.NewService,
		httpiface.NewHandler,
		httpiface.NewRouter,
		bootstrap.NewApp,
	)
	return nil, nil
}
