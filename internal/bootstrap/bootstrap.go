package bootstrap

import (
	"context"
	"errors"
	"log/slog"

	"cloud.google.com/go/firestore"

	searchclient "github.com/passabola/chatbot/internal/client/search"
	vertexclient "github.com/passabola/chatbot/internal/client/vertex"
	"github.com/passabola/chatbot/internal/config"
	"github.com/passabola/chatbot/internal/faq"
	"github.com/passabola/chatbot/pkg/logger"
)

const (
	DefaultFAQServiceName       = "passabola-faq"
	DefaultAssistantServiceName = "passabola-assistant"
)

type Bootstrap struct {
	Log           *slog.Logger
	ServiceName   string
	Firestore     *firestore.Client
	Matcher       *faq.Matcher
	VertexAdapter *vertexclient.Adapter
	SearchAdapter *searchclient.Adapter
}

// RunFAQ prepares the FAQ responder. Firestore is only opened when the
// corpus is read from a collection.
func RunFAQ(cfg *config.Config) (*Bootstrap, error) {
	var err error
	applicationCtx := context.Background()
	bs := newBootstrap(cfg, DefaultFAQServiceName)

	if err = cfg.ValidateFAQ(); err != nil {
		return bs, err
	}

	if cfg.FAQCollection != "" {
		bs.Firestore, err = InitFirestore(applicationCtx, cfg.ProjectID)
		if err != nil {
			return bs, err
		}
	}

	entries, source, err := loadEntries(applicationCtx, cfg, bs.Firestore)
	if err != nil {
		return bs, err
	}
	bs.Matcher, err = faq.NewMatcher(entries, cfg.FAQThreshold, cfg.FAQFallback)
	if err != nil {
		return bs, err
	}

	bs.Log.Info("faq knowledge base loaded",
		"source", source,
		"entries", bs.Matcher.Size(),
		"threshold", bs.Matcher.Threshold(),
	)
	return bs, nil
}

// RunAssistant prepares the model and search adapters. Missing credentials
// abort startup before any client is created.
func RunAssistant(cfg *config.Config) (*Bootstrap, error) {
	var err error
	applicationCtx := context.Background()
	bs := newBootstrap(cfg, DefaultAssistantServiceName)

	if err = cfg.ValidateAssistant(); err != nil {
		return bs, err
	}

	apiKey := cfg.SearchAPIKey
	if apiKey == "" {
		apiKey, err = AccessSecret(applicationCtx, cfg.ProjectID, cfg.SearchAPIKeySecret)
		if err != nil {
			return bs, err
		}
	}

	bs.SearchAdapter, err = searchclient.NewAdapter(
		bs.Log,
		cfg.SearchProvider,
		cfg.SearchEndpoint,
		apiKey,
		cfg.SearchMaxResults,
		cfg.SearchTimeout,
	)
	if err != nil {
		return bs, err
	}

	bs.VertexAdapter, err = vertexclient.NewAdapter(applicationCtx, bs.Log, cfg.ProjectID, cfg.Region, cfg.VertexModel)
	if err != nil {
		return bs, err
	}

	bs.Log.Info("assistant adapters ready",
		"model", cfg.VertexModel,
		"region", cfg.Region,
		"search_provider", bs.SearchAdapter.Provider(),
	)
	return bs, nil
}

func (bs *Bootstrap) Close() error {
	var errList []error
	if bs.VertexAdapter != nil {
		errList = append(errList, bs.VertexAdapter.Close())
	}
	if bs.Firestore != nil {
		errList = append(errList, bs.Firestore.Close())
	}
	return errors.Join(errList...)
}

func newBootstrap(cfg *config.Config, defaultName string) *Bootstrap {
	bs := new(Bootstrap)
	bs.ServiceName = cfg.ServiceName
	if bs.ServiceName == "" {
		bs.ServiceName = defaultName
	}
	bs.Log = logger.New(cfg.LogLevel, logger.NewCloudRunHandler).With("service", bs.ServiceName)
	return bs
}
