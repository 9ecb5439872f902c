package app

import (
	"context"
	"fmt"
	"strings"

	"github.com/yungbote/gradebridge-backend/internal/ingestion"
	"github.com/yungbote/gradebridge-backend/internal/platform/gcp"
	"github.com/yungbote/gradebridge-backend/internal/platform/logger"
	"github.com/yungbote/gradebridge-backend/internal/platform/openai"
	"github.com/yungbote/gradebridge-backend/internal/realtime/bus"
)

type Clients struct {
	OpenAI   openai.Client
	Bus      bus.Bus
	// OCR is nil unless a Document AI processor is configured.
	OCR      ingestion.OCR
	closeOCR func() error
}

func (c Clients) Close() error {
	var err error
	if c.Bus != nil {
		err = c.Bus.Close()
	}
	if c.closeOCR != nil {
		if cerr := c.closeOCR(); cerr != nil && err == nil {
			err = cerr
		}
	}
	return err
}

func wireClients(ctx context.Context, log *logger.Logger, cfg Config) (Clients, error) {
	log.Info("Wiring clients...")

	ocfg := openai.ConfigFromEnv()
	ocfg.Temperature = cfg.GradingTemperature
	openaiClient, err := openai.NewClient(log, ocfg)
	if err != nil {
		return Clients{}, fmt.Errorf("init openai client: %w", err)
	}

	// Redis fans events out across replicas; a single process gets by with the local bus.
	var b bus.Bus
	rcfg := bus.RedisConfigFromEnv()
	if strings.TrimSpace(rcfg.Addr) != "" {
		b, err = bus.NewRedisBus(ctx, log, rcfg)
		if err != nil {
			return Clients{}, fmt.Errorf("init redis bus: %w", err)
		}
	} else {
		log.Info("REDIS_ADDR not set; using in-process event bus")
		b = bus.NewLocalBus()
	}

	out := Clients{OpenAI: openaiClient, Bus: b}
	if dcfg := gcp.DocumentConfigFromEnv(); dcfg.Enabled() {
		doc, err := gcp.NewDocument(ctx, log, dcfg)
		if err != nil {
			_ = b.Close()
			return Clients{}, fmt.Errorf("init document ai: %w", err)
		}
		out.OCR, out.closeOCR = doc, doc.Close
	} else {
		log.Info("DOCUMENTAI_PROCESSOR_ID not set; scanned PDFs are not recognized")
	}
	return out, nil
}
